package cmd

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
)

func newContentTypesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "content-types",
		Aliases: []string{"types"},
		Short:   "List or register host content types",
	}

	var (
		label    string
		singular string
		private  bool
	)
	add := &cobra.Command{
		Use:   "add NAME",
		Short: "Register or relabel a content type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := newCommandDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			ct := models.ContentType{
				Name:          args[0],
				Label:         label,
				SingularLabel: singular,
				Public:        !private,
			}
			if ct.Label == "" {
				ct.Label = ct.Name
			}
			if ct.SingularLabel == "" {
				ct.SingularLabel = ct.Label
			}

			if err = deps.store.Types.UpsertContentType(cmd.Context(), ct); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", ct.Name, ct.Label)
			return nil
		},
	}
	add.Flags().StringVar(&label, "label", "", "plural label (default: the name)")
	add.Flags().StringVar(&singular, "singular", "", "singular label (default: the plural label)")
	add.Flags().BoolVar(&private, "private", false, "hide the type from the settings screen")

	list := &cobra.Command{
		Use:   "list",
		Short: "List content types",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := newCommandDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			types, err := deps.store.Store.ContentTypes(cmd.Context())
			if err != nil {
				return err
			}
			renderContentTypes(cmd.OutOrStdout(), types)
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func renderContentTypes(w io.Writer, types []models.ContentType) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"Name", "Label", "Singular", "Public"})
	for _, ct := range types {
		t.AppendRow(table.Row{ct.Name, ct.Label, ct.SingularLabel, ct.Public})
	}
	t.Render()
}
