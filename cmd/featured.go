package cmd

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/spotlight/internal/models"
	"github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"
)

func newFeaturedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "featured",
		Short: "Inspect featured items",
	}

	var (
		contentType string
		limit       int
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List featured items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := newCommandDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			page, err := deps.svc.Query(cmd.Context(), spotlight.FeaturedQuery(contentType, limit))
			if err != nil {
				return fmt.Errorf("failed to list featured items: %w", err)
			}

			renderItems(cmd.OutOrStdout(), page)
			return nil
		},
	}
	list.Flags().StringVar(&contentType, "type", "", "content type (default: all)")
	list.Flags().IntVar(&limit, "limit", 0, "maximum items to list (default: all)")

	cmd.AddCommand(list)
	return cmd
}

// renderItems writes page as a table followed by the match count.
func renderItems(w io.Writer, page models.ItemPage) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"ID", "Type", "Title", "Status", "Created"})
	for _, item := range page.Items {
		t.AppendRow(table.Row{
			item.ID,
			item.ContentType,
			item.Title,
			item.Status,
			item.CreatedAt.Format("2006-01-02"),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", page.Total})
	t.Render()
}
