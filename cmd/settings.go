package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read or change the featurable content types",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the featurable content types",
			RunE: func(cmd *cobra.Command, _ []string) error {
				deps, err := newCommandDeps(cmd.Context())
				if err != nil {
					return err
				}
				defer deps.Close()

				fields, err := deps.svc.SettingsFields(cmd.Context())
				if err != nil {
					return err
				}
				for _, f := range fields {
					mark := " "
					if f.Checked {
						mark = "x"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s (%s)\n", mark, f.Name, f.Label)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "set TYPE...",
			Short: "Replace the featurable content types",
			RunE: func(cmd *cobra.Command, args []string) error {
				deps, err := newCommandDeps(cmd.Context())
				if err != nil {
					return err
				}
				defer deps.Close()

				saved, err := deps.svc.SaveSettings(cmd.Context(), args)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "featurable: %s\n", strings.Join(saved, ", "))
				return nil
			},
		},
	)
	return cmd
}
