package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			build := "devel"
			if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
				build = info.Main.Version
			}
			fmt.Fprintf(cmd.OutOrStdout(), "spotlight %s (data version %s)\n", build, spotlight.CurrentVersion)
		},
	}
}
