package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"
)

func newUpgradeCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Move legacy featured flags onto the featured group",
		Long: `Gives every item carrying the legacy featured flag the featured membership,
deletes the flag and records the data version. Without --force nothing happens
once the version has been recorded.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := newCommandDeps(cmd.Context())
			if err != nil {
				return err
			}
			defer deps.Close()

			if err = deps.svc.RegisterGroup(cmd.Context()); err != nil {
				return err
			}

			var report spotlight.MigrationReport
			if force {
				report, err = deps.svc.RunMigration(cmd.Context())
			} else {
				report, err = deps.svc.RunMigrationIfNeeded(cmd.Context())
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if report.Skipped {
				fmt.Fprintf(out, "already at %s, nothing to do\n", spotlight.CurrentVersion)
				return nil
			}
			fmt.Fprintf(out, "scanned %d pages: %d flagged, %d added, %d failures\n",
				report.Pages, report.Matched, report.Added, report.Failures)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "rescan even when the version is already recorded")
	return cmd
}
