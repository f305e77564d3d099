// Package cmd implements the spotlight command-line interface.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	infraconfig "github.com/jonesrussell/north-cloud/spotlight/infrastructure/config"
	infralogger "github.com/jonesrussell/north-cloud/spotlight/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/spotlight/internal/bootstrap"
	"github.com/jonesrussell/north-cloud/spotlight/internal/config"
	"github.com/jonesrussell/north-cloud/spotlight/internal/spotlight"
)

// cfgFile holds the path to the configuration file.
var cfgFile string

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "spotlight",
		Short:         "Featured content service",
		Long:          `spotlight marks content items as featured and keeps legacy featured-flag queries working.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		infraconfig.GetConfigPath("config.yml"),
		"config file (default is $CONFIG_PATH or ./config.yml)",
	)

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newUpgradeCommand(),
		newFeaturedCommand(),
		newSettingsCommand(),
		newContentTypesCommand(),
		newTokenCommand(),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

// commandDeps is what the one-shot commands share.
type commandDeps struct {
	cfg   *config.Config
	log   infralogger.Logger
	store *bootstrap.Deps
	svc   *spotlight.Coordinator
}

func newCommandDeps(ctx context.Context) (*commandDeps, error) {
	cfg, err := bootstrap.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	log, err := bootstrap.CreateLogger(cfg)
	if err != nil {
		return nil, err
	}

	store, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	return &commandDeps{
		cfg:   cfg,
		log:   log,
		store: store,
		svc:   bootstrap.NewCoordinator(cfg, store, nil, log),
	}, nil
}

func (d *commandDeps) Close() {
	d.store.Close()
	_ = d.log.Sync()
}
