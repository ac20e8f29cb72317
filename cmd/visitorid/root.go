package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/visitorid/internal/config"
	"github.com/dmitrymomot/visitorid/internal/devcollector"
	"github.com/dmitrymomot/visitorid/pkg/logger"
	"github.com/dmitrymomot/visitorid/pkg/visitor"
)

// app is the state shared by subcommands once configuration is loaded.
type app struct {
	cfg config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var (
		envFiles []string
		verbose  bool
	)

	root := &cobra.Command{
		Use:           "visitorid",
		Short:         "Identify storefront visitors and report page views",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(envFiles...)
			if err != nil {
				return err
			}
			a.cfg = cfg

			opts := []logger.Option{
				logger.WithEnvironment(cfg.AppEnv, "visitorid"),
				logger.WithLevelName(cfg.LogLevel),
				logger.WithOutput(cmd.ErrOrStderr()),
				logger.WithContextExtractors(visitor.LoggerExtractor(), devcollector.RequestIDExtractor()),
			}
			if verbose {
				opts = append(opts, logger.WithLevel(slog.LevelDebug))
			}
			a.log = logger.New(opts...)
			return nil
		},
	}

	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "load variables from these .env files")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level, including report payloads")

	root.AddCommand(
		newCollectCmd(a),
		newChromeCmd(a),
		newCollectorCmd(a),
	)
	return root
}
