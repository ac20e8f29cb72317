package main

import (
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/visitorid/internal/devcollector"
	"github.com/dmitrymomot/visitorid/pkg/logger"
)

func newCollectorCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "collector",
		Short: "Run a development collection endpoint that logs reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.CollectorAddr
			}
			log := a.log.With(logger.Component("collector"))
			c := devcollector.New(devcollector.WithLogger(log))
			return devcollector.Serve(cmd.Context(), devcollector.ServerConfig{Addr: addr, Logger: log}, c.Router(), nil)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default COLLECTOR_ADDR or :8085)")
	return cmd
}
