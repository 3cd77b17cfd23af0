package main

import (
	"github.com/spf13/cobra"

	"github.com/partnerdesk/console/internal/bootstrap"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr != "" {
				a.cfg.HTTP.Addr = addr
			}
			a.logger.InfoContext(cmd.Context(), "starting console",
				"addr", a.cfg.HTTP.Addr,
				"api_base_url", a.cfg.API.BaseURL,
				"cache_backend", string(a.cfg.Cache.Backend),
				"deferred_render", a.cfg.Gate.DeferredRender,
			)
			return bootstrap.Run(cmd.Context(), &a.cfg, a.logger)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDR)")
	return cmd
}
