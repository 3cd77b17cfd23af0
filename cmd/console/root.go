package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/partnerdesk/console/config"
	"github.com/partnerdesk/console/internal/bootstrap"
)

// app carries what every subcommand needs. Config is loaded once, before the
// subcommand runs.
type app struct {
	logger     *slog.Logger
	loadConfig func() (config.AppConfig, error)
	cfg        config.AppConfig
	// logOut, when set, receives a logger rebuilt at the configured LOG_LEVEL.
	logOut io.Writer
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "console",
		Short: "Partner console web server",
		Long: `console serves the partner console: public pages, the login flow,
and the admin and user areas guarded by the edge and client gates.

Configuration is read from the environment (and a .env file when present).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			a.cfg = cfg
			if a.logOut != nil {
				a.logger = bootstrap.NewLogger(a.logOut, cfg.SlogLevel())
			}
			if a.logger != nil {
				a.logger = a.logger.With("command", cmd.Name())
			}
			return nil
		},
	}

	root.AddCommand(newServeCmd(a), newRouteCmd(a), newWhoamiCmd(a))
	return root
}
