package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/partnerdesk/console/config"
	"github.com/partnerdesk/console/internal/bootstrap"
	domainauth "github.com/partnerdesk/console/internal/domain/auth"
	apperrors "github.com/partnerdesk/console/internal/errors"
)

func newWhoamiCmd(a *app) *cobra.Command {
	var session string
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Resolve a session token against the API server",
		Long: `whoami runs the same authoritative identity check as the client gate and
prints the user and the landing their roles resolve to.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(session) == "" {
				return errors.New("--session is required")
			}
			// The CLI never shares a cache with the server.
			a.cfg.Cache.Backend = config.CacheBackendMemory
			svcs, err := bootstrap.NewServices(&bootstrap.ServiceDeps{Config: &a.cfg, Logger: a.logger})
			if err != nil {
				return err
			}

			res, err := svcs.Identity.Check(cmd.Context(), session)
			out := cmd.OutOrStdout()
			if _, perr := fmt.Fprintf(out, "state:   %s\n", res.State); perr != nil {
				return perr
			}
			if err != nil && !apperrors.IsUnauthenticated(err) {
				return fmt.Errorf("identity check: %w", err)
			}
			if !res.Authenticated() {
				return nil
			}

			u := res.User
			if _, perr := fmt.Fprintf(out, "id:      %s\nemail:   %s\nname:    %s\nroles:   %s\n",
				u.ID, u.Email, u.DisplayName(), roleList(u.Roles)); perr != nil {
				return perr
			}
			landing, lerr := svcs.Login.Landing(u)
			if errors.Is(lerr, domainauth.ErrNoUsableRole) {
				_, perr := fmt.Fprintln(out, "landing: none (no usable role)")
				return perr
			}
			if lerr != nil {
				return lerr
			}
			_, perr := fmt.Fprintf(out, "landing: %s (%s)\n", landing.Path, landing.Role)
			return perr
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "session token to check")
	return cmd
}

func roleList(roles []domainauth.Role) string {
	if len(roles) == 0 {
		return "-"
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.String())
	}
	return strings.Join(names, ",")
}
