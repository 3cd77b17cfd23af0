package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/partnerdesk/console/internal/bootstrap"
	domainauth "github.com/partnerdesk/console/internal/domain/auth"
)

func newRouteCmd(a *app) *cobra.Command {
	var withCookie bool
	cmd := &cobra.Command{
		Use:   "route <path>",
		Short: "Show how the edge gate treats a path",
		Long: `route classifies a request path with the configured gate prefixes and
prints the edge decision, with or without a session cookie present.

Examples:
  console route /admin/settings
  console route /login --cookie`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !strings.HasPrefix(path, "/") {
				return fmt.Errorf("path %q must start with /", path)
			}
			out := cmd.OutOrStdout()

			if excludedPath(path, a.cfg.Gate.ExcludedPrefixes) {
				_, err := fmt.Fprintf(out, "path:     %s\nexcluded: true\naction:   allow\n", path)
				return err
			}

			d := domainauth.DecideEdge(
				domainauth.EdgeInput{Path: path, HasSession: withCookie},
				bootstrap.RouteRules(a.cfg.Gate),
			)
			if _, err := fmt.Fprintf(out, "path:     %s\nclass:    %s\naction:   %s\n",
				path, d.Class, d.Action); err != nil {
				return err
			}
			if d.Location != "" {
				_, err := fmt.Fprintf(out, "location: %s\n", d.Location)
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withCookie, "cookie", false, "evaluate as if a session cookie is present")
	return cmd
}

func excludedPath(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
