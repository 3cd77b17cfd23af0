package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/partnerdesk/console/internal/domain/auth"
	"github.com/partnerdesk/console/internal/observability/metrics"
)

// DefaultEdgeExclusions are never seen by the edge gate.
func DefaultEdgeExclusions() []string {
	return []string{"/api/", "/static/", "/images/", "/favicon.ico", "/healthz", "/readyz", "/metrics"}
}

// EdgeGateConfig configures the edge gate.
type EdgeGateConfig struct {
	Rules      domainauth.RouteRules
	CookieName string
	// Excluded path prefixes bypass the gate entirely.
	Excluded []string
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// EdgeGate redirects on session-cookie presence alone. It makes no network calls
// and never modifies the request it forwards.
func EdgeGate(cfg EdgeGateConfig) func(http.Handler) http.Handler {
	if cfg.Rules.LoginPath == "" {
		cfg.Rules = domainauth.DefaultRouteRules()
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "session"
	}
	if cfg.Excluded == nil {
		cfg.Excluded = DefaultEdgeExclusions()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if hasAnyPrefix(path, cfg.Excluded) {
				next.ServeHTTP(w, r)
				return
			}

			d := domainauth.DecideEdge(domainauth.EdgeInput{
				Path:       path,
				HasSession: SessionCookie(r, cfg.CookieName) != "",
			}, cfg.Rules)
			cfg.Metrics.ObserveEdge(d.Class.String(), d.Action.String())

			if d.Action != domainauth.EdgeRedirect {
				next.ServeHTTP(w, r)
				return
			}
			logger.DebugContext(r.Context(), "edge gate redirect",
				slog.String("path", path),
				slog.String("class", d.Class.String()),
				slog.String("location", d.Location),
			)
			http.Redirect(w, r, d.Location, http.StatusTemporaryRedirect)
		})
	}
}

// SessionCookie returns the session cookie value, or "" when absent or empty.
func SessionCookie(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
