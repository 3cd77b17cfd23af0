package httpx

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"

	domainauth "github.com/partnerdesk/console/internal/domain/auth"
	apperrors "github.com/partnerdesk/console/internal/errors"
	"github.com/partnerdesk/console/internal/observability/metrics"
	"github.com/partnerdesk/console/internal/service"
)

// IdentityChecker performs the authoritative current-user check.
type IdentityChecker interface {
	Check(ctx context.Context, session string) (service.CheckResult, error)
}

// LandingResolver maps a signed-in user to their landing screen.
type LandingResolver interface {
	Landing(user *domainauth.User) (domainauth.Landing, error)
}

// Client gate request modes, used as metric labels.
const (
	gateModeDeferred = "deferred"
	gateModeInline   = "inline"
	gateModeAPI      = "api"
)

// ClientGateConfig configures the client gate.
type ClientGateConfig struct {
	Identity   IdentityChecker // Required
	CookieName string
	LoginPath  string
	// Deferred makes full-page navigations receive a neutral loading shell that
	// re-requests the page over htmx, so the identity fetch never blocks first paint.
	Deferred bool
	// Require, when not RoleUnknown, admits only users holding that role. Others
	// are sent to their own landing, or get 403 without a usable role.
	Require  domainauth.Role
	Landing  LandingResolver   // Optional: used with Require
	Renderer *TemplateRenderer // Optional: falls back to a built-in shell
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

// ClientGate wraps protected handlers with the authoritative identity check.
// The wrapped handler runs only once the check resolved authenticated; nothing
// of it is written otherwise. No state is kept across requests.
func ClientGate(cfg ClientGateConfig) func(http.Handler) http.Handler {
	if cfg.Identity == nil {
		panic("client gate requires an identity checker")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "session"
	}
	if cfg.LoginPath == "" {
		cfg.LoginPath = "/login"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	g := &clientGate{cfg: cfg}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			g.serve(w, r, next)
		})
	}
}

type clientGate struct {
	cfg ClientGateConfig
}

func (g *clientGate) serve(w http.ResponseWriter, r *http.Request, next http.Handler) {
	w.Header().Set("Cache-Control", "no-store")
	session := SessionCookie(r, g.cfg.CookieName)
	mode := g.mode(r)

	if mode == gateModeDeferred && session != "" {
		g.cfg.Metrics.ObserveGate(domainauth.GateChecking.String(), mode)
		g.writeShell(w, r)
		return
	}

	res, err := g.cfg.Identity.Check(r.Context(), session)
	g.cfg.Metrics.ObserveGate(res.State.String(), mode)

	if !res.Authenticated() {
		if err != nil && !apperrors.IsUnauthenticated(err) {
			g.cfg.Logger.WarnContext(r.Context(), "identity check failed closed",
				slog.String("path", r.URL.Path),
				slog.Any("error", err),
			)
		}
		g.deny(w, r, mode)
		return
	}

	if g.cfg.Require != domainauth.RoleUnknown && !res.User.HasRole(g.cfg.Require) {
		g.redirectElsewhere(w, r, res.User, mode)
		return
	}

	ctx := SetUserInContext(r.Context(), res.User, session)
	next.ServeHTTP(w, r.WithContext(ctx))
}

func (g *clientGate) mode(r *http.Request) string {
	switch {
	case !IsBrowserRequest(r):
		return gateModeAPI
	case g.cfg.Deferred && r.Method == http.MethodGet && !IsHTMX(r):
		return gateModeDeferred
	default:
		return gateModeInline
	}
}

func (g *clientGate) deny(w http.ResponseWriter, r *http.Request, mode string) {
	if mode == gateModeAPI {
		WriteAppError(w, apperrors.Unauthenticated("authentication required"))
		return
	}
	navigate(w, r, g.cfg.LoginPath)
}

func (g *clientGate) redirectElsewhere(w http.ResponseWriter, r *http.Request, user *domainauth.User, mode string) {
	if mode != gateModeAPI && g.cfg.Landing != nil {
		if landing, err := g.cfg.Landing.Landing(user); err == nil && landing.Path != r.URL.Path {
			navigate(w, r, landing.Path)
			return
		}
	}
	if mode == gateModeAPI {
		WriteError(w, ErrorParams{
			Code:    http.StatusForbidden,
			ErrCode: "insufficient_permissions",
			Err:     apperrors.NoRole("insufficient permissions"),
		})
		return
	}
	g.writeForbidden(w, r)
}

//nolint:gochecknoglobals // parsed once
var fallbackShell = template.Must(template.New("shell").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>Loading</title><script src="https://unpkg.com/htmx.org@2.0.4" defer></script></head>
<body{{with .CSRFToken}} hx-headers='{"X-Csrf-Token": "{{.}}"}'{{end}}><main id="content" aria-busy="true">
<div class="gate-loading" hx-get="{{.URI}}" hx-trigger="load" hx-target="#content" hx-swap="innerHTML">Loading</div>
</main></body></html>`))

func (g *clientGate) writeShell(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{"Title": "Loading", "URI": r.URL.RequestURI()}
	if token := GetCSRFToken(r); token != "" {
		data["CSRFToken"] = token
	}
	if g.cfg.Renderer != nil {
		if err := g.cfg.Renderer.RenderShell(w, data); !canFallBack(err) {
			return
		}
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := fallbackShell.Execute(w, data); err != nil {
		g.cfg.Logger.ErrorContext(r.Context(), "render loading shell", "error", err)
	}
}

func (g *clientGate) writeForbidden(w http.ResponseWriter, r *http.Request) {
	if g.cfg.Renderer != nil {
		data := basePageData(r, PageMeta{Title: "Access denied", CurrentPage: PageForbidden})
		if err := g.cfg.Renderer.RenderStatus(w, r, http.StatusForbidden, data); !canFallBack(err) {
			return
		}
	}
	http.Error(w, "Access denied", http.StatusForbidden)
}
