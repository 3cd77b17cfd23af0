package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"regexp"
	"strings"

	console "github.com/partnerdesk/console"
	domainauth "github.com/partnerdesk/console/internal/domain/auth"
	"github.com/partnerdesk/console/internal/http/validation"
	"github.com/partnerdesk/console/internal/observability/metrics"
)

// GateOptions configures both gates.
type GateOptions struct {
	CookieName   string
	CookieDomain string
	Rules        domainauth.RouteRules
	// Excluded path prefixes bypass the edge gate. Nil uses DefaultEdgeExclusions.
	Excluded []string
	// Deferred enables the loading shell for full-page navigations to protected screens.
	Deferred bool
}

// LoginService is the login flow plus landing resolution, as provided by service.LoginService.
type LoginService interface {
	LoginFlow
	LandingResolver
}

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Identity IdentityChecker // Required
	Login    LoginService    // Required
	Settings SettingsFlow    // Optional: settings screen is not mounted when nil
	Gate     GateOptions

	CompressionEnabled bool
	CompressionLevel   int

	Metrics        *metrics.Metrics
	MetricsHandler http.Handler // Optional: mounted at MetricsPath
	MetricsPath    string
	Readiness      map[string]ReadinessCheck

	// TemplateFS and StaticFS override the embedded assets (tests, dev mode).
	TemplateFS fs.FS
	StaticFS   fs.FS
	IsDev      bool
	Logger     *slog.Logger
}

// NewRouter creates the HTTP handler with the full middleware chain:
// request id, recover, logging, edge gate, compression, browser detection, CSRF, mux.
// The edge gate decides on every method before any CSRF or page work happens.
func NewRouter(services RouterServices) (http.Handler, error) {
	if services.Identity == nil || services.Login == nil {
		return nil, errors.New("router requires identity and login services")
	}
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	gate := services.Gate
	if gate.Rules.LoginPath == "" {
		gate.Rules = domainauth.DefaultRouteRules()
	}
	if gate.CookieName == "" {
		gate.CookieName = "session"
	}

	templateFS, staticFS, err := resolveAssetFS(services)
	if err != nil {
		return nil, err
	}
	resolver, err := NewAssetResolverFromFS(staticFS, "manifest.json")
	if err != nil {
		logger.Warn("asset manifest unusable; using logical asset names", "error", err)
		resolver = nil
	}
	tr, err := NewTemplateRenderer(TemplateRendererConfig{TemplateFS: templateFS, Resolver: resolver, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("template renderer: %w", err)
	}

	pages := &PageHandlers{T: tr, Landing: services.Login, Logger: logger}
	auth := &AuthHandlers{
		Svc:          services.Login,
		T:            tr,
		Validator:    validation.New(),
		CookieName:   gate.CookieName,
		CookieDomain: gate.CookieDomain,
		LoginPath:    gate.Rules.LoginPath,
		Metrics:      services.Metrics,
		Logger:       logger,
	}
	session := &SessionHandlers{
		Identity:   services.Identity,
		Landing:    services.Login,
		CookieName: gate.CookieName,
		Logger:     logger,
	}

	gates := gateWrappers{services: services, gate: gate, renderer: tr, logger: logger}

	mux := http.NewServeMux()
	registerPublicRoutes(mux, pages)
	registerAuthRoutes(mux, auth)
	registerDashboardRoutes(mux, pages, gates)
	if services.Settings != nil {
		registerSettingsRoutes(mux, &SettingsHandlers{
			Svc:       services.Settings,
			T:         tr,
			LoginPath: gate.Rules.LoginPath,
			Logger:    logger,
		}, gates)
	}
	mux.HandleFunc("GET /api/session", session.Status)
	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("GET /readyz", readinessHandler(services.Readiness))
	if services.MetricsHandler != nil {
		path := services.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		mux.Handle("GET "+path, services.MetricsHandler)
	}
	mux.Handle("GET /static/", staticWithCacheHeaders(http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))))

	var compression Middleware
	if services.CompressionEnabled {
		compression = Compression(CompressionConfig{Level: services.CompressionLevel, Logger: logger})
	}

	return Chain(&notFoundHandler{mux: mux, pages: pages},
		RequestID(),
		Recover(logger),
		Logging(logger, services.Metrics),
		EdgeGate(EdgeGateConfig{
			Rules:      gate.Rules,
			CookieName: gate.CookieName,
			Excluded:   gate.Excluded,
			Metrics:    services.Metrics,
			Logger:     logger,
		}),
		compression,
		BrowserDetection(),
		CSRFProtection(CSRFConfig{CookieDomain: gate.CookieDomain, SkipPrefixes: []string{"/api/"}}),
	), nil
}

// resolveAssetFS picks template and static filesystems: explicit overrides, then
// disk in dev mode, then the embedded copies.
func resolveAssetFS(services RouterServices) (fs.FS, fs.FS, error) {
	templateFS, staticFS := services.TemplateFS, services.StaticFS
	if services.IsDev {
		if templateFS == nil {
			templateFS = os.DirFS(TemplatePathFromRoot)
		}
		if staticFS == nil {
			staticFS = os.DirFS("frontend/static")
		}
	}
	var err error
	if templateFS == nil {
		if templateFS, err = fs.Sub(console.TemplateFS, TemplatePathFromRoot); err != nil {
			return nil, nil, fmt.Errorf("embedded templates: %w", err)
		}
	}
	if staticFS == nil {
		if staticFS, err = fs.Sub(console.StaticFS, "frontend/static"); err != nil {
			return nil, nil, fmt.Errorf("embedded static assets: %w", err)
		}
	}
	return templateFS, staticFS, nil
}

type gateWrappers struct {
	services RouterServices
	gate     GateOptions
	renderer *TemplateRenderer
	logger   *slog.Logger
}

// require returns the client gate admitting only holders of role. RoleUnknown
// admits any authenticated user.
func (g gateWrappers) require(role domainauth.Role) func(http.Handler) http.Handler {
	return ClientGate(ClientGateConfig{
		Identity:   g.services.Identity,
		CookieName: g.gate.CookieName,
		LoginPath:  g.gate.Rules.LoginPath,
		Deferred:   g.gate.Deferred,
		Require:    role,
		Landing:    g.services.Login,
		Renderer:   g.renderer,
		Metrics:    g.services.Metrics,
		Logger:     g.logger,
	})
}

func registerPublicRoutes(mux *http.ServeMux, h *PageHandlers) {
	mux.HandleFunc("GET /{$}", h.Home)
	mux.HandleFunc("GET /pricing", h.Pricing)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("GET /login", h.LoginPage)
	mux.HandleFunc("POST /login", h.LoginSubmit)
	mux.HandleFunc("POST /logout", h.Logout)
	mux.HandleFunc("GET /register", h.RegisterPage)
}

func registerDashboardRoutes(mux *http.ServeMux, h *PageHandlers, g gateWrappers) {
	admin := g.require(domainauth.RoleAdmin)
	user := g.require(domainauth.RoleUser)
	anyRole := g.require(domainauth.RoleUnknown)

	mux.Handle("GET /admin/dashboard", admin(http.HandlerFunc(h.AdminDashboard)))
	mux.Handle("GET /user/dashboard", user(http.HandlerFunc(h.UserDashboard)))
	mux.Handle("GET /dashboard", anyRole(http.HandlerFunc(h.Dashboard)))
}

func registerSettingsRoutes(mux *http.ServeMux, h *SettingsHandlers, g gateWrappers) {
	admin := g.require(domainauth.RoleAdmin)
	mux.Handle("GET /admin/settings", admin(http.HandlerFunc(h.Show)))
	mux.Handle("POST /admin/settings", admin(http.HandlerFunc(h.Save)))
}

// hashedFilePattern matches content-hashed filenames such as app.3f2a9c1b.css.
var hashedFilePattern = regexp.MustCompile(`\.[a-f0-9]{8}\.(?:js|css)(?:\.map)?$`)

// staticWithCacheHeaders caches fingerprinted assets for a year and everything else not at all.
func staticWithCacheHeaders(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hashedFilePattern.MatchString(r.URL.Path) {
			w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		} else {
			w.Header().Set("Cache-Control", "no-cache")
		}
		handler.ServeHTTP(w, r)
	})
}

// notFoundHandler wraps a ServeMux and provides custom 404 handling.
type notFoundHandler struct {
	mux   *http.ServeMux
	pages *PageHandlers
}

// ServeHTTP renders the console's 404 page when no route matched. Matched routes
// are served directly.
func (h *notFoundHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if _, pattern := h.mux.Handler(r); pattern != "" || strings.HasPrefix(r.URL.Path, "/static/") {
		h.mux.ServeHTTP(w, r)
		return
	}

	cw := newCaptureWriter()
	h.mux.ServeHTTP(cw, r)
	if cw.status == http.StatusNotFound {
		h.pages.NotFound(w, r)
		return
	}
	cw.flushTo(w)
}

// captureWriter buffers the mux's fallback answer (404 or 405) so it can be replaced.
type captureWriter struct {
	header http.Header
	status int
	buf    bytes.Buffer
}

func newCaptureWriter() *captureWriter {
	return &captureWriter{header: make(http.Header), status: http.StatusOK}
}

func (c *captureWriter) Header() http.Header         { return c.header }
func (c *captureWriter) WriteHeader(code int)        { c.status = code }
func (c *captureWriter) Write(b []byte) (int, error) { return c.buf.Write(b) }

func (c *captureWriter) flushTo(w http.ResponseWriter) {
	for k, vs := range c.header {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(c.status)
	_, _ = w.Write(c.buf.Bytes())
}
