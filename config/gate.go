package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// GateConfig configures the edge gate (cookie presence routing), the client gate
// (authoritative identity check) and landing resolution after login.
type GateConfig struct {
	// SessionCookieName is the cookie set by the API server on login.
	SessionCookieName string `env:"SESSION_COOKIE_NAME" envDefault:"session"`

	// ProtectedPrefixes are path prefixes that require a session marker at the edge.
	ProtectedPrefixes []string `env:"GATE_PROTECTED_PREFIXES" envDefault:"/admin,/dashboard"`

	// AuthOnlyPrefixes are path prefixes only meaningful to signed-out visitors.
	AuthOnlyPrefixes []string `env:"GATE_AUTH_ONLY_PREFIXES" envDefault:"/login,/register"`

	// ExcludedPrefixes bypass the edge gate entirely.
	ExcludedPrefixes []string `env:"GATE_EXCLUDED_PREFIXES" envDefault:"/api/,/static/,/images/,/favicon.ico,/healthz,/readyz,/metrics"`

	// LoginPath is where unauthenticated visitors are sent.
	LoginPath string `env:"GATE_LOGIN_PATH" envDefault:"/login"`

	// AdminLanding is the admin landing screen, also the edge redirect for signed-in visitors on auth-only paths.
	AdminLanding string `env:"GATE_ADMIN_LANDING" envDefault:"/admin/dashboard"`

	// UserLanding is the standard-user landing screen.
	UserLanding string `env:"GATE_USER_LANDING" envDefault:"/user/dashboard"`

	// DeferredRender renders a loading shell for full-page navigations and performs the
	// identity check on the follow-up htmx request. Disable to always check inline.
	DeferredRender bool `env:"GATE_DEFERRED_RENDER" envDefault:"true"`
}

// Sanitize trims values and drops empty prefixes.
func (g *GateConfig) Sanitize() {
	g.SessionCookieName = strings.TrimSpace(g.SessionCookieName)
	g.ProtectedPrefixes = cleanPrefixes(g.ProtectedPrefixes)
	g.AuthOnlyPrefixes = cleanPrefixes(g.AuthOnlyPrefixes)
	g.ExcludedPrefixes = cleanPrefixes(g.ExcludedPrefixes)
	g.LoginPath = strings.TrimSpace(g.LoginPath)
	g.AdminLanding = strings.TrimSpace(g.AdminLanding)
	g.UserLanding = strings.TrimSpace(g.UserLanding)
}

// Validate checks the cookie name is an HTTP token and redirect targets are relative paths.
func (g *GateConfig) Validate() error {
	var errs []error
	if !validCookieName(g.SessionCookieName) {
		errs = append(errs, fmt.Errorf("SESSION_COOKIE_NAME %q is not a valid cookie name", g.SessionCookieName))
	}
	if len(g.ProtectedPrefixes) == 0 {
		errs = append(errs, errors.New("GATE_PROTECTED_PREFIXES must not be empty"))
	}
	for name, p := range map[string]string{
		"GATE_LOGIN_PATH":    g.LoginPath,
		"GATE_ADMIN_LANDING": g.AdminLanding,
		"GATE_USER_LANDING":  g.UserLanding,
	} {
		if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") {
			errs = append(errs, fmt.Errorf("%s %q must be a relative path", name, p))
		}
	}
	return errors.Join(errs...)
}

func validCookieName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if !httpguts.IsTokenRune(r) {
			return false
		}
	}
	return true
}

func cleanPrefixes(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
