package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/partnerdesk/console/internal/mocks"
	"github.com/partnerdesk/console/internal/service"
)

func TestNewRouter_RequiresServices(t *testing.T) {
	_, err := NewRouter(RouterServices{})
	require.Error(t, err)
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(http.MethodGet, "/healthz", reqOpts{Accept: "application/json"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = env.do(http.MethodHead, "/healthz", reqOpts{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestReadinessHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	w := serve(readinessHandler(map[string]ReadinessCheck{"cache": ok}), newBrowserRequest(http.MethodGet, "/readyz"))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(readinessHandler(map[string]ReadinessCheck{"cache": ok, "api": down}), newBrowserRequest(http.MethodGet, "/readyz"))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body struct {
		Failed map[string]string `json:"failed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"api": "connection refused"}, body.Failed)
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(http.MethodGet, "/no-such-page", reqOpts{})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "That page does not exist.")

	w = env.do(http.MethodGet, "/api/no-such-endpoint", reqOpts{Accept: "application/json"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not_found","message":"Not found"}`, w.Body.String())
}

func TestMethodNotAllowedPassesThrough(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(http.MethodDelete, "/pricing", reqOpts{Accept: "application/json"})

	assert.Equal(t, http.StatusForbidden, w.Code, "unsafe methods without a token stop at CSRF")

	r := newBrowserRequest(http.MethodDelete, "/pricing")
	r.Header.Set(DefaultCSRFHeaderName, testCSRF)
	r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRF})
	w = serve(env.handler, r)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestEdgeGateDecidesUnsafeMethodsBeforeCSRF(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	tests := []struct {
		name     string
		path     string
		session  string
		location string
	}{
		{name: "protected post without cookie", path: "/admin/settings", location: "/login?from=%2Fadmin%2Fsettings"},
		{name: "auth-only post with cookie", path: "/login", session: "x", location: "/admin/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// No CSRF cookie, field or header.
			r := newBrowserRequest(http.MethodPost, tt.path)
			if tt.session != "" {
				r.AddCookie(&http.Cookie{Name: "session", Value: tt.session})
			}
			w := serve(env.handler, r)

			assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
			assert.Equal(t, tt.location, w.Header().Get("Location"))
		})
	}
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(http.MethodGet, "/static/css/app.css", reqOpts{})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/css"))
}

func TestHashedFilePattern(t *testing.T) {
	assert.True(t, hashedFilePattern.MatchString("/js/app.3f2a9c1b.js"))
	assert.True(t, hashedFilePattern.MatchString("/css/app.3f2a9c1b.css.map"))
	assert.False(t, hashedFilePattern.MatchString("/css/app.css"))
}

func TestHomeAndPricing(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(http.MethodGet, "/", reqOpts{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Become a partner")
	assert.Contains(t, w.Body.String(), `href="/login"`)

	w = env.do(http.MethodGet, "/pricing", reqOpts{HTMX: true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Body.String(), "<title>Pricing</title>"))
	assert.JSONEq(t, `{"nav:activate":{"path":"/pricing"}}`, w.Header().Get("Hx-Trigger"))
	assert.NotContains(t, w.Body.String(), "<html")
}

func TestSessionStatus(t *testing.T) {
	t.Run("authenticated", func(t *testing.T) {
		env := newTestEnv(t, envOptions{})
		env.identity.EXPECT().CurrentUser(gomock.Any(), testSession).Return(userWithRoles("Admin", "User"), nil)

		w := env.do(http.MethodGet, "/api/session", reqOpts{Session: testSession, Accept: "application/json"})

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{
			"authenticated": true,
			"user": {
				"id": "u-1",
				"email": "ada@example.com",
				"name": "Ada Lovelace",
				"roles": ["Admin", "User"],
				"landing": "/admin/dashboard"
			}
		}`, w.Body.String())
	})

	t.Run("api server unreachable", func(t *testing.T) {
		env := newTestEnv(t, envOptions{})
		env.identity.EXPECT().CurrentUser(gomock.Any(), testSession).
			Return(nil, errors.New("dial tcp: connection refused"))

		w := env.do(http.MethodGet, "/api/session", reqOpts{Session: testSession, Accept: "application/json"})

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestMetricsEndpointMounted(t *testing.T) {
	ctrl := gomock.NewController(t)
	identity := service.NewIdentityService(service.IdentityServiceOptions{Client: mocks.NewMockIdentityClient(ctrl)})
	login := service.NewLoginService(service.LoginServiceOptions{Sessions: mocks.NewMockSessionAPI(ctrl), Identity: identity})

	h, err := NewRouter(RouterServices{
		Identity: identity,
		Login:    login,
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# metrics"))
		}),
		MetricsPath:        "/internal/metrics",
		CompressionEnabled: true,
		TemplateFS:         os.DirFS(TemplatePathFromTest),
		StaticFS:           os.DirFS("../../frontend/static"),
		Logger:             discardLogger(),
	})
	require.NoError(t, err)

	w := serve(h, newBrowserRequest(http.MethodGet, "/internal/metrics"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "# metrics", w.Body.String())

	// Settings routes are not mounted without a settings service.
	r := newBrowserRequest(http.MethodGet, "/admin/settings")
	r.AddCookie(&http.Cookie{Name: "session", Value: testSession})
	w = serve(h, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
