package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/partnerdesk/console/internal/domain/auth"
)

func TestTemplateRenderer_EveryPageHasContent(t *testing.T) {
	tr := requireTemplateRenderer(t)
	for page, name := range ContentTemplateMap() {
		require.NotNil(t, tr.t.Lookup(name), "missing template for %s", page)
	}
	for _, name := range []string{"layout", "content", "notice", "header-nav", "header-oob", "shell-layout", "error-layout"} {
		require.NotNil(t, tr.t.Lookup(name), name)
	}
}

func TestTemplateRenderer_RenderStatus(t *testing.T) {
	tr := requireTemplateRenderer(t)
	data := map[string]any{"Title": "Access denied", "PageTitle": "Access denied", "CurrentPage": PageForbidden}

	w := serveFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, tr.RenderStatus(w, r, http.StatusForbidden, data))
	}, newBrowserRequest(http.MethodGet, "/admin"))

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "<!doctype html>")
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
}

func TestTemplateRenderer_PartialEscapesTitle(t *testing.T) {
	tr := requireTemplateRenderer(t)
	r := newBrowserRequest(http.MethodGet, "/pricing")
	r.Header.Set("Hx-Request", "true")

	w := serveFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, tr.Render(w, r, map[string]any{"Title": "<b>Pricing</b>", "CurrentPage": PagePricing}))
	}, r)

	assert.True(t, strings.HasPrefix(w.Body.String(), "<title>&lt;b&gt;Pricing&lt;/b&gt;</title>"))
}

func TestTemplateRenderer_FullAndPartial(t *testing.T) {
	tr := requireTemplateRenderer(t)
	data := map[string]any{
		"Title":           "Dashboard",
		"PageTitle":       "Dashboard",
		"CurrentPage":     PageAdminDashboard,
		"IsAuthenticated": true,
		"User":            userWithRoles("Admin"),
		"CSRFToken":       testCSRF,
	}

	full := serveFunc(func(w http.ResponseWriter, _ *http.Request) {
		require.NoError(t, tr.RenderFull(w, http.StatusOK, data))
	}, newBrowserRequest(http.MethodGet, "/admin/dashboard"))
	assert.Contains(t, full.Body.String(), "<!doctype html>")
	assert.Contains(t, full.Body.String(), `<header id="site-header" class="site-header">`)
	assert.NotContains(t, full.Body.String(), "hx-swap-oob")

	r := newBrowserRequest(http.MethodGet, "/admin/dashboard")
	r.Header.Set("Hx-Request", "true")
	partial := serveFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, tr.RenderPartial(w, r, http.StatusOK, data))
	}, r)
	body := partial.Body.String()
	assert.True(t, strings.HasPrefix(body, "<title>Dashboard</title>"))
	assert.NotContains(t, body, "<!doctype html>")
	assert.Contains(t, body, `hx-swap-oob="true"`)
	assert.Contains(t, body, "Sign out")
	assert.Contains(t, body, `value="`+testCSRF+`"`)
	assert.JSONEq(t, `{"nav:activate":{"path":"/admin/dashboard"}}`, partial.Header().Get("Hx-Trigger"))
}

func TestCanFallBack(t *testing.T) {
	assert.False(t, canFallBack(nil))
	assert.True(t, canFallBack(errors.New("template: no such field")))
	assert.False(t, canFallBack(fmt.Errorf("%w: %w", errResponseWritten, errors.New("broken pipe"))))
}

func TestTemplateRenderer_NoticeIsSingle(t *testing.T) {
	tr := requireTemplateRenderer(t)
	r := newBrowserRequest(http.MethodGet, "/login")
	r.Header.Set("Hx-Request", "true")
	data := NewTemplateData(r, PageMeta{Title: "Sign in", CurrentPage: PageLogin}).
		WithNotice(NoticeError, "alpha notice").
		WithNotice(NoticeError, "beta notice").
		Build()

	w := serveFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, tr.Render(w, r, data))
	}, r)

	assert.Equal(t, 1, strings.Count(w.Body.String(), "data-notice"))
	assert.Contains(t, w.Body.String(), "beta notice")
	assert.NotContains(t, w.Body.String(), "alpha notice")
}

func TestTemplateRenderer_BadTemplatesFail(t *testing.T) {
	_, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: fstest.MapFS{"layout.tmpl": {Data: []byte(`{{define "layout"}}{{.Broken`)}},
		Logger:     discardLogger(),
	})
	require.Error(t, err)
}

func TestHeaderShowsRoleLinks(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.identity.EXPECT().CurrentUser(gomock.Any(), testSession).Return(userWithRoles("User"), nil)

	w := env.do(http.MethodGet, "/user/dashboard", reqOpts{Session: testSession})

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Welcome back, Ada Lovelace.")
	assert.Contains(t, body, `href="/user/dashboard"`)
	assert.NotContains(t, body, `href="/admin/settings"`)
	assert.Contains(t, body, "Sign out")
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	_, ok := GetUserFromContext(ctx)
	assert.False(t, ok)
	assert.Empty(t, SessionFromContext(ctx))

	assert.Equal(t, ctx, SetUserInContext(ctx, nil, "tok"))

	u := &domainauth.User{ID: "u-1"}
	ctx = SetUserInContext(ctx, u, "tok")
	got, ok := GetUserFromContext(ctx)
	require.True(t, ok)
	assert.Same(t, u, got)
	assert.Equal(t, "tok", SessionFromContext(ctx))
}

func TestTemplateData(t *testing.T) {
	r := newBrowserRequest(http.MethodGet, "/")
	r = r.WithContext(SetUserInContext(r.Context(), &domainauth.User{ID: "u-1"}, "tok"))

	data := NewTemplateData(r, PageMeta{Title: "Home", CurrentPage: PageHome}).
		WithFieldErrors(nil).
		WithNotice(NoticeInfo, "hello").
		WithNotice(NoticeInfo, "").
		With("Extra", 1).
		Build()

	assert.Equal(t, "Home", data["PageTitle"])
	assert.Equal(t, true, data["IsAuthenticated"])
	assert.NotContains(t, data, "Errors")
	assert.NotContains(t, data, "Notice")
	assert.Equal(t, 1, data["Extra"])
}

func serveFunc(fn http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	return serve(fn, r)
}
