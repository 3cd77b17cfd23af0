package httpx

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	apperrors "github.com/partnerdesk/console/internal/errors"
	"github.com/partnerdesk/console/internal/ports"
)

func loginForm(email, password string) url.Values {
	return url.Values{"email": {email}, "password": {password}}
}

func TestLoginSubmit_LandsByRole(t *testing.T) {
	tests := []struct {
		name    string
		roles   []string
		landing string
	}{
		{name: "admin", roles: []string{"Admin"}, landing: "/admin/dashboard"},
		{name: "admin wins over user", roles: []string{"User", "Admin"}, landing: "/admin/dashboard"},
		{name: "user", roles: []string{"User"}, landing: "/user/dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, envOptions{})
			creds := ports.Credentials{Email: "ada@example.com", Password: "s3cret"}
			env.sessions.EXPECT().Login(gomock.Any(), creds).Return(ports.SessionGrant{
				Session:    "fresh",
				SetCookies: []string{"session=fresh; Path=/; HttpOnly"},
			}, nil)
			env.identity.EXPECT().CurrentUser(gomock.Any(), "fresh").Return(userWithRoles(tt.roles...), nil)

			w := env.do(http.MethodPost, "/login", reqOpts{HTMX: true, Form: loginForm(creds.Email, creds.Password)})

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, tt.landing, w.Header().Get("Hx-Redirect"))
			assert.Contains(t, w.Header().Values("Set-Cookie"), "session=fresh; Path=/; HttpOnly")
		})
	}
}

func TestLoginSubmit_WritesOwnCookieWhenServerSendsNone(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.sessions.EXPECT().Login(gomock.Any(), gomock.Any()).Return(ports.SessionGrant{Session: "fresh"}, nil)
	env.identity.EXPECT().CurrentUser(gomock.Any(), "fresh").Return(userWithRoles("User"), nil)

	w := env.do(http.MethodPost, "/login", reqOpts{Form: loginForm("ada@example.com", "pw")})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/user/dashboard", w.Header().Get("Location"))
	c := findCookie(w, "session")
	require.NotNil(t, c)
	assert.Equal(t, "fresh", c.Value)
	assert.True(t, c.HttpOnly)
}

func TestLoginSubmit_HonorsFromInsideRoleArea(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.sessions.EXPECT().Login(gomock.Any(), gomock.Any()).Return(ports.SessionGrant{Session: "fresh"}, nil)
	env.identity.EXPECT().CurrentUser(gomock.Any(), "fresh").Return(userWithRoles("Admin"), nil)

	form := loginForm("ada@example.com", "pw")
	form.Set("from", "/admin/settings")
	w := env.do(http.MethodPost, "/login", reqOpts{HTMX: true, Form: form})

	assert.Equal(t, "/admin/settings", w.Header().Get("Hx-Redirect"))
}

func TestLoginSubmit_IgnoresOffsiteFrom(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.sessions.EXPECT().Login(gomock.Any(), gomock.Any()).Return(ports.SessionGrant{Session: "fresh"}, nil)
	env.identity.EXPECT().CurrentUser(gomock.Any(), "fresh").Return(userWithRoles("Admin"), nil)

	form := loginForm("ada@example.com", "pw")
	form.Set("from", "//evil.example.com/admin")
	w := env.do(http.MethodPost, "/login", reqOpts{HTMX: true, Form: form})

	assert.Equal(t, "/admin/dashboard", w.Header().Get("Hx-Redirect"))
}

func TestLoginSubmit_NoRoleShowsOneNotice(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.sessions.EXPECT().Login(gomock.Any(), gomock.Any()).Return(ports.SessionGrant{
		Session:    "fresh",
		SetCookies: []string{"session=fresh; Path=/"},
	}, nil)
	env.identity.EXPECT().CurrentUser(gomock.Any(), "fresh").Return(userWithRoles(), nil)
	env.sessions.EXPECT().Logout(gomock.Any(), "fresh").Return(nil)

	w := env.do(http.MethodPost, "/login", reqOpts{HTMX: true, Form: loginForm("ada@example.com", "pw")})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Hx-Redirect"))
	assert.Nil(t, findCookie(w, "session"))
	body := w.Body.String()
	assert.Equal(t, 1, strings.Count(body, "data-notice"))
	assert.Contains(t, body, "no access to this console")
	assert.Contains(t, body, `value="ada@example.com"`)
}

func TestLoginSubmit_Failures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{name: "wrong password", err: apperrors.InvalidCredentials("bad password"), message: msgInvalidCredentials},
		{name: "api server down", err: apperrors.Wrap(errors.New("refused"), apperrors.ErrCodeTransport, "login"), message: msgSignInUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, envOptions{})
			env.sessions.EXPECT().Login(gomock.Any(), gomock.Any()).Return(ports.SessionGrant{}, tt.err)

			w := env.do(http.MethodPost, "/login", reqOpts{HTMX: true, Form: loginForm("ada@example.com", "pw")})

			require.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, w.Header().Get("Hx-Redirect"))
			assert.Equal(t, 1, strings.Count(w.Body.String(), "data-notice"))
			assert.Contains(t, w.Body.String(), tt.message)
		})
	}
}

func TestLoginSubmit_ValidationSkipsTheAPI(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(http.MethodPost, "/login", reqOpts{HTMX: true, Form: loginForm("not-an-email", "")})

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, 1, strings.Count(body, "data-notice"))
	assert.Contains(t, body, "Enter a valid email address.")
	assert.Contains(t, body, "Password is required.")
}

func TestLoginSubmit_RequiresCSRFToken(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	r := newBrowserRequest(http.MethodPost, "/login")
	r.Body = http.NoBody
	w := serve(env.handler, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestLoginPage_KeepsSafeFrom(t *testing.T) {
	env := newTestEnv(t, envOptions{})

	w := env.do(http.MethodGet, "/login?from=%2Fadmin%2Fsettings", reqOpts{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="from" value="/admin/settings"`)

	w = env.do(http.MethodGet, "/login?from=https%3A%2F%2Fevil.example.com", reqOpts{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `name="from"`)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.sessions.EXPECT().Logout(gomock.Any(), testSession).Return(nil)

	w := env.do(http.MethodPost, "/logout", reqOpts{Session: testSession, Form: url.Values{}})

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	c := findCookie(w, "session")
	require.NotNil(t, c)
	assert.Equal(t, -1, c.MaxAge)
}

func TestLogout_APIFailureStillClearsCookie(t *testing.T) {
	env := newTestEnv(t, envOptions{})
	env.sessions.EXPECT().Logout(gomock.Any(), testSession).Return(errors.New("boom"))

	w := env.do(http.MethodPost, "/logout", reqOpts{Session: testSession, HTMX: true, Form: url.Values{}})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Hx-Redirect"))
	require.NotNil(t, findCookie(w, "session"))
}

func TestSafeRedirectPath(t *testing.T) {
	tests := map[string]string{
		"/admin/settings":          "/admin/settings",
		"/user/dashboard?tab=1":    "/user/dashboard?tab=1",
		"":                         "",
		"admin":                    "",
		"//evil.example.com":       "",
		"https://evil.example.com": "",
		`/\evil.example.com`:       "",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeRedirectPath(in), in)
	}
}
