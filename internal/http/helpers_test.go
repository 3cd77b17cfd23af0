package httpx

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	domainauth "github.com/partnerdesk/console/internal/domain/auth"
	"github.com/partnerdesk/console/internal/http/validation"
	"github.com/partnerdesk/console/internal/mocks"
	"github.com/partnerdesk/console/internal/service"
)

const (
	testSession = "tok-123"
	testCSRF    = "csrf-test-token"
)

// testEnv is the full router backed by real services over mocked API ports.
type testEnv struct {
	identity *mocks.MockIdentityClient
	sessions *mocks.MockSessionAPI
	settings *mocks.MockSettingsAPI
	handler  http.Handler
}

type envOptions struct {
	Deferred bool
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	env := &testEnv{
		identity: mocks.NewMockIdentityClient(ctrl),
		sessions: mocks.NewMockSessionAPI(ctrl),
		settings: mocks.NewMockSettingsAPI(ctrl),
	}

	identity := service.NewIdentityService(service.IdentityServiceOptions{Client: env.identity})
	login := service.NewLoginService(service.LoginServiceOptions{Sessions: env.sessions, Identity: identity})
	settingsSvc := service.NewSettingsService(service.SettingsServiceOptions{
		API:       env.settings,
		Validator: validation.New(),
	})

	h, err := NewRouter(RouterServices{
		Identity:   identity,
		Login:      login,
		Settings:   settingsSvc,
		Gate:       GateOptions{CookieName: "session", Deferred: opts.Deferred},
		TemplateFS: os.DirFS(TemplatePathFromTest),
		StaticFS:   os.DirFS("../../frontend/static"),
		Logger:     discardLogger(),
	})
	require.NoError(t, err)
	env.handler = h
	return env
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// requireTemplateRenderer parses the real templates from the repository.
func requireTemplateRenderer(t *testing.T) *TemplateRenderer {
	t.Helper()
	tr, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: os.DirFS(TemplatePathFromTest),
		Logger:     discardLogger(),
	})
	require.NoError(t, err)
	return tr
}

type reqOpts struct {
	Session string
	HTMX    bool
	Accept  string
	Form    url.Values
}

// do sends a request through the router. Form posts carry a matching CSRF cookie and field.
func (e *testEnv) do(method, target string, o reqOpts) *httptest.ResponseRecorder {
	var body io.Reader
	if o.Form != nil {
		o.Form.Set(DefaultCSRFCookieName, testCSRF)
		body = strings.NewReader(o.Form.Encode())
	}
	r := httptest.NewRequest(method, target, body)
	if o.Form != nil {
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		r.AddCookie(&http.Cookie{Name: DefaultCSRFCookieName, Value: testCSRF})
	}
	accept := o.Accept
	if accept == "" {
		accept = "text/html,application/xhtml+xml"
	}
	r.Header.Set("Accept", accept)
	if o.HTMX {
		r.Header.Set("Hx-Request", "true")
	}
	if o.Session != "" {
		r.AddCookie(&http.Cookie{Name: "session", Value: o.Session})
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}

func userWithRoles(roles ...string) *domainauth.User {
	return &domainauth.User{
		ID:       "u-1",
		Email:    "ada@example.com",
		Name:     "Ada Lovelace",
		RawRoles: roles,
		Roles:    domainauth.ParseRoles(roles),
	}
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
