package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/partnerdesk/console/internal/domain/auth"
	apperrors "github.com/partnerdesk/console/internal/errors"
	"github.com/partnerdesk/console/internal/http/validation"
	"github.com/partnerdesk/console/internal/observability/metrics"
	"github.com/partnerdesk/console/internal/ports"
	"github.com/partnerdesk/console/internal/service"
)

// Login form messages. Each failed submission shows exactly one of these.
const (
	msgNoRole             = "Your account has no access to this console. Contact an administrator."
	msgInvalidCredentials = "Email or password is incorrect."
	msgSignInUnavailable  = "Sign-in is unavailable right now. Please try again shortly."
	msgFixBelow           = "Please fix the errors below."
)

// LoginFlow is what the auth handlers need from the login service.
type LoginFlow interface {
	Login(ctx context.Context, in service.LoginInput) (*service.LoginResult, error)
	Logout(ctx context.Context, session string) error
}

var _ LoginFlow = (*service.LoginService)(nil)

// AuthHandlers provides HTTP handlers for sign-in and sign-out.
type AuthHandlers struct {
	Svc          LoginFlow
	T            *TemplateRenderer
	Validator    *validation.Validator
	CookieName   string
	CookieDomain string
	LoginPath    string
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *AuthHandlers) cookieName() string {
	if h.CookieName == "" {
		return "session"
	}
	return h.CookieName
}

func (h *AuthHandlers) loginPath() string {
	if h.LoginPath == "" {
		return "/login"
	}
	return h.LoginPath
}

// LoginPage renders the sign-in form.
// GET /login?from=<optional>.
func (h *AuthHandlers) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, loginView{From: safeRedirectPath(r.URL.Query().Get("from"))})
}

// LoginSubmit signs the user in and sends them to their landing screen. Every
// failure re-renders the form with a single notice and no navigation.
// POST /login.
func (h *AuthHandlers) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, loginView{Notice: msgFixBelow})
		return
	}
	creds := ports.Credentials{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
	view := loginView{Email: creds.Email, From: safeRedirectPath(r.PostFormValue("from"))}

	if h.Validator != nil {
		if errs := validation.FieldErrors(h.Validator.Struct(creds)); len(errs) > 0 {
			view.Errors = errs
			view.Notice = msgFixBelow
			h.renderLogin(w, r, view)
			return
		}
	}

	res, err := h.Svc.Login(r.Context(), service.LoginInput{Credentials: creds, From: view.From})
	if err != nil {
		view.Notice = h.loginFailureMessage(r, err)
		h.renderLogin(w, r, view)
		return
	}

	h.relaySession(w, r, res.Grant)
	h.Metrics.ObserveLanding(res.Landing.Role.String())
	h.logger().InfoContext(r.Context(), "user signed in",
		slog.String("user_id", res.User.ID),
		slog.String("role", res.Landing.Role.String()),
		slog.String("landing", res.Landing.Path),
	)
	navigate(w, r, res.Landing.Path)
}

func (h *AuthHandlers) loginFailureMessage(r *http.Request, err error) string {
	switch {
	case apperrors.IsNoRole(err):
		return msgNoRole
	case apperrors.IsInvalidCredentials(err), apperrors.IsUnauthenticated(err):
		return msgInvalidCredentials
	default:
		h.logger().ErrorContext(r.Context(), "login failed", slog.Any("error", err))
		return msgSignInUnavailable
	}
}

// Logout ends the session on the API server, clears the cookie and returns to sign-in.
// POST /logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if session := SessionCookie(r, h.cookieName()); session != "" {
		if err := h.Svc.Logout(r.Context(), session); err != nil {
			h.logger().WarnContext(r.Context(), "logout failed", "error", err)
		}
	}
	h.clearCookie(w, r, h.cookieName())
	navigate(w, r, h.loginPath())
}

// RegisterPage renders the static page pointing at the API server's registration flow.
// GET /register.
func (h *AuthHandlers) RegisterPage(w http.ResponseWriter, r *http.Request) {
	data := basePageData(r, PageMeta{Title: "Create an account", CurrentPage: PageRegister})
	if err := h.T.Render(w, r, data); canFallBack(err) {
		http.Error(w, "Unable to render page.", http.StatusInternalServerError)
	}
}

type loginView struct {
	Email  string
	From   string
	Notice string
	Errors map[string]string
}

func (h *AuthHandlers) renderLogin(w http.ResponseWriter, r *http.Request, v loginView) {
	b := NewTemplateData(r, PageMeta{Title: "Sign in", CurrentPage: PageLogin}).
		With("Email", v.Email).
		With("From", v.From).
		WithFieldErrors(v.Errors).
		WithNotice(NoticeError, v.Notice)
	// 200 so htmx swaps the re-rendered form in place.
	if err := h.T.Render(w, r, b.Build()); canFallBack(err) {
		http.Error(w, "Unable to render page.", http.StatusInternalServerError)
	}
}

// relaySession forwards the API server's Set-Cookie headers. When the server sent
// none the console writes its own session cookie from the grant.
func (h *AuthHandlers) relaySession(w http.ResponseWriter, r *http.Request, g ports.SessionGrant) {
	if len(g.SetCookies) > 0 {
		for _, c := range g.SetCookies {
			w.Header().Add("Set-Cookie", c)
		}
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName(),
		Value:    g.Session,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// clearCookie mirrors the attributes used when setting the cookie so browsers drop it.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// safeRedirectPath keeps only same-origin relative paths. Anything else becomes "".
func safeRedirectPath(candidate string) string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || strings.HasPrefix(candidate, "//") || strings.Contains(candidate, `\`) {
		return ""
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return ""
	}
	return candidate
}

// landingFor is shared by handlers that send a signed-in user home.
func landingFor(l LandingResolver, user *domainauth.User) (domainauth.Landing, bool) {
	if l == nil || user == nil {
		return domainauth.Landing{}, false
	}
	landing, err := l.Landing(user)
	if err != nil {
		return domainauth.Landing{}, false
	}
	return landing, true
}
