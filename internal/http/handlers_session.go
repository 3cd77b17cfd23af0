package httpx

import (
	"log/slog"
	"net/http"

	apperrors "github.com/partnerdesk/console/internal/errors"
)

// SessionHandlers reports the authoritative session state as JSON.
type SessionHandlers struct {
	Identity   IdentityChecker
	Landing    LandingResolver
	CookieName string
	Logger     *slog.Logger
}

type sessionUser struct {
	ID      string   `json:"id"`
	Email   string   `json:"email,omitempty"`
	Name    string   `json:"name"`
	Roles   []string `json:"roles"`
	Landing string   `json:"landing,omitempty"`
}

type sessionResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *sessionUser `json:"user,omitempty"`
}

// Status answers whether the session cookie maps to a user on the API server.
// A denied or missing session is 200 with authenticated=false; an unreachable
// API server is 502.
// GET /api/session.
func (h *SessionHandlers) Status(w http.ResponseWriter, r *http.Request) {
	cookieName := h.CookieName
	if cookieName == "" {
		cookieName = "session"
	}
	res, err := h.Identity.Check(r.Context(), SessionCookie(r, cookieName))
	if !res.Authenticated() {
		if err != nil && !apperrors.IsUnauthenticated(err) {
			if h.Logger != nil {
				h.Logger.WarnContext(r.Context(), "session status check failed", "error", err)
			}
			WriteAppError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
		return
	}

	u := res.User
	roles := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		roles = append(roles, role.String())
	}
	out := &sessionUser{ID: u.ID, Email: u.Email, Name: u.DisplayName(), Roles: roles}
	if landing, ok := landingFor(h.Landing, u); ok {
		out.Landing = landing.Path
	}
	WriteJSON(w, http.StatusOK, sessionResponse{Authenticated: true, User: out})
}
