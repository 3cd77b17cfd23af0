package httpx

import (
	"log/slog"
	"net/http"
)

// PageHandlers serves the public pages and the role dashboards.
type PageHandlers struct {
	T       *TemplateRenderer
	Landing LandingResolver
	Logger  *slog.Logger
}

func (h *PageHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Home renders the public landing page. GET /.
func (h *PageHandlers) Home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		h.NotFound(w, r)
		return
	}
	h.page(w, r, PageMeta{Title: "Partner Desk", CurrentPage: PageHome})
}

// Pricing renders the public pricing page. GET /pricing.
func (h *PageHandlers) Pricing(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, PageMeta{Title: "Pricing", CurrentPage: PagePricing})
}

// AdminDashboard renders the admin landing screen. GET /admin/dashboard.
func (h *PageHandlers) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, PageMeta{Title: "Admin dashboard", CurrentPage: PageAdminDashboard})
}

// UserDashboard renders the partner landing screen. GET /user/dashboard.
func (h *PageHandlers) UserDashboard(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, PageMeta{Title: "Dashboard", CurrentPage: PageUserDashboard})
}

// Dashboard sends the signed-in user to their role's landing. GET /dashboard.
func (h *PageHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	user, _ := GetUserFromContext(r.Context())
	landing, ok := landingFor(h.Landing, user)
	if !ok {
		h.Forbidden(w, r)
		return
	}
	navigate(w, r, landing.Path)
}

// Forbidden renders the access denied page with status 403.
func (h *PageHandlers) Forbidden(w http.ResponseWriter, r *http.Request) {
	data := basePageData(r, PageMeta{Title: "Access denied", CurrentPage: PageForbidden})
	if err := h.T.RenderStatus(w, r, http.StatusForbidden, data); canFallBack(err) {
		http.Error(w, "Access denied", http.StatusForbidden)
	}
}

// NotFound renders a 404 page for browsers and a JSON error for API clients.
func (h *PageHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	if !IsBrowserRequest(r) {
		WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "message": "Not found"})
		return
	}
	data := map[string]any{"Title": "Not found", "Status": http.StatusNotFound, "Message": "That page does not exist."}
	if err := h.T.RenderError(w, http.StatusNotFound, data); canFallBack(err) {
		h.logger().ErrorContext(r.Context(), "render not found page", "error", err)
		http.NotFound(w, r)
	}
}

func (h *PageHandlers) page(w http.ResponseWriter, r *http.Request, meta PageMeta) {
	if err := h.T.Render(w, r, basePageData(r, meta)); canFallBack(err) {
		h.logger().ErrorContext(r.Context(), "render page", "page", meta.CurrentPage, "error", err)
		http.Error(w, "Unable to render page.", http.StatusInternalServerError)
	}
}
