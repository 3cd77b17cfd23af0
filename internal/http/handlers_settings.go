package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/partnerdesk/console/internal/domain/settings"
	apperrors "github.com/partnerdesk/console/internal/errors"
	"github.com/partnerdesk/console/internal/http/validation"
	"github.com/partnerdesk/console/internal/service"
)

// SettingsFlow is what the settings screen needs from the settings service.
type SettingsFlow interface {
	Load(ctx context.Context, session string) (*service.SettingsView, error)
	Update(ctx context.Context, session string, posted []settings.Entry) (*service.SettingsView, error)
}

var _ SettingsFlow = (*service.SettingsService)(nil)

// SettingsHandlers serves the admin settings screen.
type SettingsHandlers struct {
	Svc       SettingsFlow
	T         *TemplateRenderer
	LoginPath string
	Logger    *slog.Logger
}

func (h *SettingsHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Show renders the normalized settings form. GET /admin/settings.
func (h *SettingsHandlers) Show(w http.ResponseWriter, r *http.Request) {
	view, err := h.Svc.Load(r.Context(), SessionFromContext(r.Context()))
	if err != nil {
		if h.sessionLost(w, r, err) {
			return
		}
		h.logger().ErrorContext(r.Context(), "load settings", "error", err)
		h.render(w, r, settings.Defaults(), func(b *TemplateDataBuilder) {
			b.WithNotice(NoticeError, "Settings could not be loaded. Please try again.").With("Unavailable", true)
		})
		return
	}

	h.render(w, r, view.Form, func(b *TemplateDataBuilder) {
		b.WithFieldErrors(problemMessages(view.Problems))
		if len(view.Problems) > 0 {
			b.WithNotice(NoticeInfo, "Some stored values were invalid and have been replaced with defaults.")
		}
	})
}

// Save validates and stores the posted settings. POST /admin/settings.
func (h *SettingsHandlers) Save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		WriteAppError(w, apperrors.Validation("malformed form"))
		return
	}

	view, err := h.Svc.Update(r.Context(), SessionFromContext(r.Context()), postedEntries(r))
	form := settings.Defaults()
	if view != nil {
		form = view.Form
	}

	switch {
	case err == nil:
		h.render(w, r, form, func(b *TemplateDataBuilder) {
			b.WithNotice(NoticeSuccess, "Settings saved.")
		})
	case apperrors.IsValidation(err):
		errs := validation.FieldErrors(err)
		if view != nil && len(view.Problems) > 0 {
			errs = problemMessages(view.Problems)
		}
		if len(errs) == 0 {
			if field := apperrors.GetField(err); field != "" {
				errs = map[string]string{field: err.Error()}
			}
		}
		h.render(w, r, form, func(b *TemplateDataBuilder) {
			b.WithFieldErrors(errs).WithNotice(NoticeError, msgFixBelow)
		})
	case apperrors.IsUnauthenticated(err):
		h.sessionLost(w, r, err)
	default:
		h.logger().ErrorContext(r.Context(), "save settings", "error", err)
		h.render(w, r, form, func(b *TemplateDataBuilder) {
			b.WithNotice(NoticeError, "Settings could not be saved. Please try again.")
		})
	}
}

// sessionLost handles an API answer that the session ended after the gate admitted
// the request.
func (h *SettingsHandlers) sessionLost(w http.ResponseWriter, r *http.Request, err error) bool {
	if !apperrors.IsUnauthenticated(err) {
		return false
	}
	loginPath := h.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}
	navigate(w, r, loginPath)
	return true
}

func (h *SettingsHandlers) render(
	w http.ResponseWriter,
	r *http.Request,
	form settings.Form,
	decorate func(*TemplateDataBuilder),
) {
	b := NewTemplateData(r, PageMeta{Title: "Settings", CurrentPage: PageSettings}).
		With("Form", form).
		With("Keys", settingKeys())
	if decorate != nil {
		decorate(b)
	}
	if err := h.T.Render(w, r, b.Build()); canFallBack(err) {
		http.Error(w, "Unable to render page.", http.StatusInternalServerError)
	}
}

// postedEntries reads the known setting keys from the form. An unchecked
// maintenance checkbox is absent from the post and means false.
func postedEntries(r *http.Request) []settings.Entry {
	var out []settings.Entry
	for _, key := range settingKeys().All() {
		if _, ok := r.PostForm[key]; ok {
			out = append(out, settings.Entry{Key: key, Value: r.PostFormValue(key)})
			continue
		}
		if key == settings.KeyMaintenanceMode {
			out = append(out, settings.Entry{Key: key, Value: "false"})
		}
	}
	return out
}

func problemMessages(problems []settings.FieldError) map[string]string {
	if len(problems) == 0 {
		return nil
	}
	out := make(map[string]string, len(problems))
	for _, p := range problems {
		out[p.Key] = validation.Label(p.Key) + " " + p.Message + "."
	}
	return out
}

// settingFormKeys exposes the setting keys to templates as input names.
type settingFormKeys struct {
	SiteName, SupportEmail, MaintenanceMode, Currency string
	CommissionPercent, CookieDays, PayoutThreshold    string
	LeadHours                                         string
}

func settingKeys() settingFormKeys {
	return settingFormKeys{
		SiteName:          settings.KeySiteName,
		SupportEmail:      settings.KeySupportEmail,
		MaintenanceMode:   settings.KeyMaintenanceMode,
		Currency:          settings.KeyCurrency,
		CommissionPercent: settings.KeyCommissionPercent,
		CookieDays:        settings.KeyCookieDays,
		PayoutThreshold:   settings.KeyPayoutThreshold,
		LeadHours:         settings.KeyLeadHours,
	}
}

// All returns every key in form order.
func (k settingFormKeys) All() []string {
	return []string{
		k.SiteName, k.SupportEmail, k.MaintenanceMode, k.Currency,
		k.CommissionPercent, k.CookieDays, k.PayoutThreshold, k.LeadHours,
	}
}
