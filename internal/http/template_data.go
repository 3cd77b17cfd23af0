package httpx

import (
	"net/http"
)

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
}

// Notice is a single page-level notification.
type Notice struct {
	Level   string
	Message string
}

// basePageData constructs the common page data map with user context.
func basePageData(r *http.Request, meta PageMeta) map[string]any {
	pageTitle := meta.PageTitle
	if pageTitle == "" {
		pageTitle = meta.Title
	}
	data := map[string]any{
		"Title":           meta.Title,
		"PageTitle":       pageTitle,
		"CurrentPage":     meta.CurrentPage,
		"IsAuthenticated": false,
	}
	if token := GetCSRFToken(r); token != "" {
		data["CSRFToken"] = token
	}
	if user, ok := GetUserFromContext(r.Context()); ok {
		data["User"] = user
		data["IsAuthenticated"] = true
	}
	return data
}

// TemplateDataBuilder provides a fluent API for building template data maps.
type TemplateDataBuilder struct {
	data map[string]any
}

// NewTemplateData creates a new TemplateDataBuilder initialized with basePageData.
func NewTemplateData(r *http.Request, meta PageMeta) *TemplateDataBuilder {
	return &TemplateDataBuilder{data: basePageData(r, meta)}
}

// WithNotice sets the page notification. A later call replaces an earlier one, so a
// page never shows more than one.
func (b *TemplateDataBuilder) WithNotice(level, msg string) *TemplateDataBuilder {
	if msg == "" {
		delete(b.data, "Notice")
		return b
	}
	b.data["Notice"] = Notice{Level: level, Message: msg}
	return b
}

// WithFieldErrors adds field-level validation errors.
func (b *TemplateDataBuilder) WithFieldErrors(errs map[string]string) *TemplateDataBuilder {
	if len(errs) > 0 {
		b.data["Errors"] = errs
	}
	return b
}

// With adds a custom field to the template data.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// Build returns the final template data map.
func (b *TemplateDataBuilder) Build() map[string]any {
	return b.data
}
