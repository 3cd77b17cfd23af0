package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	httpassets "github.com/partnerdesk/console/internal/http/assets"
)

// AssetResolver aliases the asset resolver so callers can keep importing httpx.
type AssetResolver = httpassets.AssetResolver

// NewAssetResolverFromFS creates an asset resolver that reads the manifest from an fs.FS implementation.
func NewAssetResolverFromFS(fsys fs.FS, manifestPath string) (*AssetResolver, error) {
	return httpassets.NewAssetResolverFromFS(fsys, manifestPath)
}

// TemplateRenderer renders HTML templates for UI responses.
type TemplateRenderer struct {
	t        *template.Template
	resolver *AssetResolver
	logger   *slog.Logger
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS          // Filesystem containing templates (required)
	Resolver   *AssetResolver // Asset resolver for fingerprinted filenames (optional)
	Logger     *slog.Logger   // Logger for template errors (optional)
}

// NewTemplateRenderer constructs a renderer by parsing templates from the provided config.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	renderer := &TemplateRenderer{resolver: cfg.Resolver, logger: logger}

	var t *template.Template
	var err error
	t, err = template.New("root").Funcs(templateFuncs(&t, renderer.resolver)).ParseFS(cfg.TemplateFS,
		"*.tmpl",
		"pages/*.tmpl",
	)
	if err != nil {
		logger.Error("template parsing failed",
			slog.Any("error", err),
			slog.String("phase", "initialization"),
		)
		return nil, err
	}
	renderer.t = t
	return renderer, nil
}

// errResponseWritten marks failures that happened after the status line went
// out; callers must not write a fallback response on top of them.
var errResponseWritten = errors.New("response already written")

// RenderFull renders the full page (layout + page content) with status.
func (r *TemplateRenderer) RenderFull(w http.ResponseWriter, status int, data any) error {
	return r.renderTemplateStatus(w, "layout", status, data)
}

// RenderPartial renders an htmx swap: a <title> element so htmx updates
// document.title, the content area, and the site header swapped out of band so
// the nav and sign-out form follow the current user.
func (r *TemplateRenderer) RenderPartial(w http.ResponseWriter, req *http.Request, status int, data map[string]any) error {
	var buf bytes.Buffer
	title, _ := data["Title"].(string)
	buf.WriteString("<title>" + html.EscapeString(title) + "</title>")
	for _, name := range []string{"content", "header-oob"} {
		if err := r.t.ExecuteTemplate(&buf, name, data); err != nil {
			r.logTemplateError(name, err)
			return err
		}
	}
	HTMX(w).Trigger("nav:activate", map[string]string{"path": req.URL.Path})
	return r.write(w, "content", status, &buf)
}

// RenderShell renders the neutral loading shell shown while the identity check is pending.
// It carries no user or page data.
func (r *TemplateRenderer) RenderShell(w http.ResponseWriter, data any) error {
	return r.renderTemplateStatus(w, "shell-layout", http.StatusOK, data)
}

// RenderError renders an error page with status using the error template.
func (r *TemplateRenderer) RenderError(w http.ResponseWriter, status int, data any) error {
	return r.renderTemplateStatus(w, "error-layout", status, data)
}

// Render picks the full layout or, for htmx swaps, the partial. It writes status 200.
func (r *TemplateRenderer) Render(w http.ResponseWriter, req *http.Request, data map[string]any) error {
	return r.RenderStatus(w, req, http.StatusOK, data)
}

// RenderStatus is Render with an explicit status code. Nothing is written when
// template execution fails, so callers can still fall back to a plain error.
func (r *TemplateRenderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, data map[string]any) error {
	if !WantsPartial(req) {
		return r.RenderFull(w, status, data)
	}
	return r.RenderPartial(w, req, status, data)
}

// canFallBack reports whether a render error left the response untouched, so a
// fallback body may still be written.
func canFallBack(err error) bool {
	return err != nil && !errors.Is(err, errResponseWritten)
}

func (r *TemplateRenderer) renderTemplateStatus(w http.ResponseWriter, templateName string, status int, data any) error {
	var buf bytes.Buffer
	if err := r.t.ExecuteTemplate(&buf, templateName, data); err != nil {
		r.logTemplateError(templateName, err)
		return err
	}
	return r.write(w, templateName, status, &buf)
}

func (r *TemplateRenderer) write(w http.ResponseWriter, templateName string, status int, buf *bytes.Buffer) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		r.logger.Error("failed to write rendered template",
			slog.String("template", templateName),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: %w", errResponseWritten, err)
	}
	return nil
}

func (r *TemplateRenderer) logTemplateError(templateName string, err error) {
	r.logger.Error("template execution failed",
		slog.String("template", templateName),
		slog.Any("error", err),
	)
}
