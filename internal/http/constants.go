package httpx

// Page identifiers used in templates and navigation.
const (
	PageHome           = "home"
	PagePricing        = "pricing"
	PageLogin          = "login"
	PageRegister       = "register"
	PageAdminDashboard = "admin-dashboard"
	PageUserDashboard  = "user-dashboard"
	PageSettings       = "settings"
	PageForbidden      = "forbidden"
)

// Template paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)

// Notice levels rendered by the notification partial.
const (
	NoticeError   = "error"
	NoticeSuccess = "success"
	NoticeInfo    = "info"
)

//nolint:gochecknoglobals // static read-only lookup for templates
var contentTemplates = map[string]string{
	PageHome:           "home-content",
	PagePricing:        "pricing-content",
	PageLogin:          "login-content",
	PageRegister:       "register-content",
	PageAdminDashboard: "admin-dashboard-content",
	PageUserDashboard:  "user-dashboard-content",
	PageSettings:       "settings-content",
	PageForbidden:      "forbidden-content",
}

// ContentTemplateMap returns the mapping from CurrentPage to template name.
func ContentTemplateMap() map[string]string { return contentTemplates }

// ContentTemplateFor returns the content template for the given CurrentPage.
// Falls back to home-content for unknown pages.
func ContentTemplateFor(currentPage string) string {
	if name, ok := ContentTemplateMap()[currentPage]; ok {
		return name
	}
	return "home-content"
}
