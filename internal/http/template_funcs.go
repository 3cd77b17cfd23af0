package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"strings"

	domainauth "github.com/partnerdesk/console/internal/domain/auth"
)

// templateFuncs builds the helper set shared by every template. t is filled in after
// parsing so renderSection can execute sibling templates.
func templateFuncs(t **template.Template, resolver *AssetResolver) template.FuncMap {
	return template.FuncMap{
		"sectionTmpl": ContentTemplateFor,
		"renderSection": func(page string, data any) (template.HTML, error) {
			if t == nil || *t == nil {
				return "", errors.New("template not initialized")
			}
			var buf bytes.Buffer
			if err := (*t).ExecuteTemplate(&buf, ContentTemplateFor(page), data); err != nil {
				return "", err
			}
			// #nosec G203 - rendered by our own html/template set; values were escaped above.
			return template.HTML(buf.String()), nil
		},
		"asset":    resolver.Resolve,
		"contains": strings.Contains,
		"hasRole": func(user *domainauth.User, role string) bool {
			return user != nil && user.HasRole(domainauth.ParseRole(role))
		},
		"toJSON": func(v any) (string, error) {
			b, err := json.Marshal(v)
			if err != nil {
				return "", err
			}
			return string(b), nil
		},
	}
}
