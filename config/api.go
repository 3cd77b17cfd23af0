package config

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// APIConfig configures the client for the external API server.
type APIConfig struct {
	// BaseURL is the API server root, e.g. "https://api.example.com/v1".
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:3000"`

	// Timeout bounds every call to the API server.
	Timeout time.Duration `env:"TIMEOUT" envDefault:"5s"`

	// Identity field extraction from the current-user payload (JMESPath).
	IdentityIDPath    string `env:"IDENTITY_ID_PATH"    envDefault:"id"`
	IdentityEmailPath string `env:"IDENTITY_EMAIL_PATH" envDefault:"email"`
	IdentityNamePath  string `env:"IDENTITY_NAME_PATH"  envDefault:"name"`
	IdentityRolesPath string `env:"IDENTITY_ROLES_PATH" envDefault:"roles"`
}

// Sanitize trims values and restores defaults for empty expressions.
func (a *APIConfig) Sanitize() {
	a.BaseURL = strings.TrimRight(strings.TrimSpace(a.BaseURL), "/")
	if a.Timeout <= 0 {
		a.Timeout = 5 * time.Second
	}
	a.IdentityIDPath = defaultIfBlank(a.IdentityIDPath, "id")
	a.IdentityEmailPath = defaultIfBlank(a.IdentityEmailPath, "email")
	a.IdentityNamePath = defaultIfBlank(a.IdentityNamePath, "name")
	a.IdentityRolesPath = defaultIfBlank(a.IdentityRolesPath, "roles")
}

// Validate requires an absolute http(s) base URL.
func (a *APIConfig) Validate() error {
	u, err := url.Parse(a.BaseURL)
	if err != nil || u.Host == "" {
		return errors.New("API_BASE_URL must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("API_BASE_URL must use http or https scheme")
	}
	return nil
}

func defaultIfBlank(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}
