// Package ports defines interfaces (hexagonal ports) for the console's collaborators.
// Implementations live in internal/adapters; orchestration in internal/service.
package ports

import (
	"context"

	domainauth "github.com/partnerdesk/console/internal/domain/auth"
)

// IdentityClient fetches the authoritative current-user record for a session marker.
// Implementations return an Unauthenticated AppError for 401/403 answers and a
// Transport AppError when the server cannot be reached.
type IdentityClient interface {
	CurrentUser(ctx context.Context, session string) (*domainauth.User, error)
}

// Credentials are what the login form submits.
type Credentials struct {
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

// SessionGrant is the outcome of a successful login against the API server.
// SetCookies holds the server's raw Set-Cookie header values, relayed verbatim
// so the API server stays the owner of the session marker.
type SessionGrant struct {
	Session    string
	SetCookies []string
}

// SessionAPI starts and ends sessions on the API server.
type SessionAPI interface {
	Login(ctx context.Context, creds Credentials) (SessionGrant, error)
	Logout(ctx context.Context, session string) error
}
