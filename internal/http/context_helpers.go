package httpx

import (
	"context"

	domainauth "github.com/partnerdesk/console/internal/domain/auth"
)

// identityKey is an unexported context key type to avoid collisions across packages.
type identityKey struct{}

type identity struct {
	user    *domainauth.User
	session string
}

// SetUserInContext returns a child context carrying the authenticated user and the
// session value it was resolved from. A nil user returns ctx unchanged.
func SetUserInContext(ctx context.Context, user *domainauth.User, session string) context.Context {
	if user == nil {
		return ctx
	}
	return context.WithValue(ctx, identityKey{}, identity{user: user, session: session})
}

// GetUserFromContext returns the user admitted by the client gate and whether one is present.
func GetUserFromContext(ctx context.Context) (*domainauth.User, bool) {
	if id, ok := ctx.Value(identityKey{}).(identity); ok && id.user != nil {
		return id.user, true
	}
	return nil, false
}

// SessionFromContext returns the session value the current user was resolved from.
func SessionFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(identityKey{}).(identity); ok {
		return id.session
	}
	return ""
}
