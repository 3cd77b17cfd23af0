package auth

import (
	"errors"
	"net/url"
	"strings"
)

// ErrNoUsableRole is returned when an authenticated identity carries no recognized role.
var ErrNoUsableRole = errors.New("account has no usable role")

// Landing is the post-login destination.
type Landing struct {
	Role Role
	Path string
}

// LandingRules configures landing destinations and the areas a "from" hint may point into.
type LandingRules struct {
	AdminLanding string
	UserLanding  string
	AdminAreas   []string
	UserAreas    []string
}

// DefaultLandingRules returns the stock landing rules.
func DefaultLandingRules() LandingRules {
	return LandingRules{
		AdminLanding: "/admin/dashboard",
		UserLanding:  "/user/dashboard",
		AdminAreas:   []string{"/admin", "/dashboard"},
		UserAreas:    []string{"/user"},
	}
}

// PrimaryRole picks the highest-ranked recognized role, or RoleUnknown.
func PrimaryRole(roles []Role) Role {
	best := RoleUnknown
	for _, r := range roles {
		switch r {
		case RoleAdmin:
			return RoleAdmin
		case RoleUser:
			best = RoleUser
		case RoleUnknown:
		}
	}
	return best
}

// ResolveLanding maps a role set to its landing screen.
// Admin wins over User; no recognized role yields ErrNoUsableRole.
func ResolveLanding(roles []Role, rules LandingRules) (Landing, error) {
	switch r := PrimaryRole(roles); r {
	case RoleAdmin:
		return Landing{Role: r, Path: rules.AdminLanding}, nil
	case RoleUser:
		return Landing{Role: r, Path: rules.UserLanding}, nil
	case RoleUnknown:
		return Landing{}, ErrNoUsableRole
	}
	return Landing{}, ErrNoUsableRole
}

// ResolveLandingFrom is ResolveLanding honoring a "from" hint when it is a safe
// relative path inside the resolved role's own area.
func ResolveLandingFrom(roles []Role, from string, rules LandingRules) (Landing, error) {
	landing, err := ResolveLanding(roles, rules)
	if err != nil {
		return landing, err
	}
	if !isSafeRelative(from) {
		return landing, nil
	}
	areas := rules.UserAreas
	if landing.Role == RoleAdmin {
		areas = rules.AdminAreas
	}
	if hasAnyPrefix(from, areas) {
		landing.Path = from
	}
	return landing, nil
}

func isSafeRelative(p string) bool {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, `\`) {
		return false
	}
	u, err := url.Parse(p)
	if err != nil || u.IsAbs() || u.Host != "" {
		return false
	}
	return true
}
