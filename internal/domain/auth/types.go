// Package auth contains domain-level types for route protection, identity and landing.
// It is pure and free of framework/adapter concerns.
package auth

// Role is the closed set of roles the console understands.
// Wire strings from the API are mapped through ParseRole; anything
// unrecognized becomes RoleUnknown so new server-side roles never fall
// through to a privileged branch.
type Role int

const (
	RoleUnknown Role = iota
	RoleAdmin
	RoleUser
)

// String returns the wire form of the role.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleUser:
		return "User"
	case RoleUnknown:
		return "Unknown"
	}
	return "Unknown"
}

// ParseRole maps a wire role string to a Role. Matching is exact: "admin" or
// " Admin" are not the admin role.
func ParseRole(s string) Role {
	switch s {
	case "Admin":
		return RoleAdmin
	case "User":
		return RoleUser
	default:
		return RoleUnknown
	}
}

// ParseRoles maps every wire string, preserving order.
func ParseRoles(raw []string) []Role {
	out := make([]Role, 0, len(raw))
	for _, s := range raw {
		out = append(out, ParseRole(s))
	}
	return out
}

// User is the current-user record returned by the API server.
type User struct {
	ID       string   `json:"id"`
	Email    string   `json:"email,omitempty"`
	Name     string   `json:"name,omitempty"`
	Roles    []Role   `json:"-"`
	RawRoles []string `json:"roles"`
}

// IsEmpty reports whether the record carries no identity at all.
func (u *User) IsEmpty() bool {
	return u == nil || (u.ID == "" && u.Email == "")
}

// HasRole reports membership of r in the user's roles.
func (u *User) HasRole(r Role) bool {
	if u == nil {
		return false
	}
	for _, have := range u.Roles {
		if have == r {
			return true
		}
	}
	return false
}

// DisplayName returns Name, falling back to Email then ID.
func (u *User) DisplayName() string {
	switch {
	case u == nil:
		return ""
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return u.ID
	}
}
