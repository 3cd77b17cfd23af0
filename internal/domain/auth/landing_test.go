package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLanding(t *testing.T) {
	rules := DefaultLandingRules()
	tests := []struct {
		name    string
		raw     []string
		want    string
		wantErr bool
	}{
		{"admin", []string{"Admin"}, "/admin/dashboard", false},
		{"user", []string{"User"}, "/user/dashboard", false},
		{"admin wins regardless of order", []string{"User", "Admin"}, "/admin/dashboard", false},
		{"unknown plus user", []string{"Auditor", "User"}, "/user/dashboard", false},
		{"empty", []string{}, "", true},
		{"nil", nil, "", true},
		{"only unknown", []string{"Auditor"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveLanding(ParseRoles(tt.raw), rules)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNoUsableRole)
				assert.Empty(t, got.Path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Path)
		})
	}
}

func TestResolveLandingFrom(t *testing.T) {
	rules := DefaultLandingRules()
	admin := []Role{RoleAdmin}
	user := []Role{RoleUser}

	tests := []struct {
		name  string
		roles []Role
		from  string
		want  string
	}{
		{"admin returns to admin page", admin, "/admin/settings", "/admin/settings"},
		{"admin ignores user area", admin, "/user/bookings", "/admin/dashboard"},
		{"user returns to user page", user, "/user/bookings", "/user/bookings"},
		{"user cannot be sent to admin", user, "/admin/settings", "/user/dashboard"},
		{"absolute url ignored", admin, "https://evil.example/admin", "/admin/dashboard"},
		{"scheme relative ignored", admin, "//evil.example/admin", "/admin/dashboard"},
		{"backslash ignored", admin, `/admin\..\evil`, "/admin/dashboard"},
		{"empty from", user, "", "/user/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveLandingFrom(tt.roles, tt.from, rules)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Path)
		})
	}

	_, err := ResolveLandingFrom(nil, "/admin", rules)
	assert.ErrorIs(t, err, ErrNoUsableRole)
}
