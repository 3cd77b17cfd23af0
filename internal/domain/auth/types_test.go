package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"Admin", RoleAdmin},
		{"admin", RoleUnknown},
		{"ADMIN", RoleUnknown},
		{" Admin", RoleUnknown},
		{"User", RoleUser},
		{"user", RoleUnknown},
		{"SuperAdmin", RoleUnknown},
		{"", RoleUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRole(tt.in))
		})
	}
}

func TestRole_String(t *testing.T) {
	assert.Equal(t, "Admin", RoleAdmin.String())
	assert.Equal(t, "User", RoleUser.String())
	assert.Equal(t, "Unknown", RoleUnknown.String())
	assert.Equal(t, RoleAdmin, ParseRole(RoleAdmin.String()))
}

func TestUser_IsEmpty(t *testing.T) {
	var nilUser *User
	assert.True(t, nilUser.IsEmpty())
	assert.True(t, (&User{}).IsEmpty())
	assert.True(t, (&User{Name: "only a name"}).IsEmpty())
	assert.False(t, (&User{ID: "u1"}).IsEmpty())
	assert.False(t, (&User{Email: "a@example.com"}).IsEmpty())
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Ada", (&User{ID: "1", Email: "ada@example.com", Name: "Ada"}).DisplayName())
	assert.Equal(t, "ada@example.com", (&User{ID: "1", Email: "ada@example.com"}).DisplayName())
	assert.Equal(t, "1", (&User{ID: "1"}).DisplayName())
}
