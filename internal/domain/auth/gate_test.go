package auth

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate_InitialState(t *testing.T) {
	var g Gate
	assert.Equal(t, GateChecking, g.State())
	assert.False(t, g.State().Terminal())
	assert.Nil(t, g.User())
}

func TestGate_Resolve(t *testing.T) {
	user := &User{ID: "u1", Roles: []Role{RoleAdmin}}
	tests := []struct {
		name string
		user *User
		err  error
		want GateState
	}{
		{"valid user", user, nil, GateAuthenticated},
		{"nil user", nil, nil, GateUnauthenticated},
		{"empty user", &User{}, nil, GateUnauthenticated},
		{"error", nil, errors.New("401 unauthorized"), GateUnauthenticated},
		{"error with user", user, errors.New("connection reset"), GateUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var g Gate
			assert.Equal(t, tt.want, g.Resolve(tt.user, tt.err))
			assert.Equal(t, tt.want, g.State())
			if tt.want == GateAuthenticated {
				assert.Same(t, tt.user, g.User())
			} else {
				assert.Nil(t, g.User())
			}
		})
	}
}

func TestGate_TerminalStatesAreSticky(t *testing.T) {
	var g Gate
	g.Resolve(nil, errors.New("boom"))
	assert.Equal(t, GateUnauthenticated, g.Resolve(&User{ID: "late"}, nil))
	assert.Nil(t, g.User())

	var ok Gate
	ok.Resolve(&User{ID: "u1"}, nil)
	assert.Equal(t, GateAuthenticated, ok.Resolve(nil, errors.New("late error")))
	assert.Equal(t, "u1", ok.User().ID)
}

func TestGateState_String(t *testing.T) {
	assert.Equal(t, "checking", GateChecking.String())
	assert.Equal(t, "authenticated", GateAuthenticated.String())
	assert.Equal(t, "unauthenticated", GateUnauthenticated.String())
}
