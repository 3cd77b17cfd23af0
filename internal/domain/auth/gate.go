package auth

// GateState is the client gate's state.
type GateState int

const (
	GateChecking GateState = iota
	GateAuthenticated
	GateUnauthenticated
)

func (s GateState) String() string {
	switch s {
	case GateChecking:
		return "checking"
	case GateAuthenticated:
		return "authenticated"
	case GateUnauthenticated:
		return "unauthenticated"
	}
	return "checking"
}

// Terminal reports whether s is a resolved state.
func (s GateState) Terminal() bool { return s != GateChecking }

// Gate tracks one authoritative identity check. The zero value is a gate in GateChecking.
// A gate is created per request; it is not shared.
type Gate struct {
	state GateState
	user  *User
}

// State returns the current state.
func (g *Gate) State() GateState { return g.state }

// User returns the authenticated user, or nil unless State is GateAuthenticated.
func (g *Gate) User() *User {
	if g.state != GateAuthenticated {
		return nil
	}
	return g.user
}

// Resolve performs the single transition out of GateChecking.
// Any error, or a nil/empty user, resolves to GateUnauthenticated; transport
// failures are not distinguished from denials. Once terminal, later calls
// return the existing state unchanged.
func (g *Gate) Resolve(user *User, err error) GateState {
	if g.state.Terminal() {
		return g.state
	}
	if err != nil || user.IsEmpty() {
		g.state = GateUnauthenticated
		return g.state
	}
	g.state = GateAuthenticated
	g.user = user
	return g.state
}
