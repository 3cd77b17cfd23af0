package auth

import (
	"net/url"
	"strings"
)

// RouteClass is the edge classification of a request path.
type RouteClass int

const (
	RoutePublic RouteClass = iota
	RouteAdminProtected
	RouteAuthOnly
)

func (c RouteClass) String() string {
	switch c {
	case RouteAdminProtected:
		return "admin-protected"
	case RouteAuthOnly:
		return "auth-only"
	case RoutePublic:
		return "public"
	}
	return "public"
}

// RouteRules holds the prefixes used for classification and the edge redirect targets.
type RouteRules struct {
	ProtectedPrefixes []string
	AuthOnlyPrefixes  []string
	LoginPath         string
	SignedInRedirect  string
}

// DefaultRouteRules returns the stock console routing rules.
func DefaultRouteRules() RouteRules {
	return RouteRules{
		ProtectedPrefixes: []string{"/admin", "/dashboard"},
		AuthOnlyPrefixes:  []string{"/login", "/register"},
		LoginPath:         "/login",
		SignedInRedirect:  "/admin/dashboard",
	}
}

// ClassifyPath classifies path by plain string prefix. Protected prefixes win over auth-only ones.
func ClassifyPath(path string, rules RouteRules) RouteClass {
	if hasAnyPrefix(path, rules.ProtectedPrefixes) {
		return RouteAdminProtected
	}
	if hasAnyPrefix(path, rules.AuthOnlyPrefixes) {
		return RouteAuthOnly
	}
	return RoutePublic
}

// EdgeAction is the outcome of an edge decision.
type EdgeAction int

const (
	EdgeAllow EdgeAction = iota
	EdgeRedirect
)

func (a EdgeAction) String() string {
	if a == EdgeRedirect {
		return "redirect"
	}
	return "allow"
}

// EdgeInput is everything the edge gate looks at.
type EdgeInput struct {
	Path       string
	HasSession bool
}

// EdgeDecision is the edge gate's verdict. Location is set only for redirects.
type EdgeDecision struct {
	Class    RouteClass
	Action   EdgeAction
	Location string
}

// DecideEdge applies the cookie-presence routing rules to a request.
// Presence is necessary but not sufficient for authentication; the client
// gate performs the authoritative check.
func DecideEdge(in EdgeInput, rules RouteRules) EdgeDecision {
	class := ClassifyPath(in.Path, rules)
	switch {
	case class == RouteAdminProtected && !in.HasSession:
		return EdgeDecision{Class: class, Action: EdgeRedirect, Location: LoginURL(rules.LoginPath, in.Path)}
	case class == RouteAuthOnly && in.HasSession:
		return EdgeDecision{Class: class, Action: EdgeRedirect, Location: rules.SignedInRedirect}
	default:
		return EdgeDecision{Class: class, Action: EdgeAllow}
	}
}

// LoginURL builds the login redirect carrying the original path as "from".
// An empty from yields the bare login path.
func LoginURL(loginPath, from string) string {
	if from == "" {
		return loginPath
	}
	q := url.Values{}
	q.Set("from", from)
	return loginPath + "?" + q.Encode()
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
