package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainauth "github.com/partnerdesk/console/internal/domain/auth"
	apperrors "github.com/partnerdesk/console/internal/errors"
	"github.com/partnerdesk/console/internal/ports"
)

// LoginServiceOptions groups dependencies for LoginService.
type LoginServiceOptions struct {
	Sessions ports.SessionAPI // Required
	Identity *IdentityService // Required
	Rules    domainauth.LandingRules
}

// LoginService signs users in against the API server and picks where they land.
type LoginService struct {
	sessions ports.SessionAPI
	identity *IdentityService
	rules    domainauth.LandingRules
}

// NewLoginService constructs a LoginService. It panics if a required dependency is nil.
func NewLoginService(opts LoginServiceOptions) *LoginService {
	if opts.Sessions == nil {
		panic("session api is required")
	}
	if opts.Identity == nil {
		panic("identity service is required")
	}
	rules := opts.Rules
	if rules.AdminLanding == "" || rules.UserLanding == "" {
		rules = domainauth.DefaultLandingRules()
	}
	return &LoginService{sessions: opts.Sessions, identity: opts.Identity, rules: rules}
}

// LoginInput is a submitted login form.
type LoginInput struct {
	Credentials ports.Credentials
	// From is the page the user was bounced from, if any.
	From string
}

// LoginResult is a completed sign-in.
type LoginResult struct {
	Grant   ports.SessionGrant
	User    *domainauth.User
	Landing domainauth.Landing
}

// Login authenticates, confirms the new session with an authoritative identity
// fetch, then resolves the landing exactly once. An account with no usable role
// gets a NoRole error and its fresh session is ended on the API server.
func (s *LoginService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	grant, err := s.sessions.Login(ctx, in.Credentials)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	check, err := s.identity.Check(ctx, grant.Session)
	if !check.Authenticated() {
		if err == nil {
			err = apperrors.Unauthenticated("api server did not confirm the new session")
		}
		return nil, fmt.Errorf("confirm session: %w", err)
	}

	landing, err := domainauth.ResolveLandingFrom(check.User.Roles, in.From, s.rules)
	if errors.Is(err, domainauth.ErrNoUsableRole) {
		s.endSession(ctx, grant.Session)
		return nil, apperrors.NoRole("your account has no role that can use this console")
	}
	if err != nil {
		return nil, fmt.Errorf("resolve landing: %w", err)
	}

	return &LoginResult{Grant: grant, User: check.User, Landing: landing}, nil
}

// Logout ends session on the API server and drops its cached identity.
func (s *LoginService) Logout(ctx context.Context, session string) error {
	if err := s.identity.Forget(ctx, session); err != nil {
		slog.WarnContext(ctx, "drop cached identity on logout", "error", err)
	}
	if err := s.sessions.Logout(ctx, session); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Landing resolves where an already signed-in user belongs.
func (s *LoginService) Landing(user *domainauth.User) (domainauth.Landing, error) {
	if user == nil {
		return domainauth.Landing{}, domainauth.ErrNoUsableRole
	}
	return domainauth.ResolveLanding(user.Roles, s.rules)
}

// Rules returns the landing rules in effect.
func (s *LoginService) Rules() domainauth.LandingRules { return s.rules }

func (s *LoginService) endSession(ctx context.Context, session string) {
	if err := s.Logout(ctx, session); err != nil {
		slog.WarnContext(ctx, "end session for account without role", "error", err)
	}
}
