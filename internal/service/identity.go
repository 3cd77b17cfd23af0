package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	domainauth "github.com/partnerdesk/console/internal/domain/auth"
	apperrors "github.com/partnerdesk/console/internal/errors"
	"github.com/partnerdesk/console/internal/observability/metrics"
	"github.com/partnerdesk/console/internal/ports"
)

// CurrentUserQuery names the identity query in the cache.
const CurrentUserQuery = "current-user"

// IdentityServiceOptions groups dependencies for IdentityService.
type IdentityServiceOptions struct {
	Client  ports.IdentityClient // Required
	Cache   *QueryCache          // Optional: defaults to an always-revalidate cache with no store
	Metrics *metrics.Metrics     // Optional
}

// IdentityService performs the authoritative current-user check behind the client gate.
type IdentityService struct {
	client  ports.IdentityClient
	cache   *QueryCache
	metrics *metrics.Metrics
}

// NewIdentityService constructs an IdentityService. It panics if Client is nil.
func NewIdentityService(opts IdentityServiceOptions) *IdentityService {
	if opts.Client == nil {
		panic("identity client is required")
	}
	cache := opts.Cache
	if cache == nil {
		cache = NewQueryCache(QueryCacheOptions{Metrics: opts.Metrics})
	}
	return &IdentityService{client: opts.Client, cache: cache, metrics: opts.Metrics}
}

// CheckResult is the terminal outcome of one identity check.
type CheckResult struct {
	State domainauth.GateState
	User  *domainauth.User
}

// Authenticated reports whether the check admitted a user.
func (r CheckResult) Authenticated() bool {
	return r.State == domainauth.GateAuthenticated
}

// Check resolves the session to a terminal gate state. It never retries and
// fails closed: the returned state is GateUnauthenticated whenever err is
// non-nil or the API server reports no user. err carries the cause for logging.
func (s *IdentityService) Check(ctx context.Context, session string) (CheckResult, error) {
	var gate domainauth.Gate

	user, err := s.currentUser(ctx, session)
	state := gate.Resolve(user, err)

	if state != domainauth.GateAuthenticated && session != "" {
		if ierr := s.cache.Invalidate(ctx, CurrentUserQuery, session); ierr != nil {
			slog.WarnContext(ctx, "drop cached identity", "error", ierr)
		}
	}
	return CheckResult{State: state, User: gate.User()}, err
}

// Forget drops any cached identity for session, used on logout.
func (s *IdentityService) Forget(ctx context.Context, session string) error {
	if session == "" {
		return nil
	}
	return s.cache.Invalidate(ctx, CurrentUserQuery, session)
}

func (s *IdentityService) currentUser(ctx context.Context, session string) (*domainauth.User, error) {
	if session == "" {
		return nil, apperrors.Unauthenticated("no session")
	}

	raw, err := s.cache.Fetch(ctx, CurrentUserQuery, session, func(ctx context.Context) ([]byte, error) {
		start := time.Now()
		u, ferr := s.client.CurrentUser(ctx, session)
		if ferr == nil && u.IsEmpty() {
			ferr = apperrors.Unauthenticated("api server reported no current user")
		}
		s.metrics.ObserveIdentityFetch(time.Since(start), ferr)
		if ferr != nil {
			return nil, ferr
		}
		return json.Marshal(u)
	})
	if err != nil {
		return nil, err
	}

	var u domainauth.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "decode cached identity")
	}
	u.Roles = domainauth.ParseRoles(u.RawRoles)
	return &u, nil
}

