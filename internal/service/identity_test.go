package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/partnerdesk/console/internal/adapters/memcache"
	domainauth "github.com/partnerdesk/console/internal/domain/auth"
	apperrors "github.com/partnerdesk/console/internal/errors"
	"github.com/partnerdesk/console/internal/mocks"
)

func adminUser() *domainauth.User {
	return &domainauth.User{
		ID:       "u-1",
		Email:    "admin@example.com",
		RawRoles: []string{"Admin"},
		Roles:    []domainauth.Role{domainauth.RoleAdmin},
	}
}

func newIdentityService(t *testing.T, cache *QueryCache) (*mocks.MockIdentityClient, *IdentityService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	client := mocks.NewMockIdentityClient(ctrl)
	return client, NewIdentityService(IdentityServiceOptions{Client: client, Cache: cache})
}

func TestNewIdentityService_RequiresClient(t *testing.T) {
	assert.Panics(t, func() { NewIdentityService(IdentityServiceOptions{}) })
}

func TestIdentityService_Check_Authenticated(t *testing.T) {
	client, svc := newIdentityService(t, nil)
	client.EXPECT().CurrentUser(gomock.Any(), "tok").Return(adminUser(), nil)

	res, err := svc.Check(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, domainauth.GateAuthenticated, res.State)
	assert.True(t, res.Authenticated())
	require.NotNil(t, res.User)
	assert.Equal(t, "u-1", res.User.ID)
	assert.Equal(t, []domainauth.Role{domainauth.RoleAdmin}, res.User.Roles)
}

func TestIdentityService_Check_FailsClosed(t *testing.T) {
	tests := []struct {
		name string
		user *domainauth.User
		err  error
	}{
		{name: "null user", user: nil, err: nil},
		{name: "empty user", user: &domainauth.User{}, err: nil},
		{name: "denied", user: nil, err: apperrors.Unauthenticated("denied")},
		{name: "transport", user: nil, err: apperrors.Wrap(errors.New("dial"), apperrors.ErrCodeTransport, "me")},
		{name: "upstream", user: nil, err: apperrors.Upstreamf(500, "boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, svc := newIdentityService(t, nil)
			client.EXPECT().CurrentUser(gomock.Any(), "tok").Return(tt.user, tt.err)

			res, err := svc.Check(context.Background(), "tok")
			require.Error(t, err)
			assert.Equal(t, domainauth.GateUnauthenticated, res.State)
			assert.Nil(t, res.User)
		})
	}
}

func TestIdentityService_Check_NoSessionSkipsFetch(t *testing.T) {
	_, svc := newIdentityService(t, nil)

	res, err := svc.Check(context.Background(), "")
	assert.True(t, apperrors.IsUnauthenticated(err))
	assert.Equal(t, domainauth.GateUnauthenticated, res.State)
}

func TestIdentityService_Check_RefetchesEveryRequest(t *testing.T) {
	store := memcache.NewStore(memcache.DefaultConfig())
	cache := NewQueryCache(QueryCacheOptions{Store: store, Policy: StalePolicy{}})
	client, svc := newIdentityService(t, cache)
	client.EXPECT().CurrentUser(gomock.Any(), "tok").Return(adminUser(), nil).Times(2)

	for range 2 {
		res, err := svc.Check(context.Background(), "tok")
		require.NoError(t, err)
		assert.True(t, res.Authenticated())
	}
}

func TestIdentityService_Check_DeniedEvictsCachedIdentity(t *testing.T) {
	store := memcache.NewStore(memcache.DefaultConfig())
	cache := NewQueryCache(QueryCacheOptions{Store: store, Policy: StalePolicy{StaleTime: time.Minute}})
	client, svc := newIdentityService(t, cache)

	client.EXPECT().CurrentUser(gomock.Any(), "tok").Return(adminUser(), nil)
	res, err := svc.Check(context.Background(), "tok")
	require.NoError(t, err)
	require.True(t, res.Authenticated())
	require.Equal(t, 1, store.Len())

	// Served from the cache within the stale window.
	res, err = svc.Check(context.Background(), "tok")
	require.NoError(t, err)
	assert.True(t, res.Authenticated())

	require.NoError(t, svc.Forget(context.Background(), "tok"))
	assert.Equal(t, 0, store.Len())

	client.EXPECT().CurrentUser(gomock.Any(), "tok").Return(nil, apperrors.Unauthenticated("gone"))
	res, err = svc.Check(context.Background(), "tok")
	require.Error(t, err)
	assert.Equal(t, domainauth.GateUnauthenticated, res.State)
	assert.Equal(t, 0, store.Len())
}
