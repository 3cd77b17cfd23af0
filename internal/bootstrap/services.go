package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/partnerdesk/console/config"
	"github.com/partnerdesk/console/internal/adapters/apiclient"
	"github.com/partnerdesk/console/internal/adapters/memcache"
	redisstore "github.com/partnerdesk/console/internal/adapters/redis"
	domainauth "github.com/partnerdesk/console/internal/domain/auth"
	httpx "github.com/partnerdesk/console/internal/http"
	"github.com/partnerdesk/console/internal/http/validation"
	"github.com/partnerdesk/console/internal/observability/metrics"
	"github.com/partnerdesk/console/internal/ports"
	"github.com/partnerdesk/console/internal/service"
)

// ServiceDeps contains the infrastructure the services are built on.
type ServiceDeps struct {
	Config *config.AppConfig
	// RedisClient is required when the cache backend is redis.
	RedisClient redis.UniversalClient
	// HTTPClient overrides the API client's transport (tests).
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// ServiceContainer holds every service the HTTP server and CLI use.
type ServiceContainer struct {
	API       *apiclient.Client
	Cache     *service.QueryCache
	Identity  *service.IdentityService
	Login     *service.LoginService
	Settings  *service.SettingsService
	Metrics   *metrics.Metrics
	Registry  *prometheus.Registry
	Readiness map[string]httpx.ReadinessCheck
}

// NewServices wires the API client, query cache and domain services.
func NewServices(deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return nil, errors.New("service deps with config are required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	api, err := apiclient.NewClient(apiclient.Config{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout,
		CookieName: cfg.Gate.SessionCookieName,
		Identity: apiclient.IdentityPaths{
			ID:    cfg.API.IdentityIDPath,
			Email: cfg.API.IdentityEmailPath,
			Name:  cfg.API.IdentityNamePath,
			Roles: cfg.API.IdentityRolesPath,
		},
		Client: deps.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}

	store, readiness, err := newQueryStore(cfg.Cache, deps.RedisClient)
	if err != nil {
		return nil, err
	}
	cache := service.NewQueryCache(service.QueryCacheOptions{
		Store:   store,
		Policy:  service.StalePolicy{StaleTime: cfg.Cache.StaleTime, EntryTTL: cfg.Cache.EntryTTL},
		Metrics: m,
	})
	policy := cache.Policy()
	logger.Info("query cache configured",
		"backend", string(cfg.Cache.Backend),
		"stale_time", policy.StaleTime,
		"entry_ttl", policy.EntryTTL,
	)

	identity := service.NewIdentityService(service.IdentityServiceOptions{
		Client:  api,
		Cache:   cache,
		Metrics: m,
	})
	login := service.NewLoginService(service.LoginServiceOptions{
		Sessions: api,
		Identity: identity,
		Rules:    LandingRules(cfg.Gate),
	})
	settingsSvc := service.NewSettingsService(service.SettingsServiceOptions{
		API:       api,
		Validator: validation.New(),
	})

	return &ServiceContainer{
		API:       api,
		Cache:     cache,
		Identity:  identity,
		Login:     login,
		Settings:  settingsSvc,
		Metrics:   m,
		Registry:  registry,
		Readiness: readiness,
	}, nil
}

// MetricsHandler serves the container's registry in the Prometheus text format.
func (c *ServiceContainer) MetricsHandler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{Registry: c.Registry})
}

//nolint:ireturn // the store is chosen at runtime.
func newQueryStore(
	cfg config.CacheConfig,
	client redis.UniversalClient,
) (ports.QueryStore, map[string]httpx.ReadinessCheck, error) {
	readiness := map[string]httpx.ReadinessCheck{}
	switch cfg.Backend {
	case config.CacheBackendRedis:
		if client == nil {
			return nil, nil, errors.New("redis cache backend requires a redis client")
		}
		readiness["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		return redisstore.NewQueryStoreWithPrefix(client, cfg.KeyPrefix), readiness, nil
	case config.CacheBackendMemory, "":
		return memcache.NewStore(memcache.Config{Capacity: cfg.Capacity, TTL: cfg.EntryTTL}), readiness, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// RouteRules maps gate configuration onto the edge classification rules.
func RouteRules(g config.GateConfig) domainauth.RouteRules {
	return domainauth.RouteRules{
		ProtectedPrefixes: g.ProtectedPrefixes,
		AuthOnlyPrefixes:  g.AuthOnlyPrefixes,
		LoginPath:         g.LoginPath,
		SignedInRedirect:  g.AdminLanding,
	}
}

// LandingRules maps gate configuration onto post-login landing rules. The admin
// area covers every protected prefix; the user area is the user landing's first
// path segment.
func LandingRules(g config.GateConfig) domainauth.LandingRules {
	rules := domainauth.DefaultLandingRules()
	rules.AdminLanding = g.AdminLanding
	rules.UserLanding = g.UserLanding
	if len(g.ProtectedPrefixes) > 0 {
		rules.AdminAreas = g.ProtectedPrefixes
	}
	if area := firstSegment(g.UserLanding); area != "" {
		rules.UserAreas = []string{area}
	}
	return rules
}

func firstSegment(p string) string {
	if len(p) < 2 || p[0] != '/' {
		return ""
	}
	for i := 1; i < len(p); i++ {
		if p[i] == '/' {
			return p[:i]
		}
	}
	return p
}
