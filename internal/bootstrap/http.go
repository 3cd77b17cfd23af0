package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/partnerdesk/console/config"
	httpx "github.com/partnerdesk/console/internal/http"
)

// BuildHandler assembles the console router from configuration and services.
func BuildHandler(cfg *config.AppConfig, svcs *ServiceContainer, logger *slog.Logger) (http.Handler, error) {
	if cfg == nil || svcs == nil {
		return nil, errors.New("config and services are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	services := httpx.RouterServices{
		Identity: svcs.Identity,
		Login:    svcs.Login,
		Settings: svcs.Settings,
		Gate: httpx.GateOptions{
			CookieName:   cfg.Gate.SessionCookieName,
			CookieDomain: cfg.HTTP.CookieDomain,
			Rules:        RouteRules(cfg.Gate),
			Excluded:     cfg.Gate.ExcludedPrefixes,
			Deferred:     cfg.Gate.DeferredRender,
		},
		CompressionEnabled: cfg.HTTP.CompressionEnabled,
		CompressionLevel:   cfg.HTTP.CompressionLevel,
		Metrics:            svcs.Metrics,
		Readiness:          svcs.Readiness,
		IsDev:              cfg.IsDev,
		Logger:             logger,
	}
	if cfg.Observability.Metrics.IsEnabled() {
		services.MetricsHandler = svcs.MetricsHandler()
		services.MetricsPath = cfg.Observability.Metrics.Path
	}
	if cfg.HTTP.CompressionEnabled {
		logger.Info("HTTP compression enabled", "level", cfg.HTTP.CompressionLevel)
	}

	return httpx.NewRouter(services)
}

// NewServer returns an http.Server with the console's timeouts.
func NewServer(addr string, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// Serve runs server on ln until ctx is canceled or SIGINT/SIGTERM arrives, then
// shuts down gracefully.
func Serve(ctx context.Context, server *http.Server, ln net.Listener, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", ln.Addr().String())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	return ShutdownHTTPServer(ShutdownConfig{Server: server, Logger: logger})
}

// ShutdownConfig contains dependencies for HTTP server shutdown.
type ShutdownConfig struct {
	Server  *http.Server
	Timeout time.Duration
	Logger  *slog.Logger
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(cfg ShutdownConfig) error {
	if cfg.Server == nil {
		return nil
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("HTTP server stopped")
	}
	return nil
}

// Run connects infrastructure, builds the services and serves until shutdown.
func Run(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) error {
	deps := &ServiceDeps{Config: cfg, Logger: logger}
	if cfg.Cache.Backend == config.CacheBackendRedis {
		client, err := ConnectRedis(ctx, cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer func() {
			if cerr := client.Close(); cerr != nil {
				logger.ErrorContext(ctx, "close redis failed", "error", cerr)
			}
		}()
		deps.RedisClient = client
	}

	svcs, err := NewServices(deps)
	if err != nil {
		return err
	}
	handler, err := BuildHandler(cfg, svcs, logger)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.HTTP.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.HTTP.Addr, err)
	}
	return Serve(ctx, NewServer(cfg.HTTP.Addr, handler), ln, logger)
}
