// Package app wires the client together: HTTP transport with retries and
// a circuit breaker, credential storage, single-flight credential renewal,
// the authenticated gateway, and the per-session sync and booking layers.
package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/arthurpeter/VacationAgent/internal/auth"
	"github.com/arthurpeter/VacationAgent/internal/booking"
	"github.com/arthurpeter/VacationAgent/internal/config"
	"github.com/arthurpeter/VacationAgent/internal/credential"
	"github.com/arthurpeter/VacationAgent/internal/sessionsync"
	"github.com/arthurpeter/VacationAgent/internal/travelapi"
	"github.com/arthurpeter/VacationAgent/pkg/httpclient"
	"github.com/arthurpeter/VacationAgent/pkg/logger"
)

// App holds the wired client stack.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	store   credential.Store
	redis   *redis.Client
	Auth    *auth.Service
	Gateway *auth.Gateway
	Travel  *travelapi.Client

	metricsServer *http.Server

	// SessionExpired is closed the first time the authenticated session
	// terminates; the owner of the app watches it to drop back to login.
	SessionExpired <-chan struct{}
	expired        chan struct{}
}

// New wires all dependencies from configuration.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	client := httpclient.New(httpclient.Config{
		Timeout:      cfg.APITimeout,
		MaxRetries:   cfg.HTTPMaxRetries,
		RetryWaitMin: cfg.HTTPRetryWaitMin,
		RetryWaitMax: cfg.HTTPRetryWaitMax,
		Jar:          jar,
	})

	var doer auth.HTTPDoer = client
	if cfg.BreakerEnabled {
		doer = httpclient.NewCircuitBreakerClient(client, httpclient.CircuitBreakerConfig{
			Name:         "travel-backend",
			MaxRequests:  cfg.BreakerMaxRequests,
			Interval:     cfg.BreakerInterval,
			Timeout:      cfg.BreakerTimeout,
			FailureRatio: cfg.BreakerFailureRatio,
			MinRequests:  cfg.BreakerMinRequests,
		}, log)
	}

	app := &App{
		cfg:     cfg,
		logger:  log,
		expired: make(chan struct{}),
	}
	app.SessionExpired = app.expired

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return nil, err
		}
		app.redis = rdb
		app.store = credential.NewRedisStore(rdb, cfg.CredentialTTL)
		log.Info("credential store backed by redis", slog.String("addr", cfg.RedisAddr))
	} else {
		app.store = credential.NewMemoryStore()
	}

	coordinator := auth.NewCoordinator(app.store, doer, cfg.APIBaseURL, log)
	app.Gateway = auth.NewGateway(app.store, coordinator, doer, cfg.APIBaseURL, log, app.onTerminate)
	app.Auth = auth.NewService(app.store, doer, cfg.APIBaseURL, log)
	app.Travel = travelapi.New(app.Gateway, log)

	if cfg.MetricsListenOn != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		app.metricsServer = &http.Server{
			Addr:              cfg.MetricsListenOn,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := app.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", slog.String("error", err.Error()))
			}
		}()
	}

	return app, nil
}

// NewSyncEngine creates the write-through sync engine for one session and
// performs the initial local-first load. A failed load is reported but
// leaves a usable engine with local defaults.
func (a *App) NewSyncEngine(ctx context.Context, sessionID int) (*sessionsync.Engine, error) {
	engine := sessionsync.New(ctx, a.Travel, sessionID, sessionsync.Config{
		Quiet:           a.cfg.SyncQuietPeriod,
		WritesPerSecond: a.cfg.SyncWritesPerSecond,
		WriteBurst:      a.cfg.SyncWriteBurst,
	}, logger.WithSession(a.logger, sessionID))
	err := engine.Load(ctx)
	return engine, err
}

// NewOrchestrator creates the booking orchestrator for one session.
func (a *App) NewOrchestrator(sessionID int) *booking.Orchestrator {
	return booking.New(a.Travel, sessionID, logger.WithSession(a.logger, sessionID))
}

// onTerminate runs when the authenticated session ends for good, after the
// credential store is already cleared.
func (a *App) onTerminate(reason string) {
	a.logger.Warn("authenticated session terminated", slog.String("reason", reason))
	select {
	case <-a.expired:
	default:
		close(a.expired)
	}
}

// Close releases app-held resources.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.metricsServer != nil {
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
