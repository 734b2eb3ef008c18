// Package app wires the Corbit server runtime: config, logging, stores,
// and HTTP routes.
//
// Store selection is environment-driven. Without CORBIT_DATABASE_URL the
// identity and device registries run in memory; without CORBIT_REDIS_ADDR
// sessions and OTP challenges do too. That keeps a bare `go run ./cmd/corbit`
// fully functional for local development.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"corbit/cmd/identity"
	authapi "corbit/cmd/internal/auth/api"
	"corbit/cmd/internal/auth/otp"
	"corbit/cmd/internal/auth/session"
	"corbit/cmd/internal/catalog"
	"corbit/cmd/internal/device"
	"corbit/cmd/security/password"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// App owns the HTTP server wiring and the lifecycle of its backing stores.
type App struct {
	cfg Config
	log Logger

	dbPool *pgxpool.Pool
	rdb    *redis.Client

	auth *authapi.Handler
	cat  *catalog.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	if err := ValidateSecurityConfig(cfg); err != nil {
		return nil, err
	}

	pwd, err := password.FromEnv()
	if err != nil {
		return nil, err
	}
	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}

	ctx := context.Background()

	var (
		dbPool  *pgxpool.Pool
		users   identity.Store
		devices device.Store
	)
	if cfg.DatabaseURL != "" {
		dbPool, err = NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		users, err = identity.NewPostgresStore(dbPool)
		if err != nil {
			dbPool.Close()
			return nil, err
		}
		devices, err = device.NewPostgresStore(dbPool)
		if err != nil {
			dbPool.Close()
			return nil, err
		}
		log.Info("db.enabled.postgres_store")
	} else {
		users = identity.NewMemoryStore()
		devices = device.NewMemoryStore()
		log.Info("db.disabled.inmemory_store")
	}

	var (
		rdb       *redis.Client
		sessStore session.Store
		otpStore  otp.Store
	)
	if cfg.RedisAddr != "" {
		rdb, err = NewRedisClient(ctx, cfg)
		if err != nil {
			if dbPool != nil {
				dbPool.Close()
			}
			return nil, err
		}
		sessStore = session.NewRedisStore(rdb)
		otpStore = otp.NewRedisStore(rdb)
		log.Info("redis.enabled", "addr", cfg.RedisAddr)
	} else {
		sessStore = session.NewMemoryStore()
		otpStore = otp.NewMemoryStore()
		log.Info("redis.disabled.inmemory_store")
	}

	sessions := session.NewManager(sessCfg, sessStore, log)
	engine := otp.NewEngine(otpStore, otp.LogSender{Log: log}, log, 0)
	registry := device.NewRegistry(devices, device.LogGateway{Log: log}, log)

	cat := catalog.NewMemoryStore()
	if cfg.SeedDemoData {
		if err := seedDemo(ctx, users, cat, pwd, log); err != nil {
			return nil, err
		}
	}

	auth := authapi.NewHandler(log, users, sessions, engine, registry, cat, pwd)
	catHandler := catalog.NewHandler(cat, users, registry, auth, log)

	return &App{
		cfg:    cfg,
		log:    log,
		dbPool: dbPool,
		rdb:    rdb,
		auth:   auth,
		cat:    catHandler,
	}, nil
}

// Handler builds the full HTTP handler, middleware included.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.auth, a.cat)

	var h http.Handler = mux
	h = WithSecurityHeaders(h)
	h = WithCORS(h, a.cfg)
	h = WithRequestID(h)
	h = WithRequestLogging(h, a.log)
	return h
}

// Run starts the HTTP server and blocks until context cancellation or a
// fatal server error.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: a.cfg.ReadHeaderTimeout,
		ReadTimeout:       a.cfg.ReadTimeout,
		WriteTimeout:      a.cfg.WriteTimeout,
		IdleTimeout:       a.cfg.IdleTimeout,
		MaxHeaderBytes:    a.cfg.MaxHeaderBytes,
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr,
		"db_enabled", a.dbPool != nil, "redis_enabled", a.rdb != nil)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.close()
	a.log.Info("server.stopped")
	return nil
}

func (a *App) close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.log.Error("redis.close.fail", "err", err)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
	}
}
