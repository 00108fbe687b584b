package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/sass-store/tenancy/api/cmd/build/all"
	"github.com/sass-store/tenancy/app/sdk/debug"
	"github.com/sass-store/tenancy/app/sdk/mux"
	"github.com/sass-store/tenancy/business/sdk/rlscheck"
	"github.com/sass-store/tenancy/business/sdk/sqldb"
	"github.com/sass-store/tenancy/foundation/keystore"
	"github.com/sass-store/tenancy/foundation/logger"
	"github.com/sass-store/tenancy/foundation/otel"
	"go.opentelemetry.io/otel/trace"
)

var build = "develop"

func main() {
	var log *logger.Logger

	events := logger.Events{
		Error: func(ctx context.Context, r logger.Record) {
			log.Info(ctx, "******* SEND ALERT *******")
		},
	}

	log = logger.NewWithEvents(os.Stdout, logger.LevelInfo, "TENANCY-API", otel.GetTraceID, events)

	ctx := context.Background()

	if err := run(ctx, log); err != nil {
		log.Error(ctx, "startup", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log.Info(ctx, "starting service", "version", cfg.Version.Build, "GOMAXPROCS", runtime.GOMAXPROCS(0))
	defer log.Info(ctx, "shutdown complete")

	log.Info(ctx, "startup", "config", cfg.String())
	log.BuildInfo(ctx)
	expvar.NewString("build").Set(cfg.Version.Build)

	db, err := openDatabase(ctx, log, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ks := keystore.New()

	n, err := ks.LoadByFileSystem(os.DirFS(cfg.Auth.KeysFolder))
	if err != nil {
		return fmt.Errorf("loading keys: %w", err)
	}

	log.Info(ctx, "startup", "status", "keys loaded", "count", n, "active_kid", cfg.Auth.ActiveKID)

	tracer, teardown, err := startTracing(log, cfg)
	if err != nil {
		return err
	}
	defer teardown(context.Background())

	go func() {
		log.Info(ctx, "startup", "status", "debug router started", "host", cfg.Web.DebugHost)

		if err := http.ListenAndServe(cfg.Web.DebugHost, debug.Mux()); err != nil {
			log.Error(ctx, "shutdown", "status", "debug router closed", "host", cfg.Web.DebugHost, "msg", err)
		}
	}()

	handler := mux.WebAPI(mux.Config{
		Build:  cfg.Version.Build,
		Log:    log,
		DB:     db,
		Tracer: tracer,
		AuthConfig: mux.AuthConfig{
			KeyLookup:    ks,
			Issuer:       cfg.Auth.Issuer,
			ActiveKID:    cfg.Auth.ActiveKID,
			TokenTTL:     cfg.Auth.TokenTTL,
			CookieName:   cfg.Auth.CookieName,
			UserCacheTTL: cfg.Auth.UserCacheTTL,
		},
		TenancyConfig: mux.TenancyConfig{
			BaseDomain:    cfg.Tenancy.BaseDomain,
			CacheTTL:      cfg.Tenancy.CacheTTL,
			CacheCapacity: cfg.Tenancy.CacheCapacity,
		},
		RateLimitConfig: mux.RateLimitConfig{
			RPS:   cfg.RateLimit.RPS,
			Burst: cfg.RateLimit.Burst,
		},
	}, all.Routes(), mux.WithCORS(cfg.Web.CORSAllowedOrigins))

	return serve(ctx, log, cfg, handler)
}

// openDatabase connects the pool and refuses a role that ignores row level
// security, since the tenant policies would silently stop applying.
func openDatabase(ctx context.Context, log *logger.Logger, cfg config) (*sqlx.DB, error) {
	log.Info(ctx, "startup", "status", "initializing database support", "hostport", cfg.DB.Host)

	db, err := sqldb.Open(sqldb.Config{
		User:         cfg.DB.User,
		Password:     cfg.DB.Password,
		Host:         cfg.DB.Host,
		Name:         cfg.DB.Name,
		MaxIdleConns: cfg.DB.MaxIdleConns,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		DisableTLS:   cfg.DB.DisableTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to db: %w", err)
	}

	if err := sqldb.StatusCheck(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("status check: %w", err)
	}

	err = rlscheck.CheckRole(ctx, db)
	switch {
	case errors.Is(err, rlscheck.ErrPrivilegedRole) && cfg.DB.AllowPrivileged:
		log.Warn(ctx, "startup", "status", "row level security is bypassed by the database role", "user", cfg.DB.User)

	case err != nil:
		db.Close()
		return nil, fmt.Errorf("database role: %w", err)
	}

	return db, nil
}

func startTracing(log *logger.Logger, cfg config) (trace.Tracer, func(context.Context), error) {
	provider, teardown, err := otel.InitTracing(log, otel.Config{
		ServiceName: cfg.Tempo.ServiceName,
		Host:        cfg.Tempo.Host,
		ExcludedRoutes: map[string]struct{}{
			"/v1/liveness":  {},
			"/v1/readiness": {},
		},
		Probability: cfg.Tempo.Probability,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("starting tracing: %w", err)
	}

	return provider.Tracer(cfg.Tempo.ServiceName), teardown, nil
}

// serve runs the api until it fails or the process is asked to stop.
func serve(ctx context.Context, log *logger.Logger, cfg config, handler http.Handler) error {
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	api := http.Server{
		Addr:         cfg.Web.APIHost,
		Handler:      handler,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     logger.NewStdLogger(log, logger.LevelError),
	}

	serverErrors := make(chan error, 1)

	go func() {
		log.Info(ctx, "startup", "status", "api router started", "host", api.Addr)
		serverErrors <- api.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Info(ctx, "shutdown", "status", "shutdown started", "signal", sig)
		defer log.Info(ctx, "shutdown", "status", "shutdown complete", "signal", sig)

		ctx, cancel := context.WithTimeout(ctx, cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := api.Shutdown(ctx); err != nil {
			api.Close()
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
	}

	return nil
}
