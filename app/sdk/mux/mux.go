// Package mux provides support to bind domain level routes
// to the application mux.
package mux

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/cors"
	"github.com/sass-store/tenancy/app/sdk/auth"
	"github.com/sass-store/tenancy/app/sdk/mid"
	"github.com/sass-store/tenancy/business/sdk/web"
	"github.com/sass-store/tenancy/foundation/logger"
	"go.opentelemetry.io/otel/trace"
)

// Options represent optional parameters.
type Options struct {
	corsOrigin []string
}

// WithCORS provides configuration options for CORS.
func WithCORS(origins []string) func(opts *Options) {
	return func(opts *Options) {
		opts.corsOrigin = origins
	}
}

// AuthConfig contains auth service specific config.
type AuthConfig struct {
	KeyLookup  auth.KeyLookup
	Issuer     string
	ActiveKID  string
	TokenTTL   time.Duration
	CookieName string

	// UserCacheTTL bounds how long a disabled user keeps a working session.
	UserCacheTTL time.Duration
}

// TenancyConfig contains the tenant resolution settings.
type TenancyConfig struct {
	BaseDomain    string
	CacheTTL      time.Duration
	CacheCapacity int
}

// RateLimitConfig contains the per tenant request budget.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Build           string
	Log             *logger.Logger
	DB              *sqlx.DB
	Tracer          trace.Tracer
	AuthConfig      AuthConfig
	TenancyConfig   TenancyConfig
	RateLimitConfig RateLimitConfig
}

// RouteAdder defines behavior that sets the routes to bind for an instance
// of the service.
type RouteAdder interface {
	Add(app *web.App, cfg Config)
}

// WebAPI constructs a http.Handler with all application routes bound.
func WebAPI(cfg Config, routeAdder RouteAdder, options ...func(opts *Options)) http.Handler {
	app := web.NewApp(
		cfg.Log.Info,
		cfg.Tracer,
		mid.Otel(cfg.Tracer),
		mid.Logger(cfg.Log),
		mid.Errors(cfg.Log),
		mid.Metrics(),
		mid.Panics(),
	)

	var opts Options
	for _, option := range options {
		option(&opts)
	}

	routeAdder.Add(app, cfg)

	if len(opts.corsOrigin) == 0 {
		return app
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   opts.corsOrigin,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           int((24 * time.Hour).Seconds()),
	})

	return c.Handler(app)
}
