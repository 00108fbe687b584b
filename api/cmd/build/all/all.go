// Package all binds all the routes into the specified app.
package all

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/app/domain/authapp"
	"github.com/sass-store/tenancy/app/domain/checkapp"
	"github.com/sass-store/tenancy/app/domain/productapp"
	"github.com/sass-store/tenancy/app/domain/tenantapp"
	"github.com/sass-store/tenancy/app/domain/userapp"
	"github.com/sass-store/tenancy/app/sdk/auth"
	"github.com/sass-store/tenancy/app/sdk/metrics"
	"github.com/sass-store/tenancy/app/sdk/mid"
	"github.com/sass-store/tenancy/app/sdk/mux"
	"github.com/sass-store/tenancy/business/domain/productbus"
	"github.com/sass-store/tenancy/business/domain/productbus/stores/productdb"
	"github.com/sass-store/tenancy/business/domain/tenantbus"
	"github.com/sass-store/tenancy/business/domain/tenantbus/stores/tenantcache"
	"github.com/sass-store/tenancy/business/domain/tenantbus/stores/tenantdb"
	"github.com/sass-store/tenancy/business/domain/userbus"
	"github.com/sass-store/tenancy/business/domain/userbus/stores/usercache"
	"github.com/sass-store/tenancy/business/domain/userbus/stores/userdb"
	"github.com/sass-store/tenancy/business/sdk/scope"
	"github.com/sass-store/tenancy/business/sdk/web"
)

// Routes constructs the add value which provides the implementation of
// of RouteAdder for specifying what routes to bind to this instance.
func Routes() add {
	return add{}
}

type add struct{}

// Add implements the RouterAdder interface.
func (add) Add(app *web.App, cfg mux.Config) {
	userCacheTTL := cfg.AuthConfig.UserCacheTTL
	if userCacheTTL <= 0 {
		userCacheTTL = time.Minute
	}

	userBus := userbus.NewCore(usercache.NewStore(cfg.Log, userdb.NewStore(cfg.Log, cfg.DB), userCacheTTL))

	tenantStore := tenantcache.NewStore(cfg.Log, tenantdb.NewStore(cfg.Log, cfg.DB), tenantcache.Config{
		Capacity: cfg.TenancyConfig.CacheCapacity,
		TTL:      cfg.TenancyConfig.CacheTTL,
	})
	tenantBus := tenantbus.NewCore(cfg.Log, tenantStore, tenantbus.WithBaseDomain(cfg.TenancyConfig.BaseDomain))

	productBus := productbus.NewCore(cfg.Log, productdb.NewStore(cfg.Log))

	runner := scope.NewRunner(cfg.Log, cfg.DB, scope.WithObserver(func(ctx context.Context, _ uuid.UUID, outcome scope.Outcome) {
		metrics.AddScope(ctx, string(outcome))
	}))

	authClient := auth.New(auth.Config{
		Log:        cfg.Log,
		KeyLookup:  cfg.AuthConfig.KeyLookup,
		Users:      userBus,
		Issuer:     cfg.AuthConfig.Issuer,
		TokenTTL:   cfg.AuthConfig.TokenTTL,
		CookieName: cfg.AuthConfig.CookieName,
	})

	rateLimiter := mid.NewRateLimiter(cfg.Log, cfg.RateLimitConfig.RPS, cfg.RateLimitConfig.Burst)

	checkapp.Routes(app, checkapp.Config{
		Build: cfg.Build,
		Log:   cfg.Log,
		DB:    cfg.DB,
	})

	authapp.Routes(app, authapp.Config{
		Log:       cfg.Log,
		Auth:      authClient,
		ActiveKID: cfg.AuthConfig.ActiveKID,
		UserBus:   userBus,
		TenantBus: tenantBus,
	})

	tenantapp.Routes(app, tenantapp.Config{
		Log:       cfg.Log,
		Auth:      authClient,
		TenantBus: tenantBus,
	})

	productapp.Routes(app, productapp.Config{
		Log:         cfg.Log,
		Auth:        authClient,
		TenantBus:   tenantBus,
		ProductBus:  productBus,
		Runner:      runner,
		RateLimiter: rateLimiter,
	})

	userapp.Routes(app, userapp.Config{
		Log:       cfg.Log,
		Auth:      authClient,
		TenantBus: tenantBus,
		UserBus:   userBus,
	})
}
