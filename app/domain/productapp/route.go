package productapp

import (
	"net/http"

	"github.com/sass-store/tenancy/app/sdk/auth"
	"github.com/sass-store/tenancy/app/sdk/mid"
	"github.com/sass-store/tenancy/business/domain/productbus"
	"github.com/sass-store/tenancy/business/domain/tenantbus"
	"github.com/sass-store/tenancy/business/sdk/scope"
	"github.com/sass-store/tenancy/business/sdk/web"
	"github.com/sass-store/tenancy/business/types/capability"
	"github.com/sass-store/tenancy/foundation/logger"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log         *logger.Logger
	Auth        *auth.Auth
	TenantBus   *tenantbus.Core
	ProductBus  *productbus.Core
	Runner      *scope.Runner
	RateLimiter *mid.RateLimiter
}

// Routes adds specific routes for this group. Each route is registered in
// the path form and in the subdomain form.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	api := newApp(cfg.ProductBus)

	chain := func(c capability.Capability) []web.MidFunc {
		return []web.MidFunc{
			mid.ResolveTenant(cfg.TenantBus),
			mid.RateLimit(cfg.RateLimiter),
			mid.Authenticate(cfg.Auth),
			mid.Authorize(cfg.Log, c),
			mid.TenantTransaction(cfg.Runner),
		}
	}

	for _, prefix := range []string{"/t/{slug}", ""} {
		app.HandlerFunc(http.MethodGet, version, prefix+"/products", api.query, chain(capability.ProductsRead)...)
		app.HandlerFunc(http.MethodGet, version, prefix+"/products/{product_id}", api.queryByID, chain(capability.ProductsRead)...)
		app.HandlerFunc(http.MethodPost, version, prefix+"/products", api.create, chain(capability.ProductsWrite)...)
		app.HandlerFunc(http.MethodPut, version, prefix+"/products/{product_id}", api.update, chain(capability.ProductsWrite)...)
		app.HandlerFunc(http.MethodDelete, version, prefix+"/products/{product_id}", api.delete, chain(capability.ProductsDelete)...)
	}
}
