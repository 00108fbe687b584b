package tenantapp

import (
	"net/http"

	"github.com/sass-store/tenancy/app/sdk/auth"
	"github.com/sass-store/tenancy/app/sdk/mid"
	"github.com/sass-store/tenancy/business/domain/tenantbus"
	"github.com/sass-store/tenancy/business/sdk/web"
	"github.com/sass-store/tenancy/business/types/capability"
	"github.com/sass-store/tenancy/foundation/logger"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log       *logger.Logger
	Auth      *auth.Auth
	TenantBus *tenantbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	resolve := mid.ResolveTenant(cfg.TenantBus)
	authen := mid.Authenticate(cfg.Auth)
	admin := mid.AuthorizeAdmin(cfg.Log)

	api := newApp(cfg.TenantBus)

	app.HandlerFunc(http.MethodGet, version, "/t/{slug}", api.current, resolve, authen, mid.Authorize(cfg.Log, capability.TenantRead))
	app.HandlerFunc(http.MethodPut, version, "/t/{slug}", api.update, resolve, authen, mid.Authorize(cfg.Log, capability.TenantUpdate))

	// Subdomain form, the host names the tenant.
	app.HandlerFunc(http.MethodGet, version, "/tenant", api.current, resolve, authen, mid.Authorize(cfg.Log, capability.TenantRead))
	app.HandlerFunc(http.MethodPut, version, "/tenant", api.update, resolve, authen, mid.Authorize(cfg.Log, capability.TenantUpdate))

	app.HandlerFunc(http.MethodPost, version, "/tenants", api.create, authen, admin)
	app.HandlerFunc(http.MethodPut, version, "/tenants/{tenant_id}/status", api.updateStatus, authen, admin)
}
