package userapp

import (
	"net/http"

	"github.com/sass-store/tenancy/app/sdk/auth"
	"github.com/sass-store/tenancy/app/sdk/mid"
	"github.com/sass-store/tenancy/business/domain/tenantbus"
	"github.com/sass-store/tenancy/business/domain/userbus"
	"github.com/sass-store/tenancy/business/sdk/web"
	"github.com/sass-store/tenancy/business/types/capability"
	"github.com/sass-store/tenancy/foundation/logger"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log       *logger.Logger
	Auth      *auth.Auth
	TenantBus *tenantbus.Core
	UserBus   *userbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	resolve := mid.ResolveTenant(cfg.TenantBus)
	authen := mid.Authenticate(cfg.Auth)
	staffRead := mid.Authorize(cfg.Log, capability.StaffRead)
	staffManage := mid.Authorize(cfg.Log, capability.StaffManage)

	api := newApp(cfg.UserBus)

	app.HandlerFunc(http.MethodGet, version, "/t/{slug}/users", api.query, resolve, authen, staffRead)
	app.HandlerFunc(http.MethodGet, version, "/t/{slug}/users/{user_id}", api.queryByID, resolve, authen, staffRead)
	app.HandlerFunc(http.MethodPost, version, "/t/{slug}/users", api.create, resolve, authen, staffManage)
	app.HandlerFunc(http.MethodPut, version, "/t/{slug}/users/{user_id}", api.update, resolve, authen, staffManage)

	app.HandlerFunc(http.MethodGet, version, "/me", api.me, authen)
}
