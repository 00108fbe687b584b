package authapp

import (
	"net/http"

	"github.com/sass-store/tenancy/app/sdk/auth"
	"github.com/sass-store/tenancy/business/domain/tenantbus"
	"github.com/sass-store/tenancy/business/domain/userbus"
	"github.com/sass-store/tenancy/business/sdk/web"
	"github.com/sass-store/tenancy/foundation/logger"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log       *logger.Logger
	Auth      *auth.Auth
	ActiveKID string
	UserBus   *userbus.Core
	TenantBus *tenantbus.Core
}

// Routes adds specific routes for this group.
func Routes(app *web.App, cfg Config) {
	const version = "v1"

	api := newApp(cfg)

	app.HandlerFunc(http.MethodPost, version, "/auth/login", api.login)
	app.HandlerFunc(http.MethodPost, version, "/auth/logout", api.logout)
}
