package mid

import (
	"context"
	"errors"
	"net/http"

	"github.com/sass-store/tenancy/app/sdk/errs"
	"github.com/sass-store/tenancy/business/domain/tenantbus"
	"github.com/sass-store/tenancy/business/sdk/web"
)

// ResolveTenant maps the request to a tenant from its "/t/{slug}" path
// segment or its subdomain. Unknown tenants end the request with 404.
// Suspended tenants are resolved and flagged, Authorize turns them away.
func ResolveTenant(tenantBus *tenantbus.Core) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			res, err := tenantBus.Resolve(ctx, r.Host, r.URL.Path)
			if err != nil {
				if errors.Is(err, tenantbus.ErrNotFound) {
					return errs.New(errs.NotFound, tenantbus.ErrNotFound)
				}
				return errs.Errorf(errs.Internal, "resolve tenant: %s", err)
			}

			tagTenant(ctx, res)
			ctx = setResolution(ctx, res)

			return next(ctx, r)
		}

		return h
	}

	return m
}
