package mid

import (
	"context"
	"net/http"

	"github.com/sass-store/tenancy/app/sdk/errs"
	"github.com/sass-store/tenancy/app/sdk/metrics"
	"github.com/sass-store/tenancy/business/sdk/access"
	"github.com/sass-store/tenancy/business/sdk/web"
	"github.com/sass-store/tenancy/business/types/capability"
	"github.com/sass-store/tenancy/foundation/logger"
)

// Authorize checks the principal may exercise the capability on the
// resolved tenant. It must run after ResolveTenant and Authenticate.
func Authorize(log *logger.Logger, c capability.Capability) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			res, err := GetResolution(ctx)
			if err != nil {
				return errs.Errorf(errs.Internal, "authorize: %s", err)
			}

			p := GetPrincipal(ctx)

			target := access.Target{
				TenantID:  res.Tenant.ID,
				Suspended: res.Suspended,
			}

			d := access.Authorize(p, target, c)
			metrics.AddDecision(ctx, d.Allowed, d.Reason.String())

			if !d.Allowed {
				log.Info(ctx, "access denied", "tenant_id", res.Tenant.ID, "user_id", p.UserID, "capability", c, "reason", d.Reason.String())
				return denied(d)
			}

			return next(ctx, r)
		}

		return h
	}

	return m
}

// AuthorizeAdmin lets only global administrators through.
func AuthorizeAdmin(log *logger.Logger) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			p := GetPrincipal(ctx)

			d := access.AuthorizeAdmin(p)
			metrics.AddDecision(ctx, d.Allowed, d.Reason.String())

			if !d.Allowed {
				log.Info(ctx, "admin access denied", "user_id", p.UserID, "reason", d.Reason.String())
				return denied(d)
			}

			return next(ctx, r)
		}

		return h
	}

	return m
}

func denied(d access.Decision) *errs.Error {
	if d.Reason.Equal(access.Unauthenticated) {
		return errs.New(errs.Unauthenticated, d.Err())
	}

	return errs.New(errs.PermissionDenied, d.Err())
}
