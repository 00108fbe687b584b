package mid

import (
	"context"
	"net/http"

	"github.com/sass-store/tenancy/app/sdk/auth"
	"github.com/sass-store/tenancy/business/sdk/web"
)

// Authenticate places the principal of the request in the context. It never
// rejects a request, a missing or invalid session makes it anonymous and the
// decision is left to Authorize.
func Authenticate(a *auth.Auth) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			ctx = setPrincipal(ctx, a.Extract(ctx, r))

			return next(ctx, r)
		}

		return h
	}

	return m
}
