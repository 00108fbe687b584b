package mid

import (
	"context"
	"errors"
	"net/http"

	"github.com/sass-store/tenancy/app/sdk/errs"
	"github.com/sass-store/tenancy/business/sdk/scope"
	"github.com/sass-store/tenancy/business/sdk/web"
)

// errHandlerFailed carries an error response out of the scope so the
// transaction rolls back while the handler's response is kept.
type errHandlerFailed struct {
	resp web.Encoder
}

func (e errHandlerFailed) Error() string {
	return "handler failed"
}

// TenantTransaction runs the rest of the chain inside a tenant scope for
// the resolved tenant. The handler reaches the scope with GetHandle. An
// error response rolls the transaction back, anything else commits.
func TenantTransaction(runner *scope.Runner) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			tnt, err := GetTenant(ctx)
			if err != nil {
				return errs.Errorf(errs.Internal, "tenant transaction: %s", err)
			}

			var resp web.Encoder

			err = runner.WithTenantContext(ctx, tnt.ID, GetPrincipal(ctx), func(ctx context.Context, h *scope.Handle) error {
				resp = next(setHandle(ctx, h), r)

				if isError(resp) != nil {
					return errHandlerFailed{resp: resp}
				}

				return nil
			})

			if err != nil {
				var hf errHandlerFailed
				if errors.As(err, &hf) {
					return hf.resp
				}
				return errs.Errorf(errs.Internal, "tenant transaction: %s", err)
			}

			return resp
		}

		return h
	}

	return m
}
