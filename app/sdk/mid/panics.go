package mid

import (
	"context"
	"net/http"
	"runtime/debug"

	"github.com/sass-store/tenancy/app/sdk/errs"
	"github.com/sass-store/tenancy/app/sdk/metrics"
	"github.com/sass-store/tenancy/business/sdk/web"
)

// Panics turns a panic below it into an internal error carrying the route
// and the stack. The stack is logged by Errors and never sent to the client.
// A tenant transaction open at the time of the panic has already been rolled
// back by the scope runner before recovery reaches this point.
func Panics() web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) (resp web.Encoder) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}

				metrics.AddPanics(ctx)
				resp = errs.Errorf(errs.InternalOnlyLog, "PANIC %s %s [%v] TRACE[%s]", r.Method, r.URL.Path, rec, debug.Stack())
			}()

			return next(ctx, r)
		}

		return h
	}

	return m
}
