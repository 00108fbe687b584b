package mid

import (
	"context"
	"errors"
	"net/http"
	"path"

	"github.com/sass-store/tenancy/app/sdk/errs"
	"github.com/sass-store/tenancy/business/sdk/web"
	"github.com/sass-store/tenancy/foundation/logger"
)

// Errors handles errors coming out of the call chain. The full error is
// logged, the client gets the safe form of it.
func Errors(log *logger.Logger) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			resp := next(ctx, r)
			err := isError(resp)
			if err == nil {
				return resp
			}

			var appErr *errs.Error
			if !errors.As(err, &appErr) {
				appErr = errs.Errorf(errs.Internal, "%s", err)
			}

			log.Error(ctx, "handled error during request",
				"err", err,
				"source_err_file", path.Base(appErr.FileName),
				"source_err_func", path.Base(appErr.FuncName))

			return appErr.Safe()
		}

		return h
	}

	return m
}
