package mid

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sass-store/tenancy/business/sdk/web"
	"github.com/sass-store/tenancy/foundation/logger"
)

// Logger writes information about the request to the logs.
func Logger(log *logger.Logger) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			now := time.Now()

			path := r.URL.Path
			if r.URL.RawQuery != "" {
				path = fmt.Sprintf("%s?%s", path, r.URL.RawQuery)
			}

			log.Info(ctx, "request started", "method", r.Method, "path", path, "host", r.Host, "remoteaddr", r.RemoteAddr)

			resp := next(ctx, r)

			status := statusOf(resp)

			log.Info(ctx, "request completed", "method", r.Method, "path", path, "remoteaddr", r.RemoteAddr,
				"statuscode", status, "since", time.Since(now).String())

			return resp
		}

		return h
	}

	return m
}

type httpStatus interface {
	HTTPStatus() int
}

func statusOf(resp web.Encoder) int {
	switch v := resp.(type) {
	case httpStatus:
		return v.HTTPStatus()
	case error:
		return http.StatusInternalServerError
	}

	if resp == nil {
		return http.StatusNoContent
	}

	return http.StatusOK
}
