package mid

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/sass-store/tenancy/app/sdk/metrics"
	"github.com/sass-store/tenancy/business/sdk/web"
)

// Metrics updates program counters.
func Metrics() web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			now := time.Now()

			resp := next(ctx, r)

			metrics.AddRequests(ctx)

			if isError(resp) != nil {
				metrics.AddErrors(ctx)
			}

			metrics.ObserveLatency(ctx, r.Method, strconv.Itoa(statusOf(resp)), time.Since(now))

			return resp
		}

		return h
	}

	return m
}
