package mid

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/app/sdk/errs"
	"github.com/sass-store/tenancy/app/sdk/metrics"
	"github.com/sass-store/tenancy/business/sdk/web"
	"github.com/sass-store/tenancy/foundation/logger"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per tenant.
type RateLimiter struct {
	log      *logger.Logger
	mu       sync.Mutex
	limiters map[uuid.UUID]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewRateLimiter constructs a limiter allowing rps requests per second per
// tenant with the given burst. A non positive rps disables limiting.
func NewRateLimiter(log *logger.Logger, rps float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}

	return &RateLimiter{
		log:      log,
		limiters: make(map[uuid.UUID]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

func (rl *RateLimiter) limiter(tenantID uuid.UUID) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, exists := rl.limiters[tenantID]
	if !exists {
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[tenantID] = l
	}

	return l
}

// RateLimit rejects requests once the resolved tenant used up its budget.
// It must run after ResolveTenant.
func RateLimit(rl *RateLimiter) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			if rl == nil || rl.rate <= 0 {
				return next(ctx, r)
			}

			tnt, err := GetTenant(ctx)
			if err != nil {
				return errs.Errorf(errs.Internal, "rate limit: %s", err)
			}

			if !rl.limiter(tnt.ID).Allow() {
				metrics.AddRateLimited(ctx)
				rl.log.Info(ctx, "rate limit exceeded", "tenant_id", tnt.ID, "slug", tnt.Slug, "path", r.URL.Path)
				return errs.New(errs.ResourceExhausted, errors.New("rate limit exceeded"))
			}

			return next(ctx, r)
		}

		return h
	}

	return m
}
