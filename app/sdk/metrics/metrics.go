// Package metrics constructs the metrics the application will track.
package metrics

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var requestCount atomic.Int64

var (
	requests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tenancy",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of requests handled.",
	})

	failures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tenancy",
		Subsystem: "http",
		Name:      "errors_total",
		Help:      "Total number of requests that ended in an error.",
	})

	panics = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tenancy",
		Subsystem: "http",
		Name:      "panics_total",
		Help:      "Total number of recovered panics.",
	})

	goroutines = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tenancy",
		Subsystem: "runtime",
		Name:      "goroutines",
		Help:      "Number of goroutines, sampled every 100 requests.",
	})

	latency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tenancy",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution of handled requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "status"})

	decisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tenancy",
		Subsystem: "access",
		Name:      "decisions_total",
		Help:      "Access guard decisions broken down by result and deny reason.",
	}, []string{"result", "reason"})

	scopes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tenancy",
		Subsystem: "scope",
		Name:      "transactions_total",
		Help:      "Tenant scoped transactions broken down by outcome.",
	}, []string{"outcome"})

	rateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tenancy",
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Requests rejected by the per tenant rate limiter.",
	})
)

// AddRequests increments the request count by 1 and samples the number of
// goroutines every 100 requests.
func AddRequests(ctx context.Context) int64 {
	requests.Inc()

	n := requestCount.Add(1)
	if n%100 == 0 {
		goroutines.Set(float64(runtime.NumGoroutine()))
	}

	return n
}

// AddErrors increments the error count by 1.
func AddErrors(ctx context.Context) {
	failures.Inc()
}

// AddPanics increments the panic count by 1.
func AddPanics(ctx context.Context) {
	panics.Inc()
}

// ObserveLatency records how long a request took.
func ObserveLatency(ctx context.Context, method string, status string, d time.Duration) {
	latency.WithLabelValues(method, status).Observe(d.Seconds())
}

// AddDecision counts one access decision. reason is empty when allowed.
func AddDecision(ctx context.Context, allowed bool, reason string) {
	result := "denied"
	if allowed {
		result = "allowed"
	}

	decisions.WithLabelValues(result, reason).Inc()
}

// AddScope counts one finished tenant scope.
func AddScope(ctx context.Context, outcome string) {
	scopes.WithLabelValues(outcome).Inc()
}

// AddRateLimited increments the rate limited count by 1.
func AddRateLimited(ctx context.Context) {
	rateLimited.Inc()
}
