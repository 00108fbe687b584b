package mid

import (
	"context"
	"net/http"

	"github.com/sass-store/tenancy/business/domain/tenantbus"
	"github.com/sass-store/tenancy/business/sdk/web"
	"github.com/sass-store/tenancy/foundation/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Otel makes the tracer and trace id available to the rest of the request
// and records the host the tenant will be resolved from.
func Otel(tracer trace.Tracer) web.MidFunc {
	m := func(next web.HandlerFunc) web.HandlerFunc {
		h := func(ctx context.Context, r *http.Request) web.Encoder {
			ctx = otel.InjectTracing(ctx, tracer)
			trace.SpanFromContext(ctx).SetAttributes(attribute.String("http.host", r.Host))

			return next(ctx, r)
		}

		return h
	}

	return m
}

// tagTenant labels the request span with the resolved tenant so traces can
// be filtered per salon.
func tagTenant(ctx context.Context, res tenantbus.Resolution) {
	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("tenant.id", res.Tenant.ID.String()),
		attribute.String("tenant.slug", res.Tenant.Slug.String()),
		attribute.String("tenant.source", string(res.Source)),
		attribute.Bool("tenant.suspended", res.Suspended),
	)
}
