// Package mid provides app level middleware support. The tenant boundary is
// the chain ResolveTenant, Authenticate, Authorize, TenantTransaction in that
// order.
package mid

import (
	"context"
	"errors"

	"github.com/sass-store/tenancy/business/domain/tenantbus"
	"github.com/sass-store/tenancy/business/sdk/access"
	"github.com/sass-store/tenancy/business/sdk/scope"
	"github.com/sass-store/tenancy/business/sdk/web"
)

// isError tests if the Encoder has an error inside of it.
func isError(e web.Encoder) error {
	err, isError := e.(error)
	if isError {
		return err
	}
	return nil
}

// =============================================================================

type ctxKey int

const (
	resolutionKey ctxKey = iota + 1
	principalKey
	handleKey
)

func setResolution(ctx context.Context, res tenantbus.Resolution) context.Context {
	return context.WithValue(ctx, resolutionKey, res)
}

// GetResolution returns the tenant resolution of the request.
func GetResolution(ctx context.Context) (tenantbus.Resolution, error) {
	v, ok := ctx.Value(resolutionKey).(tenantbus.Resolution)
	if !ok {
		return tenantbus.Resolution{}, errors.New("tenant not found in context")
	}

	return v, nil
}

// GetTenant returns the tenant the request was resolved to.
func GetTenant(ctx context.Context) (tenantbus.Tenant, error) {
	res, err := GetResolution(ctx)
	if err != nil {
		return tenantbus.Tenant{}, err
	}

	return res.Tenant, nil
}

func setPrincipal(ctx context.Context, p access.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal returns the principal acting on the request. Requests that
// did not pass Authenticate are anonymous.
func GetPrincipal(ctx context.Context) access.Principal {
	v, ok := ctx.Value(principalKey).(access.Principal)
	if !ok {
		return access.Anonymous
	}

	return v
}

func setHandle(ctx context.Context, h *scope.Handle) context.Context {
	return context.WithValue(ctx, handleKey, h)
}

// GetHandle returns the tenant scope handle opened by TenantTransaction.
func GetHandle(ctx context.Context) (*scope.Handle, error) {
	v, ok := ctx.Value(handleKey).(*scope.Handle)
	if !ok {
		return nil, errors.New("tenant scope not found in context")
	}

	return v, nil
}
