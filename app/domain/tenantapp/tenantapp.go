// Package tenantapp maintains the app layer api for the tenant domain.
package tenantapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/app/sdk/errs"
	"github.com/sass-store/tenancy/app/sdk/mid"
	"github.com/sass-store/tenancy/business/domain/tenantbus"
	"github.com/sass-store/tenancy/business/sdk/web"
)

type app struct {
	tenantBus *tenantbus.Core
}

func newApp(tenantBus *tenantbus.Core) *app {
	return &app{
		tenantBus: tenantBus,
	}
}

// current returns the tenant the request resolved to.
func (a *app) current(ctx context.Context, _ *http.Request) web.Encoder {
	t, err := mid.GetTenant(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "tenant missing in context: %s", err)
	}

	return toAppTenant(t)
}

// update changes the settings of the resolved tenant.
func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	var app UpdateTenant
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	ut, err := toBusUpdateTenant(app)
	if err != nil {
		return conversionError(err)
	}

	t, err := mid.GetTenant(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "tenant missing in context: %s", err)
	}

	updTnt, err := a.tenantBus.Update(ctx, t, ut)
	if err != nil {
		if errors.Is(err, tenantbus.ErrNotFound) {
			return errs.New(errs.NotFound, tenantbus.ErrNotFound)
		}
		return errs.Errorf(errs.InternalOnlyLog, "update: tenantID[%s]: %s", t.ID, err)
	}

	return toAppTenant(updTnt)
}

// create provisions a new tenant.
func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var app NewTenant
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	nt, err := toBusNewTenant(app)
	if err != nil {
		return conversionError(err)
	}

	t, err := a.tenantBus.Create(ctx, nt)
	if err != nil {
		if errors.Is(err, tenantbus.ErrUniqueSlug) {
			return errs.New(errs.AlreadyExists, tenantbus.ErrUniqueSlug)
		}
		return errs.Errorf(errs.InternalOnlyLog, "create: slug[%s]: %s", nt.Slug, err)
	}

	return CreatedTenant{Tenant: toAppTenant(t)}
}

// updateStatus suspends or reactivates a tenant.
func (a *app) updateStatus(ctx context.Context, r *http.Request) web.Encoder {
	var app UpdateStatus
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	tenantID, err := uuid.Parse(web.Param(r, "tenant_id"))
	if err != nil {
		return errs.NewFieldErrors("tenant_id", err)
	}

	ut, err := toBusUpdateStatus(app)
	if err != nil {
		return conversionError(err)
	}

	t, err := a.tenantBus.QueryByID(ctx, tenantID)
	if err != nil {
		if errors.Is(err, tenantbus.ErrNotFound) {
			return errs.New(errs.NotFound, tenantbus.ErrNotFound)
		}
		return errs.Errorf(errs.Internal, "query: tenantID[%s]: %s", tenantID, err)
	}

	updTnt, err := a.tenantBus.Update(ctx, t, ut)
	if err != nil {
		return errs.Errorf(errs.InternalOnlyLog, "update status: tenantID[%s]: %s", tenantID, err)
	}

	return toAppTenant(updTnt)
}

// conversionError returns the per-field error built by the model conversions
// as is, so its source location and field detail survive.
func conversionError(err error) *errs.Error {
	if appErr := errs.GetError(err); appErr != nil {
		return appErr
	}

	return errs.New(errs.InvalidArgument, err)
}
