// Package userapp maintains the app layer api for the people of a tenant.
package userapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/app/sdk/errs"
	"github.com/sass-store/tenancy/app/sdk/mid"
	"github.com/sass-store/tenancy/app/sdk/query"
	"github.com/sass-store/tenancy/business/domain/userbus"
	"github.com/sass-store/tenancy/business/sdk/access"
	"github.com/sass-store/tenancy/business/sdk/order"
	"github.com/sass-store/tenancy/business/sdk/page"
	"github.com/sass-store/tenancy/business/sdk/web"
)

type app struct {
	userBus *userbus.Core
}

func newApp(userBus *userbus.Core) *app {
	return &app{
		userBus: userBus,
	}
}

// create adds a new user to the resolved tenant.
func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var app NewUser
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	tnt, err := mid.GetTenant(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "tenant missing in context: %s", err)
	}

	nu, err := toBusNewUser(app, tnt.ID)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, err := a.userBus.Create(ctx, nu)
	if err != nil {
		return toAppError(err)
	}

	return CreatedUser{User: toAppUser(usr)}
}

// update changes a user of the resolved tenant.
func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	var app UpdateUser
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	uu, err := toBusUpdateUser(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	usr, resp := a.tenantUser(ctx, r)
	if resp != nil {
		return resp
	}

	updUsr, err := a.userBus.Update(ctx, usr, uu)
	if err != nil {
		return toAppError(err)
	}

	return toAppUser(updUsr)
}

// query returns the users of the resolved tenant with paging.
func (a *app) query(ctx context.Context, r *http.Request) web.Encoder {
	values := r.URL.Query()

	pg, err := page.Parse(values.Get("page"), values.Get("rows"))
	if err != nil {
		return errs.NewFieldErrors("page", err)
	}

	tnt, err := mid.GetTenant(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "tenant missing in context: %s", err)
	}

	filter, err := tenantFilter(values, tnt.ID)
	if err != nil {
		return errs.GetError(err)
	}

	orderBy, err := order.Parse(sortKeys, values.Get("orderBy"), userbus.DefaultOrderBy)
	if err != nil {
		return errs.NewFieldErrors("orderBy", err)
	}

	usrs, err := a.userBus.Query(ctx, filter, orderBy, pg)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: %s", err)
	}

	total, err := a.userBus.Count(ctx, filter)
	if err != nil {
		return errs.Errorf(errs.Internal, "count: %s", err)
	}

	return query.NewResult(toAppUsers(usrs), total, pg)
}

// queryByID returns a user of the resolved tenant by its ID.
func (a *app) queryByID(ctx context.Context, r *http.Request) web.Encoder {
	usr, resp := a.tenantUser(ctx, r)
	if resp != nil {
		return resp
	}

	return toAppUser(usr)
}

// me returns the user behind the session.
func (a *app) me(ctx context.Context, _ *http.Request) web.Encoder {
	p := mid.GetPrincipal(ctx)
	if p.IsAnonymous() {
		return errs.New(errs.Unauthenticated, access.Deny(access.Unauthenticated).Err())
	}

	usr, err := a.userBus.QueryByID(ctx, p.UserID)
	if err != nil {
		return toAppError(err)
	}

	return toAppUser(usr)
}

// tenantUser loads the user named by the path. Users of other tenants are
// reported as not found.
func (a *app) tenantUser(ctx context.Context, r *http.Request) (userbus.User, web.Encoder) {
	userID, err := uuid.Parse(web.Param(r, "user_id"))
	if err != nil {
		return userbus.User{}, errs.NewFieldErrors("user_id", err)
	}

	tnt, err := mid.GetTenant(ctx)
	if err != nil {
		return userbus.User{}, errs.Errorf(errs.Internal, "tenant missing in context: %s", err)
	}

	usr, err := a.userBus.QueryByID(ctx, userID)
	if err != nil {
		return userbus.User{}, toAppError(err)
	}

	if usr.TenantID == nil || *usr.TenantID != tnt.ID {
		return userbus.User{}, errs.New(errs.NotFound, userbus.ErrNotFound)
	}

	return usr, nil
}

func toAppError(err error) *errs.Error {
	switch {
	case errors.Is(err, userbus.ErrNotFound):
		return errs.New(errs.NotFound, userbus.ErrNotFound)
	case errors.Is(err, userbus.ErrUniqueEmail):
		return errs.New(errs.AlreadyExists, userbus.ErrUniqueEmail)
	case errors.Is(err, userbus.ErrAdminHasTenant), errors.Is(err, userbus.ErrTenantRequired):
		return errs.NewFieldErrors("role", err)
	}

	return errs.Errorf(errs.Internal, "user: %s", err)
}
