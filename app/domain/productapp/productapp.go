// Package productapp maintains the app layer api for the product domain.
// Every handler runs inside the tenant scope opened by mid.TenantTransaction.
package productapp

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/app/sdk/errs"
	"github.com/sass-store/tenancy/app/sdk/mid"
	"github.com/sass-store/tenancy/app/sdk/query"
	"github.com/sass-store/tenancy/business/domain/productbus"
	"github.com/sass-store/tenancy/business/sdk/order"
	"github.com/sass-store/tenancy/business/sdk/page"
	"github.com/sass-store/tenancy/business/sdk/scope"
	"github.com/sass-store/tenancy/business/sdk/web"
)

type app struct {
	productBus *productbus.Core
}

func newApp(productBus *productbus.Core) *app {
	return &app{
		productBus: productBus,
	}
}

func (a *app) create(ctx context.Context, r *http.Request) web.Encoder {
	var app NewProduct
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	np, err := toBusNewProduct(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	h, err := mid.GetHandle(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "scope missing in context: %s", err)
	}

	prd, err := a.productBus.Create(ctx, h, np)
	if err != nil {
		return toAppError(err)
	}

	return CreatedProduct{Product: toAppProduct(prd)}
}

func (a *app) update(ctx context.Context, r *http.Request) web.Encoder {
	var app UpdateProduct
	if err := web.Decode(r, &app); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	up, err := toBusUpdateProduct(app)
	if err != nil {
		return errs.New(errs.InvalidArgument, err)
	}

	h, prd, resp := a.product(ctx, r)
	if resp != nil {
		return resp
	}

	updPrd, err := a.productBus.Update(ctx, h, prd, up)
	if err != nil {
		return toAppError(err)
	}

	return toAppProduct(updPrd)
}

func (a *app) delete(ctx context.Context, r *http.Request) web.Encoder {
	h, prd, resp := a.product(ctx, r)
	if resp != nil {
		return resp
	}

	if err := a.productBus.Delete(ctx, h, prd); err != nil {
		return toAppError(err)
	}

	return nil
}

func (a *app) query(ctx context.Context, r *http.Request) web.Encoder {
	qp := parseQueryParams(r)

	page, err := page.Parse(qp.Page, qp.Rows)
	if err != nil {
		return errs.NewFieldErrors("page", err)
	}

	filter, err := parseFilter(qp)
	if err != nil {
		if v, ok := err.(*errs.Error); ok {
			return v
		}
		return errs.NewFieldErrors("filter", err)
	}

	orderBy, err := order.Parse(orderByFields, qp.OrderBy, productbus.DefaultOrderBy)
	if err != nil {
		return errs.NewFieldErrors("order", err)
	}

	h, err := mid.GetHandle(ctx)
	if err != nil {
		return errs.Errorf(errs.Internal, "scope missing in context: %s", err)
	}

	prds, err := a.productBus.Query(ctx, h, filter, orderBy, page)
	if err != nil {
		return errs.Errorf(errs.Internal, "query: %s", err)
	}

	total, err := a.productBus.Count(ctx, h, filter)
	if err != nil {
		return errs.Errorf(errs.Internal, "count: %s", err)
	}

	return query.NewResult(toAppProducts(prds), total, page)
}

func (a *app) queryByID(ctx context.Context, r *http.Request) web.Encoder {
	_, prd, resp := a.product(ctx, r)
	if resp != nil {
		return resp
	}

	return toAppProduct(prd)
}

// product loads the product named by the path within the current scope.
func (a *app) product(ctx context.Context, r *http.Request) (*scope.Handle, productbus.Product, web.Encoder) {
	productID, err := uuid.Parse(web.Param(r, "product_id"))
	if err != nil {
		return nil, productbus.Product{}, errs.NewFieldErrors("product_id", err)
	}

	h, err := mid.GetHandle(ctx)
	if err != nil {
		return nil, productbus.Product{}, errs.Errorf(errs.Internal, "scope missing in context: %s", err)
	}

	prd, err := a.productBus.QueryByID(ctx, h, productID)
	if err != nil {
		return nil, productbus.Product{}, toAppError(err)
	}

	return h, prd, nil
}

func toAppError(err error) *errs.Error {
	switch {
	case errors.Is(err, productbus.ErrNotFound):
		return errs.New(errs.NotFound, productbus.ErrNotFound)
	case errors.Is(err, productbus.ErrUniqueSKU):
		return errs.New(errs.AlreadyExists, productbus.ErrUniqueSKU)
	case errors.Is(err, productbus.ErrNegativePrice):
		return errs.NewFieldErrors("price", productbus.ErrNegativePrice)
	}

	return errs.Errorf(errs.Internal, "product: %s", err)
}
