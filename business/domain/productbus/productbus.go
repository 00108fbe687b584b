// Package productbus provides business access to the product catalog of a
// tenant. Every operation runs on a tenant scope handle, there is no way to
// reach products without one.
package productbus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/business/sdk/order"
	"github.com/sass-store/tenancy/business/sdk/page"
	"github.com/sass-store/tenancy/business/sdk/scope"
	"github.com/sass-store/tenancy/foundation/logger"
	"github.com/sass-store/tenancy/foundation/otel"
	"github.com/shopspring/decimal"
)

// Set of error variables for CRUD operations.
var (
	ErrNotFound      = errors.New("product not found")
	ErrUniqueSKU     = errors.New("sku is not unique within the tenant")
	ErrNegativePrice = errors.New("price must not be negative")
)

// Storer interface declares the behavior this package needs to persist and
// retrieve data.
type Storer interface {
	Create(ctx context.Context, h *scope.Handle, prd Product) error
	Update(ctx context.Context, h *scope.Handle, prd Product) error
	Delete(ctx context.Context, h *scope.Handle, prd Product) error
	Query(ctx context.Context, h *scope.Handle, filter QueryFilter, orderBy order.By, page page.Page) ([]Product, error)
	Count(ctx context.Context, h *scope.Handle, filter QueryFilter) (int, error)
	QueryByID(ctx context.Context, h *scope.Handle, productID uuid.UUID) (Product, error)
}

// Core manages the set of APIs for product access.
type Core struct {
	log    *logger.Logger
	storer Storer
}

// NewCore constructs a product core API for use.
func NewCore(log *logger.Logger, storer Storer) *Core {
	return &Core{
		log:    log,
		storer: storer,
	}
}

// Create adds a new product to the tenant of the scope.
func (c *Core) Create(ctx context.Context, h *scope.Handle, np NewProduct) (Product, error) {
	ctx, span := otel.AddSpan(ctx, "business.productbus.create")
	defer span.End()

	if np.Price.IsNegative() {
		return Product{}, ErrNegativePrice
	}

	now := time.Now()

	prd := Product{
		ID:          uuid.New(),
		TenantID:    h.TenantID(),
		SKU:         np.SKU,
		Name:        np.Name,
		Description: np.Description,
		Price:       np.Price.Round(2),
		Category:    np.Category,
		Featured:    np.Featured,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.storer.Create(ctx, h, prd); err != nil {
		return Product{}, fmt.Errorf("create: %w", err)
	}

	return prd, nil
}

// Update modifies information about a product.
func (c *Core) Update(ctx context.Context, h *scope.Handle, prd Product, up UpdateProduct) (Product, error) {
	ctx, span := otel.AddSpan(ctx, "business.productbus.update")
	defer span.End()

	if up.Name != nil {
		prd.Name = *up.Name
	}

	if up.Description != nil {
		prd.Description = *up.Description
	}

	if up.Price != nil {
		if up.Price.IsNegative() {
			return Product{}, ErrNegativePrice
		}
		prd.Price = up.Price.Round(2)
	}

	if up.Category != nil {
		prd.Category = *up.Category
	}

	if up.Featured != nil {
		prd.Featured = *up.Featured
	}

	if up.Active != nil {
		prd.Active = *up.Active
	}

	prd.UpdatedAt = time.Now()

	if err := c.storer.Update(ctx, h, prd); err != nil {
		return Product{}, fmt.Errorf("update: %w", err)
	}

	return prd, nil
}

// Delete removes the specified product.
func (c *Core) Delete(ctx context.Context, h *scope.Handle, prd Product) error {
	ctx, span := otel.AddSpan(ctx, "business.productbus.delete")
	defer span.End()

	if err := c.storer.Delete(ctx, h, prd); err != nil {
		return fmt.Errorf("delete: %w", err)
	}

	return nil
}

// Query retrieves a list of existing products of the scope's tenant.
func (c *Core) Query(ctx context.Context, h *scope.Handle, filter QueryFilter, orderBy order.By, page page.Page) ([]Product, error) {
	ctx, span := otel.AddSpan(ctx, "business.productbus.query")
	defer span.End()

	prds, err := c.storer.Query(ctx, h, filter, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return prds, nil
}

// Count returns the total number of products of the scope's tenant.
func (c *Core) Count(ctx context.Context, h *scope.Handle, filter QueryFilter) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.productbus.count")
	defer span.End()

	return c.storer.Count(ctx, h, filter)
}

// QueryByID finds the product by the specified ID. Products of other
// tenants are reported as not found.
func (c *Core) QueryByID(ctx context.Context, h *scope.Handle, productID uuid.UUID) (Product, error) {
	ctx, span := otel.AddSpan(ctx, "business.productbus.queryByID")
	defer span.End()

	prd, err := c.storer.QueryByID(ctx, h, productID)
	if err != nil {
		return Product{}, fmt.Errorf("query: productID[%s]: %w", productID, err)
	}

	return prd, nil
}

// PriceBounds validates a min and max price pair used by filters.
func PriceBounds(minPrice, maxPrice *decimal.Decimal) error {
	if minPrice != nil && maxPrice != nil && minPrice.GreaterThan(*maxPrice) {
		return fmt.Errorf("min price %s is greater than max price %s", minPrice, maxPrice)
	}

	return nil
}
