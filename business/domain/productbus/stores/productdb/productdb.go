// Package productdb contains product related CRUD functionality. Every
// statement runs on the transaction of a tenant scope.
package productdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sass-store/tenancy/business/domain/productbus"
	"github.com/sass-store/tenancy/business/sdk/order"
	"github.com/sass-store/tenancy/business/sdk/page"
	"github.com/sass-store/tenancy/business/sdk/scope"
	"github.com/sass-store/tenancy/business/sdk/sqldb"
	"github.com/sass-store/tenancy/foundation/logger"
)

// Store manages the set of APIs for product database access.
type Store struct {
	log *logger.Logger
}

// NewStore constructs the api for data access.
func NewStore(log *logger.Logger) *Store {
	return &Store{
		log: log,
	}
}

// Create adds a Product to the scope's tenant.
func (s *Store) Create(ctx context.Context, h *scope.Handle, prd productbus.Product) error {
	const q = `
	INSERT INTO products
		(product_id, tenant_id, sku, name, description, price, category, featured, active, created_at, updated_at)
	VALUES
		(:product_id, :tenant_id, :sku, :name, :description, :price, :category, :featured, :active, :created_at, :updated_at)`

	err := h.Run(func(ec sqlx.ExtContext) error {
		return sqldb.NamedExecContext(ctx, s.log, ec, q, toDBProduct(prd))
	})
	if err != nil {
		var dupErr sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dupErr) && dupErr.Column == "products_tenant_sku_key" {
			return fmt.Errorf("namedexeccontext: %w", productbus.ErrUniqueSKU)
		}
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	return nil
}

// Update modifies data about a Product. A product outside the scope's
// tenant matches no row and is reported as not found.
func (s *Store) Update(ctx context.Context, h *scope.Handle, prd productbus.Product) error {
	const q = `
	UPDATE
		products
	SET
		name = :name,
		description = :description,
		price = :price,
		category = :category,
		featured = :featured,
		active = :active,
		updated_at = :updated_at
	WHERE
		product_id = :product_id AND tenant_id = :tenant_id`

	dbPrd := toDBProduct(prd)
	dbPrd.TenantID = h.TenantID()

	return s.execOne(ctx, h, q, dbPrd)
}

// Delete removes the product identified by a given ID.
func (s *Store) Delete(ctx context.Context, h *scope.Handle, prd productbus.Product) error {
	const q = `
	DELETE FROM
		products
	WHERE
		product_id = :product_id AND tenant_id = :tenant_id`

	dbPrd := toDBProduct(prd)
	dbPrd.TenantID = h.TenantID()

	return s.execOne(ctx, h, q, dbPrd)
}

// Query gets all Products from the database.
func (s *Store) Query(ctx context.Context, h *scope.Handle, filter productbus.QueryFilter, orderBy order.By, page page.Page) ([]productbus.Product, error) {
	data := map[string]any{
		"offset":        page.Offset(),
		"rows_per_page": page.RowsPerPage(),
	}

	const q = `
	SELECT
		product_id, tenant_id, sku, name, description, price, category, featured, active, created_at, updated_at
	FROM
		products`

	buf := bytes.NewBufferString(q)
	applyFilter(h.TenantID().String(), filter, data, buf)

	orderByClause, err := orderByClause(orderBy)
	if err != nil {
		return nil, err
	}

	buf.WriteString(orderByClause)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var dbPrds []productDB
	err = h.Run(func(ec sqlx.ExtContext) error {
		return sqldb.NamedQuerySlice(ctx, s.log, ec, buf.String(), data, &dbPrds)
	})
	if err != nil {
		return nil, fmt.Errorf("namedqueryslice: %w", err)
	}

	return toBusProducts(dbPrds)
}

// Count returns the total number of products in the DB.
func (s *Store) Count(ctx context.Context, h *scope.Handle, filter productbus.QueryFilter) (int, error) {
	data := map[string]any{}

	const q = `
	SELECT
		count(1)
	FROM
		products`

	buf := bytes.NewBufferString(q)
	applyFilter(h.TenantID().String(), filter, data, buf)

	var count struct {
		Count int `db:"count"`
	}
	err := h.Run(func(ec sqlx.ExtContext) error {
		return sqldb.NamedQueryStruct(ctx, s.log, ec, buf.String(), data, &count)
	})
	if err != nil {
		return 0, fmt.Errorf("namedquerystruct: %w", err)
	}

	return count.Count, nil
}

// QueryByID finds the product identified by a given ID.
func (s *Store) QueryByID(ctx context.Context, h *scope.Handle, productID uuid.UUID) (productbus.Product, error) {
	data := struct {
		ID       string `db:"product_id"`
		TenantID string `db:"tenant_id"`
	}{
		ID:       productID.String(),
		TenantID: h.TenantID().String(),
	}

	const q = `
	SELECT
		product_id, tenant_id, sku, name, description, price, category, featured, active, created_at, updated_at
	FROM
		products
	WHERE
		product_id = :product_id AND tenant_id = :tenant_id`

	var dbPrd productDB
	err := h.Run(func(ec sqlx.ExtContext) error {
		return sqldb.NamedQueryStruct(ctx, s.log, ec, q, data, &dbPrd)
	})
	if err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return productbus.Product{}, fmt.Errorf("db: %w", productbus.ErrNotFound)
		}
		return productbus.Product{}, fmt.Errorf("db: %w", err)
	}

	return toBusProduct(dbPrd)
}

func (s *Store) execOne(ctx context.Context, h *scope.Handle, q string, data productDB) error {
	var n int64
	err := h.Run(func(ec sqlx.ExtContext) error {
		var err error
		n, err = sqldb.NamedExecContextRows(ctx, s.log, ec, q, data)
		return err
	})
	if err != nil {
		return fmt.Errorf("namedexeccontext: %w", err)
	}

	if n == 0 {
		return productbus.ErrNotFound
	}

	return nil
}
