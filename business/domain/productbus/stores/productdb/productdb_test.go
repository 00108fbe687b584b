package productdb_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/sass-store/tenancy/business/domain/productbus"
	"github.com/sass-store/tenancy/business/domain/productbus/stores/productdb"
	"github.com/sass-store/tenancy/business/sdk/access"
	"github.com/sass-store/tenancy/business/sdk/order"
	"github.com/sass-store/tenancy/business/sdk/page"
	"github.com/sass-store/tenancy/business/sdk/scope"
	"github.com/sass-store/tenancy/business/types/name"
	"github.com/sass-store/tenancy/business/types/role"
	"github.com/sass-store/tenancy/business/types/sku"
	"github.com/sass-store/tenancy/foundation/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var (
	wondernails = uuid.MustParse("6f1c6d3e-3c7b-4a0f-9d55-0b7b9c3f2a11")
	columns     = []string{"product_id", "tenant_id", "sku", "name", "description", "price", "category", "featured", "active", "created_at", "updated_at"}
)

func setup(t *testing.T) (*scope.Runner, sqlmock.Sqlmock, access.Principal) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	p := access.Principal{UserID: uuid.New(), Role: role.Staff, TenantID: &wondernails}

	return scope.NewRunner(logger.NewDiscard(), sqlx.NewDb(db, "pgx")), mock, p
}

func expectScope(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT set_config`).WillReturnResult(sqlmock.NewResult(0, 1))
}

func expectCommit(mock sqlmock.Sqlmock) {
	mock.ExpectExec(`SELECT set_config\('app.current_tenant_id', ''`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestQueryCarriesTenantPredicate(t *testing.T) {
	runner, mock, p := setup(t)
	store := productdb.NewStore(logger.NewDiscard())
	now := time.Now().UTC()

	expectScope(mock)
	mock.ExpectQuery(`FROM products WHERE tenant_id = \$1 AND featured = \$2 ORDER BY price DESC`).
		WithArgs(wondernails.String(), true, 0, 10).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(uuid.NewString(), wondernails.String(), "WN-GEL-001", "Gel Polish Rose", "", "189.00", "nails", true, true, now, now))
	expectCommit(mock)

	featured := true
	filter := productbus.QueryFilter{Featured: &featured}

	prds, err := scope.WithResult(context.Background(), runner, wondernails, p, func(ctx context.Context, h *scope.Handle) ([]productbus.Product, error) {
		return store.Query(ctx, h, filter, order.NewBy(productbus.OrderByPrice, order.DESC), page.MustParse("1", "10"))
	})
	require.NoError(t, err)
	require.Len(t, prds, 1)
	require.True(t, decimal.RequireFromString("189").Equal(prds[0].Price))
	require.Equal(t, wondernails, prds[0].TenantID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryByIDOtherTenantIsNotFound(t *testing.T) {
	runner, mock, p := setup(t)
	store := productdb.NewStore(logger.NewDiscard())

	expectScope(mock)
	mock.ExpectQuery(`FROM products WHERE product_id = \$1 AND tenant_id = \$2`).
		WillReturnRows(sqlmock.NewRows(columns))
	mock.ExpectRollback()

	err := runner.WithTenantContext(context.Background(), wondernails, p, func(ctx context.Context, h *scope.Handle) error {
		_, err := store.QueryByID(ctx, h, uuid.MustParse("a1b2c3d4-0002-4000-8000-000000000001"))
		return err
	})
	require.ErrorIs(t, err, productbus.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateSKU(t *testing.T) {
	runner, mock, p := setup(t)
	store := productdb.NewStore(logger.NewDiscard())

	expectScope(mock)
	mock.ExpectExec(`INSERT INTO products`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "products_tenant_sku_key"})
	mock.ExpectRollback()

	prd := productbus.Product{
		ID:       uuid.New(),
		TenantID: wondernails,
		SKU:      sku.MustParse("WN-GEL-001"),
		Name:     name.MustParse("Gel Polish Rose"),
		Price:    decimal.RequireFromString("189.00"),
		Active:   true,
	}

	err := runner.WithTenantContext(context.Background(), wondernails, p, func(ctx context.Context, h *scope.Handle) error {
		return store.Create(ctx, h, prd)
	})
	require.ErrorIs(t, err, productbus.ErrUniqueSKU)
}

func TestUpdateNoRowsIsNotFound(t *testing.T) {
	runner, mock, p := setup(t)
	store := productdb.NewStore(logger.NewDiscard())

	expectScope(mock)
	mock.ExpectExec(`UPDATE products SET`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	prd := productbus.Product{
		ID:    uuid.New(),
		SKU:   sku.MustParse("ZO-TEE-001"),
		Name:  name.MustParse("Logo Tee"),
		Price: decimal.RequireFromString("349.00"),
	}

	err := runner.WithTenantContext(context.Background(), wondernails, p, func(ctx context.Context, h *scope.Handle) error {
		return store.Update(ctx, h, prd)
	})
	require.ErrorIs(t, err, productbus.ErrNotFound)
}

func TestHandleUnusableAfterScope(t *testing.T) {
	runner, mock, p := setup(t)
	store := productdb.NewStore(logger.NewDiscard())

	expectScope(mock)
	expectCommit(mock)

	var leaked *scope.Handle
	err := runner.WithTenantContext(context.Background(), wondernails, p, func(ctx context.Context, h *scope.Handle) error {
		leaked = h
		return nil
	})
	require.NoError(t, err)

	_, err = store.QueryByID(context.Background(), leaked, uuid.New())
	require.ErrorIs(t, err, scope.ErrScopeClosed)
}
