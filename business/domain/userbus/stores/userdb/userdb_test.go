package userdb_test

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/sass-store/tenancy/business/domain/userbus"
	"github.com/sass-store/tenancy/business/domain/userbus/stores/userdb"
	"github.com/sass-store/tenancy/business/sdk/order"
	"github.com/sass-store/tenancy/business/sdk/page"
	"github.com/sass-store/tenancy/business/types/name"
	"github.com/sass-store/tenancy/business/types/role"
	"github.com/sass-store/tenancy/foundation/logger"
	"github.com/stretchr/testify/require"
)

var columns = []string{"user_id", "tenant_id", "name", "email", "role", "password_hash", "enabled", "created_at", "updated_at"}

func newStore(t *testing.T) (*userdb.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return userdb.NewStore(logger.NewDiscard(), sqlx.NewDb(db, "pgx")), mock
}

func TestQueryByTenant(t *testing.T) {
	store, mock := newStore(t)

	tenantID := uuid.MustParse("6f1c6d3e-3c7b-4a0f-9d55-0b7b9c3f2a11")
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM users WHERE tenant_id = \$1 AND role = \$2 ORDER BY name ASC OFFSET \$3 ROWS FETCH NEXT \$4 ROWS ONLY`).
		WithArgs(tenantID.String(), "STAFF", 0, 10).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(uuid.NewString(), tenantID.String(), "Ana Lopez", "ana@wondernails.mx", "STAFF", []byte("hash"), true, now, now))

	staff := role.Staff
	filter := userbus.QueryFilter{TenantID: &tenantID, Role: &staff}

	usrs, err := store.Query(context.Background(), filter, order.NewBy(userbus.OrderByName, order.ASC), page.MustParse("1", "10"))
	require.NoError(t, err)
	require.Len(t, usrs, 1)
	require.Equal(t, tenantID, *usrs[0].TenantID)
	require.Equal(t, role.Staff, usrs[0].Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryByIDAdmin(t *testing.T) {
	store, mock := newStore(t)

	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM users WHERE user_id = \$1`).
		WithArgs(id.String()).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(id.String(), nil, "Root", "root@sassstore.mx", "ADMIN", []byte("hash"), true, now, now))

	usr, err := store.QueryByID(context.Background(), id)
	require.NoError(t, err)
	require.Nil(t, usr.TenantID)
	require.Equal(t, role.Admin, usr.Role)
}

func TestQueryByIDNotFound(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectQuery(`FROM users WHERE user_id = \$1`).
		WillReturnRows(sqlmock.NewRows(columns))

	_, err := store.QueryByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, userbus.ErrNotFound)
}

func TestQueryByEmailIgnoresCase(t *testing.T) {
	store, mock := newStore(t)

	tenantID := uuid.MustParse("6f1c6d3e-3c7b-4a0f-9d55-0b7b9c3f2a11")
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("ana@wondernails.mx").
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(uuid.NewString(), tenantID.String(), "Ana Lopez", "ana@wondernails.mx", "STAFF", []byte("hash"), true, now, now))

	usr, err := store.QueryByEmail(context.Background(), mail.Address{Address: "Ana@WonderNails.MX"})
	require.NoError(t, err)
	require.Equal(t, "ana@wondernails.mx", usr.Email.Address)
	require.NoError(t, mock.ExpectationsWereMet())
}

func staffUser() userbus.User {
	tenantID := uuid.MustParse("6f1c6d3e-3c7b-4a0f-9d55-0b7b9c3f2a11")

	return userbus.User{
		ID:        uuid.New(),
		TenantID:  &tenantID,
		Name:      name.MustParse("Ana Lopez"),
		Email:     mail.Address{Address: "ana@wondernails.mx"},
		Role:      role.Staff,
		Enabled:   true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := store.Create(context.Background(), staffUser())
	require.ErrorIs(t, err, userbus.ErrUniqueEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMissingUser(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec(`UPDATE users SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	n := name.MustParse("Ana Lopez")
	err := store.Update(context.Background(), uuid.New(), userbus.Changes{Name: &n, UpdatedAt: time.Now()})
	require.ErrorIs(t, err, userbus.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWritesOnlyChangedColumns(t *testing.T) {
	store, mock := newStore(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE users SET enabled = \$1, updated_at = \$2 WHERE user_id = \$3`).
		WithArgs(false, sqlmock.AnyArg(), id.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	disabled := false
	err := store.Update(context.Background(), id, userbus.Changes{Enabled: &disabled, UpdatedAt: time.Now()})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateDuplicateEmail(t *testing.T) {
	store, mock := newStore(t)

	mock.ExpectExec(`UPDATE users SET email = \$1, updated_at = \$2 WHERE user_id = \$3`).
		WithArgs("ana@wondernails.mx", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	email := mail.Address{Address: "Ana@WonderNails.mx"}
	err := store.Update(context.Background(), uuid.New(), userbus.Changes{Email: &email, UpdatedAt: time.Now()})
	require.ErrorIs(t, err, userbus.ErrUniqueEmail)
}
