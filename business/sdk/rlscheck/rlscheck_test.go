package rlscheck_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sass-store/tenancy/business/sdk/rlscheck"
	"github.com/sass-store/tenancy/business/sdk/scope"
	"github.com/sass-store/tenancy/foundation/logger"
	"github.com/stretchr/testify/require"
)

var (
	wondernails = uuid.MustParse("6f1c6d3e-3c7b-4a0f-9d55-0b7b9c3f2a11")
	zoSystem    = uuid.MustParse("b2d7e0a4-58f1-4c3e-a8a7-91f0d6c4e722")
)

func newDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "pgx"), mock
}

func expectScope(mock sqlmock.Sqlmock, tenantID uuid.UUID, visible int, own int) {
	mock.ExpectBegin()
	mock.ExpectExec(`SELECT set_config`).WithArgs(tenantID.String(), "").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM products$`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(visible))
	mock.ExpectQuery(`SELECT count\(\*\) FROM products WHERE tenant_id = \$1`).WithArgs(tenantID).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(own))
	mock.ExpectExec(`SELECT set_config`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
}

func TestCheck(t *testing.T) {
	db, mock := newDB(t)
	runner := scope.NewRunner(logger.NewDiscard(), db)

	expectScope(mock, wondernails, 2, 2)
	expectScope(mock, zoSystem, 3, 1)

	results, err := rlscheck.Check(context.Background(), runner, []uuid.UUID{wondernails, zoSystem})
	require.NoError(t, err)
	require.Len(t, results, 2)

	require.True(t, results[0].Isolated())
	require.Equal(t, wondernails, results[0].TenantID)

	require.False(t, results[1].Isolated())
	require.Equal(t, 2, results[1].Foreign())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCheckRole(t *testing.T) {
	tests := []struct {
		name   string
		super  bool
		bypass bool
		fail   bool
	}{
		{name: "app role", fail: false},
		{name: "superuser", super: true, fail: true},
		{name: "bypassrls", bypass: true, fail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newDB(t)

			rows := sqlmock.NewRows([]string{"rolname", "rolsuper", "rolbypassrls"}).AddRow("app", tt.super, tt.bypass)
			mock.ExpectQuery(`SELECT rolname, rolsuper, rolbypassrls FROM pg_roles`).WillReturnRows(rows)

			err := rlscheck.CheckRole(context.Background(), db)
			if tt.fail {
				require.ErrorIs(t, err, rlscheck.ErrPrivilegedRole)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestResidual(t *testing.T) {
	db, mock := newDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT current_setting\('app.current_tenant_id', true\)`).WillReturnRows(sqlmock.NewRows([]string{"current_setting"}).AddRow(""))
	mock.ExpectRollback()

	marker, err := rlscheck.Residual(context.Background(), db)
	require.NoError(t, err)
	require.Empty(t, marker)
	require.NoError(t, mock.ExpectationsWereMet())
}
