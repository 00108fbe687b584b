// Package rlscheck verifies that row level security isolates tenants on a
// live database. Queries run without any tenant predicate so only the
// policies stand between a tenant and the rows of another.
package rlscheck

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sass-store/tenancy/business/sdk/access"
	"github.com/sass-store/tenancy/business/sdk/scope"
)

// ErrPrivilegedRole is returned when the connected role ignores row level
// security, which makes any isolation check meaningless.
var ErrPrivilegedRole = errors.New("connected role bypasses row level security")

// Result is what a tenant could see of a table.
type Result struct {
	TenantID uuid.UUID
	Table    string
	Visible  int
	Own      int
}

// Foreign is the number of visible rows that belong to other tenants.
func (r Result) Foreign() int {
	return r.Visible - r.Own
}

// Isolated reports whether the tenant saw only its own rows.
func (r Result) Isolated() bool {
	return r.Foreign() == 0
}

// CheckRole fails when the connected role is a superuser or has BYPASSRLS.
func CheckRole(ctx context.Context, db sqlx.QueryerContext) error {
	var role struct {
		Name      string `db:"rolname"`
		Super     bool   `db:"rolsuper"`
		BypassRLS bool   `db:"rolbypassrls"`
	}

	const q = `SELECT rolname, rolsuper, rolbypassrls FROM pg_roles WHERE rolname = current_user`

	if err := sqlx.GetContext(ctx, db, &role, q); err != nil {
		return fmt.Errorf("query role: %w", err)
	}

	if role.Super || role.BypassRLS {
		return fmt.Errorf("role[%s]: %w", role.Name, ErrPrivilegedRole)
	}

	return nil
}

// Tables lists the tenant scoped tables checked by Check.
var Tables = []string{"products"}

// Check counts, for every tenant, what each tenant scoped table shows
// inside a scope of that tenant with and without the tenant predicate.
func Check(ctx context.Context, runner *scope.Runner, tenantIDs []uuid.UUID) ([]Result, error) {
	results := make([]Result, 0, len(tenantIDs)*len(Tables))

	for _, tenantID := range tenantIDs {
		for _, table := range Tables {
			res, err := scope.WithResult(ctx, runner, tenantID, access.Anonymous, func(ctx context.Context, h *scope.Handle) (Result, error) {
				return count(ctx, h, table)
			})
			if err != nil {
				return nil, fmt.Errorf("check: tenant[%s] table[%s]: %w", tenantID, table, err)
			}

			results = append(results, res)
		}
	}

	return results, nil
}

func count(ctx context.Context, h *scope.Handle, table string) (Result, error) {
	res := Result{
		TenantID: h.TenantID(),
		Table:    table,
	}

	err := h.Run(func(ec sqlx.ExtContext) error {
		if err := sqlx.GetContext(ctx, ec, &res.Visible, `SELECT count(*) FROM `+table); err != nil {
			return fmt.Errorf("count visible: %w", err)
		}

		if err := sqlx.GetContext(ctx, ec, &res.Own, `SELECT count(*) FROM `+table+` WHERE tenant_id = $1`, h.TenantID()); err != nil {
			return fmt.Errorf("count own: %w", err)
		}

		return nil
	})

	return res, err
}

// Residual returns the tenant marker seen by a fresh transaction. Anything
// but the empty string means a marker leaked out of its transaction.
func Residual(ctx context.Context, db *sqlx.DB) (string, error) {
	var marker sql.NullString

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if err := tx.GetContext(ctx, &marker, `SELECT current_setting('app.current_tenant_id', true)`); err != nil {
		return "", fmt.Errorf("current setting: %w", err)
	}

	return marker.String, nil
}
