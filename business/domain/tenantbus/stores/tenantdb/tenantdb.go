// Package tenantdb persists the tenant directory. The tenants table is not
// under row level security: it is read to resolve a request before any
// tenant scope exists.
package tenantdb

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sass-store/tenancy/business/domain/tenantbus"
	"github.com/sass-store/tenancy/business/sdk/sqldb"
	"github.com/sass-store/tenancy/business/types/slug"
	"github.com/sass-store/tenancy/foundation/logger"
)

// slugConstraint is the unique constraint on tenants.slug.
const slugConstraint = "tenants_slug_key"

const tenantColumns = `tenant_id, slug, name, mode, status, timezone, branding, contact, created_at, updated_at`

// Store reads and writes the tenant directory.
type Store struct {
	log *logger.Logger
	db  sqlx.ExtContext
}

// NewStore constructs the directory store over the pool.
func NewStore(log *logger.Logger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

// Create provisions a tenant row.
func (s *Store) Create(ctx context.Context, t tenantbus.Tenant) error {
	const q = `
	INSERT INTO tenants (` + tenantColumns + `)
	VALUES
		(:tenant_id, :slug, :name, :mode, :status, :timezone, :branding, :contact, :created_at, :updated_at)`

	row, err := toDBTenant(t)
	if err != nil {
		return err
	}

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, row); err != nil {
		var dup sqldb.ErrDBDuplicatedEntry
		if errors.As(err, &dup) && dup.Column == slugConstraint {
			return fmt.Errorf("create[%s]: %w", t.Slug, tenantbus.ErrUniqueSlug)
		}
		return fmt.Errorf("create[%s]: %w", t.Slug, err)
	}

	return nil
}

// UpdateSettings rewrites the editable settings of a tenant. Status is left
// alone so a settings edit made from a stale copy can never undo a
// suspension, and the slug is the tenant's public identity and never changes.
func (s *Store) UpdateSettings(ctx context.Context, t tenantbus.Tenant) error {
	const q = `
	UPDATE tenants SET
		name = :name, mode = :mode, timezone = :timezone,
		branding = :branding, contact = :contact, updated_at = :updated_at
	WHERE
		tenant_id = :tenant_id`

	row, err := toDBTenant(t)
	if err != nil {
		return err
	}

	return s.exec(ctx, "update settings", q, t.ID, row)
}

// UpdateStatus writes only the status of a tenant.
func (s *Store) UpdateStatus(ctx context.Context, t tenantbus.Tenant) error {
	const q = `
	UPDATE tenants SET
		status = :status, updated_at = :updated_at
	WHERE
		tenant_id = :tenant_id`

	data := map[string]any{
		"tenant_id":  t.ID.String(),
		"status":     t.Status.String(),
		"updated_at": t.UpdatedAt.UTC(),
	}

	return s.exec(ctx, "update status", q, t.ID, data)
}

func (s *Store) exec(ctx context.Context, op string, q string, tenantID uuid.UUID, data any) error {
	n, err := sqldb.NamedExecContextRows(ctx, s.log, s.db, q, data)
	switch {
	case err != nil:
		return fmt.Errorf("%s[%s]: %w", op, tenantID, err)
	case n == 0:
		return fmt.Errorf("%s[%s]: %w", op, tenantID, tenantbus.ErrNotFound)
	}

	return nil
}

// QueryByID finds a tenant by primary key.
func (s *Store) QueryByID(ctx context.Context, tenantID uuid.UUID) (tenantbus.Tenant, error) {
	const q = `SELECT ` + tenantColumns + ` FROM tenants WHERE tenant_id = :tenant_id`

	return s.queryOne(ctx, q, map[string]any{"tenant_id": tenantID.String()})
}

// QueryBySlug finds the tenant carrying the slug.
func (s *Store) QueryBySlug(ctx context.Context, slg slug.Slug) (tenantbus.Tenant, error) {
	const q = `SELECT ` + tenantColumns + ` FROM tenants WHERE slug = :slug`

	return s.queryOne(ctx, q, map[string]any{"slug": slg.String()})
}

func (s *Store) queryOne(ctx context.Context, q string, data map[string]any) (tenantbus.Tenant, error) {
	var row tenantDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &row); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return tenantbus.Tenant{}, tenantbus.ErrNotFound
		}
		return tenantbus.Tenant{}, fmt.Errorf("query one: %w", err)
	}

	return toBusTenant(row)
}
