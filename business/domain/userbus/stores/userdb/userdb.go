// Package userdb persists platform and tenant accounts in the users table.
// The table sits outside row level security: the session extractor reads it
// before any tenant scope exists, so every tenant restriction here is an
// explicit predicate supplied by the caller.
package userdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sass-store/tenancy/business/domain/userbus"
	"github.com/sass-store/tenancy/business/sdk/order"
	"github.com/sass-store/tenancy/business/sdk/page"
	"github.com/sass-store/tenancy/business/sdk/sqldb"
	"github.com/sass-store/tenancy/foundation/logger"
)

// emailConstraint is the unique constraint on users.email.
const emailConstraint = "users_email_key"

const userColumns = `user_id, tenant_id, name, email, role, password_hash, enabled, created_at, updated_at`

// Store reads and writes accounts.
type Store struct {
	log *logger.Logger
	db  sqlx.ExtContext
}

// NewStore constructs the user store over the pool.
func NewStore(log *logger.Logger, db *sqlx.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

// Create inserts the account. Emails are stored lower case.
func (s *Store) Create(ctx context.Context, usr userbus.User) error {
	const q = `
	INSERT INTO users (` + userColumns + `)
	VALUES
		(:user_id, :tenant_id, :name, :email, :role, :password_hash, :enabled, :created_at, :updated_at)`

	if err := sqldb.NamedExecContext(ctx, s.log, s.db, q, toDBUser(usr)); err != nil {
		return fmt.Errorf("create: %w", emailConflict(err))
	}

	return nil
}

// Update writes only the columns named in ch. The owning tenant and
// creation time never change once the row exists.
func (s *Store) Update(ctx context.Context, userID uuid.UUID, ch userbus.Changes) error {
	data := map[string]any{
		"user_id":    userID.String(),
		"updated_at": ch.UpdatedAt.UTC(),
	}
	var set []string

	column := func(col string, value any) {
		data[col] = value
		set = append(set, col+" = :"+col)
	}

	if ch.Name != nil {
		column("name", ch.Name.String())
	}
	if ch.Email != nil {
		column("email", strings.ToLower(ch.Email.Address))
	}
	if ch.Role != nil {
		column("role", ch.Role.String())
	}
	if ch.PasswordHash != nil {
		column("password_hash", ch.PasswordHash)
	}
	if ch.Enabled != nil {
		column("enabled", *ch.Enabled)
	}
	set = append(set, "updated_at = :updated_at")

	q := "UPDATE users SET " + strings.Join(set, ", ") + " WHERE user_id = :user_id"

	n, err := sqldb.NamedExecContextRows(ctx, s.log, s.db, q, data)
	if err != nil {
		return fmt.Errorf("update: %w", emailConflict(err))
	}

	if n == 0 {
		return fmt.Errorf("update[%s]: %w", userID, userbus.ErrNotFound)
	}

	return nil
}

// Query returns one page of accounts matching the filter.
func (s *Store) Query(ctx context.Context, filter userbus.QueryFilter, orderBy order.By, pg page.Page) ([]userbus.User, error) {
	col, ok := orderColumns[orderBy.Field]
	if !ok {
		return nil, fmt.Errorf("order: field %q does not exist", orderBy.Field)
	}

	where, data := predicates(filter)
	data["offset"] = pg.Offset()
	data["rows_per_page"] = pg.RowsPerPage()

	buf := bytes.NewBufferString(`SELECT ` + userColumns + ` FROM users`)
	buf.WriteString(where)
	fmt.Fprintf(buf, " ORDER BY %s %s", col, orderBy.Direction)
	buf.WriteString(" OFFSET :offset ROWS FETCH NEXT :rows_per_page ROWS ONLY")

	var rows []userDB
	if err := sqldb.NamedQuerySlice(ctx, s.log, s.db, buf.String(), data, &rows); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return toBusUsers(rows)
}

// Count returns how many accounts match the filter.
func (s *Store) Count(ctx context.Context, filter userbus.QueryFilter) (int, error) {
	where, data := predicates(filter)

	var total struct {
		Count int `db:"count"`
	}
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, `SELECT count(1) FROM users`+where, data, &total); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}

	return total.Count, nil
}

// QueryByID finds one account by primary key.
func (s *Store) QueryByID(ctx context.Context, userID uuid.UUID) (userbus.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE user_id = :user_id`

	return s.queryOne(ctx, q, map[string]any{"user_id": userID.String()})
}

// QueryByEmail finds one account by login email, ignoring case.
func (s *Store) QueryByEmail(ctx context.Context, email mail.Address) (userbus.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = :email`

	return s.queryOne(ctx, q, map[string]any{"email": strings.ToLower(email.Address)})
}

func (s *Store) queryOne(ctx context.Context, q string, data map[string]any) (userbus.User, error) {
	var row userDB
	if err := sqldb.NamedQueryStruct(ctx, s.log, s.db, q, data, &row); err != nil {
		if errors.Is(err, sqldb.ErrDBNotFound) {
			return userbus.User{}, userbus.ErrNotFound
		}
		return userbus.User{}, fmt.Errorf("query one: %w", err)
	}

	return toBusUser(row)
}

func emailConflict(err error) error {
	var dup sqldb.ErrDBDuplicatedEntry
	if errors.As(err, &dup) && dup.Column == emailConstraint {
		return userbus.ErrUniqueEmail
	}

	return err
}
