// Package scope runs tenant scoped work inside a single transaction that
// carries the row level security marker for the tenant. It is the only way
// to obtain a query handle for tenant scoped tables.
package scope

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sass-store/tenancy/business/sdk/access"
	"github.com/sass-store/tenancy/foundation/logger"
	"github.com/sass-store/tenancy/foundation/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Set of errors returned by the wrapper itself. Errors returned by the work
// function are passed through untouched.
var (
	ErrNoTenant    = errors.New("scope: tenant id is required")
	ErrScopeClosed = errors.New("scope: handle used after its transaction ended")
)

// The markers are transaction local (is_local = true) so they vanish with
// the transaction whatever the outcome.
const (
	setMarkers = `SELECT set_config('app.current_tenant_id', $1, true), set_config('app.current_user_id', $2, true)`

	clearMarkers = `SELECT set_config('app.current_tenant_id', '', true), set_config('app.current_user_id', '', true)`
)

// Beginner starts a transaction. *sqlx.DB satisfies it.
type Beginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// Work is the caller's query logic. The handle is only valid until Work
// returns.
type Work func(ctx context.Context, h *Handle) error

// Outcome is reported to an observer once a scope ends.
type Outcome string

// The set of scope outcomes.
const (
	Committed  Outcome = "commit"
	RolledBack Outcome = "rollback"
)

// Observer receives the outcome of every scope. Used for metrics.
type Observer func(ctx context.Context, tenantID uuid.UUID, outcome Outcome)

// Runner opens tenant scopes against a connection pool.
type Runner struct {
	log      *logger.Logger
	db       Beginner
	observer Observer
}

// Option configures a Runner.
type Option func(r *Runner)

// WithObserver registers a function called with the outcome of each scope.
func WithObserver(fn Observer) Option {
	return func(r *Runner) {
		r.observer = fn
	}
}

// NewRunner constructs a runner over the pool.
func NewRunner(log *logger.Logger, db Beginner, opts ...Option) *Runner {
	r := Runner{
		log: log,
		db:  db,
	}

	for _, opt := range opts {
		opt(&r)
	}

	return &r
}

// WithTenantContext begins a transaction, sets the tenant marker as the
// first statement, and invokes work. On success the marker is cleared and
// the transaction committed. On error, panic or cancellation the transaction
// is rolled back. An error from work is returned as the same value.
func (r *Runner) WithTenantContext(ctx context.Context, tenantID uuid.UUID, p access.Principal, work Work) (err error) {
	if tenantID == uuid.Nil {
		return ErrNoTenant
	}

	ctx, span := otel.AddSpan(ctx, "business.sdk.scope.withTenantContext", attribute.String("tenant_id", tenantID.String()))
	defer span.End()

	// The transaction is bound to ctx, database/sql rolls it back if the
	// request is cancelled before commit.
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	h := &Handle{
		tenantID:  tenantID,
		principal: p,
		tx:        tx,
	}

	committed := false

	defer func() {
		h.close()

		if committed {
			r.observe(ctx, tenantID, Committed)
			return
		}

		r.rollback(ctx, tx, tenantID)

		if rec := recover(); rec != nil {
			panic(rec)
		}
	}()

	var userID string
	if !p.IsAnonymous() {
		userID = p.UserID.String()
	}

	if _, err := tx.ExecContext(ctx, setMarkers, tenantID.String(), userID); err != nil {
		return fmt.Errorf("set tenant context: %w", err)
	}

	if err := work(ctx, h); err != nil {
		return err
	}

	h.close()

	if _, err := tx.ExecContext(ctx, clearMarkers); err != nil {
		return fmt.Errorf("clear tenant context: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	committed = true

	return nil
}

// WithResult is WithTenantContext for work that produces a value. The zero
// value of T is returned on failure.
func WithResult[T any](ctx context.Context, r *Runner, tenantID uuid.UUID, p access.Principal, work func(ctx context.Context, h *Handle) (T, error)) (T, error) {
	var out T

	err := r.WithTenantContext(ctx, tenantID, p, func(ctx context.Context, h *Handle) error {
		v, err := work(ctx, h)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return out, nil
}

func (r *Runner) rollback(ctx context.Context, tx *sqlx.Tx, tenantID uuid.UUID) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		r.log.Error(context.WithoutCancel(ctx), "scope: rollback", "tenant_id", tenantID, "ERROR", err)
	}

	r.observe(ctx, tenantID, RolledBack)
}

func (r *Runner) observe(ctx context.Context, tenantID uuid.UUID, outcome Outcome) {
	if r.observer != nil {
		r.observer(ctx, tenantID, outcome)
	}
}
