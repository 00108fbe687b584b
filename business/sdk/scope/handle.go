package scope

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sass-store/tenancy/business/sdk/access"
)

// Handle is the query handle of one tenant scope. Statements issued through
// it run on the scope's transaction one at a time.
type Handle struct {
	mu        sync.Mutex
	tenantID  uuid.UUID
	principal access.Principal
	tx        *sqlx.Tx
	closed    bool
}

// TenantID returns the tenant the scope is bound to.
func (h *Handle) TenantID() uuid.UUID {
	return h.tenantID
}

// Principal returns the principal the scope was opened for.
func (h *Handle) Principal() access.Principal {
	return h.principal
}

// Run executes fn against the scope's transaction. It returns ErrScopeClosed
// once the scope has ended.
func (h *Handle) Run(fn func(ec sqlx.ExtContext) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrScopeClosed
	}

	return fn(h.tx)
}

func (h *Handle) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
}
