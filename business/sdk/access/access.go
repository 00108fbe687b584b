// Package access decides whether a principal may exercise a capability on a
// tenant. Decisions are pure functions of their inputs.
package access

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/business/types/capability"
	"github.com/sass-store/tenancy/business/types/role"
)

// ErrDenied is wrapped by every error produced from a deny decision.
var ErrDenied = errors.New("access denied")

// Principal is the identity acting on a request. The zero value is the
// anonymous principal.
type Principal struct {
	UserID   uuid.UUID
	Role     role.Role
	TenantID *uuid.UUID
}

// Anonymous represents a request without a valid session.
var Anonymous = Principal{}

// IsAnonymous reports whether the principal carries no identity.
func (p Principal) IsAnonymous() bool {
	return p.UserID == uuid.Nil
}

// IsGlobalAdmin reports whether the principal may act on any tenant.
func (p Principal) IsGlobalAdmin() bool {
	return !p.IsAnonymous() && p.Role.Equal(role.Admin)
}

// BelongsTo reports whether the principal is affiliated with the tenant.
func (p Principal) BelongsTo(tenantID uuid.UUID) bool {
	return p.TenantID != nil && *p.TenantID == tenantID
}

// Target is the tenant side of an access decision.
type Target struct {
	TenantID  uuid.UUID
	Suspended bool
}

// =============================================================================

// Reason explains a deny decision.
type Reason struct {
	value string
}

// The set of reasons a request can be denied.
var (
	Unauthenticated   = Reason{"unauthenticated"}
	TenantSuspended   = Reason{"tenant_suspended"}
	CrossTenantAccess = Reason{"cross_tenant_access"}
	InsufficientRole  = Reason{"insufficient_role"}
)

// String returns the name of the reason.
func (r Reason) String() string {
	return r.value
}

// Equal provides support for the go-cmp package and testing.
func (r Reason) Equal(r2 Reason) bool {
	return r.value == r2.value
}

// =============================================================================

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Allow is the decision granting access.
var Allow = Decision{Allowed: true}

// Deny constructs a deny decision for the reason.
func Deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Err returns nil for an allow decision, otherwise an error wrapping ErrDenied.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}

	return fmt.Errorf("%w: %s", ErrDenied, d.Reason)
}

// String implements the stringer interface.
func (d Decision) String() string {
	if d.Allowed {
		return "allow"
	}

	return "deny(" + d.Reason.String() + ")"
}

// =============================================================================

// Authorize decides whether the principal may exercise the capability on the
// target tenant. Admins are global and skip the tenant checks.
func Authorize(p Principal, t Target, c capability.Capability) Decision {
	if p.IsAnonymous() {
		return Deny(Unauthenticated)
	}

	if p.IsGlobalAdmin() {
		return Allow
	}

	if t.Suspended {
		return Deny(TenantSuspended)
	}

	if !p.BelongsTo(t.TenantID) {
		return Deny(CrossTenantAccess)
	}

	if !c.GrantedTo(p.Role) {
		return Deny(InsufficientRole)
	}

	return Allow
}

// AuthorizeAdmin decides whether the principal may use platform operations
// that are not bound to a tenant.
func AuthorizeAdmin(p Principal) Decision {
	if p.IsAnonymous() {
		return Deny(Unauthenticated)
	}

	if !p.IsGlobalAdmin() {
		return Deny(InsufficientRole)
	}

	return Allow
}
