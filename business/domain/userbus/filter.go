package userbus

import (
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/business/types/name"
	"github.com/sass-store/tenancy/business/types/role"
)

// QueryFilter holds the available fields a query can be filtered on.
// TenantID is always set by callers listing a tenant's people.
type QueryFilter struct {
	ID             *uuid.UUID
	TenantID       *uuid.UUID
	Name           *name.Name
	Email          *mail.Address
	Role           *role.Role
	StartCreatedAt *time.Time
	EndCreatedAt   *time.Time
}
