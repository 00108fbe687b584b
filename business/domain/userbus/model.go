package userbus

import (
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/business/types/name"
	"github.com/sass-store/tenancy/business/types/password"
	"github.com/sass-store/tenancy/business/types/role"
)

// User is an account. TenantID is nil only for platform administrators.
type User struct {
	ID           uuid.UUID
	TenantID     *uuid.UUID
	Name         name.Name
	Email        mail.Address
	Role         role.Role
	PasswordHash []byte
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Standing is the part of an account a session token depends on.
type Standing struct {
	Role     role.Role
	TenantID *uuid.UUID
	Enabled  bool
}

// NewUser is what it takes to register an account.
type NewUser struct {
	TenantID *uuid.UUID
	Name     name.Name
	Email    mail.Address
	Role     role.Role
	Password password.Password
}

// UpdateUser holds optional changes. There is no TenantID: an account never
// moves between tenants.
type UpdateUser struct {
	Name     *name.Name
	Email    *mail.Address
	Role     *role.Role
	Password *password.Password
	Enabled  *bool
}

// Changes lists the columns an update writes. Nil fields are left as
// stored, so an update made from a cached copy of a user cannot write back
// stale values for columns it did not touch.
type Changes struct {
	Name         *name.Name
	Email        *mail.Address
	Role         *role.Role
	PasswordHash []byte
	Enabled      *bool
	UpdatedAt    time.Time
}

// Apply returns usr with the changes applied.
func (ch Changes) Apply(usr User) User {
	if ch.Name != nil {
		usr.Name = *ch.Name
	}
	if ch.Email != nil {
		usr.Email = *ch.Email
	}
	if ch.Role != nil {
		usr.Role = *ch.Role
	}
	if ch.PasswordHash != nil {
		usr.PasswordHash = ch.PasswordHash
	}
	if ch.Enabled != nil {
		usr.Enabled = *ch.Enabled
	}
	usr.UpdatedAt = ch.UpdatedAt

	return usr
}

// changes validates uu against the account and turns it into the columns
// to write. The tenant of an account never changes, so the affiliation
// check is safe on a cached copy.
func (u User) changes(uu UpdateUser) (Changes, error) {
	ch := Changes{
		Name:      uu.Name,
		Role:      uu.Role,
		Enabled:   uu.Enabled,
		UpdatedAt: time.Now(),
	}

	if uu.Role != nil {
		if err := affiliation(*uu.Role, u.TenantID); err != nil {
			return Changes{}, err
		}
	}

	if uu.Email != nil {
		email := canonical(*uu.Email)
		ch.Email = &email
	}

	if uu.Password != nil {
		hash, err := hashPassword(uu.Password.String())
		if err != nil {
			return Changes{}, err
		}
		ch.PasswordHash = hash
	}

	return ch, nil
}

// affiliation checks a role against the tenant an account belongs to.
func affiliation(r role.Role, tenantID *uuid.UUID) error {
	admin := r.Equal(role.Admin)

	switch {
	case admin && tenantID != nil:
		return ErrAdminHasTenant
	case !admin && tenantID == nil:
		return ErrTenantRequired
	}

	return nil
}
