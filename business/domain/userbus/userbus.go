// Package userbus owns accounts: platform administrators and the people of
// each tenant. It enforces the affiliation rule (administrators belong to no
// tenant, everybody else to exactly one) and password verification.
package userbus

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/business/sdk/order"
	"github.com/sass-store/tenancy/business/sdk/page"
	"github.com/sass-store/tenancy/foundation/otel"
	"golang.org/x/crypto/bcrypt"
)

// Set of error variables for account operations.
var (
	ErrNotFound              = errors.New("user not found")
	ErrUniqueEmail           = errors.New("email is not unique")
	ErrTenantRequired        = errors.New("non admin users must belong to a tenant")
	ErrAdminHasTenant        = errors.New("admin users do not belong to a tenant")
	ErrAuthenticationFailure = errors.New("authentication failed")
)

// Storer declares what account persistence must provide.
type Storer interface {
	Create(ctx context.Context, usr User) error
	Update(ctx context.Context, userID uuid.UUID, ch Changes) error
	Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]User, error)
	Count(ctx context.Context, filter QueryFilter) (int, error)
	QueryByID(ctx context.Context, userID uuid.UUID) (User, error)
	QueryByEmail(ctx context.Context, email mail.Address) (User, error)
}

// Core is the account api.
type Core struct {
	storer Storer
}

// NewCore constructs the account api over a store.
func NewCore(storer Storer) *Core {
	return &Core{
		storer: storer,
	}
}

// Create registers an enabled account with a hashed password.
func (c *Core) Create(ctx context.Context, nu NewUser) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.create")
	defer span.End()

	if err := affiliation(nu.Role, nu.TenantID); err != nil {
		return User{}, err
	}

	hash, err := hashPassword(nu.Password.String())
	if err != nil {
		return User{}, err
	}

	now := time.Now()

	usr := User{
		ID:           uuid.New(),
		TenantID:     nu.TenantID,
		Name:         nu.Name,
		Email:        canonical(nu.Email),
		PasswordHash: hash,
		Role:         nu.Role,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := c.storer.Create(ctx, usr); err != nil {
		return User{}, fmt.Errorf("create[%s]: %w", usr.Email.Address, err)
	}

	return usr, nil
}

// Update writes the changes in uu for usr and returns the stored account.
// usr may be a cached copy; only the columns named in uu are written.
func (c *Core) Update(ctx context.Context, usr User, uu UpdateUser) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.update")
	defer span.End()

	ch, err := usr.changes(uu)
	if err != nil {
		return User{}, err
	}

	if err := c.storer.Update(ctx, usr.ID, ch); err != nil {
		return User{}, fmt.Errorf("update[%s]: %w", usr.ID, err)
	}

	stored, err := c.storer.QueryByID(ctx, usr.ID)
	if err != nil {
		return User{}, fmt.Errorf("reload[%s]: %w", usr.ID, err)
	}

	return stored, nil
}

// Query returns one page of accounts. Tenant listings always carry a
// TenantID in the filter.
func (c *Core) Query(ctx context.Context, filter QueryFilter, orderBy order.By, page page.Page) ([]User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.query")
	defer span.End()

	usrs, err := c.storer.Query(ctx, filter, orderBy, page)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	return usrs, nil
}

// Count returns how many accounts match the filter.
func (c *Core) Count(ctx context.Context, filter QueryFilter) (int, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.count")
	defer span.End()

	return c.storer.Count(ctx, filter)
}

// QueryByID finds an account by id.
func (c *Core) QueryByID(ctx context.Context, userID uuid.UUID) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.queryByID")
	defer span.End()

	usr, err := c.storer.QueryByID(ctx, userID)
	if err != nil {
		return User{}, fmt.Errorf("user[%s]: %w", userID, err)
	}

	return usr, nil
}

// QueryByEmail finds an account by login email.
func (c *Core) QueryByEmail(ctx context.Context, email mail.Address) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.queryByEmail")
	defer span.End()

	email = canonical(email)

	usr, err := c.storer.QueryByEmail(ctx, email)
	if err != nil {
		return User{}, fmt.Errorf("user[%s]: %w", email.Address, err)
	}

	return usr, nil
}

// Authenticate verifies the password of the account behind email. Unknown
// emails, disabled accounts and wrong passwords all return
// ErrAuthenticationFailure, and an unknown email still pays for one bcrypt
// comparison so response time does not reveal which accounts exist.
func (c *Core) Authenticate(ctx context.Context, email mail.Address, password string) (User, error) {
	ctx, span := otel.AddSpan(ctx, "business.userbus.authenticate")
	defer span.End()

	usr, err := c.QueryByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrNotFound):
		bcrypt.CompareHashAndPassword(decoyHash(), []byte(password))
		return User{}, fmt.Errorf("unknown email: %w", ErrAuthenticationFailure)

	case err != nil:
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(usr.PasswordHash, []byte(password)); err != nil {
		return User{}, fmt.Errorf("password: %w", ErrAuthenticationFailure)
	}

	if !usr.Enabled {
		return User{}, fmt.Errorf("disabled: %w", ErrAuthenticationFailure)
	}

	return usr, nil
}

// Standing reports the account's current role, tenant and enabled flag. It
// backs the session check done on every authenticated request, so a missing
// account reads as disabled rather than as an error.
func (c *Core) Standing(ctx context.Context, userID uuid.UUID) (Standing, error) {
	usr, err := c.QueryByID(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		return Standing{}, nil
	case err != nil:
		return Standing{}, err
	}

	return Standing{
		Role:     usr.Role,
		TenantID: usr.TenantID,
		Enabled:  usr.Enabled,
	}, nil
}

// =============================================================================

var decoyHash = sync.OnceValue(func() []byte {
	hash, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-account"), bcrypt.DefaultCost)
	return hash
})

func hashPassword(pw string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return hash, nil
}

func canonical(email mail.Address) mail.Address {
	return mail.Address{Name: email.Name, Address: strings.ToLower(email.Address)}
}
