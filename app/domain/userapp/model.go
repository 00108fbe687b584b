package userapp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/app/sdk/errs"
	"github.com/sass-store/tenancy/business/domain/userbus"
	"github.com/sass-store/tenancy/business/types/name"
	"github.com/sass-store/tenancy/business/types/password"
	"github.com/sass-store/tenancy/business/types/role"
)

// User is the public view of an account. The password hash never leaves
// the business layer.
type User struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenantId,omitempty"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Enabled     bool   `json:"enabled"`
	DateCreated string `json:"dateCreated"`
	DateUpdated string `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (app User) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

// CreatedUser answers a create request with 201.
type CreatedUser struct {
	User
}

// HTTPStatus implements the web package httpStatus interface.
func (CreatedUser) HTTPStatus() int {
	return http.StatusCreated
}

func toAppUser(usr userbus.User) User {
	app := User{
		ID:          usr.ID.String(),
		Name:        usr.Name.String(),
		Email:       usr.Email.Address,
		Role:        usr.Role.String(),
		Enabled:     usr.Enabled,
		DateCreated: usr.CreatedAt.Format(time.RFC3339),
		DateUpdated: usr.UpdatedAt.Format(time.RFC3339),
	}

	if usr.TenantID != nil {
		app.TenantID = usr.TenantID.String()
	}

	return app
}

func toAppUsers(usrs []userbus.User) []User {
	out := make([]User, 0, len(usrs))
	for _, usr := range usrs {
		out = append(out, toAppUser(usr))
	}
	return out
}

// =============================================================================

// NewUser adds a person to the tenant named in the path. The tenant is never
// read from the body.
type NewUser struct {
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	Role            string `json:"role" validate:"required"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"passwordConfirm" validate:"eqfield=Password"`
}

// Decode implements the web.Decoder interface.
func (app *NewUser) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewUser) Validate() error {
	return validate(app)
}

func toBusNewUser(app NewUser, tenantID uuid.UUID) (userbus.NewUser, error) {
	nu := userbus.NewUser{
		TenantID: &tenantID,
	}

	var err error

	if nu.Role, err = parseRole(app.Role); err != nil {
		return userbus.NewUser{}, err
	}
	if nu.Email, err = parseEmail(app.Email); err != nil {
		return userbus.NewUser{}, err
	}
	if nu.Name, err = name.Parse(app.Name); err != nil {
		return userbus.NewUser{}, fmt.Errorf("name: %w", err)
	}
	if nu.Password, err = password.Parse(app.Password); err != nil {
		return userbus.NewUser{}, fmt.Errorf("password: %w", err)
	}

	return nu, nil
}

// =============================================================================

// UpdateUser changes a person of the tenant. Omitted fields are left alone.
type UpdateUser struct {
	Name            *string `json:"name"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Role            *string `json:"role"`
	Password        *string `json:"password"`
	PasswordConfirm *string `json:"passwordConfirm" validate:"omitempty,eqfield=Password"`
	Enabled         *bool   `json:"enabled"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateUser) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateUser) Validate() error {
	return validate(app)
}

func toBusUpdateUser(app UpdateUser) (userbus.UpdateUser, error) {
	uu := userbus.UpdateUser{
		Enabled: app.Enabled,
	}

	if app.Role != nil {
		r, err := parseRole(*app.Role)
		if err != nil {
			return userbus.UpdateUser{}, err
		}
		uu.Role = &r
	}

	if app.Email != nil {
		addr, err := parseEmail(*app.Email)
		if err != nil {
			return userbus.UpdateUser{}, err
		}
		uu.Email = &addr
	}

	if app.Name != nil {
		n, err := name.Parse(*app.Name)
		if err != nil {
			return userbus.UpdateUser{}, fmt.Errorf("name: %w", err)
		}
		uu.Name = &n
	}

	if app.Password != nil {
		pw, err := password.Parse(*app.Password)
		if err != nil {
			return userbus.UpdateUser{}, fmt.Errorf("password: %w", err)
		}
		uu.Password = &pw
	}

	return uu, nil
}

// =============================================================================

func validate(v any) error {
	if err := errs.Check(v); err != nil {
		return errs.New(errs.InvalidArgument, err)
	}
	return nil
}

// parseRole accepts role names in any case.
func parseRole(s string) (role.Role, error) {
	r, err := role.Parse(strings.ToUpper(strings.TrimSpace(s)))
	if err != nil {
		return role.Role{}, fmt.Errorf("role: %w", err)
	}
	return r, nil
}

func parseEmail(s string) (mail.Address, error) {
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return mail.Address{}, fmt.Errorf("email: %w", err)
	}
	return *addr, nil
}
