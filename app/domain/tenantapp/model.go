package tenantapp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sass-store/tenancy/app/sdk/errs"
	"github.com/sass-store/tenancy/business/domain/tenantbus"
	"github.com/sass-store/tenancy/business/types/name"
	"github.com/sass-store/tenancy/business/types/phone"
	"github.com/sass-store/tenancy/business/types/slug"
	"github.com/sass-store/tenancy/business/types/tenantmode"
	"github.com/sass-store/tenancy/business/types/tenantstatus"
)

// Branding is the storefront look of a tenant.
type Branding struct {
	LogoURL        string `json:"logoUrl,omitempty" validate:"omitempty,url"`
	PrimaryColor   string `json:"primaryColor,omitempty" validate:"omitempty,hexcolor"`
	SecondaryColor string `json:"secondaryColor,omitempty" validate:"omitempty,hexcolor"`
}

// Contact is the public contact details of a tenant.
type Contact struct {
	Email   string `json:"email,omitempty" validate:"omitempty,email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Tenant represents a salon workspace.
type Tenant struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Mode        string   `json:"mode"`
	Status      string   `json:"status"`
	Timezone    string   `json:"timezone"`
	Branding    Branding `json:"branding"`
	Contact     Contact  `json:"contact"`
	DateCreated string   `json:"dateCreated"`
	DateUpdated string   `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (app Tenant) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

func toAppTenant(t tenantbus.Tenant) Tenant {
	return Tenant{
		ID:       t.ID.String(),
		Slug:     t.Slug.String(),
		Name:     t.Name.String(),
		Mode:     t.Mode.String(),
		Status:   t.Status.String(),
		Timezone: t.Timezone,
		Branding: Branding{
			LogoURL:        t.Branding.LogoURL,
			PrimaryColor:   t.Branding.PrimaryColor,
			SecondaryColor: t.Branding.SecondaryColor,
		},
		Contact: Contact{
			Email:   t.Contact.Email,
			Phone:   t.Contact.Phone,
			Address: t.Contact.Address,
		},
		DateCreated: t.CreatedAt.Format(time.RFC3339),
		DateUpdated: t.UpdatedAt.Format(time.RFC3339),
	}
}

func toBusBranding(app Branding) tenantbus.Branding {
	return tenantbus.Branding{
		LogoURL:        app.LogoURL,
		PrimaryColor:   app.PrimaryColor,
		SecondaryColor: app.SecondaryColor,
	}
}

func toBusContact(app Contact) (tenantbus.Contact, error) {
	phn, err := phone.ParseOptional(app.Phone)
	if err != nil {
		return tenantbus.Contact{}, err
	}

	bus := tenantbus.Contact{
		Email:   app.Email,
		Phone:   phn.String(),
		Address: app.Address,
	}

	return bus, nil
}

// =============================================================================

// NewTenant defines the data needed to provision a tenant.
type NewTenant struct {
	Slug     string   `json:"slug" validate:"required"`
	Name     string   `json:"name" validate:"required"`
	Mode     string   `json:"mode"`
	Timezone string   `json:"timezone"`
	Branding Branding `json:"branding"`
	Contact  Contact  `json:"contact"`
}

// Decode implements the web.Decoder interface.
func (app *NewTenant) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewTenant) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewTenant(app NewTenant) (tenantbus.NewTenant, error) {
	var fieldErrors errs.FieldErrors

	slg, err := slug.Parse(app.Slug)
	if err != nil {
		fieldErrors.Add("slug", err)
	}

	nme, err := name.Parse(app.Name)
	if err != nil {
		fieldErrors.Add("name", err)
	}

	var mode tenantmode.Mode
	if app.Mode != "" {
		mode, err = tenantmode.Parse(app.Mode)
		if err != nil {
			fieldErrors.Add("mode", err)
		}
	}

	contact, err := toBusContact(app.Contact)
	if err != nil {
		fieldErrors.Add("contact.phone", err)
	}

	if fieldErrors != nil {
		return tenantbus.NewTenant{}, fieldErrors.ToError()
	}

	bus := tenantbus.NewTenant{
		Slug:     slg,
		Name:     nme,
		Mode:     mode,
		Timezone: app.Timezone,
		Branding: toBusBranding(app.Branding),
		Contact:  contact,
	}

	return bus, nil
}

// =============================================================================

// UpdateTenant defines the settings a tenant manager may change. The slug
// and status are not part of it.
type UpdateTenant struct {
	Name     *string   `json:"name"`
	Mode     *string   `json:"mode"`
	Timezone *string   `json:"timezone"`
	Branding *Branding `json:"branding"`
	Contact  *Contact  `json:"contact"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateTenant) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateTenant) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateTenant(app UpdateTenant) (tenantbus.UpdateTenant, error) {
	var fieldErrors errs.FieldErrors
	var bus tenantbus.UpdateTenant

	if app.Name != nil {
		nme, err := name.Parse(*app.Name)
		switch err {
		case nil:
			bus.Name = &nme
		default:
			fieldErrors.Add("name", err)
		}
	}

	if app.Mode != nil {
		mode, err := tenantmode.Parse(*app.Mode)
		switch err {
		case nil:
			bus.Mode = &mode
		default:
			fieldErrors.Add("mode", err)
		}
	}

	if app.Contact != nil {
		c, err := toBusContact(*app.Contact)
		switch err {
		case nil:
			bus.Contact = &c
		default:
			fieldErrors.Add("contact.phone", err)
		}
	}

	if fieldErrors != nil {
		return tenantbus.UpdateTenant{}, fieldErrors.ToError()
	}

	bus.Timezone = app.Timezone

	if app.Branding != nil {
		b := toBusBranding(*app.Branding)
		bus.Branding = &b
	}

	return bus, nil
}

// =============================================================================

// UpdateStatus activates or suspends a tenant.
type UpdateStatus struct {
	Status string `json:"status" validate:"required"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateStatus) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app UpdateStatus) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusUpdateStatus(app UpdateStatus) (tenantbus.UpdateTenant, error) {
	status, err := tenantstatus.Parse(app.Status)
	if err != nil {
		return tenantbus.UpdateTenant{}, errs.NewFieldErrors("status", err)
	}

	return tenantbus.UpdateTenant{Status: &status}, nil
}

// CreatedTenant answers a provisioning request with 201.
type CreatedTenant struct {
	Tenant
}

// HTTPStatus implements the web package httpStatus interface.
func (CreatedTenant) HTTPStatus() int {
	return http.StatusCreated
}
