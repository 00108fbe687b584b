package tenantbus

import (
	"time"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/business/types/name"
	"github.com/sass-store/tenancy/business/types/slug"
	"github.com/sass-store/tenancy/business/types/tenantmode"
	"github.com/sass-store/tenancy/business/types/tenantstatus"
)

// Tenant represents a salon workspace in the system.
type Tenant struct {
	ID        uuid.UUID
	Slug      slug.Slug
	Name      name.Name
	Mode      tenantmode.Mode
	Status    tenantstatus.Status
	Timezone  string
	Branding  Branding
	Contact   Contact
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Suspended reports whether the tenant has been suspended.
func (t Tenant) Suspended() bool {
	return t.Status.Equal(tenantstatus.Suspended)
}

// Branding holds the storefront look of a tenant.
type Branding struct {
	LogoURL        string `json:"logoUrl,omitempty"`
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
}

// Contact holds the public contact details of a tenant.
type Contact struct {
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// NewTenant contains information needed to create a new tenant.
type NewTenant struct {
	Slug     slug.Slug
	Name     name.Name
	Mode     tenantmode.Mode
	Timezone string
	Branding Branding
	Contact  Contact
}

// UpdateTenant contains information needed to update a tenant.
type UpdateTenant struct {
	Name     *name.Name
	Mode     *tenantmode.Mode
	Status   *tenantstatus.Status
	Timezone *string
	Branding *Branding
	Contact  *Contact
}

// Source tells how a tenant was derived from a request.
type Source string

// The set of sources a tenant can be resolved from.
const (
	SourcePath      Source = "path"
	SourceSubdomain Source = "subdomain"
)

// Resolution is the outcome of resolving a request to a tenant. Suspended
// tenants still resolve, the caller decides what to do with them.
type Resolution struct {
	Tenant    Tenant
	Source    Source
	Suspended bool
}
