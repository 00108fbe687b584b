package tenantdb

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/business/domain/tenantbus"
	"github.com/sass-store/tenancy/business/types/name"
	"github.com/sass-store/tenancy/business/types/slug"
	"github.com/sass-store/tenancy/business/types/tenantmode"
	"github.com/sass-store/tenancy/business/types/tenantstatus"
)

// tenantDB represents the structure of the tenants table in the database.
type tenantDB struct {
	ID        uuid.UUID `db:"tenant_id"`
	Slug      string    `db:"slug"`
	Name      string    `db:"name"`
	Mode      string    `db:"mode"`
	Status    string    `db:"status"`
	Timezone  string    `db:"timezone"`
	Branding  []byte    `db:"branding"`
	Contact   []byte    `db:"contact"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func toDBTenant(bus tenantbus.Tenant) (tenantDB, error) {
	branding, err := json.Marshal(bus.Branding)
	if err != nil {
		return tenantDB{}, fmt.Errorf("marshal branding: %w", err)
	}

	contact, err := json.Marshal(bus.Contact)
	if err != nil {
		return tenantDB{}, fmt.Errorf("marshal contact: %w", err)
	}

	db := tenantDB{
		ID:        bus.ID,
		Slug:      bus.Slug.String(),
		Name:      bus.Name.String(),
		Mode:      bus.Mode.String(),
		Status:    bus.Status.String(),
		Timezone:  bus.Timezone,
		Branding:  branding,
		Contact:   contact,
		CreatedAt: bus.CreatedAt.UTC(),
		UpdatedAt: bus.UpdatedAt.UTC(),
	}

	return db, nil
}

func toBusTenant(db tenantDB) (tenantbus.Tenant, error) {
	slg, err := slug.Parse(db.Slug)
	if err != nil {
		return tenantbus.Tenant{}, fmt.Errorf("parse slug: %w", err)
	}

	nme, err := name.Parse(db.Name)
	if err != nil {
		return tenantbus.Tenant{}, fmt.Errorf("parse name: %w", err)
	}

	mode, err := tenantmode.Parse(db.Mode)
	if err != nil {
		return tenantbus.Tenant{}, fmt.Errorf("parse mode: %w", err)
	}

	status, err := tenantstatus.Parse(db.Status)
	if err != nil {
		return tenantbus.Tenant{}, fmt.Errorf("parse status: %w", err)
	}

	var branding tenantbus.Branding
	if len(db.Branding) > 0 {
		if err := json.Unmarshal(db.Branding, &branding); err != nil {
			return tenantbus.Tenant{}, fmt.Errorf("unmarshal branding: %w", err)
		}
	}

	var contact tenantbus.Contact
	if len(db.Contact) > 0 {
		if err := json.Unmarshal(db.Contact, &contact); err != nil {
			return tenantbus.Tenant{}, fmt.Errorf("unmarshal contact: %w", err)
		}
	}

	bus := tenantbus.Tenant{
		ID:        db.ID,
		Slug:      slg,
		Name:      nme,
		Mode:      mode,
		Status:    status,
		Timezone:  db.Timezone,
		Branding:  branding,
		Contact:   contact,
		CreatedAt: db.CreatedAt.In(time.Local),
		UpdatedAt: db.UpdatedAt.In(time.Local),
	}

	return bus, nil
}
