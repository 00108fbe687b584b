package productbus

import (
	"time"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/business/types/name"
	"github.com/sass-store/tenancy/business/types/sku"
	"github.com/shopspring/decimal"
)

// Product represents an item in a tenant's catalog.
type Product struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	SKU         sku.SKU
	Name        name.Name
	Description string
	Price       decimal.Decimal
	Category    string
	Featured    bool
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewProduct is what we require from clients when adding a Product. The
// tenant always comes from the scope.
type NewProduct struct {
	SKU         sku.SKU
	Name        name.Name
	Description string
	Price       decimal.Decimal
	Category    string
	Featured    bool
}

// UpdateProduct defines what information may be provided to modify an
// existing Product.
type UpdateProduct struct {
	Name        *name.Name
	Description *string
	Price       *decimal.Decimal
	Category    *string
	Featured    *bool
	Active      *bool
}
