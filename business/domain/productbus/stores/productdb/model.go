package productdb

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/business/domain/productbus"
	"github.com/sass-store/tenancy/business/types/name"
	"github.com/sass-store/tenancy/business/types/sku"
	"github.com/shopspring/decimal"
)

type productDB struct {
	ID          uuid.UUID       `db:"product_id"`
	TenantID    uuid.UUID       `db:"tenant_id"`
	SKU         string          `db:"sku"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Category    string          `db:"category"`
	Featured    bool            `db:"featured"`
	Active      bool            `db:"active"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func toDBProduct(bus productbus.Product) productDB {
	return productDB{
		ID:          bus.ID,
		TenantID:    bus.TenantID,
		SKU:         bus.SKU.String(),
		Name:        bus.Name.String(),
		Description: bus.Description,
		Price:       bus.Price,
		Category:    bus.Category,
		Featured:    bus.Featured,
		Active:      bus.Active,
		CreatedAt:   bus.CreatedAt.UTC(),
		UpdatedAt:   bus.UpdatedAt.UTC(),
	}
}

func toBusProduct(db productDB) (productbus.Product, error) {
	code, err := sku.Parse(db.SKU)
	if err != nil {
		return productbus.Product{}, fmt.Errorf("parse sku: %w", err)
	}

	nme, err := name.Parse(db.Name)
	if err != nil {
		return productbus.Product{}, fmt.Errorf("parse name: %w", err)
	}

	bus := productbus.Product{
		ID:          db.ID,
		TenantID:    db.TenantID,
		SKU:         code,
		Name:        nme,
		Description: db.Description,
		Price:       db.Price,
		Category:    db.Category,
		Featured:    db.Featured,
		Active:      db.Active,
		CreatedAt:   db.CreatedAt.In(time.Local),
		UpdatedAt:   db.UpdatedAt.In(time.Local),
	}

	return bus, nil
}

func toBusProducts(dbs []productDB) ([]productbus.Product, error) {
	bus := make([]productbus.Product, len(dbs))

	for i, db := range dbs {
		var err error
		bus[i], err = toBusProduct(db)
		if err != nil {
			return nil, err
		}
	}

	return bus, nil
}
