package productapp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sass-store/tenancy/app/sdk/errs"
	"github.com/sass-store/tenancy/business/domain/productbus"
	"github.com/sass-store/tenancy/business/types/name"
	"github.com/sass-store/tenancy/business/types/sku"
	"github.com/shopspring/decimal"
)

// Product represents an item in a tenant's catalog.
type Product struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenantId"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Featured    bool   `json:"featured"`
	Active      bool   `json:"active"`
	DateCreated string `json:"dateCreated"`
	DateUpdated string `json:"dateUpdated"`
}

// Encode implements the web.Encoder interface.
func (app Product) Encode() ([]byte, string, error) {
	data, err := json.Marshal(app)
	return data, "application/json", err
}

func toAppProduct(prd productbus.Product) Product {
	return Product{
		ID:          prd.ID.String(),
		TenantID:    prd.TenantID.String(),
		SKU:         prd.SKU.String(),
		Name:        prd.Name.String(),
		Description: prd.Description,
		Price:       prd.Price.StringFixed(2),
		Category:    prd.Category,
		Featured:    prd.Featured,
		Active:      prd.Active,
		DateCreated: prd.CreatedAt.Format(time.RFC3339),
		DateUpdated: prd.UpdatedAt.Format(time.RFC3339),
	}
}

func toAppProducts(prds []productbus.Product) []Product {
	app := make([]Product, len(prds))
	for i, prd := range prds {
		app[i] = toAppProduct(prd)
	}
	return app
}

// CreatedProduct answers a create request with 201.
type CreatedProduct struct {
	Product
}

// HTTPStatus implements the web package httpStatus interface.
func (CreatedProduct) HTTPStatus() int {
	return http.StatusCreated
}

// =============================================================================

// NewProduct defines the data needed to add a product to the catalog.
type NewProduct struct {
	SKU         string `json:"sku" validate:"required"`
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Price       string `json:"price" validate:"required"`
	Category    string `json:"category"`
	Featured    bool   `json:"featured"`
}

// Decode implements the web.Decoder interface.
func (app *NewProduct) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

// Validate checks the data in the model is considered clean.
func (app NewProduct) Validate() error {
	if err := errs.Check(app); err != nil {
		return errs.New(errs.InvalidArgument, fmt.Errorf("validate: %w", err))
	}
	return nil
}

func toBusNewProduct(app NewProduct) (productbus.NewProduct, error) {
	var fieldErrors errs.FieldErrors

	s, err := sku.Parse(app.SKU)
	if err != nil {
		fieldErrors.Add("sku", err)
	}

	nme, err := name.Parse(app.Name)
	if err != nil {
		fieldErrors.Add("name", err)
	}

	price, err := decimal.NewFromString(app.Price)
	if err != nil {
		fieldErrors.Add("price", err)
	}

	if fieldErrors != nil {
		return productbus.NewProduct{}, fieldErrors.ToError()
	}

	bus := productbus.NewProduct{
		SKU:         s,
		Name:        nme,
		Description: app.Description,
		Price:       price,
		Category:    app.Category,
		Featured:    app.Featured,
	}

	return bus, nil
}

// =============================================================================

// UpdateProduct defines what may change on a product. The SKU is fixed.
type UpdateProduct struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *string `json:"price"`
	Category    *string `json:"category"`
	Featured    *bool   `json:"featured"`
	Active      *bool   `json:"active"`
}

// Decode implements the web.Decoder interface.
func (app *UpdateProduct) Decode(data []byte) error {
	return json.Unmarshal(data, app)
}

func toBusUpdateProduct(app UpdateProduct) (productbus.UpdateProduct, error) {
	var fieldErrors errs.FieldErrors

	bus := productbus.UpdateProduct{
		Description: app.Description,
		Category:    app.Category,
		Featured:    app.Featured,
		Active:      app.Active,
	}

	if app.Name != nil {
		nme, err := name.Parse(*app.Name)
		switch err {
		case nil:
			bus.Name = &nme
		default:
			fieldErrors.Add("name", err)
		}
	}

	if app.Price != nil {
		price, err := decimal.NewFromString(*app.Price)
		switch err {
		case nil:
			bus.Price = &price
		default:
			fieldErrors.Add("price", err)
		}
	}

	if fieldErrors != nil {
		return productbus.UpdateProduct{}, fieldErrors.ToError()
	}

	return bus, nil
}
