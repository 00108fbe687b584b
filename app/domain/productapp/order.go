package productapp

import "github.com/sass-store/tenancy/business/domain/productbus"

var orderByFields = map[string]string{
	"product_id":   productbus.OrderByID,
	"name":         productbus.OrderByName,
	"price":        productbus.OrderByPrice,
	"sku":          productbus.OrderBySKU,
	"date_created": productbus.OrderByCreatedAt,
}
