package productdb

import (
	"fmt"

	"github.com/sass-store/tenancy/business/domain/productbus"
	"github.com/sass-store/tenancy/business/sdk/order"
)

var orderByFields = map[string]string{
	productbus.OrderByID:        "product_id",
	productbus.OrderByName:      "name",
	productbus.OrderByPrice:     "price",
	productbus.OrderBySKU:       "sku",
	productbus.OrderByCreatedAt: "created_at",
}

func orderByClause(orderBy order.By) (string, error) {
	by, exists := orderByFields[orderBy.Field]
	if !exists {
		return "", fmt.Errorf("field %q does not exist", orderBy.Field)
	}

	return " ORDER BY " + by + " " + orderBy.Direction, nil
}
