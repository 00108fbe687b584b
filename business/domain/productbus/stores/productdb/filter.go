package productdb

import (
	"bytes"
	"strings"

	"github.com/sass-store/tenancy/business/domain/productbus"
)

// applyFilter always starts with the tenant predicate. Row level security
// enforces the same rule, the predicate keeps plans on the tenant index.
func applyFilter(tenantID string, filter productbus.QueryFilter, data map[string]any, buf *bytes.Buffer) {
	data["tenant_id"] = tenantID
	wc := []string{"tenant_id = :tenant_id"}

	if filter.ID != nil {
		data["product_id"] = filter.ID.String()
		wc = append(wc, "product_id = :product_id")
	}

	if filter.Name != nil {
		data["name"] = "%" + *filter.Name + "%"
		wc = append(wc, "name ILIKE :name")
	}

	if filter.Category != nil {
		data["category"] = *filter.Category
		wc = append(wc, "category = :category")
	}

	if filter.Featured != nil {
		data["featured"] = *filter.Featured
		wc = append(wc, "featured = :featured")
	}

	if filter.Active != nil {
		data["active"] = *filter.Active
		wc = append(wc, "active = :active")
	}

	if filter.MinPrice != nil {
		data["min_price"] = filter.MinPrice.String()
		wc = append(wc, "price >= :min_price")
	}

	if filter.MaxPrice != nil {
		data["max_price"] = filter.MaxPrice.String()
		wc = append(wc, "price <= :max_price")
	}

	buf.WriteString(" WHERE ")
	buf.WriteString(strings.Join(wc, " AND "))
}
