package userdb

import (
	"strings"

	"github.com/sass-store/tenancy/business/domain/userbus"
)

var orderColumns = map[string]string{
	userbus.OrderByID:      "user_id",
	userbus.OrderByName:    "name",
	userbus.OrderByEmail:   "email",
	userbus.OrderByRole:    "role",
	userbus.OrderByEnabled: "enabled",
}

// predicates turns the filter into a WHERE clause and its named arguments.
// The tenant predicate comes first so the planner can use users_tenant_idx.
func predicates(filter userbus.QueryFilter) (string, map[string]any) {
	data := make(map[string]any)
	var conds []string

	add := func(key string, value any, cond string) {
		data[key] = value
		conds = append(conds, cond)
	}

	if filter.TenantID != nil {
		add("tenant_id", filter.TenantID.String(), "tenant_id = :tenant_id")
	}
	if filter.ID != nil {
		add("user_id", filter.ID.String(), "user_id = :user_id")
	}
	if filter.Name != nil {
		add("name", "%"+filter.Name.String()+"%", "name ILIKE :name")
	}
	if filter.Email != nil {
		add("email", strings.ToLower(filter.Email.Address), "email = :email")
	}
	if filter.Role != nil {
		add("role", filter.Role.String(), "role = :role")
	}
	if filter.StartCreatedAt != nil {
		add("start_created_at", filter.StartCreatedAt.UTC(), "created_at >= :start_created_at")
	}
	if filter.EndCreatedAt != nil {
		add("end_created_at", filter.EndCreatedAt.UTC(), "created_at <= :end_created_at")
	}

	if len(conds) == 0 {
		return "", data
	}

	return " WHERE " + strings.Join(conds, " AND "), data
}
