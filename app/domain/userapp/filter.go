package userapp

import (
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sass-store/tenancy/app/sdk/errs"
	"github.com/sass-store/tenancy/business/domain/userbus"
	"github.com/sass-store/tenancy/business/types/name"
	"github.com/sass-store/tenancy/business/types/role"
)

// sortKeys maps the orderBy values accepted on the wire to userbus fields.
var sortKeys = map[string]string{
	"user_id": userbus.OrderByID,
	"name":    userbus.OrderByName,
	"email":   userbus.OrderByEmail,
	"role":    userbus.OrderByRole,
	"enabled": userbus.OrderByEnabled,
}

// tenantFilter builds the people filter from the query string. The tenant
// predicate comes from the resolved tenant and cannot be overridden.
func tenantFilter(values url.Values, tenantID uuid.UUID) (userbus.QueryFilter, error) {
	filter := userbus.QueryFilter{
		TenantID: &tenantID,
	}

	var fe errs.FieldErrors

	param := func(key string, parse func(string) error) {
		v := values.Get(key)
		if v == "" {
			return
		}
		if err := parse(v); err != nil {
			fe.Add(key, err)
		}
	}

	param("user_id", func(v string) error {
		id, err := uuid.Parse(v)
		filter.ID = &id
		return err
	})

	param("name", func(v string) error {
		n, err := name.Parse(v)
		filter.Name = &n
		return err
	})

	param("email", func(v string) error {
		addr, err := mail.ParseAddress(v)
		filter.Email = addr
		return err
	})

	param("role", func(v string) error {
		r, err := role.Parse(strings.ToUpper(v))
		filter.Role = &r
		return err
	})

	param("start_created_date", func(v string) error {
		t, err := time.Parse(time.RFC3339, v)
		filter.StartCreatedAt = &t
		return err
	})

	param("end_created_date", func(v string) error {
		t, err := time.Parse(time.RFC3339, v)
		filter.EndCreatedAt = &t
		return err
	})

	if fe != nil {
		return userbus.QueryFilter{}, fe.ToError()
	}

	return filter, nil
}
