// Package capability represents the actions a principal can be allowed to
// perform on a tenant's data.
package capability

import (
	"fmt"
	"slices"
	"strings"

	"github.com/sass-store/tenancy/business/types/role"
)

// The set of capabilities and the lowest role that holds each one.
var (
	TenantRead   = newCapability("tenant:read", role.Client)
	TenantUpdate = newCapability("tenant:update", role.Manager)

	ProductsRead   = newCapability("products:read", role.Client)
	ProductsWrite  = newCapability("products:write", role.Staff)
	ProductsDelete = newCapability("products:delete", role.Manager)

	BookingsRead   = newCapability("bookings:read", role.Client)
	BookingsManage = newCapability("bookings:manage", role.Staff)

	StaffRead     = newCapability("staff:read", role.Manager)
	StaffManage   = newCapability("staff:manage", role.Admin)
	AnalyticsView = newCapability("analytics:view", role.Manager)
)

// =============================================================================

var capabilities = make(map[string]Capability)

// Capability represents a named permission.
type Capability struct {
	value   string
	minRole role.Role
}

func newCapability(value string, minRole role.Role) Capability {
	c := Capability{value, minRole}
	capabilities[value] = c
	return c
}

// String returns the name of the capability.
func (c Capability) String() string {
	return c.value
}

// MinRole returns the lowest role granted this capability.
func (c Capability) MinRole() role.Role {
	return c.minRole
}

// GrantedTo reports whether the role holds the capability.
func (c Capability) GrantedTo(r role.Role) bool {
	if c.value == "" {
		return false
	}

	return r.AtLeast(c.minRole)
}

// Equal provides support for the go-cmp package and testing.
func (c Capability) Equal(c2 Capability) bool {
	return c.value == c2.value
}

// MarshalText provides support for logging and any marshal needs.
func (c Capability) MarshalText() ([]byte, error) {
	return []byte(c.value), nil
}

// =============================================================================

// Parse parses the string value and returns a capability if one exists.
func Parse(value string) (Capability, error) {
	c, exists := capabilities[value]
	if !exists {
		return Capability{}, fmt.Errorf("invalid capability %q", value)
	}

	return c, nil
}

// MustParse parses the string value and returns a capability if one exists.
// If an error occurs the function panics.
func MustParse(value string) Capability {
	c, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return c
}

// For returns every capability held by the role, ordered by name.
func For(r role.Role) []Capability {
	var out []Capability
	for _, c := range capabilities {
		if c.GrantedTo(r) {
			out = append(out, c)
		}
	}

	slices.SortFunc(out, func(a, b Capability) int {
		return strings.Compare(a.value, b.value)
	})

	return out
}
