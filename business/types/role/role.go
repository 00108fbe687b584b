// Package role defines the account hierarchy. Roles are ranked: a role
// satisfies every requirement at or below its own rank.
package role

import "fmt"

// The hierarchy, highest first. Admin is platform wide; every other role is
// held inside exactly one tenant.
var (
	Admin   = Role{"ADMIN", 80}
	Manager = Role{"MANAGER", 60}
	Staff   = Role{"STAFF", 40}
	Client  = Role{"CLIENT", 20}
)

var hierarchy = []Role{Admin, Manager, Staff, Client}

// Role is one rung of the hierarchy. The zero Role is "no role" and ranks
// below everything.
type Role struct {
	name string
	rank int
}

// Parse accepts the stored upper case name of a role.
func Parse(value string) (Role, error) {
	for _, r := range hierarchy {
		if r.name == value {
			return r, nil
		}
	}

	return Role{}, fmt.Errorf("invalid role %q", value)
}

// MustParse is Parse for values known to be valid. It panics otherwise.
func MustParse(value string) Role {
	r, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return r
}

func (r Role) String() string {
	return r.name
}

// Rank is the numeric position of the role.
func (r Role) Rank() int {
	return r.rank
}

// AtLeast reports whether r meets a requirement of min.
func (r Role) AtLeast(min Role) bool {
	return !r.IsZero() && r.rank >= min.rank
}

// Tenanted reports whether holders of the role belong to a tenant.
func (r Role) Tenanted() bool {
	return !r.IsZero() && r != Admin
}

func (r Role) IsZero() bool {
	return r.name == ""
}

// Equal provides support for the go-cmp package and testing.
func (r Role) Equal(r2 Role) bool {
	return r.name == r2.name
}

// MarshalText provides support for logging and JSON.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.name), nil
}

// UnmarshalText is the inverse of MarshalText.
func (r *Role) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*r = parsed
	return nil
}
