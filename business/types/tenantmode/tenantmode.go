// Package tenantmode represents how a tenant storefront operates.
package tenantmode

import "fmt"

// The set of modes a tenant storefront can run in.
var (
	Catalog = newMode("catalog")
	Booking = newMode("booking")
)

// =============================================================================

var modes = make(map[string]Mode)

// Mode represents a storefront mode.
type Mode struct {
	value string
}

func newMode(mode string) Mode {
	m := Mode{mode}
	modes[mode] = m
	return m
}

// String returns the name of the mode.
func (m Mode) String() string {
	return m.value
}

// Equal provides support for the go-cmp package and testing.
func (m Mode) Equal(m2 Mode) bool {
	return m.value == m2.value
}

// MarshalText provides support for logging and any marshal needs.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.value), nil
}

// =============================================================================

// Parse parses the string value and returns a mode if one exists.
func Parse(value string) (Mode, error) {
	m, exists := modes[value]
	if !exists {
		return Mode{}, fmt.Errorf("invalid tenant mode %q", value)
	}

	return m, nil
}

// MustParse parses the string value and returns a mode if one exists. If
// an error occurs the function panics.
func MustParse(value string) Mode {
	m, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return m
}
