// Package sku represents a stock keeping unit code, unique within a tenant.
package sku

import (
	"fmt"
	"regexp"
	"strings"
)

// SKU represents a product code such as "WN-GEL-001".
type SKU struct {
	value string
}

// String returns the value of the sku.
func (s SKU) String() string {
	return s.value
}

// Equal provides support for the go-cmp package and testing.
func (s SKU) Equal(s2 SKU) bool {
	return s.value == s2.value
}

// MarshalText provides support for logging and any marshal needs.
func (s SKU) MarshalText() ([]byte, error) {
	return []byte(s.value), nil
}

// =============================================================================

var skuRegEx = regexp.MustCompile(`^[A-Z0-9]+([-_][A-Z0-9]+)*$`)

// Parse upper cases the value and returns a sku if it complies with the
// rules for a sku.
func Parse(value string) (SKU, error) {
	value = strings.ToUpper(strings.TrimSpace(value))

	if len(value) == 0 || len(value) > 64 {
		return SKU{}, fmt.Errorf("invalid sku %q: length must be between 1 and 64", value)
	}

	if !skuRegEx.MatchString(value) {
		return SKU{}, fmt.Errorf("invalid sku %q", value)
	}

	return SKU{value}, nil
}

// MustParse parses the string value and returns a sku. If an error occurs
// the function panics.
func MustParse(value string) SKU {
	s, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return s
}
