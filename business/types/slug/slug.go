// Package slug represents the URL safe identifier of a tenant.
package slug

import (
	"fmt"
	"regexp"
)

// Slug represents a tenant slug such as "wondernails".
type Slug struct {
	value string
}

// String returns the value of the slug.
func (s Slug) String() string {
	return s.value
}

// Equal provides support for the go-cmp package and testing.
func (s Slug) Equal(s2 Slug) bool {
	return s.value == s2.value
}

// MarshalText provides support for logging and any marshal needs.
func (s Slug) MarshalText() ([]byte, error) {
	return []byte(s.value), nil
}

// =============================================================================

var slugRegEx = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Parse parses the string value and returns a slug if the value complies
// with the rules for a slug.
func Parse(value string) (Slug, error) {
	if len(value) < 2 || len(value) > 50 {
		return Slug{}, fmt.Errorf("invalid slug %q: length must be between 2 and 50", value)
	}

	if !slugRegEx.MatchString(value) {
		return Slug{}, fmt.Errorf("invalid slug %q", value)
	}

	return Slug{value}, nil
}

// MustParse parses the string value and returns a slug if the value
// complies with the rules for a slug. If an error occurs the function panics.
func MustParse(value string) Slug {
	s, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return s
}
