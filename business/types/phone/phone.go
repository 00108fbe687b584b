// Package phone represents the public contact number of a tenant.
package phone

import (
	"fmt"
	"regexp"
	"strings"
)

// Phone represents a phone number in compact form, an optional leading +
// followed by digits only.
type Phone struct {
	value string
}

// String returns the value of the phone number.
func (p Phone) String() string {
	return p.value
}

// IsZero reports whether no number was given.
func (p Phone) IsZero() bool {
	return p.value == ""
}

// Equal provides support for the go-cmp package and testing.
func (p Phone) Equal(p2 Phone) bool {
	return p.value == p2.value
}

// MarshalText provides support for logging and any marshal needs.
func (p Phone) MarshalText() ([]byte, error) {
	return []byte(p.value), nil
}

// =============================================================================

// E.164 caps a number at 15 digits.
var phoneRegEx = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

var separators = strings.NewReplacer(" ", "", "-", "", ".", "", "(", "", ")", "")

// Parse drops the usual separators from the value and returns a phone if
// what is left is a valid number. "+52 (55) 1234-5678" becomes
// "+525512345678".
func Parse(value string) (Phone, error) {
	compact := separators.Replace(strings.TrimSpace(value))

	if !phoneRegEx.MatchString(compact) {
		return Phone{}, fmt.Errorf("invalid phone %q", value)
	}

	return Phone{compact}, nil
}

// ParseOptional is Parse for fields that may be left empty. An empty value
// yields the zero Phone.
func ParseOptional(value string) (Phone, error) {
	if strings.TrimSpace(value) == "" {
		return Phone{}, nil
	}

	return Parse(value)
}

// MustParse parses the string value and returns a phone number. If an
// error occurs the function panics.
func MustParse(value string) Phone {
	p, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return p
}
