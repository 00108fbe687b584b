// Package password represents a plain text password before it is hashed.
package password

import (
	"errors"
	"unicode/utf8"
)

// Password represents a password in the system.
type Password struct {
	value string
}

// String returns the value of the password.
func (p Password) String() string {
	return p.value
}

// MarshalText never exposes the value.
func (p Password) MarshalText() ([]byte, error) {
	return []byte("[MASKED]"), nil
}

// =============================================================================

// Parse validates the length of the password. bcrypt ignores anything past
// 72 bytes so longer values are rejected.
func Parse(value string) (Password, error) {
	if utf8.RuneCountInString(value) < 8 {
		return Password{}, errors.New("password must be at least 8 characters")
	}

	if len(value) > 72 {
		return Password{}, errors.New("password must be at most 72 bytes")
	}

	return Password{value}, nil
}

// MustParse parses the string value and returns a password. If an error
// occurs the function panics.
func MustParse(value string) Password {
	p, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return p
}
