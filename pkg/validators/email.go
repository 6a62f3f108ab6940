// Package validators contains validators found throughout the application
// that have been abstracted away from the main code
package validators

import (
	"errors"
	"net/mail"
	"strings"
)

const maxEmailLength = 254

var (
	ErrEmailEmpty   = errors.New("no email address provided")
	ErrEmailInvalid = errors.New("invalid email address provided")
)

// NormalizeEmail trims and lowercases an address. Every lookup and insert goes
// through it so uniqueness is case-insensitive.
func NormalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

// EmailValidator expects an already normalized address
func EmailValidator(e string) error {
	if e == "" {
		return ErrEmailEmpty
	}

	if len(e) > maxEmailLength {
		return ErrEmailInvalid
	}

	// ParseAddress also accepts "Name <addr>" forms, only a bare address is allowed
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e {
		return ErrEmailInvalid
	}

	_, domain, _ := strings.Cut(e, "@")
	if !strings.Contains(domain, ".") {
		return ErrEmailInvalid
	}

	return nil
}
