package validators

import (
	"errors"
	"fmt"
	"unicode"
)

// bcrypt ignores everything after 72 bytes
const maxPasswordBytes = 72

var (
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password is too long, the maximum is 72 bytes")
	ErrPasswordEmpty    = errors.New("no password provided")
	ErrPasswordWeak     = errors.New("password must contain at least one letter and one digit")
)

// PasswordPolicy describes what a new password has to look like
type PasswordPolicy struct {
	MinLength int
}

func (p PasswordPolicy) Validate(pw string) error {
	if pw == "" {
		return ErrPasswordEmpty
	}

	if len([]rune(pw)) < p.MinLength {
		return fmt.Errorf("%w, it must be at least %d characters long", ErrPasswordTooShort, p.MinLength)
	}

	if len(pw) > maxPasswordBytes {
		return ErrPasswordTooLong
	}

	var letter, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}

	if !letter || !digit {
		return ErrPasswordWeak
	}

	return nil
}
