package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailValidator(t *testing.T) {
	tests := []struct {
		email string
		err   error
	}{
		{"ann@x.com", nil},
		{"first.last+tag@sub.example.org", nil},
		{"", ErrEmailEmpty},
		{"ann", ErrEmailInvalid},
		{"ann@localhost", ErrEmailInvalid},
		{"Ann <ann@x.com>", ErrEmailInvalid},
		{"ann @x.com", ErrEmailInvalid},
		{strings.Repeat("a", 250) + "@x.com", ErrEmailInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.ErrorIs(t, EmailValidator(tt.email), tt.err)
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "ann@x.com", NormalizeEmail("  Ann@X.COM \n"))
}

func TestPasswordPolicy(t *testing.T) {
	p := PasswordPolicy{MinLength: 8}

	tests := []struct {
		name string
		pw   string
		err  error
	}{
		{"ok", "Passw0rd!", nil},
		{"empty", "", ErrPasswordEmpty},
		{"short", "Pa0", ErrPasswordTooShort},
		{"no digit", "Password!", ErrPasswordWeak},
		{"no letter", "12345678", ErrPasswordWeak},
		{"over bcrypt limit", strings.Repeat("a1", 37), ErrPasswordTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, p.Validate(tt.pw), tt.err)
		})
	}
}

func TestNameValidator(t *testing.T) {
	assert.NoError(t, NameValidator("Ann"))
	assert.ErrorIs(t, NameValidator(""), ErrNameEmpty)
	assert.ErrorIs(t, NameValidator("A"), ErrNameLength)
	assert.ErrorIs(t, NameValidator(strings.Repeat("a", 51)), ErrNameLength)
}

func TestProfileExtras(t *testing.T) {
	assert.NoError(t, AvatarValidator(""))
	assert.NoError(t, AvatarValidator("https://cdn.test/a.png"))
	assert.ErrorIs(t, AvatarValidator("javascript:alert(1)"), ErrAvatarInvalid)

	assert.NoError(t, ThemeValidator("dark"))
	assert.ErrorIs(t, ThemeValidator("blue"), ErrThemeInvalid)
}

func TestTaskValidator(t *testing.T) {
	assert.NoError(t, TaskValidator("Buy milk", "", ""))
	assert.NoError(t, TaskValidator("Buy milk", "High", "2025-03-01"))
	assert.ErrorIs(t, TaskValidator("", "", ""), ErrTitleEmpty)
	assert.ErrorIs(t, TaskValidator(strings.Repeat("x", 201), "", ""), ErrTitleTooLong)
	assert.ErrorIs(t, TaskValidator("x", "Urgent", ""), ErrPriorityInvalid)
	assert.ErrorIs(t, TaskValidator("x", "", "03/01/2025"), ErrDueDateInvalid)
}
