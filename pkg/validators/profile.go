package validators

import (
	"errors"
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"taskmaster/task-api/internal/model"
)

var (
	ErrNameEmpty       = errors.New("no name provided")
	ErrNameLength      = errors.New("name must be between 2 and 50 characters long")
	ErrAvatarInvalid   = errors.New("avatar must be an http(s) URL")
	ErrThemeInvalid    = errors.New("theme must be one of light, dark or system")
	ErrTitleEmpty      = errors.New("task title can't be empty")
	ErrTitleTooLong    = errors.New("task title can't be longer than 200 characters")
	ErrPriorityInvalid = errors.New("priority must be one of High, Medium or Low")
	ErrDueDateInvalid  = errors.New("due date must be formatted as YYYY-MM-DD")
)

// NameValidator expects a trimmed name
func NameValidator(n string) error {
	if n == "" {
		return ErrNameEmpty
	}

	if l := utf8.RuneCountInString(n); l < 2 || l > 50 {
		return ErrNameLength
	}

	return nil
}

func AvatarValidator(a string) error {
	if a == "" {
		return nil
	}

	u, err := url.Parse(a)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrAvatarInvalid
	}

	return nil
}

func ThemeValidator(t string) error {
	if !slices.Contains(model.Themes, t) {
		return ErrThemeInvalid
	}

	return nil
}

// TaskValidator checks a trimmed title plus optional priority and due date
func TaskValidator(title, priority, dueDate string) error {
	if title == "" {
		return ErrTitleEmpty
	}

	if utf8.RuneCountInString(title) > 200 {
		return ErrTitleTooLong
	}

	if priority != "" && !slices.Contains(model.Priorities, priority) {
		return ErrPriorityInvalid
	}

	if dueDate != "" {
		if _, err := time.Parse(time.DateOnly, strings.TrimSpace(dueDate)); err != nil {
			return ErrDueDateInvalid
		}
	}

	return nil
}
