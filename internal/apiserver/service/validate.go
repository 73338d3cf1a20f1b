package service

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/amoylab/shopinspector/internal/common/errorx"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// text trims value and checks its length in runes; minLen 0 makes the field optional
func text(field, value string, minLen, maxLen int) (string, error) {
	value = strings.TrimSpace(value)
	n := utf8.RuneCountInString(value)
	switch {
	case n == 0 && minLen > 0:
		return "", errorx.ErrMissingField.WithMessage(fmt.Sprintf("%s is required", field)).WithDetail("field", field)
	case n < minLen:
		return "", errorx.ValidationError(field, value, fmt.Sprintf("%s must be at least %d characters", field, minLen))
	case maxLen > 0 && n > maxLen:
		return "", errorx.ValidationError(field, value, fmt.Sprintf("%s must be at most %d characters", field, maxLen))
	}
	return value, nil
}

// email trims, lower-cases and validates an address
func email(field, value string, maxLen int) (string, error) {
	value, err := text(field, value, 1, maxLen)
	if err != nil {
		return "", err
	}
	value = strings.ToLower(value)
	if err := validate.Var(value, "email"); err != nil {
		return "", errorx.ValidationError(field, value, field+" must be a valid email address")
	}
	return value, nil
}

// positiveID rejects missing or non-positive references
func positiveID(field string, id int) error {
	if id <= 0 {
		return errorx.ValidationError(field, id, field+" must be a positive id")
	}
	return nil
}

// activeOr returns the requested flag, or def when the request left it out
func activeOr(active *bool, def bool) bool {
	if active == nil {
		return def
	}
	return *active
}
