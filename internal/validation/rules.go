// Package validation provides custom validation rules for the application.
package validation

import (
	"net/url"
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/reservehq/reserve-outbox/internal/errors"
)

var (
	// localeRegex matches BCP 47-ish locale tags the template store uses
	// ("en", "es", "pt-BR").
	localeRegex = regexp.MustCompile(`^[a-z]{2}(-[A-Za-z]{2})?$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// AbsoluteURL validates that a string is an absolute http(s) URL, the only
// form accepted for webhook endpoints.
var AbsoluteURL = validation.NewStringRuleWithError(
	func(s string) bool {
		u, err := url.Parse(s)
		if err != nil {
			return false
		}
		return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	},
	validation.NewError("validation_absolute_url", "must be an absolute http(s) URL"),
)

// Locale validates that a string is a supported locale tag
var Locale = validation.NewStringRuleWithError(
	func(s string) bool {
		return localeRegex.MatchString(s)
	},
	validation.NewError("validation_locale", "must be a locale tag like \"en\" or \"pt-BR\""),
)
