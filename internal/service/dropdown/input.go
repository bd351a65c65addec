package dropdown

import (
	"regexp"
	"strings"

	"github.com/heartmarshall/calc-content-backend/internal/domain"
)

var identPattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// ResolveInput holds the parameters for resolving a screen.
type ResolveInput struct {
	Screen   string
	Language string
}

// Validate checks all fields and collects all errors.
func (i ResolveInput) Validate() error {
	var errs []domain.FieldError

	screen := strings.TrimSpace(i.Screen)
	switch {
	case screen == "":
		errs = append(errs, domain.FieldError{Field: "screen_location", Message: "required"})
	case len(screen) > 255:
		errs = append(errs, domain.FieldError{Field: "screen_location", Message: "max 255 characters"})
	case !identPattern.MatchString(screen):
		errs = append(errs, domain.FieldError{Field: "screen_location", Message: "invalid characters"})
	}

	lang := strings.TrimSpace(i.Language)
	switch {
	case lang == "":
		errs = append(errs, domain.FieldError{Field: "language_code", Message: "required"})
	case len(lang) > 10:
		errs = append(errs, domain.FieldError{Field: "language_code", Message: "max 10 characters"})
	case !identPattern.MatchString(lang):
		errs = append(errs, domain.FieldError{Field: "language_code", Message: "invalid characters"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func (i ResolveInput) normalized() ResolveInput {
	return ResolveInput{
		Screen:   strings.TrimSpace(i.Screen),
		Language: strings.ToLower(strings.TrimSpace(i.Language)),
	}
}
