// Package validation runs go-playground/validator over request DTOs.
// It keeps one validator for the whole process because the library
// caches struct metadata per instance.
//
// DTO tags only catch malformed input early; service.Gate re-checks
// every domain rule before a store is touched.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/iliyamo/filmorate/internal/apperror"
)

// DateLayout is the wire format for dates (release dates, birthdays).
const DateLayout = "2006-01-02"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Get returns the singleton validator with the custom tags registered:
//
//	nowhitespace – string contains no Unicode whitespace
//	isodate      – string parses with DateLayout
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report json names so messages match what clients sent.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		_ = validate.RegisterValidation("nowhitespace", func(fl validator.FieldLevel) bool {
			return !strings.ContainsFunc(fl.Field().String(), unicode.IsSpace)
		})
		_ = validate.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(DateLayout, fl.Field().String())
			return err == nil
		})
	})
	return validate
}

// Struct validates s and converts the first failure into a
// VALIDATION_ERROR AppError naming the field.
func Struct(s any) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.Wrap(err, apperror.CodeValidation, "invalid request")
	}
	fe := fieldErrs[0]
	return apperror.Validation(fe.Field(), "%s", translate(fe))
}

// EchoValidator adapts the singleton to echo.Validator so handlers can
// call c.Validate.
type EchoValidator struct{}

func (EchoValidator) Validate(i any) error { return Struct(i) }

var messages = map[string]string{
	"required":     "%s is required",
	"nowhitespace": "%s must not contain whitespace",
	"isodate":      "%s must be a date in YYYY-MM-DD format",
}

var messagesWithParam = map[string]string{
	"contains": "%s must contain %q",
	"gt":       "%s must be greater than %s",
	"gte":      "%s must be greater than or equal to %s",
}

func translate(fe validator.FieldError) string {
	field, tag, param := fe.Field(), fe.Tag(), fe.Param()
	if tpl, ok := messages[tag]; ok {
		return fmt.Sprintf(tpl, field)
	}
	if tpl, ok := messagesWithParam[tag]; ok {
		return fmt.Sprintf(tpl, field, param)
	}
	switch tag {
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	}
	return fmt.Sprintf("%s failed %s validation", field, tag)
}
