// Package validation checks request DTOs against their `validate` tags and
// reports failures as a field -> messages map keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("notblank", notBlank)
		_ = v.RegisterValidation("pgtext", pgText)
		instance = v
	})
	return instance
}

// notBlank fails for strings made only of whitespace. Nil pointers pass so
// that optional fields can be combined with omitempty.
func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(field.String()) != ""
}

// pgText fails for strings Postgres cannot store in a text column: invalid
// UTF-8 or an embedded NUL.
func pgText(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}
	s := field.String()
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}

// Struct validates s. It returns nil when s is valid, a non-empty map of
// messages when a constraint fails, and an error if s cannot be validated.
func Struct(s interface{}) (map[string][]string, error) {
	err := get().Struct(s)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, err
	}

	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		fields[name] = append(fields[name], message(fe))
	}
	return fields, nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "can't be blank"
	case "max":
		return fmt.Sprintf("is too long (maximum is %s characters)", fe.Param())
	case "min":
		return fmt.Sprintf("is too short (minimum is %s characters)", fe.Param())
	case "email":
		return "is invalid"
	default:
		return "is invalid"
	}
}
