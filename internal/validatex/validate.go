// Package validatex holds the validation rules shared by request binding and
// the services, and turns validator failures into common.ValidationError.
package validatex

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/linkkeeper/internal/common"
	"github.com/go-playground/validator/v10"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

var (
	once     sync.Once
	validate *validator.Validate
)

func std() *validator.Validate {
	once.Do(func() {
		validate = validator.New()
		Register(validate)
	})
	return validate
}

// Register adds the custom rules to v. Gin's binding engine is set up with
// it as well so that request structs and service inputs share tags.
func Register(v *validator.Validate) {
	// only fails on an empty tag or a nil func
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
}

// Struct checks v against its `validate` tags.
func Struct(v any) error {
	return Translate(std().Struct(v))
}

// Var checks a single value against tag and names it field in the message.
func Var(field string, value any, tag string) error {
	err := std().Var(value, tag)
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}
	return common.NewValidationError(message(field, ve[0]))
}

// Translate converts validator.ValidationErrors into a *common.ValidationError
// describing the first failing field. Other errors are returned unchanged.
func Translate(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}
	return common.NewValidationError(message(lowerFirst(ve[0].Field()), ve[0]))
}

func message(name string, fe validator.FieldError) string {
	text := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " must be a valid email address"
	case "username":
		return name + " may contain only letters, digits, '.', '_' and '-'"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		if text {
			return fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max":
		if text {
			return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	}
	return name + " is invalid"
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}
