package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/bilgisen/khabar/internal/apperr"
)

// Validator is a struct that holds the validator instance
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that reports fields by their JSON names.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate checks s and converts failures to a field validation error.
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation(err.Error())
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		tag := fe.Tag()
		if fe.Param() != "" {
			tag += "=" + fe.Param()
		}
		fields[fe.Field()] = tag
	}
	return apperr.ValidationFields(fields)
}

var defaultValidator = NewValidator()

// ParseBody decodes the request body into a fresh T and validates it.
func ParseBody[T any](c *fiber.Ctx) (*T, error) {
	v := new(T)
	if err := c.BodyParser(v); err != nil {
		return nil, apperr.Validation("Invalid request body")
	}
	if err := defaultValidator.Validate(v); err != nil {
		return nil, err
	}
	return v, nil
}

// ParseQuery decodes and validates query parameters into a fresh T.
func ParseQuery[T any](c *fiber.Ctx) (*T, error) {
	v := new(T)
	if err := c.QueryParser(v); err != nil {
		return nil, apperr.Validation("Invalid query parameters")
	}
	if err := defaultValidator.Validate(v); err != nil {
		return nil, err
	}
	return v, nil
}
