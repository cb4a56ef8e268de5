// Package validation checks wire payloads and stored records against their
// field constraints and reports every violation at once.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"quickshelf/internal/apperrors"
	"quickshelf/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// DefaultDescriptionMaxLength bounds a stored description, in characters.
const DefaultDescriptionMaxLength = 1000

// messages maps "<field>.<tag>" to the message shown to API clients.
var messages = map[string]string{
	"name.notblank":          "Product name is required",
	"price.required":         "Price is required",
	"price.gte":              "Price must be non-negative",
	"category.notblank":      "Category is required",
	"stockQuantity.required": "Stock quantity is required",
	"stockQuantity.gte":      "Stock quantity must be non-negative",
	"username.required":      "Username is required",
	"username.min":           "Username must be at least 3 characters",
	"username.max":           "Username must be at most 100 characters",
	"email.required":         "Email is required",
	"email.email":            "Email must be a valid email address",
	"password.required":      "Password is required",
	"password.min":           "Password must be at least 6 characters",
}

// Validator wraps go-playground/validator with JSON field names and the
// service's error messages.
type Validator struct {
	validate             *validator.Validate
	descriptionMaxLength int
}

// New creates a Validator. A non-positive descriptionMaxLength falls back to
// DefaultDescriptionMaxLength.
func New(descriptionMaxLength int) *Validator {
	if descriptionMaxLength <= 0 {
		descriptionMaxLength = DefaultDescriptionMaxLength
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("notblank", validators.NotBlank)

	return &Validator{
		validate:             v,
		descriptionMaxLength: descriptionMaxLength,
	}
}

// DescriptionMaxLength returns the configured description bound.
func (v *Validator) DescriptionMaxLength() int {
	return v.descriptionMaxLength
}

// Struct validates s against its `validate` tags. All violated fields are
// collected into an *apperrors.ValidationError; the first failing tag of a
// field decides its message.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate %T: %w", s, err)
	}

	fieldErrors := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		if _, seen := fieldErrors[e.Field()]; seen {
			continue
		}
		fieldErrors[e.Field()] = message(e.Field(), e.Tag())
	}
	return apperrors.NewValidationError(fieldErrors)
}

// Product validates a record at the storage boundary: the field rules plus
// the description length bound.
func (v *Validator) Product(p *models.Product) error {
	fieldErrors := map[string]string{}

	if err := v.Struct(p); err != nil {
		ve, ok := apperrors.AsValidation(err)
		if !ok {
			return err
		}
		for field, msg := range ve.Errors {
			fieldErrors[field] = msg
		}
	}

	if p.Description != nil {
		rule := fmt.Sprintf("max=%d", v.descriptionMaxLength)
		if err := v.validate.Var(*p.Description, rule); err != nil {
			fieldErrors["description"] = fmt.Sprintf("Description must not exceed %d characters", v.descriptionMaxLength)
		}
	}

	return apperrors.NewValidationError(fieldErrors)
}

func message(field, tag string) string {
	if msg, ok := messages[field+"."+tag]; ok {
		return msg
	}
	return fmt.Sprintf("Field '%s' failed on the '%s' tag", field, tag)
}
