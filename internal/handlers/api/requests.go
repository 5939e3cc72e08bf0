package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return v
}

// draftRequest is the PATCH /review/draft body. Omitted fields are unchanged.
type draftRequest struct {
	Description      *string `json:"description"`
	ShortDescription *string `json:"short_description" validate:"omitempty,max=280"`
	Pricing          *string `json:"pricing" validate:"omitempty,oneof=FREE FREEMIUM PAID"`
	Frequency        *string `json:"frequency" validate:"omitempty,oneof=daily weekly monthly"`
}

// categoryRequest is the POST /review/categories body.
type categoryRequest struct {
	Category string `json:"category" validate:"required,max=64"`
}

// bindJSON decodes the request body into dst and validates it. The returned
// error message is safe to show to API clients.
func bindJSON(body []byte, dst any) error {
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.New("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return formatValidationError(err)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		msgs = append(msgs, e.Field()+" "+friendlyMessage(e))
	}
	sort.Strings(msgs)
	return errors.New(strings.Join(msgs, "; "))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}
