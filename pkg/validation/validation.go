package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/mbu-admin-api/internal/models"
	appErrors "github.com/noah-isme/mbu-admin-api/pkg/errors"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9\s\-()]{6,19}$`)

// New returns a validator that reports JSON field names and knows the
// phone, section, payment_plan, registration_status and contact_status tags.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("section", func(fl validator.FieldLevel) bool {
		return models.IsCatalogSection(fl.Field().String())
	})
	_ = v.RegisterValidation("payment_plan", func(fl validator.FieldLevel) bool {
		return models.PaymentPlan(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("registration_status", func(fl validator.FieldLevel) bool {
		return models.RegistrationStatus(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("contact_status", func(fl validator.FieldLevel) bool {
		return models.ContactStatus(fl.Field().String()).Valid()
	})
	return v
}

// Error converts a validator failure into a 400 error listing every failing field.
// Errors of any other kind are wrapped as a plain validation error.
func Error(err error) *appErrors.Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	details := make([]appErrors.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, appErrors.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	out := appErrors.WithDetails(appErrors.ErrValidation, details)
	out.Err = err
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "phone":
		return "must be a valid phone number"
	case "section":
		return "must be one of: " + strings.Join(models.SectionNames(), ", ")
	case "payment_plan":
		return fmt.Sprintf("must be %q or %q", models.PaymentPlanTermly, models.PaymentPlanAnnual)
	case "registration_status":
		return "must be one of: pending, approved, rejected"
	case "contact_status":
		return "must be one of: unread, read, replied"
	case "min":
		if isNumeric(fe.Kind()) {
			return "must be at least " + fe.Param()
		}
		return "must be at least " + fe.Param() + " characters"
	case "max":
		if isNumeric(fe.Kind()) {
			return "must be at most " + fe.Param()
		}
		return "must be at most " + fe.Param() + " characters"
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
