package validator

import (
	checkouterrors "bookly/internal/checkout/errors"
	"bookly/pkg/logger"
	"bookly/pkg/model"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var tenantIDRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,63}$`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type CheckoutValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewCheckoutValidator(log *logger.Logger) *CheckoutValidator {
	v := validator.New()

	if err := v.RegisterValidation("tenant_id", validateTenantID); err != nil {
		log.Fatal("Failed to register 'tenant_id' validator", "error", err)
	}

	return &CheckoutValidator{
		validate: v,
		logger:   log,
	}
}

func validateTenantID(fl validator.FieldLevel) bool {
	return tenantIDRegex.MatchString(fl.Field().String())
}

func (v *CheckoutValidator) ValidateRequest(req *model.CheckoutRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return validateWindow(req.TimeBegin, req.TimeEnd)
}

func (v *CheckoutValidator) ValidateQuote(req *model.ItemQuoteRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return validateWindow(req.TimeBegin, req.TimeEnd)
}

func validateWindow(begin, end *time.Time) error {
	if (begin == nil) != (end == nil) {
		return ValidationErrors{{Field: "TimeEnd", Message: checkouterrors.ErrHalfOpenWindow.Error()}}
	}
	if begin != nil && !end.After(*begin) {
		return ValidationErrors{{Field: "TimeEnd", Message: checkouterrors.ErrInvalidWindow.Error()}}
	}
	return nil
}

func (v *CheckoutValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		case "email":
			message = fmt.Sprintf("%s must be a valid email address", err.Field())
		case "e164":
			message = fmt.Sprintf("%s must be a valid phone number", err.Field())
		case "tenant_id":
			message = fmt.Sprintf("%s must be a valid tenant identifier", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
