package validator

import (
	"bookly/pkg/logger"
	"bookly/pkg/model"
	"errors"
	"fmt"
	"regexp"
	"strings"

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

type StatusValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewStatusValidator(log *logger.Logger) *StatusValidator {
	v := validator.New()

	if err := v.RegisterValidation("tenant_id", validateTenantID); err != nil {
		log.Fatal("Failed to register 'tenant_id' validator", "error", err)
	}

	return &StatusValidator{
		validate: v,
		logger:   log,
	}
}

func validateTenantID(fl validator.FieldLevel) bool {
	return tenantIDRegex.MatchString(fl.Field().String())
}

func (v *StatusValidator) Validate(cmd *model.StatusCommand) error {
	if err := v.validate.Struct(cmd); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if cmd.Action == model.ActionRequestRejection && strings.TrimSpace(cmd.Reason) == "" {
		return ValidationErrors{
			ValidationError{
				Field:   "Reason",
				Message: "reason is required when requesting a rejection",
			},
		}
	}

	return nil
}

func (v *StatusValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
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
