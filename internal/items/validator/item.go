package validator

import (
	"errors"
	"fmt"

	"shareit/pkg/logger"
	"shareit/pkg/model"

	"github.com/go-playground/validator/v10"
)

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
	return fmt.Sprintf("validation failed: %d error(s)", len(v))
}

type ItemValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewItemValidator(log *logger.Logger) *ItemValidator {
	log.Info("Item validator initialized successfully")

	return &ItemValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *ItemValidator) Validate(item *model.Item) error {
	return v.check(item)
}

func (v *ItemValidator) ValidateUpdate(update *model.ItemUpdate) error {
	if update.IsEmpty() {
		return ValidationErrors{
			ValidationError{Field: "body", Message: "at least one field must be provided"},
		}
	}
	return v.check(update)
}

func (v *ItemValidator) ValidateComment(comment *model.Comment) error {
	return v.check(comment)
}

func (v *ItemValidator) check(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *ItemValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must not be empty", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
