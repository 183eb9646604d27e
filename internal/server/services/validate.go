package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/railohail/timeline-rail/internal/common"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// checkStruct validates v and turns the first failure into a caller-facing
// validation error. A missing required field reports requiredMsg.
func checkStruct(v any, requiredMsg string) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		switch fe.Tag() {
		case "required":
			return common.WithMessage(common.ErrorValidation, requiredMsg)
		case "min":
			return common.WithMessage(common.ErrorValidation,
				fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param()))
		case "max":
			return common.WithMessage(common.ErrorValidation,
				fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param()))
		}
		return common.WithMessage(common.ErrorValidation, fmt.Sprintf("%s is invalid", fe.Field()))
	}
	return common.WithMessage(common.ErrorValidation, err.Error())
}

func validationError(msg string) error {
	return common.WithMessage(common.ErrorValidation, msg)
}
