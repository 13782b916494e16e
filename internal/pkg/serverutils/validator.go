package serverutils

import (
	"fmt"
	"strings"

	"chatlink-be/internal/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and folds violations into a
// single InvalidInput error.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return apperror.Wrap(apperror.KindInvalidInput, "Invalid request body", err)
		}

		fields := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
		}
		return apperror.New(apperror.KindInvalidInput,
			"Validation failed: "+strings.Join(fields, ", "))
	}
	return nil
}
