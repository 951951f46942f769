package handlers

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type fieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func formatValidationErrors(err error) []fieldError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make([]fieldError, len(ve))
	for i, fe := range ve {
		msg := fmt.Sprintf("validation failed on field '%s' for tag '%s'", fe.Field(), fe.Tag())
		switch fe.Tag() {
		case "required":
			msg = fmt.Sprintf("%s is required", fe.Field())
		case "email":
			msg = fmt.Sprintf("%s must be a valid email address", fe.Field())
		case "min":
			msg = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
		case "max":
			msg = fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
		case "gte":
			msg = fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
		}
		out[i] = fieldError{Field: fe.Field(), Message: msg}
	}
	return out
}

// validateBody runs struct validation and writes the 400 response itself
// when it fails.
func (h *Handler) validateBody(c *fiber.Ctx, req interface{}) (ok bool, err error) {
	if verr := h.validate.Struct(req); verr != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "validation failed",
			"errors":  formatValidationErrors(verr),
		})
	}
	return true, nil
}
