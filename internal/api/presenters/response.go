package presenters

import (
	"Marketplace-Cart/domain"
	"errors"

	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Status     bool               `json:"status"`
	Message    string             `json:"message"`
	Data       interface{}        `json:"data,omitempty"`
	Error      string             `json:"error,omitempty"`
	Violations []domain.Violation `json:"violations,omitempty"`
}

func SuccessResponse(c *fiber.Ctx, data interface{}, statusCode int, message string) error {
	return c.Status(statusCode).JSON(Response{
		Status:  true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse writes a failed envelope. Invalid cart items also list their violations.
func ErrorResponse(c *fiber.Ctx, statusCode int, message string, err error) error {
	res := Response{
		Status:  false,
		Message: message,
	}
	if err != nil {
		res.Error = err.Error()
		var invalid *domain.InvalidItemError
		if errors.As(err, &invalid) {
			res.Violations = invalid.Violations
		}
	}
	return c.Status(statusCode).JSON(res)
}
