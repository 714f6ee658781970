package handlers

import (
	"errors"

	"contacts/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

func success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(Envelope{Status: true, Message: message, Data: data})
}

// errorResponse writes the failure envelope for err. fiber errors keep their
// status code, anything else is a 500.
func errorResponse(c *fiber.Ctx, log *zap.Logger, err error) error {
	status := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		status = fiberErr.Code
	}

	rid, _ := c.Locals(middleware.RequestIDLocalKey).(string)
	if status >= fiber.StatusInternalServerError {
		log.Error("request failed", zap.String("request_id", rid), zap.Error(err))
	} else {
		log.Debug("request rejected", zap.String("request_id", rid), zap.Int("status", status), zap.Error(err))
	}

	return c.Status(status).JSON(Envelope{Status: false, Message: err.Error(), Data: nil})
}

// ErrorHandler returns a fiber error handler that answers with the failure
// envelope, for errors raised outside the contact handlers (unknown routes,
// middleware rejections, oversized bodies).
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		return errorResponse(c, log, err)
	}
}
