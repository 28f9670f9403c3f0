package handlerUtil

import (
	"PabrikGolang/internal/api/assistant"
	"PabrikGolang/pkg/log"
	"PabrikGolang/pkg/response"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	var respErr *response.Error
	if errors.As(err, &respErr) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"code":       respErr.Code,
			"path":       path,
			"operation":  operation,
		}).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(fiber.Map{"error": err.Error()})
	}

	// Assistant domain errors
	if errors.Is(err, assistant.ErrEmptyCommand) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Empty command")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Command text is required",
			"code":    "EMPTY_COMMAND",
		})
	}

	if errors.Is(err, assistant.ErrCommandTooLong) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Command too long")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Command text too long",
			"code":    "COMMAND_TOO_LONG",
		})
	}

	if errors.Is(err, assistant.ErrSessionNotFound) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Session not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Session not found",
			"code":    "SESSION_NOT_FOUND",
		})
	}

	if errors.Is(err, assistant.ErrNoPendingPlan) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("No pending plan")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No pending plan to confirm",
			"code":    "NO_PENDING_PLAN",
		})
	}

	if errors.Is(err, assistant.ErrIntentNotFound) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Intent not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Intent not found",
			"code":    "INTENT_NOT_FOUND",
		})
	}

	if errors.Is(err, assistant.ErrIntentAlreadyExists) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Intent already exists")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Intent code already exists",
			"code":    "INTENT_ALREADY_EXISTS",
		})
	}

	if errors.Is(err, assistant.ErrClassificationFailed) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Error("Classification failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to understand the command",
			"code":    "CLASSIFICATION_FAILED",
		})
	}

	if errors.Is(err, assistant.ErrExecutionFailed) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Error("Execution failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to execute the command",
			"code":    "EXECUTION_FAILED",
		})
	}

	if errors.Is(err, assistant.ErrToolNotRegistered) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Error("Tool not registered")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "No tool registered for intent",
			"code":    "TOOL_NOT_REGISTERED",
		})
	}

	if errors.Is(err, assistant.ErrUnauthorizedAccess) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Unauthorized access")
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Unauthorized access to assistant features",
			"code":    "UNAUTHORIZED_ACCESS",
		})
	}

	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}).Error("Unexpected error")

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "An unexpected error occurred",
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Validation failed: " + err.Error(),
		"code":  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(utils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
		"code":  "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
