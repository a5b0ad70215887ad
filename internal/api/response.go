package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/skinior/skinior-api/internal/services"
	"github.com/skinior/skinior-api/internal/storage"
)

const (
	codeInvalidParameters       = "INVALID_PARAMETERS"
	codeInvalidCredentials      = "INVALID_CREDENTIALS"
	codeEmailExists             = "EMAIL_EXISTS"
	codeWeakPassword            = "WEAK_PASSWORD"
	codeUnauthorized            = "UNAUTHORIZED"
	codeNotFound                = "NOT_FOUND"
	codeInvalidStatusTransition = "INVALID_STATUS_TRANSITION"
	codeTooManyAttempts         = "TOO_MANY_ATTEMPTS"
	codeArchiveDisabled         = "ARCHIVE_DISABLED"
	codeInternal                = "INTERNAL_SERVER_ERROR"
)

type envelope struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

type errorEnvelope struct {
	Success   bool      `json:"success"`
	Error     errorBody `json:"error"`
	Timestamp string    `json:"timestamp"`
}

func (handler *Handler) respond(c *fiber.Ctx, status int, data any, messageKey string) error {
	return c.Status(status).JSON(envelope{
		Success:   true,
		Data:      data,
		Message:   handler.translate(c, messageKey),
		Timestamp: handler.timestamp(),
	})
}

func (handler *Handler) apiError(c *fiber.Ctx, status int, code string, messageKey string, details map[string]string) error {
	return c.Status(status).JSON(errorEnvelope{
		Success: false,
		Error: errorBody{
			Code:    code,
			Message: handler.translate(c, messageKey),
			Details: details,
		},
		Timestamp: handler.timestamp(),
	})
}

// respondError maps service errors onto the error envelope. Anything unknown
// is logged and reported as a generic 500.
func (handler *Handler) respondError(c *fiber.Ctx, err error) error {
	if validation, ok := services.AsValidationError(err); ok {
		return handler.apiError(c, fiber.StatusBadRequest, codeInvalidParameters, "errors.invalid_parameters", validation.Details)
	}

	switch {
	case errors.Is(err, services.ErrConsultationNotFound),
		errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrDeviceNotFound),
		errors.Is(err, services.ErrNotificationNotFound),
		errors.Is(err, services.ErrAuthUserNotFound):
		return handler.apiError(c, fiber.StatusNotFound, codeNotFound, "errors.not_found", nil)
	case errors.Is(err, services.ErrInvalidStatusTransition):
		return handler.apiError(c, fiber.StatusConflict, codeInvalidStatusTransition, "errors.invalid_transition", nil)
	case errors.Is(err, services.ErrAuthEmailExists):
		return handler.apiError(c, fiber.StatusConflict, codeEmailExists, "errors.email_exists", nil)
	case errors.Is(err, services.ErrWeakPassword):
		return handler.apiError(c, fiber.StatusBadRequest, codeWeakPassword, "errors.weak_password", map[string]string{"password": "password is too weak"})
	case errors.Is(err, services.ErrAuthCredentialsInvalid):
		return handler.apiError(c, fiber.StatusUnauthorized, codeInvalidCredentials, "errors.invalid_credentials", nil)
	case errors.Is(err, services.ErrExportFromDateInvalid):
		return handler.apiError(c, fiber.StatusBadRequest, codeInvalidParameters, "errors.invalid_parameters", map[string]string{"from": "from must be YYYY-MM-DD or RFC3339"})
	case errors.Is(err, services.ErrExportToDateInvalid):
		return handler.apiError(c, fiber.StatusBadRequest, codeInvalidParameters, "errors.invalid_parameters", map[string]string{"to": "to must be YYYY-MM-DD or RFC3339"})
	case errors.Is(err, services.ErrExportRangeInvalid):
		return handler.apiError(c, fiber.StatusBadRequest, codeInvalidParameters, "errors.invalid_parameters", map[string]string{"dateRange": "from must not be after to"})
	case errors.Is(err, services.ErrExportFormatInvalid):
		return handler.apiError(c, fiber.StatusBadRequest, codeInvalidParameters, "errors.invalid_parameters", map[string]string{"format": "format must be json or csv"})
	case errors.Is(err, storage.ErrArchiveDisabled):
		return handler.apiError(c, fiber.StatusServiceUnavailable, codeArchiveDisabled, "errors.archive_disabled", nil)
	}

	handler.log.Error("request failed",
		"method", c.Method(),
		"path", c.Path(),
		"error", err,
	)
	return handler.apiError(c, fiber.StatusInternalServerError, codeInternal, "errors.internal", nil)
}

func (handler *Handler) badRequestBody(c *fiber.Ctx) error {
	return handler.apiError(c, fiber.StatusBadRequest, codeInvalidParameters, "errors.invalid_parameters", map[string]string{"body": "request body must be valid JSON"})
}

func (handler *Handler) timestamp() string {
	return handler.now().UTC().Format(time.RFC3339)
}

// ErrorHandler renders errors that escape handlers, including recovered panics
// and fiber's own routing errors.
func (handler *Handler) ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusNotFound:
			return handler.apiError(c, fiber.StatusNotFound, codeNotFound, "errors.not_found", nil)
		case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
			return handler.badRequestBody(c)
		case fiber.StatusMethodNotAllowed:
			return handler.apiError(c, fiber.StatusMethodNotAllowed, codeNotFound, "errors.not_found", nil)
		}
	}
	return handler.respondError(c, err)
}
