package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/skinior/skinior-api/internal/services"
)

func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		if !errors.Is(err, errMissingBearerToken) && !errors.Is(err, errInvalidToken) && !errors.Is(err, services.ErrAuthUserNotFound) {
			return handler.respondError(c, err)
		}
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}

	c.Locals(contextUserKey, user)
	return c.Next()
}
