package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/skinior/skinior-api/internal/models"
)

const (
	contextUserKey     = "current_user"
	contextLanguageKey = "current_language"
)

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok
}

// LanguageMiddleware picks the response language from ?lang= first, then
// Accept-Language.
func (handler *Handler) LanguageMiddleware(c *fiber.Ctx) error {
	language := handler.i18n.DetectFromAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
	if raw := strings.TrimSpace(c.Query("lang")); raw != "" {
		language = handler.i18n.NormalizeLanguage(raw)
	}
	c.Locals(contextLanguageKey, language)
	return c.Next()
}

func (handler *Handler) currentLanguage(c *fiber.Ctx) string {
	if language, ok := c.Locals(contextLanguageKey).(string); ok && language != "" {
		return language
	}
	return handler.i18n.DefaultLanguage()
}

func (handler *Handler) translate(c *fiber.Ctx, key string) string {
	if key == "" {
		return ""
	}
	return handler.i18n.Translate(handler.currentLanguage(c), key)
}
