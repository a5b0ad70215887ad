package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/skinior/skinior-api/internal/db"
)

const readinessTimeout = 2 * time.Second

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Ready checks the database and reports the applied schema version.
func (handler *Handler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	if err := db.Ping(ctx, handler.db); err != nil {
		handler.log.Warn("readiness check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	version, err := db.SchemaVersion(ctx, handler.db)
	if err != nil {
		handler.log.Warn("readiness schema check failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return c.JSON(fiber.Map{"status": "ok", "schemaVersion": version})
}
