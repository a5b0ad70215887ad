package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	app.Get("/readyz", handler.Ready)
	registerAPIRoutes(app, handler)
	app.Use(handler.NotFound)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api", handler.LanguageMiddleware)

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.Login)
	auth.Get("/me", handler.AuthRequired, handler.Me)

	consultations := api.Group("/consultations", handler.AuthRequired)
	consultations.Get("", handler.ListConsultations)
	consultations.Get("/export", handler.ExportConsultations)
	consultations.Post("/export/archive", handler.ArchiveConsultations)
	consultations.Get("/:id", handler.GetConsultation)

	sessions := api.Group("/analysis-sessions", handler.AuthRequired)
	sessions.Post("", handler.CreateSession)
	sessions.Get("/stats", handler.SessionStats)
	sessions.Patch("/:id/status", handler.UpdateSessionStatus)
	sessions.Post("/:id/analysis-data", handler.AppendAnalysisData)
	sessions.Post("/:id/recommendations", handler.AddRecommendations)

	notifications := api.Group("/notifications", handler.AuthRequired)
	notifications.Get("", handler.ListNotifications)
	notifications.Post("/devices", handler.RegisterDevice)
	notifications.Delete("/devices/:id", handler.UnregisterDevice)
	notifications.Post("/send", handler.SendNotification)
	notifications.Get("/settings", handler.GetNotificationSettings)
	notifications.Put("/settings", handler.UpdateNotificationSettings)
	notifications.Put("/read", handler.MarkNotificationsRead)
	notifications.Put("/:id/read", handler.MarkNotificationRead)
	notifications.Delete("/:id", handler.DeleteNotification)
}

func (handler *Handler) NotFound(c *fiber.Ctx) error {
	return handler.apiError(c, fiber.StatusNotFound, codeNotFound, "errors.not_found", nil)
}
