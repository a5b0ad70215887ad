package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/skinior/skinior-api/internal/services"
)

type sessionStatusPayload struct {
	Status string `json:"status"`
}

type recommendationsPayload struct {
	Recommendations []services.RecommendationInput `json:"recommendations"`
}

func (handler *Handler) CreateSession(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}

	input := services.CreateSessionInput{}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&input); err != nil {
			return handler.badRequestBody(c)
		}
	}

	session, err := handler.sessionService.Create(c.UserContext(), user.ID, input)
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.respond(c, fiber.StatusCreated, session, "sessions.created")
}

func (handler *Handler) SessionStats(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}

	stats, err := handler.sessionService.Stats(c.UserContext(), user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.respond(c, fiber.StatusOK, stats, "sessions.stats")
}

func (handler *Handler) UpdateSessionStatus(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}

	payload := sessionStatusPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return handler.badRequestBody(c)
	}

	session, err := handler.sessionService.UpdateStatus(c.UserContext(), user.ID, c.Params("id"), payload.Status)
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.respond(c, fiber.StatusOK, session, "sessions.updated")
}

func (handler *Handler) AppendAnalysisData(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}

	input := services.AnalysisDataInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.badRequestBody(c)
	}

	entry, err := handler.sessionService.AppendAnalysisData(c.UserContext(), user.ID, c.Params("id"), input)
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.respond(c, fiber.StatusCreated, entry, "sessions.data_added")
}

func (handler *Handler) AddRecommendations(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}

	payload := recommendationsPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return handler.badRequestBody(c)
	}

	recommendations, err := handler.sessionService.AddRecommendations(c.UserContext(), user.ID, c.Params("id"), payload.Recommendations)
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.respond(c, fiber.StatusCreated, fiber.Map{"recommendations": recommendations}, "sessions.recommendations_added")
}
