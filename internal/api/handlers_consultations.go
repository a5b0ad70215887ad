package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/skinior/skinior-api/internal/services"
)

type consultationDetailResponse struct {
	Consultation services.ConsultationDetail `json:"consultation"`
}

func (handler *Handler) ListConsultations(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}

	page, err := handler.consultationService.List(c.UserContext(), user.ID, services.ConsultationQuery{
		Limit:  c.Query("limit"),
		Cursor: c.Query("cursor"),
		Status: c.Query("status"),
		From:   c.Query("from"),
		To:     c.Query("to"),
	})
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.respond(c, fiber.StatusOK, page, "consultations.list")
}

func (handler *Handler) GetConsultation(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}

	detail, err := handler.consultationService.Get(c.UserContext(), user.ID, c.Params("id"))
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.respond(c, fiber.StatusOK, consultationDetailResponse{Consultation: detail}, "consultations.detail")
}
