package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/skinior/skinior-api/internal/services"
)

type markManyReadPayload struct {
	NotificationIDs []string `json:"notificationIds"`
}

func (handler *Handler) RegisterDevice(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}

	input := services.RegisterDeviceInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.badRequestBody(c)
	}

	device, err := handler.notificationService.RegisterDevice(c.UserContext(), user.ID, input)
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.respond(c, fiber.StatusCreated, device, "notifications.device_registered")
}

func (handler *Handler) UnregisterDevice(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}

	if err := handler.notificationService.UnregisterDevice(c.UserContext(), user.ID, c.Params("id")); err != nil {
		return handler.respondError(c, err)
	}
	return handler.respond(c, fiber.StatusOK, nil, "notifications.device_removed")
}

func (handler *Handler) SendNotification(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}

	input := services.SendNotificationInput{}
	if err := c.BodyParser(&input); err != nil {
		return handler.badRequestBody(c)
	}

	result, err := handler.notificationService.Send(c.UserContext(), user.ID, input)
	if err != nil {
		return handler.respondError(c, err)
	}
	if result.Skipped {
		return handler.respond(c, fiber.StatusOK, result, "notifications.skipped")
	}
	return handler.respond(c, fiber.StatusOK, result, "notifications.sent")
}

func (handler *Handler) ListNotifications(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}

	inbox, err := handler.notificationService.Inbox(c.UserContext(), user.ID, services.InboxQuery{
		Page:  c.Query("page"),
		Limit: c.Query("limit"),
		Read:  c.Query("read"),
	})
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.respond(c, fiber.StatusOK, inbox, "notifications.list")
}

func (handler *Handler) MarkNotificationRead(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}

	if err := handler.notificationService.MarkRead(c.UserContext(), user.ID, c.Params("id")); err != nil {
		return handler.respondError(c, err)
	}
	return handler.respond(c, fiber.StatusOK, nil, "notifications.marked_read")
}

func (handler *Handler) MarkNotificationsRead(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}

	payload := markManyReadPayload{}
	if err := c.BodyParser(&payload); err != nil {
		return handler.badRequestBody(c)
	}

	updated, err := handler.notificationService.MarkManyRead(c.UserContext(), user.ID, payload.NotificationIDs)
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.respond(c, fiber.StatusOK, fiber.Map{"updated": updated}, "notifications.marked_many_read")
}

func (handler *Handler) DeleteNotification(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}

	if err := handler.notificationService.Delete(c.UserContext(), user.ID, c.Params("id")); err != nil {
		return handler.respondError(c, err)
	}
	return handler.respond(c, fiber.StatusOK, nil, "notifications.deleted")
}

func (handler *Handler) GetNotificationSettings(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}

	settings, err := handler.notificationService.GetSettings(c.UserContext(), user.ID)
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.respond(c, fiber.StatusOK, settings, "notifications.settings")
}

func (handler *Handler) UpdateNotificationSettings(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return handler.apiError(c, fiber.StatusUnauthorized, codeUnauthorized, "errors.unauthorized", nil)
	}

	patch := services.SettingsPatch{}
	if err := c.BodyParser(&patch); err != nil {
		return handler.badRequestBody(c)
	}

	settings, err := handler.notificationService.UpdateSettings(c.UserContext(), user.ID, patch)
	if err != nil {
		return handler.respondError(c, err)
	}
	return handler.respond(c, fiber.StatusOK, settings, "notifications.settings_updated")
}
