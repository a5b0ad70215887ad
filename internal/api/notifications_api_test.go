package api

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/skinior/skinior-api/internal/models"
	"github.com/skinior/skinior-api/internal/services"
)

func TestSendNotificationFansOutToEveryDevice(t *testing.T) {
	sender := &recordingSender{}
	env := newTestAppWithSender(t, sender)
	token, _ := env.registerTestUser(t, "fanout@example.com")

	for _, deviceToken := range []string{"token-a", "token-b", "token-c"} {
		response, envelope := env.do(t, http.MethodPost, "/api/notifications/devices", token, fiber.Map{
			"deviceToken": deviceToken,
			"platform":    "ios",
		})
		if response.StatusCode != http.StatusCreated {
			t.Fatalf("register %s: expected 201, got %d (%+v)", deviceToken, response.StatusCode, envelope.Error)
		}
	}

	response, envelope := env.do(t, http.MethodPost, "/api/notifications/send", token, fiber.Map{
		"title":    "Reminder",
		"body":     "Time for your evening routine",
		"type":     models.NotificationTypeReminder,
		"priority": "normal",
	})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("send: expected 200, got %d (%+v)", response.StatusCode, envelope.Error)
	}
	result := services.SendResult{}
	decodeData(t, envelope, &result)
	if result.SuccessCount != 3 || result.FailureCount != 0 || result.NotificationID == "" {
		t.Fatalf("unexpected send result %+v", result)
	}
	if len(sender.sent()) != 3 {
		t.Fatalf("expected three deliveries, got %d", len(sender.sent()))
	}

	response, envelope = env.do(t, http.MethodGet, "/api/notifications?read=false", token, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("inbox: expected 200, got %d", response.StatusCode)
	}
	inbox := services.Inbox{}
	decodeData(t, envelope, &inbox)
	if len(inbox.Notifications) != 1 || inbox.UnreadCount != 1 {
		t.Fatalf("unexpected inbox %+v", inbox)
	}
	notificationID := inbox.Notifications[0].ID

	response, envelope = env.do(t, http.MethodPut, "/api/notifications/"+notificationID+"/read", token, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("mark read: expected 200, got %d (%+v)", response.StatusCode, envelope.Error)
	}

	_, envelope = env.do(t, http.MethodGet, "/api/notifications?read=true", token, nil)
	inbox = services.Inbox{}
	decodeData(t, envelope, &inbox)
	if len(inbox.Notifications) != 1 || inbox.UnreadCount != 0 {
		t.Fatalf("expected one read notification and no unread, got %+v", inbox)
	}

	response, envelope = env.do(t, http.MethodDelete, "/api/notifications/"+notificationID, token, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", response.StatusCode)
	}
	response, envelope = env.do(t, http.MethodDelete, "/api/notifications/"+notificationID, token, nil)
	assertErrorCode(t, response, envelope, http.StatusNotFound, codeNotFound)
}

func TestSendNotificationHonoursDisabledPush(t *testing.T) {
	sender := &recordingSender{}
	env := newTestAppWithSender(t, sender)
	token, _ := env.registerTestUser(t, "muted@example.com")

	env.do(t, http.MethodPost, "/api/notifications/devices", token, fiber.Map{"deviceToken": "muted-token", "platform": "android"})

	response, envelope := env.do(t, http.MethodPut, "/api/notifications/settings", token, fiber.Map{"pushEnabled": false})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("update settings: expected 200, got %d (%+v)", response.StatusCode, envelope.Error)
	}
	settings := models.NotificationSettings{}
	decodeData(t, envelope, &settings)
	if settings.PushEnabled || !settings.SkinAnalysisComplete {
		t.Fatalf("expected only pushEnabled to change, got %+v", settings)
	}

	response, envelope = env.do(t, http.MethodPost, "/api/notifications/send", token, fiber.Map{"title": "Hi", "body": "There"})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("send: expected 200, got %d", response.StatusCode)
	}
	result := services.SendResult{}
	decodeData(t, envelope, &result)
	if !result.Skipped || len(sender.sent()) != 0 {
		t.Fatalf("expected skipped send without deliveries, got %+v and %d deliveries", result, len(sender.sent()))
	}
}

func TestNotificationEndpointsValidateInput(t *testing.T) {
	env := newTestApp(t)
	token, _ := env.registerTestUser(t, "notify-validate@example.com")

	response, envelope := env.do(t, http.MethodPost, "/api/notifications/send", token, fiber.Map{"title": "Hi", "body": "There"})
	assertErrorCode(t, response, envelope, http.StatusBadRequest, codeInvalidParameters)
	if envelope.Error.Details["deviceId"] == "" {
		t.Fatalf("expected deviceId detail when no devices exist, got %+v", envelope.Error.Details)
	}

	response, envelope = env.do(t, http.MethodPost, "/api/notifications/devices", token, fiber.Map{"deviceToken": "x", "platform": "symbian"})
	assertErrorCode(t, response, envelope, http.StatusBadRequest, codeInvalidParameters)

	response, envelope = env.do(t, http.MethodGet, "/api/notifications?limit=500&read=maybe", token, nil)
	assertErrorCode(t, response, envelope, http.StatusBadRequest, codeInvalidParameters)
	if envelope.Error.Details["limit"] == "" || envelope.Error.Details["read"] == "" {
		t.Fatalf("expected limit and read details, got %+v", envelope.Error.Details)
	}

	response, envelope = env.do(t, http.MethodDelete, "/api/notifications/devices/unknown", token, nil)
	assertErrorCode(t, response, envelope, http.StatusNotFound, codeNotFound)

	response, envelope = env.do(t, http.MethodPut, "/api/notifications/read", token, fiber.Map{"notificationIds": []string{}})
	assertErrorCode(t, response, envelope, http.StatusBadRequest, codeInvalidParameters)
}
