package api

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestRegisterLoginAndMe(t *testing.T) {
	env := newTestApp(t)
	token, userID := env.registerTestUser(t, "Person@Example.com ")

	response, envelope := env.do(t, http.MethodGet, "/api/auth/me", token, nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /me, got %d", response.StatusCode)
	}
	profile := userView{}
	decodeData(t, envelope, &profile)
	if profile.ID != userID || profile.Email != "person@example.com" {
		t.Fatalf("unexpected profile %+v", profile)
	}

	response, envelope = env.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "PERSON@example.com",
		"password": testPassword,
	})
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected login 200, got %d (%+v)", response.StatusCode, envelope.Error)
	}
	result := authResult{}
	decodeData(t, envelope, &result)
	if result.Token == "" || result.User.ID != userID {
		t.Fatalf("unexpected login result %+v", result)
	}

	claims, err := env.handler.parseToken(result.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.UserID != userID || claims.Subject != userID {
		t.Fatalf("expected uid and sub to carry %s, got %+v", userID, claims)
	}
}

func TestRegisterRejectsDuplicateAndWeakPasswords(t *testing.T) {
	env := newTestApp(t)
	env.registerTestUser(t, "dup@example.com")

	response, envelope := env.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":    "DUP@example.com",
		"password": testPassword,
	})
	assertErrorCode(t, response, envelope, http.StatusConflict, codeEmailExists)

	response, envelope = env.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":    "weak@example.com",
		"password": "short",
	})
	assertErrorCode(t, response, envelope, http.StatusBadRequest, codeWeakPassword)

	response, envelope = env.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":    "not-an-email",
		"password": testPassword,
	})
	assertErrorCode(t, response, envelope, http.StatusBadRequest, codeInvalidParameters)
}

func TestLoginIsRateLimitedAfterRepeatedFailures(t *testing.T) {
	env := newTestApp(t)
	env.registerTestUser(t, "limited@example.com")

	bad := fiber.Map{"email": "limited@example.com", "password": "Wrong12345"}
	for attempt := 0; attempt < loginAttemptLimit; attempt++ {
		response, envelope := env.do(t, http.MethodPost, "/api/auth/login", "", bad)
		assertErrorCode(t, response, envelope, http.StatusUnauthorized, codeInvalidCredentials)
	}

	response, envelope := env.do(t, http.MethodPost, "/api/auth/login", "", fiber.Map{
		"email":    "limited@example.com",
		"password": testPassword,
	})
	assertErrorCode(t, response, envelope, http.StatusTooManyRequests, codeTooManyAttempts)
}

func TestTokenForDeletedUserIsRejected(t *testing.T) {
	env := newTestApp(t)
	token, userID := env.registerTestUser(t, "gone@example.com")

	if err := env.database.Exec("DELETE FROM users WHERE id = ?", userID).Error; err != nil {
		t.Fatalf("delete user: %v", err)
	}

	response, envelope := env.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assertErrorCode(t, response, envelope, http.StatusUnauthorized, codeUnauthorized)
}

func TestHealthAndReadiness(t *testing.T) {
	env := newTestApp(t)

	response, _ := env.doRaw(t, http.MethodGet, "/healthz", "", nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", response.StatusCode)
	}

	response, raw := env.doRaw(t, http.MethodGet, "/readyz", "", nil)
	if response.StatusCode != http.StatusOK {
		t.Fatalf("expected readyz 200, got %d: %s", response.StatusCode, string(raw))
	}
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	env := newTestApp(t)

	response, envelope := env.do(t, http.MethodGet, "/api/nope", "", nil)
	assertErrorCode(t, response, envelope, http.StatusNotFound, codeNotFound)
}
