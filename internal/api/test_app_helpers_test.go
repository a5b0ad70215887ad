package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/skinior/skinior-api/internal/db"
	"github.com/skinior/skinior-api/internal/i18n"
	"github.com/skinior/skinior-api/internal/models"
	"github.com/skinior/skinior-api/internal/push"
	"gorm.io/gorm"
)

const (
	testSecretKey = "0123456789abcdef0123456789abcdef"
	testPassword  = "Skinior2026"
)

type testApp struct {
	app      *fiber.App
	handler  *Handler
	database *gorm.DB
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Timestamp string `json:"timestamp"`
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithSender(t, nil)
}

func newTestAppWithSender(t *testing.T, sender push.Sender) *testApp {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "skinior-api.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	i18nManager, err := i18n.NewEmbeddedManager(i18n.LangEN)
	if err != nil {
		t.Fatalf("init i18n: %v", err)
	}

	deps := Dependencies{
		Database:  database,
		SecretKey: testSecretKey,
		TokenTTL:  time.Hour,
		I18n:      i18nManager,
	}
	if sender != nil {
		deps.PushSender = sender
	}
	handler, err := NewHandler(deps)
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: handler.ErrorHandler})
	app.Use(TracingMiddleware)
	RegisterRoutes(app, handler)

	return &testApp{app: app, handler: handler, database: database}
}

func (env *testApp) do(t *testing.T, method string, path string, token string, body any) (*http.Response, testEnvelope) {
	t.Helper()

	response, raw := env.doRaw(t, method, path, token, body)
	envelope := testEnvelope{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &envelope); err != nil {
			t.Fatalf("decode %s %s response %q: %v", method, path, string(raw), err)
		}
	}
	return response, envelope
}

func (env *testApp) doRaw(t *testing.T, method string, path string, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})

	raw, err := io.ReadAll(response.Body)
	if err != nil {
		t.Fatalf("read %s %s response: %v", method, path, err)
	}
	return response, raw
}

// registerTestUser creates an account through the API and returns its token and id.
func (env *testApp) registerTestUser(t *testing.T, email string) (string, string) {
	t.Helper()

	response, envelope := env.do(t, http.MethodPost, "/api/auth/register", "", fiber.Map{
		"email":    email,
		"password": testPassword,
	})
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: expected 201, got %d (%+v)", email, response.StatusCode, envelope.Error)
	}

	result := authResult{}
	decodeData(t, envelope, &result)
	if result.Token == "" || result.User.ID == "" {
		t.Fatalf("expected token and user id, got %+v", result)
	}
	return result.Token, result.User.ID
}

func (env *testApp) seedSession(t *testing.T, session models.AnalysisSession) models.AnalysisSession {
	t.Helper()

	if session.Status == "" {
		session.Status = models.SessionStatusPending
	}
	if session.Language == "" {
		session.Language = models.DefaultSessionLanguage
	}
	if session.UpdatedAt.IsZero() {
		session.UpdatedAt = session.CreatedAt
	}
	if err := db.NewAnalysisSessionRepository(env.database).Create(context.Background(), &session); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	return session
}

func decodeData(t *testing.T, envelope testEnvelope, target any) {
	t.Helper()

	if err := json.Unmarshal(envelope.Data, target); err != nil {
		t.Fatalf("decode envelope data %q: %v", string(envelope.Data), err)
	}
}

func assertErrorCode(t *testing.T, response *http.Response, envelope testEnvelope, status int, code string) {
	t.Helper()

	if response.StatusCode != status {
		t.Fatalf("expected status %d, got %d (%+v)", status, response.StatusCode, envelope.Error)
	}
	if envelope.Success {
		t.Fatal("expected success=false in error envelope")
	}
	if envelope.Error.Code != code {
		t.Fatalf("expected error code %s, got %q", code, envelope.Error.Code)
	}
	if envelope.Timestamp == "" {
		t.Fatal("expected timestamp in error envelope")
	}
}
