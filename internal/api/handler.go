package api

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/skinior/skinior-api/internal/db"
	"github.com/skinior/skinior-api/internal/i18n"
	"github.com/skinior/skinior-api/internal/logger"
	"github.com/skinior/skinior-api/internal/push"
	"github.com/skinior/skinior-api/internal/services"
	"github.com/skinior/skinior-api/internal/storage"
	"gorm.io/gorm"
)

const defaultAuthTokenTTL = 7 * 24 * time.Hour

type archiveStore interface {
	Put(ctx context.Context, key string, contentType string, payload []byte, now time.Time) (storage.ArchivedObject, error)
}

// Dependencies wires a Handler. Archive and Redis are optional.
type Dependencies struct {
	Database   *gorm.DB
	SecretKey  string
	TokenTTL   time.Duration
	I18n       *i18n.Manager
	Logger     *logger.Logger
	PushSender services.PushSender
	Archive    *storage.ArchiveStore
	Redis      goredis.UniversalClient
}

type Handler struct {
	db        *gorm.DB
	secretKey []byte
	tokenTTL  time.Duration
	i18n      *i18n.Manager
	log       *logger.Logger
	archive   archiveStore
	now       func() time.Time

	loginLimiter attemptLimiter

	authService         *services.AuthService
	consultationService *services.ConsultationService
	sessionService      *services.SessionService
	notificationService *services.NotificationService
	exportService       *services.ExportService
}

func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Database == nil {
		return nil, errors.New("database is required")
	}
	if deps.I18n == nil {
		return nil, errors.New("i18n manager is required")
	}
	if deps.SecretKey == "" {
		return nil, errors.New("secret key is required")
	}

	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	tokenTTL := deps.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = defaultAuthTokenTTL
	}

	handler := &Handler{
		db:        deps.Database,
		secretKey: []byte(deps.SecretKey),
		tokenTTL:  tokenTTL,
		i18n:      deps.I18n,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
	if deps.Archive != nil {
		handler.archive = deps.Archive
	}
	if deps.Redis != nil {
		handler.loginLimiter = newRedisAttemptLimiter(deps.Redis)
	} else {
		handler.loginLimiter = newAttemptLimiter()
	}

	sender := deps.PushSender
	if sender == nil {
		sender = push.NewLogSender(log)
	}
	return handler.withDependencies(deps.Database, sender), nil
}

func (handler *Handler) withDependencies(database *gorm.DB, sender services.PushSender) *Handler {
	repositories := db.NewRepositories(database)

	handler.authService = services.NewAuthService(repositories.Users)
	handler.notificationService = services.NewNotificationService(
		repositories.Devices,
		repositories.Notifications,
		repositories.NotificationSettings,
		sender,
		handler.log.With("service", "notifications"),
	)
	handler.consultationService = services.NewConsultationService(
		repositories.Sessions,
		repositories.AnalysisData,
		repositories.Recommendations,
	)
	handler.sessionService = services.NewSessionService(
		repositories.Sessions,
		repositories.AnalysisData,
		repositories.Recommendations,
		handler.notificationService,
		handler.log.With("service", "sessions"),
	)
	handler.exportService = services.NewExportService(handler.consultationService)
	return handler
}
