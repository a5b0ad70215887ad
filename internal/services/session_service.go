package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/skinior/skinior-api/internal/logger"
	"github.com/skinior/skinior-api/internal/models"
)

const (
	maxRecommendationsPerBatch = 50
	maxAnalysisTypeLength      = 64
)

type SessionRepository interface {
	FindOwned(ctx context.Context, userID string, sessionID string) (models.AnalysisSession, bool, error)
	Create(ctx context.Context, session *models.AnalysisSession) error
	UpdateStatus(ctx context.Context, sessionID string, status string, completedAt *time.Time) error
	CountByStatus(ctx context.Context, userID string) (map[string]int64, error)
	FirstAndLastCreated(ctx context.Context, userID string) (time.Time, time.Time, error)
}

type SessionAnalysisWriter interface {
	Create(ctx context.Context, entry *models.AnalysisData) error
}

type SessionRecommendationWriter interface {
	CreateBatch(ctx context.Context, recommendations []models.ProductRecommendation) error
}

type SessionCompletionNotifier interface {
	NotifySessionCompleted(ctx context.Context, userID string, sessionID string) error
}

type CreateSessionInput struct {
	Language string         `json:"language"`
	Metadata map[string]any `json:"metadata"`
}

type AnalysisDataInput struct {
	AnalysisType string          `json:"analysisType"`
	Data         json.RawMessage `json:"data"`
	Timestamp    *time.Time      `json:"timestamp"`
}

type RecommendationInput struct {
	ProductName string  `json:"productName"`
	Reason      string  `json:"reason"`
	Category    string  `json:"category"`
	Priority    string  `json:"priority"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price"`
}

type SessionStats struct {
	Total          int64            `json:"total"`
	ByStatus       map[string]int64 `json:"byStatus"`
	FirstSessionAt *string          `json:"firstSessionAt"`
	LastSessionAt  *string          `json:"lastSessionAt"`
}

type SessionService struct {
	sessions        SessionRepository
	analysis        SessionAnalysisWriter
	recommendations SessionRecommendationWriter
	notifier        SessionCompletionNotifier
	log             *logger.Logger
	now             func() time.Time
}

func NewSessionService(sessions SessionRepository, analysis SessionAnalysisWriter, recommendations SessionRecommendationWriter, notifier SessionCompletionNotifier, log *logger.Logger) *SessionService {
	if log == nil {
		log = logger.Nop()
	}
	return &SessionService{
		sessions:        sessions,
		analysis:        analysis,
		recommendations: recommendations,
		notifier:        notifier,
		log:             log,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (service *SessionService) Create(ctx context.Context, userID string, input CreateSessionInput) (models.AnalysisSession, error) {
	language := strings.ToLower(strings.TrimSpace(input.Language))
	if language == "" {
		language = models.DefaultSessionLanguage
	}

	session := models.AnalysisSession{
		UserID:   userID,
		Status:   models.SessionStatusPending,
		Language: language,
		Metadata: input.Metadata,
	}
	if session.Metadata == nil {
		session.Metadata = map[string]any{}
	}
	if err := service.sessions.Create(ctx, &session); err != nil {
		return models.AnalysisSession{}, err
	}
	return session, nil
}

// CanTransitionSessionStatus reports whether from -> to is a legal move.
// Repeating the current status is allowed and changes nothing.
func CanTransitionSessionStatus(from string, to string) bool {
	if from == to {
		return true
	}
	switch from {
	case models.SessionStatusPending:
		return to == models.SessionStatusInProgress || to == models.SessionStatusCompleted || to == models.SessionStatusCancelled
	case models.SessionStatusInProgress:
		return to == models.SessionStatusCompleted || to == models.SessionStatusCancelled
	default:
		return false
	}
}

func (service *SessionService) UpdateStatus(ctx context.Context, userID string, sessionID string, status string) (models.AnalysisSession, error) {
	target := strings.ToLower(strings.TrimSpace(status))
	if !models.IsKnownSessionStatus(target) {
		return models.AnalysisSession{}, newValidationError("status", "status must be one of pending, in_progress, completed, cancelled")
	}

	session, err := service.findOwned(ctx, userID, sessionID)
	if err != nil {
		return models.AnalysisSession{}, err
	}
	if session.Status == target {
		return session, nil
	}
	if !CanTransitionSessionStatus(session.Status, target) {
		return models.AnalysisSession{}, ErrInvalidStatusTransition
	}

	var completedAt *time.Time
	if target == models.SessionStatusCompleted {
		now := service.now()
		completedAt = &now
	}
	if err := service.sessions.UpdateStatus(ctx, session.ID, target, completedAt); err != nil {
		return models.AnalysisSession{}, err
	}
	session.Status = target
	session.CompletedAt = completedAt
	session.UpdatedAt = service.now()

	if target == models.SessionStatusCompleted && service.notifier != nil {
		if err := service.notifier.NotifySessionCompleted(ctx, userID, session.ID); err != nil {
			service.log.Warn("session completion notification failed", "session_id", session.ID, "error", err)
		}
	}
	return session, nil
}

func (service *SessionService) AppendAnalysisData(ctx context.Context, userID string, sessionID string, input AnalysisDataInput) (models.AnalysisData, error) {
	validation := &ValidationError{}
	trimmed := strings.TrimSpace(string(input.Data))
	if trimmed == "" || !json.Valid([]byte(trimmed)) || trimmed[0] != '{' {
		validation.add("data", "data must be a JSON object")
	}
	analysisType := strings.TrimSpace(input.AnalysisType)
	if len(analysisType) > maxAnalysisTypeLength {
		validation.add("analysisType", "analysisType must be at most 64 characters")
	}
	if err := validation.orNil(); err != nil {
		return models.AnalysisData{}, err
	}

	session, err := service.findOwned(ctx, userID, sessionID)
	if err != nil {
		return models.AnalysisData{}, err
	}

	timestamp := service.now()
	if input.Timestamp != nil && !input.Timestamp.IsZero() {
		timestamp = input.Timestamp.UTC()
	}
	entry := models.AnalysisData{
		SessionID:    session.ID,
		UserID:       userID,
		AnalysisType: analysisType,
		Data:         []byte(trimmed),
		Timestamp:    timestamp,
	}
	if err := service.analysis.Create(ctx, &entry); err != nil {
		return models.AnalysisData{}, err
	}
	return entry, nil
}

func (service *SessionService) AddRecommendations(ctx context.Context, userID string, sessionID string, inputs []RecommendationInput) ([]models.ProductRecommendation, error) {
	if len(inputs) == 0 || len(inputs) > maxRecommendationsPerBatch {
		return nil, newValidationError("recommendations", "between 1 and 50 recommendations are required")
	}
	validation := &ValidationError{}
	for _, input := range inputs {
		priority := strings.ToLower(strings.TrimSpace(input.Priority))
		if priority != "" && !models.IsKnownPriority(priority) {
			validation.add("priority", "priority must be high, medium or low")
		}
		if input.Price < 0 {
			validation.add("price", "price must not be negative")
		}
	}
	if err := validation.orNil(); err != nil {
		return nil, err
	}

	session, err := service.findOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	recommendations := make([]models.ProductRecommendation, 0, len(inputs))
	for _, input := range inputs {
		recommendations = append(recommendations, models.ProductRecommendation{
			SessionID:   session.ID,
			UserID:      userID,
			ProductName: strings.TrimSpace(input.ProductName),
			Reason:      strings.TrimSpace(input.Reason),
			Category:    strings.TrimSpace(input.Category),
			Priority:    strings.ToLower(strings.TrimSpace(input.Priority)),
			Brand:       strings.TrimSpace(input.Brand),
			Price:       input.Price,
		})
	}
	if err := service.recommendations.CreateBatch(ctx, recommendations); err != nil {
		return nil, err
	}
	return recommendations, nil
}

func (service *SessionService) Stats(ctx context.Context, userID string) (SessionStats, error) {
	counts, err := service.sessions.CountByStatus(ctx, userID)
	if err != nil {
		return SessionStats{}, err
	}

	stats := SessionStats{ByStatus: map[string]int64{
		models.SessionStatusPending:    0,
		models.SessionStatusInProgress: 0,
		models.SessionStatusCompleted:  0,
		models.SessionStatusCancelled:  0,
	}}
	for status, count := range counts {
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if stats.Total == 0 {
		return stats, nil
	}

	first, last, err := service.sessions.FirstAndLastCreated(ctx, userID)
	if err != nil {
		return SessionStats{}, err
	}
	firstAt := formatTimestamp(first)
	lastAt := formatTimestamp(last)
	stats.FirstSessionAt = &firstAt
	stats.LastSessionAt = &lastAt
	return stats, nil
}

func (service *SessionService) findOwned(ctx context.Context, userID string, sessionID string) (models.AnalysisSession, error) {
	session, found, err := service.sessions.FindOwned(ctx, userID, sessionID)
	if err != nil {
		return models.AnalysisSession{}, err
	}
	if !found {
		return models.AnalysisSession{}, ErrSessionNotFound
	}
	return session, nil
}
