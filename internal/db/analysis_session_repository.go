package db

import (
	"context"
	"errors"
	"time"

	"github.com/skinior/skinior-api/internal/models"
	"gorm.io/gorm"
)

type AnalysisSessionRepository struct {
	database *gorm.DB
}

type sessionStatusCount struct {
	Status string `gorm:"column:status"`
	Count  int64  `gorm:"column:count"`
}

func NewAnalysisSessionRepository(database *gorm.DB) *AnalysisSessionRepository {
	return &AnalysisSessionRepository{database: database}
}

// ListByFilter returns sessions newest first, ties broken by id. A cursor selects
// rows strictly after the cursor row in that ordering; an unknown cursor yields no rows.
func (repo *AnalysisSessionRepository) ListByFilter(ctx context.Context, filter models.SessionFilter) ([]models.AnalysisSession, error) {
	query := repo.filtered(ctx, filter)
	if filter.CursorID != "" {
		cursorCreatedAt := repo.database.WithContext(ctx).
			Model(&models.AnalysisSession{}).
			Select("created_at").
			Where("id = ? AND user_id = ?", filter.CursorID, filter.UserID)
		query = query.Where(
			"(created_at < (?) OR (created_at = (?) AND id < ?))",
			cursorCreatedAt, cursorCreatedAt, filter.CursorID,
		)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	sessions := make([]models.AnalysisSession, 0)
	if err := query.Order("created_at DESC, id DESC").Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// CountByFilter ignores the cursor and the limit.
func (repo *AnalysisSessionRepository) CountByFilter(ctx context.Context, filter models.SessionFilter) (int64, error) {
	var total int64
	if err := repo.filtered(ctx, filter).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func (repo *AnalysisSessionRepository) filtered(ctx context.Context, filter models.SessionFilter) *gorm.DB {
	query := repo.database.WithContext(ctx).Model(&models.AnalysisSession{}).Where("user_id = ?", filter.UserID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", filter.From.UTC())
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", filter.To.UTC())
	}
	return query
}

func (repo *AnalysisSessionRepository) FindOwned(ctx context.Context, userID string, sessionID string) (models.AnalysisSession, bool, error) {
	var session models.AnalysisSession
	err := repo.database.WithContext(ctx).
		Where("id = ? AND user_id = ?", sessionID, userID).
		First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.AnalysisSession{}, false, nil
	}
	if err != nil {
		return models.AnalysisSession{}, false, err
	}
	return session, true, nil
}

func (repo *AnalysisSessionRepository) Create(ctx context.Context, session *models.AnalysisSession) error {
	if session.ID == "" {
		session.ID = models.NewID()
	}
	return repo.database.WithContext(ctx).Create(session).Error
}

func (repo *AnalysisSessionRepository) UpdateStatus(ctx context.Context, sessionID string, status string, completedAt *time.Time) error {
	updates := map[string]any{"status": status}
	if completedAt != nil {
		updates["completed_at"] = completedAt.UTC()
	}
	return repo.database.WithContext(ctx).Model(&models.AnalysisSession{}).Where("id = ?", sessionID).Updates(updates).Error
}

func (repo *AnalysisSessionRepository) CountByStatus(ctx context.Context, userID string) (map[string]int64, error) {
	rows := make([]sessionStatusCount, 0)
	if err := repo.database.WithContext(ctx).
		Model(&models.AnalysisSession{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// FirstAndLastCreated returns zero times when the user has no sessions.
func (repo *AnalysisSessionRepository) FirstAndLastCreated(ctx context.Context, userID string) (time.Time, time.Time, error) {
	var first, last models.AnalysisSession
	result := repo.database.WithContext(ctx).
		Select("id", "created_at").
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Limit(1).
		Find(&first)
	if result.Error != nil {
		return time.Time{}, time.Time{}, result.Error
	}
	if result.RowsAffected == 0 {
		return time.Time{}, time.Time{}, nil
	}
	if err := repo.database.WithContext(ctx).
		Select("id", "created_at").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(1).
		Find(&last).Error; err != nil {
		return time.Time{}, time.Time{}, err
	}
	return first.CreatedAt, last.CreatedAt, nil
}
