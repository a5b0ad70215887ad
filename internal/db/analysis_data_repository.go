package db

import (
	"context"

	"github.com/skinior/skinior-api/internal/models"
	"gorm.io/gorm"
)

type AnalysisDataRepository struct {
	database *gorm.DB
}

func NewAnalysisDataRepository(database *gorm.DB) *AnalysisDataRepository {
	return &AnalysisDataRepository{database: database}
}

// LatestBySessionIDs maps each session id to its snapshot with the greatest timestamp.
// Sessions without snapshots are absent from the result.
func (repo *AnalysisDataRepository) LatestBySessionIDs(ctx context.Context, sessionIDs []string) (map[string]models.AnalysisData, error) {
	latest := make(map[string]models.AnalysisData, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return latest, nil
	}

	entries := make([]models.AnalysisData, 0)
	if err := repo.database.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Order("session_id ASC, timestamp DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if _, seen := latest[entry.SessionID]; seen {
			continue
		}
		latest[entry.SessionID] = entry
	}
	return latest, nil
}

func (repo *AnalysisDataRepository) ListBySession(ctx context.Context, sessionID string) ([]models.AnalysisData, error) {
	entries := make([]models.AnalysisData, 0)
	if err := repo.database.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp DESC, id DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *AnalysisDataRepository) Create(ctx context.Context, entry *models.AnalysisData) error {
	if entry.ID == "" {
		entry.ID = models.NewID()
	}
	return repo.database.WithContext(ctx).Create(entry).Error
}
