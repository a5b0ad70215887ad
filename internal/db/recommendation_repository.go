package db

import (
	"context"

	"github.com/skinior/skinior-api/internal/models"
	"gorm.io/gorm"
)

// Empty priority ranks as medium, matching how it is presented.
const priorityRankOrder = "CASE priority WHEN 'high' THEN 3 WHEN 'low' THEN 1 ELSE 2 END DESC, created_at ASC, id ASC"

type RecommendationRepository struct {
	database *gorm.DB
}

func NewRecommendationRepository(database *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{database: database}
}

// ListBySessionIDs groups recommendations per session, highest priority first.
// perSession <= 0 keeps every row.
func (repo *RecommendationRepository) ListBySessionIDs(ctx context.Context, sessionIDs []string, perSession int) (map[string][]models.ProductRecommendation, error) {
	grouped := make(map[string][]models.ProductRecommendation, len(sessionIDs))
	if len(sessionIDs) == 0 {
		return grouped, nil
	}

	rows := make([]models.ProductRecommendation, 0)
	if err := repo.database.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Order(priorityRankOrder).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		if perSession > 0 && len(grouped[row.SessionID]) >= perSession {
			continue
		}
		grouped[row.SessionID] = append(grouped[row.SessionID], row)
	}
	return grouped, nil
}

func (repo *RecommendationRepository) CreateBatch(ctx context.Context, recommendations []models.ProductRecommendation) error {
	if len(recommendations) == 0 {
		return nil
	}
	for index := range recommendations {
		if recommendations[index].ID == "" {
			recommendations[index].ID = models.NewID()
		}
	}
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&recommendations).Error
	})
}
