package db

import (
	"context"
	"errors"

	"github.com/skinior/skinior-api/internal/models"
	"gorm.io/gorm"
)

type NotificationSettingsRepository struct {
	database *gorm.DB
}

func NewNotificationSettingsRepository(database *gorm.DB) *NotificationSettingsRepository {
	return &NotificationSettingsRepository{database: database}
}

func (repo *NotificationSettingsRepository) Find(ctx context.Context, userID string) (models.NotificationSettings, bool, error) {
	var settings models.NotificationSettings
	err := repo.database.WithContext(ctx).Where("user_id = ?", userID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NotificationSettings{}, false, nil
	}
	if err != nil {
		return models.NotificationSettings{}, false, err
	}
	return settings, true, nil
}

// Save inserts or replaces the row keyed by user id.
func (repo *NotificationSettingsRepository) Save(ctx context.Context, settings *models.NotificationSettings) error {
	return repo.database.WithContext(ctx).Save(settings).Error
}
