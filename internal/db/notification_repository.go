package db

import (
	"context"
	"errors"

	"github.com/skinior/skinior-api/internal/models"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	database *gorm.DB
}

func NewNotificationRepository(database *gorm.DB) *NotificationRepository {
	return &NotificationRepository{database: database}
}

func (repo *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = models.NewID()
	}
	return repo.database.WithContext(ctx).Create(notification).Error
}

func (repo *NotificationRepository) ListPage(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, int64, error) {
	query := repo.database.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", filter.UserID)
	if filter.Read != nil {
		query = query.Where("read = ?", *filter.Read)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	notifications := make([]models.Notification, 0)
	if err := query.Order("created_at DESC, id DESC").
		Offset(filter.Offset).
		Limit(filter.Limit).
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (repo *NotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var unread int64
	err := repo.database.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&unread).Error
	return unread, err
}

func (repo *NotificationRepository) FindOwned(ctx context.Context, userID string, notificationID string) (models.Notification, bool, error) {
	var notification models.Notification
	err := repo.database.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		First(&notification).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Notification{}, false, nil
	}
	if err != nil {
		return models.Notification{}, false, err
	}
	return notification, true, nil
}

func (repo *NotificationRepository) MarkRead(ctx context.Context, userID string, notificationID string) (bool, error) {
	result := repo.database.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkManyRead ignores ids owned by other users and returns how many rows changed.
func (repo *NotificationRepository) MarkManyRead(ctx context.Context, userID string, notificationIDs []string) (int64, error) {
	if len(notificationIDs) == 0 {
		return 0, nil
	}
	result := repo.database.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND id IN ? AND read = ?", userID, notificationIDs, false).
		Update("read", true)
	return result.RowsAffected, result.Error
}

func (repo *NotificationRepository) DeleteOwned(ctx context.Context, userID string, notificationID string) (bool, error) {
	result := repo.database.WithContext(ctx).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
