package db

import (
	"context"
	"errors"

	"github.com/skinior/skinior-api/internal/models"
	"gorm.io/gorm"
)

type DeviceRepository struct {
	database *gorm.DB
}

func NewDeviceRepository(database *gorm.DB) *DeviceRepository {
	return &DeviceRepository{database: database}
}

// Upsert registers a device token for the user, refreshing the stored
// platform and version fields when the token is already known.
func (repo *DeviceRepository) Upsert(ctx context.Context, device *models.Device) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Device
		err := tx.Where("user_id = ? AND device_token = ?", device.UserID, device.DeviceToken).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if device.ID == "" {
				device.ID = models.NewID()
			}
			return tx.Create(device).Error
		case err != nil:
			return err
		}

		existing.Platform = device.Platform
		existing.AppVersion = device.AppVersion
		existing.DeviceModel = device.DeviceModel
		existing.OSVersion = device.OSVersion
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		*device = existing
		return nil
	})
}

func (repo *DeviceRepository) ListByUser(ctx context.Context, userID string) ([]models.Device, error) {
	devices := make([]models.Device, 0)
	if err := repo.database.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&devices).Error; err != nil {
		return nil, err
	}
	return devices, nil
}

func (repo *DeviceRepository) FindOwned(ctx context.Context, userID string, deviceID string) (models.Device, bool, error) {
	var device models.Device
	err := repo.database.WithContext(ctx).Where("id = ? AND user_id = ?", deviceID, userID).First(&device).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Device{}, false, nil
	}
	if err != nil {
		return models.Device{}, false, err
	}
	return device, true, nil
}

// DeleteOwned reports whether a row was removed.
func (repo *DeviceRepository) DeleteOwned(ctx context.Context, userID string, deviceID string) (bool, error) {
	result := repo.database.WithContext(ctx).Where("id = ? AND user_id = ?", deviceID, userID).Delete(&models.Device{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
