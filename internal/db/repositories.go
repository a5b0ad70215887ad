package db

import "gorm.io/gorm"

type Repositories struct {
	Users                *UserRepository
	Sessions             *AnalysisSessionRepository
	AnalysisData         *AnalysisDataRepository
	Recommendations      *RecommendationRepository
	Devices              *DeviceRepository
	Notifications        *NotificationRepository
	NotificationSettings *NotificationSettingsRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:                NewUserRepository(database),
		Sessions:             NewAnalysisSessionRepository(database),
		AnalysisData:         NewAnalysisDataRepository(database),
		Recommendations:      NewRecommendationRepository(database),
		Devices:              NewDeviceRepository(database),
		Notifications:        NewNotificationRepository(database),
		NotificationSettings: NewNotificationSettingsRepository(database),
	}
}
