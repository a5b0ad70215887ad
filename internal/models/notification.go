package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PlatformIOS     = "ios"
	PlatformAndroid = "android"
)

const (
	NotificationTypeSkinAnalysisComplete = "skin_analysis_complete"
	NotificationTypeChatMessage          = "chat_message"
	NotificationTypeReminder             = "reminder"
	NotificationTypeMarketing            = "marketing"
)

type Device struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string    `gorm:"not null;uniqueIndex:uidx_device_user_token" json:"userId"`
	DeviceToken string    `gorm:"not null;uniqueIndex:uidx_device_user_token" json:"deviceToken"`
	Platform    string    `gorm:"not null" json:"platform"`
	AppVersion  string    `gorm:"not null;default:''" json:"appVersion"`
	DeviceModel string    `gorm:"not null;default:''" json:"deviceModel"`
	OSVersion   string    `gorm:"column:os_version;not null;default:''" json:"osVersion"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Notification struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string         `gorm:"not null;index" json:"userId"`
	Title     string         `gorm:"not null" json:"title"`
	Body      string         `gorm:"not null" json:"body"`
	Data      datatypes.JSON `gorm:"type:text" json:"data"`
	Read      bool           `gorm:"not null" json:"read"`
	SentAt    *time.Time     `json:"sentAt"`
	CreatedAt time.Time      `json:"createdAt"`
}

type NotificationSettings struct {
	UserID               string    `gorm:"primaryKey;type:varchar(36)" json:"userId"`
	SkinAnalysisComplete bool      `gorm:"not null" json:"skinAnalysisComplete"`
	ChatMessages         bool      `gorm:"not null" json:"chatMessages"`
	Reminders            bool      `gorm:"not null" json:"reminders"`
	Marketing            bool      `gorm:"not null" json:"marketing"`
	PushEnabled          bool      `gorm:"not null" json:"pushEnabled"`
	EmailEnabled         bool      `gorm:"not null" json:"emailEnabled"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func (NotificationSettings) TableName() string { return "notification_settings" }

func DefaultNotificationSettings(userID string) NotificationSettings {
	return NotificationSettings{
		UserID:               userID,
		SkinAnalysisComplete: true,
		ChatMessages:         true,
		Reminders:            true,
		Marketing:            false,
		PushEnabled:          true,
		EmailEnabled:         true,
	}
}

// NotificationFilter selects one inbox page. Read nil means both read and unread.
type NotificationFilter struct {
	UserID string
	Read   *bool
	Offset int
	Limit  int
}
