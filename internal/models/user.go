package models

import "time"

type User struct {
	ID                 string    `gorm:"primaryKey;type:varchar(36)"`
	Email              string    `gorm:"uniqueIndex;not null"`
	PasswordHash       string    `gorm:"not null"`
	DisplayName        string    `gorm:"not null;default:''"`
	MustChangePassword bool      `gorm:"not null"`
	CreatedAt          time.Time `gorm:"not null"`
	UpdatedAt          time.Time `gorm:"not null"`
}
