package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SessionStatusPending    = "pending"
	SessionStatusInProgress = "in_progress"
	SessionStatusCompleted  = "completed"
	SessionStatusCancelled  = "cancelled"
)

const DefaultSessionLanguage = "english"

// AnalysisSession is one skin-analysis episode owned by a user.
type AnalysisSession struct {
	ID          string            `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID      string            `gorm:"not null;index" json:"userId"`
	Status      string            `gorm:"not null;default:pending" json:"status"`
	Language    string            `gorm:"not null;default:english" json:"language"`
	Metadata    datatypes.JSONMap `gorm:"type:text" json:"metadata"`
	CreatedAt   time.Time         `gorm:"not null" json:"createdAt"`
	UpdatedAt   time.Time         `gorm:"not null" json:"updatedAt"`
	CompletedAt *time.Time        `json:"completedAt"`
}

func IsKnownSessionStatus(status string) bool {
	switch status {
	case SessionStatusPending, SessionStatusInProgress, SessionStatusCompleted, SessionStatusCancelled:
		return true
	default:
		return false
	}
}

// SessionFilter scopes a session listing to one user. Zero values mean "no constraint".
type SessionFilter struct {
	UserID   string
	Status   string
	From     *time.Time
	To       *time.Time
	CursorID string
	Limit    int
}
