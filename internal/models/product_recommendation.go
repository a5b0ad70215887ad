package models

import "time"

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

type ProductRecommendation struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SessionID   string    `gorm:"not null;index" json:"sessionId"`
	UserID      string    `gorm:"not null;index" json:"userId"`
	ProductName string    `gorm:"not null;default:''" json:"productName"`
	Reason      string    `gorm:"not null;default:''" json:"reason"`
	Category    string    `gorm:"not null;default:''" json:"category"`
	Priority    string    `gorm:"not null;default:''" json:"priority"`
	Brand       string    `gorm:"not null;default:''" json:"brand"`
	Price       float64   `gorm:"not null;default:0" json:"price"`
	CreatedAt   time.Time `json:"createdAt"`
}

func IsKnownPriority(priority string) bool {
	switch priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}
