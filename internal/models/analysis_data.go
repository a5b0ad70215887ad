package models

import (
	"time"

	"gorm.io/datatypes"
)

// AnalysisData is an append-only snapshot of raw analysis output for a session.
type AnalysisData struct {
	ID           string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	SessionID    string         `gorm:"not null;index" json:"sessionId"`
	UserID       string         `gorm:"not null;index" json:"userId"`
	AnalysisType string         `gorm:"not null;default:''" json:"analysisType"`
	Data         datatypes.JSON `gorm:"type:text" json:"data"`
	Timestamp    time.Time      `gorm:"not null" json:"timestamp"`
}

func (AnalysisData) TableName() string { return "analysis_data" }
