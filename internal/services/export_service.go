package services

import (
	"context"
	"strconv"
	"strings"
	"time"
)

const (
	exportDateLayout  = "2006-01-02"
	maxExportSessions = 1000
)

var ExportCSVHeaders = []string{
	"ID",
	"Created At",
	"Status",
	"Customer",
	"Key Concerns",
	"Hydration",
	"Oiliness",
	"Elasticity",
	"Pigmentation",
	"Texture",
	"Pores",
	"Improvement Score",
	"Recommendations",
	"Notes",
}

type ExportConsultationSource interface {
	ListRange(ctx context.Context, userID string, from *time.Time, to *time.Time, maxRows int) ([]Consultation, error)
}

type ExportService struct {
	consultations ExportConsultationSource
}

type ExportSummary struct {
	TotalEntries int    `json:"totalEntries"`
	HasData      bool   `json:"hasData"`
	DateFrom     string `json:"dateFrom"`
	DateTo       string `json:"dateTo"`
}

type ExportDocument struct {
	ExportedAt    string         `json:"exportedAt"`
	Summary       ExportSummary  `json:"summary"`
	Consultations []Consultation `json:"consultations"`
}

type ExportCSVRow struct {
	Consultation Consultation
}

func NewExportService(consultations ExportConsultationSource) *ExportService {
	return &ExportService{consultations: consultations}
}

func (service *ExportService) BuildDocument(ctx context.Context, userID string, from *time.Time, to *time.Time, now time.Time) (ExportDocument, error) {
	consultations, err := service.consultations.ListRange(ctx, userID, from, to, maxExportSessions)
	if err != nil {
		return ExportDocument{}, err
	}
	return ExportDocument{
		ExportedAt:    now.UTC().Format(time.RFC3339),
		Summary:       summarizeExport(consultations),
		Consultations: consultations,
	}, nil
}

func (service *ExportService) BuildCSVRows(ctx context.Context, userID string, from *time.Time, to *time.Time) ([]ExportCSVRow, error) {
	consultations, err := service.consultations.ListRange(ctx, userID, from, to, maxExportSessions)
	if err != nil {
		return nil, err
	}

	rows := make([]ExportCSVRow, 0, len(consultations))
	for _, consultation := range consultations {
		rows = append(rows, ExportCSVRow{Consultation: consultation})
	}
	return rows, nil
}

func (row ExportCSVRow) Columns() []string {
	consultation := row.Consultation
	titles := make([]string, 0, len(consultation.Recommendations))
	for _, recommendation := range consultation.Recommendations {
		titles = append(titles, recommendation.Title)
	}

	return []string{
		consultation.ID,
		consultation.CreatedAt,
		consultation.Status,
		consultation.CustomerName,
		strings.Join(consultation.Concerns, "; "),
		csvScore(consultation.SkinAnalysis.Hydration),
		csvScore(consultation.SkinAnalysis.Oiliness),
		csvScore(consultation.SkinAnalysis.Elasticity),
		csvScore(consultation.SkinAnalysis.Pigmentation),
		csvScore(consultation.SkinAnalysis.Texture),
		csvScore(consultation.SkinAnalysis.Pores),
		strconv.Itoa(consultation.ImprovementScore),
		strings.Join(titles, "; "),
		consultation.Notes,
	}
}

// summarizeExport expects consultations newest first.
func summarizeExport(consultations []Consultation) ExportSummary {
	if len(consultations) == 0 {
		return ExportSummary{}
	}
	return ExportSummary{
		TotalEntries: len(consultations),
		HasData:      true,
		DateFrom:     exportDay(consultations[len(consultations)-1].CreatedAt),
		DateTo:       exportDay(consultations[0].CreatedAt),
	}
}

func exportDay(timestamp string) string {
	parsed, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return ""
	}
	return parsed.UTC().Format(exportDateLayout)
}

func csvScore(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
