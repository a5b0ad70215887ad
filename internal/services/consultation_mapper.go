package services

import (
	"encoding/json"
	"math"
	"time"

	"github.com/skinior/skinior-api/internal/models"
)

const (
	consultationAnalysisType = "AI Skin Analysis"
	consultationDuration     = 30
	consultationAdvisorName  = "AI Beauty Advisor"
	defaultCustomerName      = "Customer"
	neutralMetricScore       = 50
	concernScoreThreshold    = 60
	maxImprovementFromDays   = 40
	maxImprovementScore      = 100
)

type SkinAnalysis struct {
	Hydration    float64 `json:"hydration"`
	Oiliness     float64 `json:"oiliness"`
	Elasticity   float64 `json:"elasticity"`
	Pigmentation float64 `json:"pigmentation"`
	Texture      float64 `json:"texture"`
	Pores        float64 `json:"pores"`
}

type ConsultationRecommendation struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
}

type Consultation struct {
	ID               string                       `json:"id"`
	Status           string                       `json:"status"`
	AnalysisType     string                       `json:"analysisType"`
	Duration         int                          `json:"duration"`
	AdvisorName      string                       `json:"advisorName"`
	CustomerName     string                       `json:"customerName"`
	Notes            string                       `json:"notes"`
	Language         string                       `json:"language"`
	Concerns         []string                     `json:"concerns"`
	SkinAnalysis     SkinAnalysis                 `json:"skinAnalysis"`
	Recommendations  []ConsultationRecommendation `json:"recommendations"`
	ImprovementScore int                          `json:"improvementScore"`
	CreatedAt        string                       `json:"createdAt"`
	UpdatedAt        string                       `json:"updatedAt"`
	CompletedAt      *string                      `json:"completedAt"`
}

type ConsultationProduct struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Brand    string  `json:"brand"`
	Price    float64 `json:"price"`
	Priority string  `json:"priority"`
	Reason   string  `json:"reason"`
	Category string  `json:"category"`
}

type ConsultationDetail struct {
	Consultation
	AnalysisData           json.RawMessage       `json:"analysisData"`
	ProductRecommendations []ConsultationProduct `json:"productRecommendations"`
}

// threshold concerns are checked in this order so the output is stable.
var scoreConcernLabels = []struct {
	score string
	label string
}{
	{score: "acne", label: "Acne"},
	{score: "dryness", label: "Dry Skin"},
	{score: "oiliness", label: "Oily Skin"},
	{score: "aging", label: "Aging Signs"},
	{score: "sensitivity", label: "Sensitive Skin"},
}

// MapConsultation projects a session and its children. latest is nil when the
// session has no snapshot. The result depends only on its arguments.
func MapConsultation(session models.AnalysisSession, latest *models.AnalysisData, recommendations []models.ProductRecommendation, now time.Time) Consultation {
	payload := AnalysisPayload{Kind: PayloadEmpty}
	if latest != nil {
		payload = DecodeAnalysisPayload(latest.Data)
	}

	mapped := make([]ConsultationRecommendation, 0, len(recommendations))
	for _, recommendation := range recommendations {
		mapped = append(mapped, ConsultationRecommendation{
			ID:          recommendation.ID,
			Title:       fallback(recommendation.ProductName, "Product Recommendation"),
			Description: fallback(recommendation.Reason, "Recommended based on analysis"),
			Priority:    fallback(recommendation.Priority, models.PriorityMedium),
			Category:    fallback(recommendation.Category, "product"),
		})
	}

	consultation := Consultation{
		ID:               session.ID,
		Status:           session.Status,
		AnalysisType:     consultationAnalysisType,
		Duration:         consultationDuration,
		AdvisorName:      consultationAdvisorName,
		CustomerName:     fallback(metadataString(session.Metadata, "customerName"), defaultCustomerName),
		Notes:            metadataString(session.Metadata, "notes"),
		Language:         fallback(session.Language, models.DefaultSessionLanguage),
		Concerns:         ExtractConcerns(payload),
		SkinAnalysis:     NormalizeSkinMetrics(payload),
		Recommendations:  mapped,
		ImprovementScore: ImprovementScore(session.Status, session.CreatedAt, now),
		CreatedAt:        formatTimestamp(session.CreatedAt),
		UpdatedAt:        formatTimestamp(session.UpdatedAt),
	}
	if session.CompletedAt != nil {
		completedAt := formatTimestamp(*session.CompletedAt)
		consultation.CompletedAt = &completedAt
	}
	return consultation
}

func MapConsultationDetail(session models.AnalysisSession, latest *models.AnalysisData, recommendations []models.ProductRecommendation, now time.Time) ConsultationDetail {
	detail := ConsultationDetail{
		Consultation:           MapConsultation(session, latest, recommendations, now),
		AnalysisData:           json.RawMessage("{}"),
		ProductRecommendations: make([]ConsultationProduct, 0, len(recommendations)),
	}
	if latest != nil {
		detail.AnalysisData = DecodeAnalysisPayload(latest.Data).Object()
	}

	for _, recommendation := range recommendations {
		detail.ProductRecommendations = append(detail.ProductRecommendations, ConsultationProduct{
			ID:       recommendation.ID,
			Name:     fallback(recommendation.ProductName, "Recommended Product"),
			Brand:    fallback(recommendation.Brand, "Various"),
			Price:    recommendation.Price,
			Priority: fallback(recommendation.Priority, models.PriorityMedium),
			Reason:   fallback(recommendation.Reason, "Recommended based on your skin analysis"),
			Category: fallback(recommendation.Category, "skincare"),
		})
	}
	return detail
}

// ExtractConcerns unions explicit issues, explicit concerns and score-derived
// labels, keeping the first occurrence of each value.
func ExtractConcerns(payload AnalysisPayload) []string {
	concerns := make([]string, 0, len(payload.SkinIssues)+len(payload.Concerns))
	seen := make(map[string]struct{})
	add := func(label string) {
		if _, exists := seen[label]; exists {
			return
		}
		seen[label] = struct{}{}
		concerns = append(concerns, label)
	}

	for _, issue := range payload.SkinIssues {
		add(issue)
	}
	for _, concern := range payload.Concerns {
		add(concern)
	}
	for _, entry := range scoreConcernLabels {
		if score, ok := payload.Score(entry.score); ok && score > concernScoreThreshold {
			add(entry.label)
		}
	}
	return concerns
}

func NormalizeSkinMetrics(payload AnalysisPayload) SkinAnalysis {
	return SkinAnalysis{
		Hydration:    metricScore(payload, "hydration", "moisture"),
		Oiliness:     metricScore(payload, "oiliness", "sebum"),
		Elasticity:   metricScore(payload, "elasticity", "firmness"),
		Pigmentation: metricScore(payload, "pigmentation", "darkSpots"),
		Texture:      metricScore(payload, "texture", "smoothness"),
		Pores:        metricScore(payload, "pores", "poreSize"),
	}
}

func metricScore(payload AnalysisPayload, canonical string, synonym string) float64 {
	if score, ok := payload.Score(canonical); ok {
		return score
	}
	if score, ok := payload.Score(synonym); ok {
		return score
	}
	return neutralMetricScore
}

// ImprovementScore is a placeholder heuristic: a status base plus two points per
// whole day since creation (at most 40), capped at 100.
func ImprovementScore(status string, createdAt time.Time, now time.Time) int {
	base := 0
	switch status {
	case models.SessionStatusCompleted:
		base = 30
	case models.SessionStatusInProgress:
		base = 15
	}

	days := 0
	if elapsed := now.Sub(createdAt); elapsed > 0 {
		days = int(math.Floor(elapsed.Hours() / 24))
	}

	score := base + min(days*2, maxImprovementFromDays)
	return max(0, min(score, maxImprovementScore))
}

func metadataString(metadata map[string]any, key string) string {
	value, ok := metadata[key].(string)
	if !ok {
		return ""
	}
	return value
}

func fallback(value string, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func formatTimestamp(value time.Time) string {
	return value.UTC().Format(time.RFC3339)
}
