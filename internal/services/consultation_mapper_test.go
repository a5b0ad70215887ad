package services

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/skinior/skinior-api/internal/models"
)

func TestMapConsultationWithoutAnalysisUsesNeutralMetrics(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	session := models.AnalysisSession{
		ID:        "s-1",
		Status:    models.SessionStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	consultation := MapConsultation(session, nil, nil, now)
	metrics := consultation.SkinAnalysis
	for name, value := range map[string]float64{
		"hydration":    metrics.Hydration,
		"oiliness":     metrics.Oiliness,
		"elasticity":   metrics.Elasticity,
		"pigmentation": metrics.Pigmentation,
		"texture":      metrics.Texture,
		"pores":        metrics.Pores,
	} {
		if value != 50 {
			t.Fatalf("expected %s=50, got %v", name, value)
		}
	}
	if len(consultation.Concerns) != 0 {
		t.Fatalf("expected no concerns, got %v", consultation.Concerns)
	}
	if consultation.CustomerName != "Customer" || consultation.Language != models.DefaultSessionLanguage {
		t.Fatalf("expected fallbacks, got %q / %q", consultation.CustomerName, consultation.Language)
	}
	if consultation.Recommendations == nil || consultation.Concerns == nil {
		t.Fatal("expected empty slices rather than nil so they encode as []")
	}
	if consultation.CompletedAt != nil {
		t.Fatal("expected nil completedAt for pending session")
	}
}

func TestConsultationEncodesConcernsKey(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	session := models.AnalysisSession{ID: "s-1", Status: models.SessionStatusCompleted, CreatedAt: now, UpdatedAt: now}
	latest := &models.AnalysisData{SessionID: "s-1", Data: []byte(`{"concerns":["Redness"]}`), Timestamp: now}

	raw, err := json.Marshal(MapConsultationDetail(session, latest, nil, now))
	if err != nil {
		t.Fatalf("marshal detail: %v", err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	if string(fields["concerns"]) != `["Redness"]` {
		t.Fatalf("expected concerns [\"Redness\"], got %s", raw)
	}
	if _, ok := fields["keyConcerns"]; ok {
		t.Fatalf("unexpected keyConcerns key in %s", raw)
	}
}

func TestExtractConcernsDeduplicatesScoreLabels(t *testing.T) {
	payload := DecodeAnalysisPayload([]byte(`{"skinScores":{"acne":75,"dryness":40,"aging":61},"skinIssues":["Acne"],"concerns":["Redness","Acne"]}`))

	concerns := ExtractConcerns(payload)
	expected := []string{"Acne", "Redness", "Aging Signs"}
	if len(concerns) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, concerns)
	}
	for index := range expected {
		if concerns[index] != expected[index] {
			t.Fatalf("expected %v, got %v", expected, concerns)
		}
	}
}

func TestExtractConcernsThresholdIsExclusive(t *testing.T) {
	payload := DecodeAnalysisPayload([]byte(`{"skinScores":{"oiliness":60,"sensitivity":60.5}}`))

	concerns := ExtractConcerns(payload)
	if len(concerns) != 1 || concerns[0] != "Sensitive Skin" {
		t.Fatalf("expected only Sensitive Skin, got %v", concerns)
	}
}

func TestNormalizeSkinMetricsSynonymsAndZero(t *testing.T) {
	payload := DecodeAnalysisPayload([]byte(`{"skinScores":{"moisture":70,"hydration":0,"sebum":33,"firmness":0,"darkSpots":12,"smoothness":80,"poreSize":25}}`))

	metrics := NormalizeSkinMetrics(payload)
	if metrics.Hydration != 70 {
		t.Fatalf("expected zero hydration to fall through to moisture, got %v", metrics.Hydration)
	}
	if metrics.Oiliness != 33 || metrics.Pigmentation != 12 || metrics.Texture != 80 || metrics.Pores != 25 {
		t.Fatalf("unexpected synonym mapping %+v", metrics)
	}
	if metrics.Elasticity != 50 {
		t.Fatalf("expected zero firmness to count as absent, got %v", metrics.Elasticity)
	}
}

func TestDecodeAnalysisPayloadKinds(t *testing.T) {
	if kind := DecodeAnalysisPayload(nil).Kind; kind != PayloadEmpty {
		t.Fatalf("expected empty kind, got %v", kind)
	}
	if kind := DecodeAnalysisPayload([]byte(`[1,2]`)).Kind; kind != PayloadUnknown {
		t.Fatalf("expected unknown kind for array, got %v", kind)
	}
	if kind := DecodeAnalysisPayload([]byte(`{"other":true}`)).Kind; kind != PayloadUnknown {
		t.Fatalf("expected unknown kind without recognised fields, got %v", kind)
	}

	payload := DecodeAnalysisPayload([]byte(`{"skinScores":"bad","skinIssues":["Dryness",3,""]}`))
	if payload.Kind != PayloadKnown {
		t.Fatalf("expected known kind when one field decodes, got %v", payload.Kind)
	}
	if len(payload.SkinIssues) != 1 || payload.SkinIssues[0] != "Dryness" {
		t.Fatalf("expected only string issues to survive, got %v", payload.SkinIssues)
	}
	if string(DecodeAnalysisPayload([]byte(`[1]`)).Object()) != "{}" {
		t.Fatal("expected non-object payload to expose {}")
	}
}

func TestImprovementScoreBounds(t *testing.T) {
	created := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	if score := ImprovementScore(models.SessionStatusCompleted, created, created.Add(36*time.Hour)); score != 32 {
		t.Fatalf("expected 30 + 2*1 day, got %d", score)
	}
	if score := ImprovementScore(models.SessionStatusInProgress, created, created.AddDate(1, 0, 0)); score != 55 {
		t.Fatalf("expected day bonus capped at 40, got %d", score)
	}
	if score := ImprovementScore(models.SessionStatusPending, created, created.Add(-48*time.Hour)); score != 0 {
		t.Fatalf("expected future creation to score 0, got %d", score)
	}

	statuses := []string{models.SessionStatusPending, models.SessionStatusInProgress, models.SessionStatusCompleted, models.SessionStatusCancelled, "unknown"}
	for _, status := range statuses {
		for days := -10; days <= 400; days += 7 {
			score := ImprovementScore(status, created, created.AddDate(0, 0, days))
			if score < 0 || score > 100 {
				t.Fatalf("score %d out of range for status %s after %d days", score, status, days)
			}
		}
	}
}

func TestMapConsultationIsDeterministic(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	completedAt := now.Add(-time.Hour)
	session := models.AnalysisSession{
		ID:          "s-2",
		Status:      models.SessionStatusCompleted,
		Language:    "arabic",
		Metadata:    map[string]any{"customerName": "Noor", "notes": 42},
		CreatedAt:   now.Add(-72 * time.Hour),
		UpdatedAt:   now,
		CompletedAt: &completedAt,
	}
	latest := &models.AnalysisData{Data: []byte(`{"skinScores":{"acne":90,"hydration":35},"concerns":["Acne"]}`)}
	recommendations := []models.ProductRecommendation{
		{ID: "r-1", ProductName: "Toner", Priority: models.PriorityHigh},
		{ID: "r-2"},
	}

	first, err := json.Marshal(MapConsultationDetail(session, latest, recommendations, now))
	if err != nil {
		t.Fatalf("marshal first: %v", err)
	}
	second, err := json.Marshal(MapConsultationDetail(session, latest, recommendations, now))
	if err != nil {
		t.Fatalf("marshal second: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("expected identical output, got\n%s\n%s", first, second)
	}

	detail := MapConsultationDetail(session, latest, recommendations, now)
	if detail.Notes != "" {
		t.Fatalf("expected non-string notes to be ignored, got %q", detail.Notes)
	}
	if detail.Recommendations[1].Title != "Product Recommendation" || detail.Recommendations[1].Priority != models.PriorityMedium {
		t.Fatalf("expected recommendation fallbacks, got %+v", detail.Recommendations[1])
	}
	if detail.ProductRecommendations[1].Name != "Recommended Product" || detail.ProductRecommendations[1].Category != "skincare" {
		t.Fatalf("expected product fallbacks, got %+v", detail.ProductRecommendations[1])
	}
	if detail.CompletedAt == nil || *detail.CompletedAt != "2026-03-10T11:00:00Z" {
		t.Fatalf("unexpected completedAt %v", detail.CompletedAt)
	}
	if detail.ImprovementScore != 36 {
		t.Fatalf("expected 30 + 2*3 days, got %d", detail.ImprovementScore)
	}
}
