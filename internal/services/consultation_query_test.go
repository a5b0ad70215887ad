package services

import (
	"testing"
	"time"

	"github.com/skinior/skinior-api/internal/models"
)

func TestBuildSessionFilterDefaults(t *testing.T) {
	filter, err := BuildSessionFilter("user-1", ConsultationQuery{})
	if err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if filter.UserID != "user-1" || filter.Limit != DefaultConsultationLimit {
		t.Fatalf("unexpected filter %+v", filter)
	}
	if filter.Status != "" || filter.From != nil || filter.To != nil || filter.CursorID != "" {
		t.Fatalf("expected unconstrained filter, got %+v", filter)
	}

	filter, err = BuildSessionFilter("user-1", ConsultationQuery{Status: "ALL", Cursor: " abc "})
	if err != nil {
		t.Fatalf("expected status=all to validate, got %v", err)
	}
	if filter.Status != "" || filter.CursorID != "abc" {
		t.Fatalf("expected all to clear the status and cursor to be trimmed, got %+v", filter)
	}
}

func TestBuildSessionFilterLimitBounds(t *testing.T) {
	for _, raw := range []string{"0", "101", "-3", "ten", "1.5"} {
		if _, err := BuildSessionFilter("user-1", ConsultationQuery{Limit: raw}); err == nil {
			t.Fatalf("expected limit %q to be rejected", raw)
		}
	}
	for raw, expected := range map[string]int{"1": 1, "100": 100, " 42 ": 42} {
		filter, err := BuildSessionFilter("user-1", ConsultationQuery{Limit: raw})
		if err != nil {
			t.Fatalf("expected limit %q to validate, got %v", raw, err)
		}
		if filter.Limit != expected {
			t.Fatalf("expected limit %d, got %d", expected, filter.Limit)
		}
	}
}

func TestBuildSessionFilterStatus(t *testing.T) {
	filter, err := BuildSessionFilter("user-1", ConsultationQuery{Status: "In_Progress"})
	if err != nil {
		t.Fatalf("expected status to validate, got %v", err)
	}
	if filter.Status != models.SessionStatusInProgress {
		t.Fatalf("expected in_progress, got %q", filter.Status)
	}

	_, err = BuildSessionFilter("user-1", ConsultationQuery{Status: "archived"})
	validation, ok := AsValidationError(err)
	if !ok || validation.Details["status"] == "" {
		t.Fatalf("expected status validation error, got %v", err)
	}
}

func TestBuildSessionFilterDates(t *testing.T) {
	filter, err := BuildSessionFilter("user-1", ConsultationQuery{From: "2026-03-01", To: "2026-03-01"})
	if err != nil {
		t.Fatalf("expected same-day range to validate, got %v", err)
	}
	if !filter.From.Equal(time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected from %v", filter.From)
	}
	if !filter.To.After(time.Date(2026, time.March, 1, 23, 59, 59, 0, time.UTC)) || !filter.To.Before(time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected bare to date to cover the whole day, got %v", filter.To)
	}

	filter, err = BuildSessionFilter("user-1", ConsultationQuery{From: "2026-03-01T10:00:00+02:00"})
	if err != nil {
		t.Fatalf("expected RFC3339 from to validate, got %v", err)
	}
	if !filter.From.Equal(time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC)) || filter.From.Location() != time.UTC {
		t.Fatalf("expected from normalized to UTC, got %v", filter.From)
	}

	filter, err = BuildSessionFilter("user-1", ConsultationQuery{From: "2026-03-01T10:00:00", To: "2026-03-01T18:30:00.250"})
	if err != nil {
		t.Fatalf("expected date-times without offset to validate, got %v", err)
	}
	if !filter.From.Equal(time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected offset-less from read as UTC, got %v", filter.From)
	}
	if !filter.To.Equal(time.Date(2026, time.March, 1, 18, 30, 0, 250_000_000, time.UTC)) {
		t.Fatalf("expected offset-less to kept exact, got %v", filter.To)
	}

	_, err = BuildSessionFilter("user-1", ConsultationQuery{From: "2026-03-10", To: "2026-03-01"})
	validation, ok := AsValidationError(err)
	if !ok || validation.Details["dateRange"] == "" {
		t.Fatalf("expected dateRange validation error, got %v", err)
	}
}

func TestBuildSessionFilterReportsEveryProblem(t *testing.T) {
	_, err := BuildSessionFilter("user-1", ConsultationQuery{Limit: "0", Status: "nope", From: "yesterday", To: "03/01/2026"})
	validation, ok := AsValidationError(err)
	if !ok {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	for _, field := range []string{"limit", "status", "from", "to"} {
		if validation.Details[field] == "" {
			t.Fatalf("expected %s detail, got %+v", field, validation.Details)
		}
	}
}
