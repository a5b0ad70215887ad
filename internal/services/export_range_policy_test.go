package services

import (
	"errors"
	"testing"
	"time"
)

func TestParseExportRange(t *testing.T) {
	t.Run("empty range", func(t *testing.T) {
		from, to, err := ParseExportRange("", "")
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if from != nil || to != nil {
			t.Fatalf("expected nil from/to, got from=%v to=%v", from, to)
		}
	})

	t.Run("valid from and to", func(t *testing.T) {
		from, to, err := ParseExportRange("2026-02-10", "2026-02-20")
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if from == nil || to == nil {
			t.Fatalf("expected non-nil range bounds")
		}
		if from.Format("2006-01-02") != "2026-02-10" || to.Format("2006-01-02") != "2026-02-20" {
			t.Fatalf("unexpected range: from=%s to=%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
		}
		if to.Hour() != 23 || to.Minute() != 59 {
			t.Fatalf("expected bare to date to cover the whole day, got %s", to.Format(time.RFC3339Nano))
		}
	})

	t.Run("rfc3339 bounds", func(t *testing.T) {
		from, _, err := ParseExportRange("2026-02-10T08:30:00+02:00", "")
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if from.Hour() != 6 || from.Location() != time.UTC {
			t.Fatalf("expected from normalized to UTC, got %s", from.Format(time.RFC3339))
		}
	})

	t.Run("invalid from", func(t *testing.T) {
		_, _, err := ParseExportRange("not-a-date", "2026-02-20")
		if !errors.Is(err, ErrExportFromDateInvalid) {
			t.Fatalf("expected ErrExportFromDateInvalid, got %v", err)
		}
	})

	t.Run("invalid to", func(t *testing.T) {
		_, _, err := ParseExportRange("2026-02-10", "not-a-date")
		if !errors.Is(err, ErrExportToDateInvalid) {
			t.Fatalf("expected ErrExportToDateInvalid, got %v", err)
		}
	})

	t.Run("invalid range order", func(t *testing.T) {
		_, _, err := ParseExportRange("2026-02-20", "2026-02-10")
		if !errors.Is(err, ErrExportRangeInvalid) {
			t.Fatalf("expected ErrExportRangeInvalid, got %v", err)
		}
	})
}

func TestParseExportFormat(t *testing.T) {
	if format, err := ParseExportFormat(""); err != nil || format != ExportFormatJSON {
		t.Fatalf("expected json default, got %q err=%v", format, err)
	}
	if format, err := ParseExportFormat(" CSV "); err != nil || format != ExportFormatCSV {
		t.Fatalf("expected csv, got %q err=%v", format, err)
	}
	if _, err := ParseExportFormat("xml"); !errors.Is(err, ErrExportFormatInvalid) {
		t.Fatalf("expected ErrExportFormatInvalid, got %v", err)
	}
}
