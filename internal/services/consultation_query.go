package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/skinior/skinior-api/internal/models"
)

const (
	DefaultConsultationLimit = 20
	MaxConsultationLimit     = 100
	consultationStatusAll    = "all"
	queryDateLayout          = "2006-01-02"
	queryLocalTimeLayout     = "2006-01-02T15:04:05.999999999"
)

// ConsultationQuery holds the raw, unvalidated list parameters as received.
type ConsultationQuery struct {
	Limit  string
	Cursor string
	Status string
	From   string
	To     string
}

// BuildSessionFilter validates the query and scopes it to userID. Every problem is
// reported at once in a single *ValidationError.
func BuildSessionFilter(userID string, query ConsultationQuery) (models.SessionFilter, error) {
	filter := models.SessionFilter{
		UserID:   userID,
		Limit:    DefaultConsultationLimit,
		CursorID: strings.TrimSpace(query.Cursor),
	}
	validation := &ValidationError{}

	if raw := strings.TrimSpace(query.Limit); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > MaxConsultationLimit {
			validation.add("limit", "limit must be an integer between 1 and 100")
		} else {
			filter.Limit = limit
		}
	}

	status := strings.ToLower(strings.TrimSpace(query.Status))
	switch {
	case status == "" || status == consultationStatusAll:
	case models.IsKnownSessionStatus(status):
		filter.Status = status
	default:
		validation.add("status", "status must be one of pending, in_progress, completed, cancelled, all")
	}

	if raw := strings.TrimSpace(query.From); raw != "" {
		from, err := parseQueryTime(raw, false)
		if err != nil {
			validation.add("from", "from must be an ISO 8601 date")
		} else {
			filter.From = &from
		}
	}
	if raw := strings.TrimSpace(query.To); raw != "" {
		to, err := parseQueryTime(raw, true)
		if err != nil {
			validation.add("to", "to must be an ISO 8601 date")
		} else {
			filter.To = &to
		}
	}

	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		validation.add("dateRange", "from must not be after to")
	}

	if err := validation.orNil(); err != nil {
		return models.SessionFilter{}, err
	}
	return filter, nil
}

// parseQueryTime accepts RFC 3339, a date-time without offset (read as UTC) or
// a bare date. A bare date used as an upper bound extends to the last instant
// of that UTC day.
func parseQueryTime(raw string, endOfDay bool) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return parsed.UTC(), nil
	}
	if parsed, err := time.ParseInLocation(queryLocalTimeLayout, raw, time.UTC); err == nil {
		return parsed, nil
	}

	parsed, err := time.ParseInLocation(queryDateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		return parsed.AddDate(0, 0, 1).Add(-time.Microsecond), nil
	}
	return parsed, nil
}
