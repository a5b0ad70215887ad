package services

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrExportFromDateInvalid = errors.New("export invalid from date")
	ErrExportToDateInvalid   = errors.New("export invalid to date")
	ErrExportRangeInvalid    = errors.New("export invalid range")
	ErrExportFormatInvalid   = errors.New("export invalid format")
)

const (
	ExportFormatCSV  = "csv"
	ExportFormatJSON = "json"
)

// ParseExportRange accepts the same date forms as the consultation list. A bare
// to date covers the whole UTC day.
func ParseExportRange(rawFrom string, rawTo string) (*time.Time, *time.Time, error) {
	var from *time.Time
	if fromRaw := strings.TrimSpace(rawFrom); fromRaw != "" {
		parsedFrom, err := parseQueryTime(fromRaw, false)
		if err != nil {
			return nil, nil, ErrExportFromDateInvalid
		}
		from = &parsedFrom
	}

	var to *time.Time
	if toRaw := strings.TrimSpace(rawTo); toRaw != "" {
		parsedTo, err := parseQueryTime(toRaw, true)
		if err != nil {
			return nil, nil, ErrExportToDateInvalid
		}
		to = &parsedTo
	}

	if from != nil && to != nil && to.Before(*from) {
		return nil, nil, ErrExportRangeInvalid
	}

	return from, to, nil
}

func ParseExportFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", ExportFormatJSON:
		return ExportFormatJSON, nil
	case ExportFormatCSV:
		return ExportFormatCSV, nil
	default:
		return "", ErrExportFormatInvalid
	}
}
