package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrConsultationNotFound    = errors.New("consultation not found")
	ErrSessionNotFound         = errors.New("analysis session not found")
	ErrInvalidStatusTransition = errors.New("invalid session status transition")
	ErrDeviceNotFound          = errors.New("device not found")
	ErrNotificationNotFound    = errors.New("notification not found")
)

// ValidationError carries a field -> message map for client-facing 400 responses.
type ValidationError struct {
	Details map[string]string
}

func (err *ValidationError) Error() string {
	if err == nil || len(err.Details) == 0 {
		return "invalid parameters"
	}
	fields := make([]string, 0, len(err.Details))
	for field := range err.Details {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+err.Details[field])
	}
	return "invalid parameters: " + strings.Join(parts, "; ")
}

func (err *ValidationError) add(field string, message string) {
	if err.Details == nil {
		err.Details = make(map[string]string)
	}
	if _, exists := err.Details[field]; exists {
		return
	}
	err.Details[field] = message
}

func (err *ValidationError) orNil() error {
	if err == nil || len(err.Details) == 0 {
		return nil
	}
	return err
}

func newValidationError(field string, message string) *ValidationError {
	validation := &ValidationError{}
	validation.add(field, message)
	return validation
}

// AsValidationError unwraps err into a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation, true
	}
	return nil, false
}
