// Package push delivers notifications to mobile devices.
package push

import (
	"context"
	"errors"
	"time"
)

const (
	PriorityHigh   = "high"
	PriorityNormal = "normal"

	DefaultTTL = 24 * time.Hour
)

var ErrTokenRequired = errors.New("push device token is required")

// Message is one delivery to one device token.
type Message struct {
	Token    string
	Title    string
	Body     string
	ImageURL string
	Data     map[string]string
	Priority string
	TTL      time.Duration
	Badge    int
}

type Sender interface {
	Send(ctx context.Context, message Message) error
}
