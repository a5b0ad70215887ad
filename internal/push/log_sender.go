package push

import (
	"context"

	"github.com/skinior/skinior-api/internal/logger"
)

// LogSender stands in when no provider is configured. It records the delivery
// and reports success.
type LogSender struct {
	log *logger.Logger
}

func NewLogSender(log *logger.Logger) *LogSender {
	if log == nil {
		log = logger.Nop()
	}
	return &LogSender{log: log}
}

func (sender *LogSender) Send(_ context.Context, message Message) error {
	if message.Token == "" {
		return ErrTokenRequired
	}
	sender.log.Info("push delivery skipped, no provider configured",
		"device_token", message.Token,
		"title", message.Title,
		"type", message.Data["type"],
	)
	return nil
}
