package notify

import (
	"context"
	"log/slog"
)

// LogPublisher writes events to a logger. Used when no broker is configured.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher returns a publisher logging at info level on logger, or
// the default logger when nil.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, channel string, payload []byte) error {
	p.logger.InfoContext(ctx, "completion event", "channel", channel, "payload", string(payload))
	return nil
}
