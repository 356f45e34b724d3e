// Package notify publishes a completion event when an ingestion run ends.
//
// Publishing is best effort: a failed publish is logged and counted, never
// retried, and never surfaces to the run.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/JonMunkholm/edupath-ingest/internal/core"
	"github.com/JonMunkholm/edupath-ingest/internal/metrics"
)

const (
	DefaultChannel = "ingestion.completed"
	DefaultTimeout = 2 * time.Second
)

// Publisher delivers an encoded event on a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload []byte) error
}

// Event is the flat payload published for a finished run.
type Event struct {
	LogID             int64  `json:"logId"`
	FileName          string `json:"fileName"`
	EntityType        string `json:"entityType"`
	Status            string `json:"status"`
	TotalRecords      int    `json:"totalRecords"`
	SuccessfulRecords int    `json:"successfulRecords"`
	FailedRecords     int    `json:"failedRecords"`
	Timestamp         string `json:"timestamp"`
}

// NewEvent builds the event for run at the given time.
func NewEvent(run core.Run, at time.Time) Event {
	total, ok, failed := run.Counts()
	return Event{
		LogID:             run.ID,
		FileName:          run.FileName,
		EntityType:        run.EntityType,
		Status:            string(run.Status),
		TotalRecords:      total,
		SuccessfulRecords: ok,
		FailedRecords:     failed,
		Timestamp:         at.UTC().Format(time.RFC3339),
	}
}

// Notifier implements core.Notifier over a Publisher.
type Notifier struct {
	pub     Publisher
	channel string
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithChannel overrides DefaultChannel.
func WithChannel(channel string) Option {
	return func(n *Notifier) {
		if channel != "" {
			n.channel = channel
		}
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// WithLogger sets the logger publish failures are reported on.
func WithLogger(l *slog.Logger) Option {
	return func(n *Notifier) {
		if l != nil {
			n.logger = l
		}
	}
}

// New returns a Notifier publishing through pub.
func New(pub Publisher, opts ...Option) *Notifier {
	n := &Notifier{
		pub:     pub,
		channel: DefaultChannel,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Channel returns the channel events are published on.
func (n *Notifier) Channel() string {
	return n.channel
}

// Notify implements core.Notifier.
func (n *Notifier) Notify(ctx context.Context, run core.Run) {
	payload, err := json.Marshal(NewEvent(run, n.now()))
	if err != nil {
		n.fail(run, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	err = n.pub.Publish(ctx, n.channel, payload)
	if err != nil {
		n.fail(run, err)
		return
	}
	metrics.NotificationPublished(nil)
	n.logger.Debug("completion event published", "run_id", run.ID, "channel", n.channel)
}

func (n *Notifier) fail(run core.Run, err error) {
	metrics.NotificationPublished(err)
	n.logger.Warn("completion event not published",
		"run_id", run.ID,
		"channel", n.channel,
		"error", err,
	)
}
