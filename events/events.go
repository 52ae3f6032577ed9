// Package events announces glossary index rebuilds to other services.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/c360studio/semgloss/glossary"
)

// DefaultSubject receives rebuild announcements.
const DefaultSubject = "glossary.index.rebuilt"

// IndexRebuilt is published after a new index has been swapped in.
type IndexRebuilt struct {
	BuildID     string    `json:"build_id"`
	BuiltAt     time.Time `json:"built_at"`
	Terms       int       `json:"terms"`
	LookupOnly  int       `json:"lookup_only"`
	Fingerprint string    `json:"fingerprint"`
	Sources     []string  `json:"sources,omitempty"`
}

// NewIndexRebuilt describes ix, compiled from sources.
func NewIndexRebuilt(ix *glossary.TermIndex, sources []string) IndexRebuilt {
	stats := ix.Stats()
	return IndexRebuilt{
		BuildID:     stats.BuildID,
		BuiltAt:     stats.BuiltAt,
		Terms:       stats.Terms,
		LookupOnly:  stats.LookupOnly,
		Fingerprint: stats.Fingerprint,
		Sources:     sources,
	}
}

// Publisher announces index rebuilds.
type Publisher interface {
	PublishRebuilt(ctx context.Context, event IndexRebuilt) error
}

// NopPublisher discards events.
type NopPublisher struct{}

// PublishRebuilt implements Publisher.
func (NopPublisher) PublishRebuilt(context.Context, IndexRebuilt) error { return nil }

// flushTimeout bounds the server round trip when the caller set no deadline.
const flushTimeout = 5 * time.Second

// NATSPublisher publishes events as JSON on a NATS subject.
type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

// Connect dials url and returns a publisher for subject.
func Connect(url, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if subject == "" {
		subject = DefaultSubject
	}

	conn, err := nats.Connect(url,
		nats.Name("semgloss"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	logger.Info("Connected to NATS", "url", url, "subject", subject)
	return &NATSPublisher{conn: conn, subject: subject, logger: logger}, nil
}

// PublishRebuilt implements Publisher.
func (p *NATSPublisher) PublishRebuilt(ctx context.Context, event IndexRebuilt) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal rebuild event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish rebuild event: %w", err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, flushTimeout)
		defer cancel()
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush rebuild event: %w", err)
	}
	p.logger.Debug("Published rebuild event", "subject", p.subject, "build_id", event.BuildID)
	return nil
}

// Conn returns the underlying connection for callers that share it.
func (p *NATSPublisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
