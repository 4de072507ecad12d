// Package publisher emits feed-invalidation events to NATS JetStream so
// rendering layers can drop cached feeds without polling.
package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/microblog/internal/platform/natsconn"
)

const (
	SubjectPostCreated = "microblog.post.created"
	SubjectUserCreated = "microblog.user.created"
	SubjectUserDeleted = "microblog.user.deleted"
	streamName         = "MICROBLOG"
)

// Publisher publishes feed events to NATS JetStream.
type Publisher struct {
	js  nats.JetStreamContext
	log *zap.Logger
}

// New connects to NATS and ensures the MICROBLOG stream exists.
// If opts.URL is empty, returns a no-op publisher (stub).
func New(opts natsconn.Options, log *zap.Logger) (*Publisher, error) {
	if opts.URL == "" {
		log.Warn("NATS_URL not set, feed invalidation events will not be published (stub mode)")
		return &Publisher{log: log}, nil
	}

	nc, err := natsconn.Connect(opts)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{"microblog.>"},
		Storage:  nats.FileStorage,
	})
	if err != nil {
		log.Warn("failed to create NATS stream (may already exist)", zap.Error(err))
	}

	log.Info("NATS publisher initialised", zap.String("stream", streamName))
	return &Publisher{js: js, log: log}, nil
}

// FeedEvent is the payload published to NATS.
type FeedEvent struct {
	Type     string    `json:"type"`
	PostID   string    `json:"post_id,omitempty"`
	AuthorID string    `json:"author_id,omitempty"`
	UserID   string    `json:"user_id,omitempty"`
	At       time.Time `json:"at"`
}

// Publish sends a feed event to the given subject.
// If JetStream is not configured (stub), it logs and returns nil.
func (p *Publisher) Publish(_ context.Context, subject string, evt FeedEvent) error {
	if p.js == nil {
		p.log.Debug("NATS stub: skipping publish", zap.String("subject", subject))
		return nil
	}

	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	ack, err := p.js.Publish(subject, data)
	if err != nil {
		return err
	}

	p.log.Debug("feed event published",
		zap.String("subject", subject),
		zap.Uint64("seq", ack.Sequence),
	)
	return nil
}
