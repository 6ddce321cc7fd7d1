// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package events publishes catalogue change notifications to NATS JetStream.

Publishing is fire-and-forget from the caller's point of view: a failed publish
is logged and never fails the request that caused it. Without a NATS URL the
publisher runs in stub mode and only logs at debug level.
*/
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/taibuivan/animeab/pkg/uuid"
)

const (
	streamName    = "CATALOG"
	streamSubject = "catalog.>"
	streamMaxAge  = 7 * 24 * time.Hour
)

// Event is the envelope published for every catalogue change.
type Event struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// NewEvent wraps payload in an [Event] addressed to subject.
func NewEvent(subject string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("events: failed to encode %s payload: %w", subject, err)
	}
	return Event{
		EventID:    uuid.New(),
		EventType:  subject,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}, nil
}

// Publisher publishes catalogue events to NATS JetStream.
type Publisher struct {
	conn   *nats.Conn
	js     nats.JetStreamContext
	logger *slog.Logger
}

// New connects to NATS and ensures the CATALOG stream exists.
// If natsURL is empty, it returns a stub publisher.
func New(natsURL string, logger *slog.Logger) (*Publisher, error) {
	if natsURL == "" {
		logger.Warn("nats_disabled", slog.String("reason", "NATS_URL not set, catalogue events will not be published"))
		return &Publisher{logger: logger}, nil
	}

	conn, err := nats.Connect(natsURL,
		nats.Name("animeab-api"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("events: failed to connect to nats: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("events: jetstream unavailable: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{streamSubject},
		Storage:  nats.FileStorage,
		MaxAge:   streamMaxAge,
	})
	if err != nil {
		logger.Warn("nats_stream_create_failed", slog.String("stream", streamName), slog.Any("error", err))
	}

	logger.Info("nats_publisher_initialised", slog.String("stream", streamName))
	return &Publisher{conn: conn, js: js, logger: logger}, nil
}

// Publish sends payload on subject. Errors are logged, never returned.
// A nil Publisher is valid and does nothing.
func (p *Publisher) Publish(ctx context.Context, subject string, payload any) {
	if p == nil {
		return
	}

	event, err := NewEvent(subject, payload)
	if err != nil {
		p.logger.ErrorContext(ctx, "event_encode_failed", slog.String("subject", subject), slog.Any("error", err))
		return
	}

	if p.js == nil {
		p.logger.DebugContext(ctx, "event_skipped_stub", slog.String("subject", subject), slog.String("event_id", event.EventID))
		return
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.ErrorContext(ctx, "event_encode_failed", slog.String("subject", subject), slog.Any("error", err))
		return
	}

	if _, err := p.js.Publish(subject, body, nats.Context(ctx), nats.MsgId(event.EventID)); err != nil {
		p.logger.WarnContext(ctx, "event_publish_failed",
			slog.String("subject", subject),
			slog.String("event_id", event.EventID),
			slog.Any("error", err),
		)
	}
}

// Close drains the connection. Safe on nil and stub publishers.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn("nats_drain_failed", slog.Any("error", err))
	}
}
