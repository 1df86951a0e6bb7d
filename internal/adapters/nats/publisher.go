package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/civicmap/internal/core/domain"
)

// Subjects
const (
	sessionSubjectPrefix = "civicmap.session."
	assetLoadedSubject   = "civicmap.assets.loaded"
)

// SceneSubject is the subject carrying scene updates of one session.
func SceneSubject(sessionID string) string {
	return sessionSubjectPrefix + sessionID + ".scene"
}

// AssetLoadedEvent is published once per category load.
type AssetLoadedEvent struct {
	Category string    `json:"category"`
	Count    int       `json:"count"`
	Failed   bool      `json:"failed"`
	At       time.Time `json:"at"`
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and enables JetStream.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	// Ensure streams exist
	streams := []nats.StreamConfig{
		{
			Name:              "CIVICMAP_SESSIONS",
			Subjects:          []string{sessionSubjectPrefix + ">"},
			Retention:         nats.LimitsPolicy,
			MaxAge:            10 * time.Minute,
			MaxMsgsPerSubject: 1,
			Storage:           nats.MemoryStorage,
		},
		{
			Name:      "CIVICMAP_ASSETS",
			Subjects:  []string{"civicmap.assets.>"},
			Retention: nats.LimitsPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			// Stream may already exist; try update
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishScene publishes the latest scene of a session.
func (p *Publisher) PublishScene(ctx context.Context, scene *domain.SceneState) error {
	data, err := json.Marshal(scene)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(SceneSubject(scene.SessionID), data, nats.Context(ctx))
	return err
}

// PublishAssetLoaded announces the outcome of one category load.
func (p *Publisher) PublishAssetLoaded(ctx context.Context, category string, count int, failed bool) error {
	data, err := json.Marshal(AssetLoadedEvent{
		Category: category,
		Count:    count,
		Failed:   failed,
		At:       time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	_, err = p.js.Publish(assetLoadedSubject, data, nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection for plain subscriptions.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("civicmap"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
