// Package mirror republishes applied game states onto NATS so other
// consoles and tools can follow the ship without polling the server.
package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/starship-console/go/internal/statesync"
)

const EventTypeStateReplaced = "StateReplaced"

type Config struct {
	URL           string
	SubjectPrefix string
	MaxReconnects int
	ReconnectWait time.Duration
	Buffer        int
}

func DefaultConfig() Config {
	return Config{
		URL:           nats.DefaultURL,
		SubjectPrefix: "starship.console",
		MaxReconnects: -1, // Infinite
		ReconnectWait: 2 * time.Second,
		Buffer:        16,
	}
}

// Envelope is the JSON body of every mirrored message.
type Envelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	Seq       uint64          `json:"seq"`
	Source    string          `json:"source"`
	Path      string          `json:"path"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// EventSource is the synchronizer's subscription surface.
type EventSource interface {
	Subscribe(buffer int) (<-chan statesync.StateReplaced, func())
}

type msgPublisher interface {
	PublishMsg(msg *nats.Msg) error
}

type Publisher struct {
	conn   msgPublisher
	nc     *nats.Conn
	config Config
}

// Connect dials NATS and returns a publisher that owns the connection.
func Connect(cfg Config) (*Publisher, error) {
	opts := []nats.Option{
		nats.Name("starship-console"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	p := NewPublisher(nc, cfg)
	p.nc = nc
	return p, nil
}

func NewPublisher(conn msgPublisher, cfg Config) *Publisher {
	return &Publisher{conn: conn, config: cfg}
}

// Subject is where state events are published.
func (p *Publisher) Subject() string {
	return p.config.SubjectPrefix + ".state"
}

// Publish sends one applied state.
func (p *Publisher) Publish(event statesync.StateReplaced) error {
	payload, err := json.Marshal(event.State)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	eventID := uuid.New().String()
	data, err := json.Marshal(Envelope{
		EventID:   eventID,
		EventType: EventTypeStateReplaced,
		Seq:       event.Seq,
		Source:    string(event.Source),
		Path:      event.Path,
		Timestamp: event.AppliedAt.UTC(),
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	err = p.conn.PublishMsg(&nats.Msg{
		Subject: p.Subject(),
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{EventTypeStateReplaced},
			"Event-ID":   []string{eventID},
			"Seq":        []string{strconv.FormatUint(event.Seq, 10)},
		},
	})
	if err != nil {
		return fmt.Errorf("publish to NATS: %w", err)
	}

	log.Debug().
		Str("subject", p.Subject()).
		Str("event_id", eventID).
		Uint64("seq", event.Seq).
		Msg("mirrored state")
	return nil
}

// Run mirrors every event from source until ctx is done. Publish failures are
// logged and the loop continues.
func (p *Publisher) Run(ctx context.Context, source EventSource) error {
	events, unsubscribe := source.Subscribe(p.config.Buffer)
	defer unsubscribe()

	log.Info().Str("subject", p.Subject()).Msg("state mirror started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("state mirror stopped")
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := p.Publish(event); err != nil {
				log.Error().Err(err).Uint64("seq", event.Seq).Msg("failed to mirror state")
			}
		}
	}
}

func (p *Publisher) Close() error {
	if p.nc != nil {
		if err := p.nc.Drain(); err != nil {
			p.nc.Close()
			return fmt.Errorf("drain NATS connection: %w", err)
		}
	}
	return nil
}
