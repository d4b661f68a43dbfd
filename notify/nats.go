package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"typerbot/events"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const sourceService = "typerbot"

// Envelope wraps every event published to NATS
type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// PromotionPayload is the wire form of a promotion
type PromotionPayload struct {
	AccountID   string `json:"account_id"`
	Rank        string `json:"rank"`
	Emoji       string `json:"emoji"`
	TotalPoints int64  `json:"total_points"`
}

// NATSPublisher forwards promotions to NATS for other consumers
// (announcement channels, role sync)
type NATSPublisher struct {
	servers              string
	subject              string
	nc                   *nats.Conn
	mu                   sync.RWMutex
	reconnectDelay       time.Duration
	maxReconnectAttempts int
}

// NewNATSPublisher creates a publisher; Connect must be called before use
func NewNATSPublisher(servers, subject string) *NATSPublisher {
	return &NATSPublisher{
		servers:              servers,
		subject:              subject,
		reconnectDelay:       2 * time.Second,
		maxReconnectAttempts: 10,
	}
}

// Connect establishes the NATS connection
func (p *NATSPublisher) Connect(ctx context.Context) error {
	opts := []nats.Option{
		nats.Name(sourceService),
		nats.MaxReconnects(p.maxReconnectAttempts),
		nats.ReconnectWait(p.reconnectDelay),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.WithError(err).Error("NATS disconnected with error")
			} else {
				log.Warn("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.WithError(err).Error("NATS async error")
		}),
	}

	nc, err := nats.Connect(p.servers, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	p.mu.Lock()
	p.nc = nc
	p.mu.Unlock()

	log.WithField("servers", p.servers).Info("Connected to NATS")
	return nil
}

// Register subscribes the publisher to promotion events
func (p *NATSPublisher) Register(bus *events.Bus) {
	bus.Subscribe(events.EventTypePromotion, p.HandleEvent)
}

// HandleEvent publishes a promotion. Errors are logged; the ledger never
// depends on delivery.
func (p *NATSPublisher) HandleEvent(ctx context.Context, event events.Event) {
	promotion, ok := event.(events.PromotionEvent)
	if !ok {
		return
	}

	data, err := EncodePromotion(promotion, time.Now())
	if err != nil {
		log.WithError(err).Error("Failed to encode promotion")
		return
	}

	if err := p.publish(data); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"subject":    p.subject,
			"account_id": promotion.AccountID,
		}).Error("Failed to publish promotion")
		return
	}

	log.WithFields(log.Fields{
		"subject":    p.subject,
		"account_id": promotion.AccountID,
	}).Debug("Promotion published")
}

func (p *NATSPublisher) publish(data []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.nc == nil {
		return fmt.Errorf("not connected to NATS")
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains the connection
func (p *NATSPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.nc == nil {
		return nil
	}
	err := p.nc.Drain()
	p.nc = nil
	if err != nil {
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	return nil
}

// EncodePromotion builds the enveloped JSON message for a promotion
func EncodePromotion(promotion events.PromotionEvent, at time.Time) ([]byte, error) {
	payload, err := json.Marshal(PromotionPayload{
		AccountID:   promotion.AccountID,
		Rank:        promotion.NewTier.Name,
		Emoji:       promotion.NewTier.Emoji,
		TotalPoints: promotion.TotalPoints,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal promotion payload: %w", err)
	}

	envelope := Envelope{
		EventID:       uuid.New().String(),
		EventType:     string(promotion.Type()),
		Timestamp:     at.UTC(),
		SourceService: sourceService,
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event envelope: %w", err)
	}
	return data, nil
}
