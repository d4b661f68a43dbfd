package events

import (
	"context"
	"sync"

	"typerbot/models"
	"typerbot/ranks"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBetPlaced     EventType = "bet_placed"
	EventTypeBetSettled    EventType = "bet_settled"
	EventTypePointsAwarded EventType = "points_awarded"
	EventTypePromotion     EventType = "promotion"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BetPlacedEvent is emitted once a stake has been debited and the bet stored
type BetPlacedEvent struct {
	BetID      int64
	AccountID  string
	MatchID    string
	Selection  models.Selection
	Stake      int64
	NewBalance int64
}

func (e BetPlacedEvent) Type() EventType {
	return EventTypeBetPlaced
}

// BetSettledEvent is emitted once per bet when it leaves the pending state
type BetSettledEvent struct {
	BetID     int64
	AccountID string
	MatchID   string
	State     models.BetState
	Credited  int64
	Score     string
}

func (e BetSettledEvent) Type() EventType {
	return EventTypeBetSettled
}

// PointsAwardedEvent is emitted for every non-zero activity award
type PointsAwardedEvent struct {
	AccountID string
	Source    string
	Amount    int64
	NewTotal  int64
}

func (e PointsAwardedEvent) Type() EventType {
	return EventTypePointsAwarded
}

// PromotionEvent is emitted when an award moves an account into a higher tier
type PromotionEvent struct {
	AccountID   string
	NewTier     ranks.Tier
	TotalPoints int64
}

func (e PromotionEvent) Type() EventType {
	return EventTypePromotion
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit hands the event to every subscribed handler on its own goroutine.
// A panicking handler is logged and does not affect the others.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event")

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds events raised inside a unit of work until it commits
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful commit
func (b *TransactionalBus) Flush() {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing transactional events")

	// Handlers outlive the request that committed, so they get a fresh context
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
}

// Discard drops pending events after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the number of events waiting for commit
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}
