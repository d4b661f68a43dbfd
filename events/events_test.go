package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"typerbot/ranks"

	"github.com/stretchr/testify/assert"
)

func TestTransactionalBus_FlushDelivers(t *testing.T) {
	mainBus := NewBus()
	txBus := NewTransactionalBus(mainBus)

	received := make(chan PromotionEvent, 1)
	mainBus.Subscribe(EventTypePromotion, func(ctx context.Context, event Event) {
		if promotion, ok := event.(PromotionEvent); ok {
			received <- promotion
		}
	})

	silver, _ := ranks.Default.ByName("Srebro")
	txBus.Publish(PromotionEvent{AccountID: "123", NewTier: silver, TotalPoints: 100})
	assert.Equal(t, 1, txBus.Pending())

	txBus.Flush()
	assert.Equal(t, 0, txBus.Pending())

	select {
	case ev := <-received:
		assert.Equal(t, "123", ev.AccountID)
		assert.Equal(t, "Srebro", ev.NewTier.Name)
	case <-time.After(time.Second):
		t.Fatal("promotion event was not delivered")
	}
}

func TestTransactionalBus_DiscardDropsEvents(t *testing.T) {
	mainBus := NewBus()
	txBus := NewTransactionalBus(mainBus)

	delivered := make(chan struct{}, 1)
	mainBus.Subscribe(EventTypeBetSettled, func(ctx context.Context, event Event) {
		delivered <- struct{}{}
	})

	txBus.Publish(BetSettledEvent{BetID: 1})
	txBus.Discard()
	txBus.Flush()

	select {
	case <-delivered:
		t.Fatal("discarded event was delivered")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_PanickingHandlerDoesNotBlockOthers(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(1)

	bus.Subscribe(EventTypePointsAwarded, func(ctx context.Context, event Event) {
		panic("boom")
	})
	bus.Subscribe(EventTypePointsAwarded, func(ctx context.Context, event Event) {
		defer wg.Done()
		award, ok := event.(PointsAwardedEvent)
		assert.True(t, ok)
		assert.Equal(t, int64(5), award.Amount)
	})

	bus.Emit(context.Background(), PointsAwardedEvent{AccountID: "1", Source: "voice", Amount: 5})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("healthy handler did not run")
	}
}
