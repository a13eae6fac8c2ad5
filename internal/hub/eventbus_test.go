package hub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"MarketHub/internal/domain/models"
)

func waitPayload(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case p, ok := <-ch:
		if !ok {
			t.Fatalf("subscription channel closed")
		}
		return p
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for payload")
	}
	return nil
}

func TestSubscribeReceivesSnapshotUpdates(t *testing.T) {
	h, _ := newTestHub(t, Config{})
	ctx := context.Background()

	sub, err := h.Subscribe(ctx, "market_updates")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	if err := h.PublishSnapshot(ctx, snap("AAPL", 190)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	var got models.Snapshot
	if err := json.Unmarshal(waitPayload(t, sub.Channel()), &got); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if got.Symbol != "AAPL" || got.Price != 190 {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestSubscribeMissesEarlierPublishes(t *testing.T) {
	h, _ := newTestHub(t, Config{})
	ctx := context.Background()

	// Published before the subscription exists: never delivered.
	if err := h.PublishSnapshot(ctx, snap("TSLA", 1)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	sub, err := h.Subscribe(ctx, "market_updates")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer sub.Close()

	if err := h.PublishSnapshot(ctx, snap("TSLA", 2)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	var got models.Snapshot
	if err := json.Unmarshal(waitPayload(t, sub.Channel()), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Price != 2 {
		t.Fatalf("expected only the post-subscribe payload, got %+v", got)
	}

	select {
	case extra := <-sub.Channel():
		t.Fatalf("unexpected extra payload %s", extra)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublishWithoutSubscribersIsNotAnError(t *testing.T) {
	h, _ := newTestHub(t, Config{})
	ctx := context.Background()

	n, err := h.bus.Publish(ctx, "market_updates", map[string]string{"k": "v"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected zero deliveries, got %d", n)
	}
}

func TestCloseUnblocksSlowSubscriber(t *testing.T) {
	h, _ := newTestHub(t, Config{})
	ctx := context.Background()

	sub, err := h.Subscribe(ctx, "market_updates")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// Overrun the subscription buffer without reading a single payload, so
	// the delivery loop is parked on a full channel when Close arrives.
	for i := 0; i < 80; i++ {
		if _, err := h.bus.Publish(ctx, "market_updates", snap("AAPL", float64(i))); err != nil {
			t.Fatalf("publish #%d: %v", i, err)
		}
	}
	time.Sleep(50 * time.Millisecond)

	if err := sub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// The channel must still drain and close; if the delivery loop leaked,
	// it never does.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sub.Channel():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("channel not closed after Close with a full buffer")
		}
	}
}

func TestClosedSubscriptionStopsDelivery(t *testing.T) {
	h, _ := newTestHub(t, Config{})
	ctx := context.Background()

	sub, err := h.Subscribe(ctx, "signals")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Channel drains and closes; nothing published after Close arrives.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-sub.Channel():
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("channel not closed after Close")
		}
	}
}
