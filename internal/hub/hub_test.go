package hub

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"MarketHub/internal/domain/models"
	"MarketHub/pkg/logger"
	"MarketHub/pkg/transport"

	"github.com/alicebob/miniredis/v2"
)

func newTestHub(t *testing.T, cfg Config) (*Hub, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)

	port, err := strconv.Atoi(s.Port())
	if err != nil {
		t.Fatalf("miniredis port: %v", err)
	}
	handle, err := transport.Dial(logger.Nop(),
		transport.WithHost(s.Host()),
		transport.WithPort(port),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = handle.Close() })

	return New(handle, cfg, logger.Nop(), nil), s
}

func snap(symbol string, price float64) *models.Snapshot {
	return &models.Snapshot{
		Symbol:    symbol,
		Price:     price,
		Timestamp: time.Now().UTC(),
	}
}

func TestPublishSnapshotAndGetLatest(t *testing.T) {
	h, _ := newTestHub(t, Config{})
	ctx := context.Background()

	if err := h.PublishSnapshot(ctx, snap("AAPL", 180.5)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got, err := h.GetLatest(ctx, "AAPL")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if got == nil || got.Price != 180.5 {
		t.Fatalf("unexpected snapshot %+v", got)
	}
}

func TestGetLatestLastWriteWins(t *testing.T) {
	h, _ := newTestHub(t, Config{})
	ctx := context.Background()

	// The second write carries an older timestamp but must still win:
	// acceptance order decides, not the embedded timestamp.
	first := snap("TSLA", 250)
	second := snap("TSLA", 245)
	second.Timestamp = first.Timestamp.Add(-time.Hour)

	if err := h.PublishSnapshot(ctx, first); err != nil {
		t.Fatalf("publish first: %v", err)
	}
	if err := h.PublishSnapshot(ctx, second); err != nil {
		t.Fatalf("publish second: %v", err)
	}

	got, err := h.GetLatest(ctx, "TSLA")
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if got.Price != 245 {
		t.Fatalf("expected last write to win, got price %.2f", got.Price)
	}
}

func TestGetLatestAbsentIsNotError(t *testing.T) {
	h, _ := newTestHub(t, Config{})

	got, err := h.GetLatest(context.Background(), "NOPE")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil snapshot, got %+v", got)
	}
}

func TestListTrackedSymbols(t *testing.T) {
	h, _ := newTestHub(t, Config{})
	ctx := context.Background()

	symbols, err := h.ListTrackedSymbols(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(symbols) != 0 {
		t.Fatalf("expected empty set before any write, got %v", symbols)
	}

	for _, s := range []string{"MSFT", "AAPL", "GOOG", "AAPL"} {
		if err := h.PublishSnapshot(ctx, snap(s, 100)); err != nil {
			t.Fatalf("publish %s: %v", s, err)
		}
	}

	symbols, err = h.ListTrackedSymbols(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"AAPL", "GOOG", "MSFT"}
	if len(symbols) != len(want) {
		t.Fatalf("expected %v, got %v", want, symbols)
	}
	for i := range want {
		if symbols[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, symbols)
		}
	}
}

func TestPublishSnapshotNotConnected(t *testing.T) {
	// Dial a port nothing listens on: the handle comes back disconnected
	// and every hub write must fail without side effects.
	handle, err := transport.Dial(logger.Nop(),
		transport.WithHost("127.0.0.1"),
		transport.WithPort(1),
		transport.WithTimeouts(200*time.Millisecond, 0, 0),
	)
	if err == nil {
		t.Fatalf("expected dial error")
	}
	if handle.IsConnected() {
		t.Fatalf("handle should be disconnected")
	}

	h := New(handle, Config{}, logger.Nop(), nil)
	ctx := context.Background()

	if err := h.PublishSnapshot(ctx, snap("AAPL", 1)); !errors.Is(err, transport.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if err := h.PublishSignal(ctx, &models.Signal{
		Symbol: "AAPL", Directive: models.DirectiveBuy, Confidence: 50, Timestamp: time.Now(),
	}); !errors.Is(err, transport.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
	if _, err := h.GetLatest(ctx, "AAPL"); !errors.Is(err, transport.ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestPublishNilIsRejected(t *testing.T) {
	h, _ := newTestHub(t, Config{})
	ctx := context.Background()

	if err := h.PublishSnapshot(ctx, nil); err == nil {
		t.Fatalf("expected error for nil snapshot")
	}
	if err := h.PublishSignal(ctx, nil); err == nil {
		t.Fatalf("expected error for nil signal")
	}

	depth, err := h.QueueDepth(ctx)
	if err != nil {
		t.Fatalf("depth: %v", err)
	}
	if depth != 0 {
		t.Fatalf("nil publishes must have no side effects, depth=%d", depth)
	}
}

func TestDegradedWriteErrorShape(t *testing.T) {
	inner := errors.New("boom")
	err := &DegradedWriteError{Symbol: "AAPL", Missing: "history", Err: inner}

	if !IsDegraded(err) {
		t.Fatalf("expected IsDegraded")
	}
	if !errors.Is(err, inner) {
		t.Fatalf("expected unwrap to inner error")
	}
	if IsDegraded(inner) {
		t.Fatalf("plain error must not look degraded")
	}
}
