package hub

import (
	"context"
	"testing"
	"time"

	"MarketHub/internal/domain/models"
)

func sig(symbol string, d models.Directive, confidence float64) *models.Signal {
	return &models.Signal{
		Symbol:     symbol,
		Directive:  d,
		Rationale:  "test",
		Confidence: confidence,
		Source:     "test",
		Timestamp:  time.Now().UTC(),
	}
}

func TestDrainSingleSignal(t *testing.T) {
	h, _ := newTestHub(t, Config{})
	ctx := context.Background()

	if err := h.PublishSignal(ctx, sig("TSLA", models.DirectiveBuy, 82.1)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got, err := h.DrainSignals(ctx, 10)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one signal, got %d", len(got))
	}
	if got[0].Symbol != "TSLA" || got[0].Directive != models.DirectiveBuy || got[0].Confidence != 82.1 {
		t.Fatalf("unexpected signal %+v", got[0])
	}

	again, err := h.DrainSignals(ctx, 10)
	if err != nil {
		t.Fatalf("second drain: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected empty backlog, got %d", len(again))
	}
}

func TestDrainFIFOOrder(t *testing.T) {
	h, _ := newTestHub(t, Config{})
	ctx := context.Background()

	directives := []models.Directive{
		models.DirectiveBuy,
		models.DirectiveHold,
		models.DirectiveSell,
		models.DirectiveStrongBuy,
	}
	for i, d := range directives {
		if err := h.PublishSignal(ctx, sig("AAPL", d, float64(10*i))); err != nil {
			t.Fatalf("publish #%d: %v", i, err)
		}
	}

	got, err := h.DrainSignals(ctx, 2)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if len(got) != 2 || got[0].Directive != models.DirectiveBuy || got[1].Directive != models.DirectiveHold {
		t.Fatalf("expected first two in enqueue order, got %+v", got)
	}

	rest, err := h.DrainSignals(ctx, 10)
	if err != nil {
		t.Fatalf("drain rest: %v", err)
	}
	if len(rest) != 2 || rest[0].Directive != models.DirectiveSell || rest[1].Directive != models.DirectiveStrongBuy {
		t.Fatalf("expected remaining two in enqueue order, got %+v", rest)
	}
}

func TestDrainCompetingConsumersNoDuplicates(t *testing.T) {
	h, _ := newTestHub(t, Config{})
	ctx := context.Background()

	total := 20
	for i := 0; i < total; i++ {
		s := sig("MSFT", models.DirectiveHold, float64(i))
		if err := h.PublishSignal(ctx, s); err != nil {
			t.Fatalf("publish #%d: %v", i, err)
		}
	}

	// Two consumers alternately draining must partition the backlog.
	seen := make(map[float64]int)
	for drained := 0; drained < total; {
		for consumer := 0; consumer < 2; consumer++ {
			batch, err := h.DrainSignals(ctx, 3)
			if err != nil {
				t.Fatalf("drain: %v", err)
			}
			for _, s := range batch {
				seen[s.Confidence]++
			}
			drained += len(batch)
		}
	}

	if len(seen) != total {
		t.Fatalf("expected %d distinct signals, got %d", total, len(seen))
	}
	for conf, n := range seen {
		if n != 1 {
			t.Fatalf("signal %.0f delivered %d times", conf, n)
		}
	}
}

func TestReadSignalsCursorVariant(t *testing.T) {
	h, _ := newTestHub(t, Config{})
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if err := h.PublishSignal(ctx, sig("NVDA", models.DirectiveBuy, float64(i))); err != nil {
			t.Fatalf("publish #%d: %v", i, err)
		}
	}

	// Two named consumers each see the full stream independently.
	a1, err := h.ReadSignals(ctx, "alpha", 3)
	if err != nil {
		t.Fatalf("read alpha: %v", err)
	}
	if len(a1) != 3 || a1[0].Confidence != 1 || a1[2].Confidence != 3 {
		t.Fatalf("alpha first read: %+v", a1)
	}

	b1, err := h.ReadSignals(ctx, "beta", 10)
	if err != nil {
		t.Fatalf("read beta: %v", err)
	}
	if len(b1) != 5 || b1[0].Confidence != 1 || b1[4].Confidence != 5 {
		t.Fatalf("beta read: %+v", b1)
	}

	a2, err := h.ReadSignals(ctx, "alpha", 10)
	if err != nil {
		t.Fatalf("read alpha again: %v", err)
	}
	if len(a2) != 2 || a2[0].Confidence != 4 || a2[1].Confidence != 5 {
		t.Fatalf("alpha second read: %+v", a2)
	}

	a3, err := h.ReadSignals(ctx, "alpha", 10)
	if err != nil {
		t.Fatalf("read alpha third: %v", err)
	}
	if len(a3) != 0 {
		t.Fatalf("expected alpha caught up, got %+v", a3)
	}
}

func TestReadSignalsInterleavedWithEnqueues(t *testing.T) {
	h, _ := newTestHub(t, Config{})
	ctx := context.Background()

	// A producer keeps pushing while a named consumer reads in small
	// batches. Every entry must be delivered exactly once, in enqueue
	// order, no matter how the pushes land between the consumer's cursor
	// lookup and its range read.
	const total = 100
	prodErr := make(chan error, 1)
	go func() {
		for i := 1; i <= total; i++ {
			if err := h.PublishSignal(ctx, sig("AMD", models.DirectiveHold, float64(i))); err != nil {
				prodErr <- err
				return
			}
		}
		prodErr <- nil
	}()

	var got []models.Signal
	deadline := time.Now().Add(5 * time.Second)
	for len(got) < total {
		if time.Now().After(deadline) {
			t.Fatalf("consumer stalled at %d of %d entries", len(got), total)
		}
		batch, err := h.ReadSignals(ctx, "tail", 7)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		got = append(got, batch...)
	}

	if err := <-prodErr; err != nil {
		t.Fatalf("producer: %v", err)
	}
	for i := range got {
		if got[i].Confidence != float64(i+1) {
			t.Fatalf("entry %d: expected confidence %d, got %.0f (skipped or duplicated)", i, i+1, got[i].Confidence)
		}
	}
}

func TestLatestSignalPerSymbol(t *testing.T) {
	h, _ := newTestHub(t, Config{})
	ctx := context.Background()

	none, err := h.LatestSignal(ctx, "AAPL")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if none != nil {
		t.Fatalf("expected nil before any signal, got %+v", none)
	}

	if err := h.PublishSignal(ctx, sig("AAPL", models.DirectiveBuy, 60)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := h.PublishSignal(ctx, sig("AAPL", models.DirectiveSell, 70)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got, err := h.LatestSignal(ctx, "AAPL")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if got == nil || got.Directive != models.DirectiveSell {
		t.Fatalf("expected latest SELL, got %+v", got)
	}

	// Draining the queue does not erase the latest-signal record.
	if _, err := h.DrainSignals(ctx, 10); err != nil {
		t.Fatalf("drain: %v", err)
	}
	got, err = h.LatestSignal(ctx, "AAPL")
	if err != nil {
		t.Fatalf("latest after drain: %v", err)
	}
	if got == nil || got.Directive != models.DirectiveSell {
		t.Fatalf("expected latest to survive drain, got %+v", got)
	}
}

func TestPublishSignalRejectsInvalid(t *testing.T) {
	h, _ := newTestHub(t, Config{})
	ctx := context.Background()

	bad := []*models.Signal{
		{Symbol: "", Directive: models.DirectiveBuy, Confidence: 50},
		{Symbol: "AAPL", Directive: "PANIC", Confidence: 50},
		{Symbol: "AAPL", Directive: models.DirectiveBuy, Confidence: 101},
		{Symbol: "AAPL", Directive: models.DirectiveBuy, Confidence: -1},
	}
	for i, s := range bad {
		if err := h.PublishSignal(ctx, s); err == nil {
			t.Fatalf("case %d: expected validation error", i)
		}
	}

	depth, err := h.QueueDepth(ctx)
	if err != nil {
		t.Fatalf("depth: %v", err)
	}
	if depth != 0 {
		t.Fatalf("invalid signals must not reach the queue, depth=%d", depth)
	}
}
