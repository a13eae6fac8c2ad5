// Package hub implements a shared market data hub over a Redis backing
// store: a latest-value cache, a bounded per-symbol history log, a
// best-effort notification bus and a durable signal queue, composed behind
// one façade so producers and consumers never share process memory.
package hub

import (
	"context"
	"fmt"
	"sync"
	"time"

	"MarketHub/internal/domain/models"
	"MarketHub/pkg/logger"
	"MarketHub/pkg/metrics"
	"MarketHub/pkg/transport"
)

// DefaultHistoryCapacity bounds per-symbol history when no capacity is
// configured.
const DefaultHistoryCapacity = 1000

// Config carries hub-level settings.
type Config struct {
	Namespace       string
	HistoryCapacity int
	SnapshotTopic   string
	SignalTopic     string
}

// Hub composes the value cache, history log, event bus and signal queue
// into the producer/consumer contract. It exclusively owns the transport
// handle and the two snapshot stores; multi-step writes are serialized per
// symbol.
type Hub struct {
	handle   *transport.Handle
	values   *ValueCache
	history  *HistoryLog
	bus      *EventBus
	queue    *SignalQueue
	registry *SymbolRegistry

	cfg     Config
	logger  *logger.Logger
	metrics *metrics.Recorder // optional

	mu       sync.Mutex
	symLocks map[string]*sync.Mutex
}

// New creates a Hub on an already-dialed transport handle. rec may be nil.
func New(handle *transport.Handle, cfg Config, lgr *logger.Logger, rec *metrics.Recorder) *Hub {
	if cfg.Namespace == "" {
		cfg.Namespace = "markethub"
	}
	if cfg.HistoryCapacity < 1 {
		cfg.HistoryCapacity = DefaultHistoryCapacity
	}
	if cfg.SnapshotTopic == "" {
		cfg.SnapshotTopic = "market_updates"
	}
	if cfg.SignalTopic == "" {
		cfg.SignalTopic = "signals"
	}

	return &Hub{
		handle:   handle,
		values:   NewValueCache(handle, cfg.Namespace),
		history:  NewHistoryLog(handle, cfg.Namespace, cfg.HistoryCapacity),
		bus:      NewEventBus(handle, cfg.Namespace),
		queue:    NewSignalQueue(handle, cfg.Namespace),
		registry: NewSymbolRegistry(handle, cfg.Namespace),
		cfg:      cfg,
		logger:   lgr,
		metrics:  rec,
		symLocks: make(map[string]*sync.Mutex),
	}
}

// lockSymbol serializes multi-step writes for one symbol without stalling
// writers of other symbols.
func (h *Hub) lockSymbol(symbol string) func() {
	h.mu.Lock()
	m, ok := h.symLocks[symbol]
	if !ok {
		m = &sync.Mutex{}
		h.symLocks[symbol] = m
	}
	h.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// PublishSnapshot stores snap as the current value, appends it to history
// and notifies live subscribers on the snapshot topic. The value write and
// history append are not transactional: if only the history append fails
// the current value stays in place and a DegradedWriteError is returned.
func (h *Hub) PublishSnapshot(ctx context.Context, snap *models.Snapshot) error {
	if snap == nil || snap.Symbol == "" {
		return fmt.Errorf("hub: snapshot symbol is required")
	}
	start := time.Now()

	unlock := h.lockSymbol(snap.Symbol)
	defer unlock()

	if err := h.values.Put(ctx, snap); err != nil {
		h.recordError("value_put")
		return err
	}
	if err := h.history.Append(ctx, snap); err != nil {
		h.recordDegraded("history")
		return &DegradedWriteError{Symbol: snap.Symbol, Missing: "history", Err: err}
	}

	if _, err := h.bus.Publish(ctx, h.cfg.SnapshotTopic, snap); err != nil {
		// Best-effort: subscribers that miss this still see the stored value.
		h.logger.Warn("snapshot notification failed",
			logger.String("symbol", snap.Symbol),
			logger.Error(err))
		h.recordError("notify")
	}

	if h.metrics != nil {
		h.metrics.RecordSnapshot(snap.Symbol, snap.Price)
		h.metrics.RecordLatency("publish_snapshot", time.Since(start).Seconds())
	}
	return nil
}

// PublishSignal enqueues sig durably, then publishes a best-effort live
// notification on the signal topic. A consumer relying on the notification
// alone can miss signals; one draining the queue never can.
func (h *Hub) PublishSignal(ctx context.Context, sig *models.Signal) error {
	if sig == nil {
		return fmt.Errorf("hub: signal is required")
	}
	start := time.Now()

	if err := h.queue.Enqueue(ctx, sig); err != nil {
		h.recordError("signal_enqueue")
		return err
	}

	if _, err := h.bus.Publish(ctx, h.cfg.SignalTopic, sig); err != nil {
		h.logger.Warn("signal notification failed",
			logger.String("symbol", sig.Symbol),
			logger.Error(err))
		h.recordError("notify")
	}

	if h.metrics != nil {
		h.metrics.RecordSignal(string(sig.Directive))
		h.metrics.RecordLatency("publish_signal", time.Since(start).Seconds())
	}
	return nil
}

// GetLatest returns the current snapshot for symbol, nil when absent.
func (h *Hub) GetLatest(ctx context.Context, symbol string) (*models.Snapshot, error) {
	return h.values.Get(ctx, symbol)
}

// GetHistory returns up to limit history entries for symbol, newest first.
func (h *Hub) GetHistory(ctx context.Context, symbol string, limit int) ([]models.Snapshot, error) {
	return h.history.Read(ctx, symbol, limit)
}

// DrainSignals removes and returns up to max signals in enqueue order.
func (h *Hub) DrainSignals(ctx context.Context, max int) ([]models.Signal, error) {
	signals, err := h.queue.Drain(ctx, max)
	if err != nil {
		h.recordError("signal_drain")
		return nil, err
	}
	if h.metrics != nil && len(signals) > 0 {
		h.metrics.RecordDrained(len(signals))
	}
	return signals, nil
}

// ReadSignals returns up to max unread signals for a named consumer without
// removing them. See SignalQueue for how this interacts with DrainSignals.
func (h *Hub) ReadSignals(ctx context.Context, consumer string, max int) ([]models.Signal, error) {
	return h.queue.ReadFrom(ctx, consumer, max)
}

// LatestSignal returns the most recent signal for symbol, nil when absent.
func (h *Hub) LatestSignal(ctx context.Context, symbol string) (*models.Signal, error) {
	return h.queue.Latest(ctx, symbol)
}

// QueueDepth returns the current signal backlog size.
func (h *Hub) QueueDepth(ctx context.Context) (int64, error) {
	return h.queue.Len(ctx)
}

// Subscribe opens a live subscription on topic, defaulting to the snapshot
// topic. Payloads published before the call or after Close are never
// observed.
func (h *Hub) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	if topic == "" {
		topic = h.cfg.SnapshotTopic
	}
	return h.bus.Subscribe(ctx, topic)
}

// ListTrackedSymbols returns the exact set of symbols ever successfully
// published, sorted. Empty before any write.
func (h *Hub) ListTrackedSymbols(ctx context.Context) ([]string, error) {
	return h.registry.List(ctx)
}

// IsConnected reports transport liveness.
func (h *Hub) IsConnected() bool {
	return h.handle.IsConnected()
}

// Reconnect re-establishes the transport session.
func (h *Hub) Reconnect(ctx context.Context) error {
	return h.handle.Reconnect(ctx)
}

// Close releases the transport handle.
func (h *Hub) Close() error {
	return h.handle.Close()
}

func (h *Hub) recordError(kind string) {
	if h.metrics != nil {
		h.metrics.RecordError(kind)
	}
}

func (h *Hub) recordDegraded(missing string) {
	if h.metrics != nil {
		h.metrics.RecordDegradedWrite(missing)
	}
}
