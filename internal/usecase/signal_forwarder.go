package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"MarketHub/internal/hub"
	"MarketHub/pkg/kafka"
	"MarketHub/pkg/logger"
)

// Publisher publishes drained signals downstream.
type Publisher interface {
	PublishBatch(ctx context.Context, topic string, messages []kafka.Message) error
	Close() error
}

// SignalForwarder drains the hub's signal queue in batches and hands each
// signal to a Kafka topic for downstream analytics. It is a competing
// consumer of the queue: while a forwarder runs, no other party should call
// DrainSignals on the same deployment.
type SignalForwarder struct {
	hub    *hub.Hub
	pub    Publisher
	topic  string
	batch  int
	poll   time.Duration
	logger *logger.Logger

	mu        sync.Mutex
	isRunning bool
	stopCh    chan struct{}
	wg        sync.WaitGroup
}

func NewSignalForwarder(h *hub.Hub, pub Publisher, topic string, batchSize int, pollInterval time.Duration, lgr *logger.Logger) *SignalForwarder {
	if batchSize <= 0 {
		batchSize = 50
	}
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &SignalForwarder{
		hub:    h,
		pub:    pub,
		topic:  topic,
		batch:  batchSize,
		poll:   pollInterval,
		logger: lgr,
		stopCh: make(chan struct{}),
	}
}

// Start launches the polling loop.
func (f *SignalForwarder) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.isRunning {
		return fmt.Errorf("forwarder already running")
	}
	f.isRunning = true

	f.wg.Add(1)
	go f.run()

	f.logger.Info("signal forwarder started",
		logger.String("topic", f.topic),
		logger.Int("batch_size", f.batch))
	return nil
}

// Stop halts the loop and waits for in-flight work, bounded by ctx.
func (f *SignalForwarder) Stop(ctx context.Context) error {
	f.mu.Lock()
	if !f.isRunning {
		f.mu.Unlock()
		return nil
	}
	f.isRunning = false
	close(f.stopCh)
	f.mu.Unlock()

	doneCh := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(doneCh)
	}()

	select {
	case <-ctx.Done():
		f.logger.Warn("timeout waiting for forwarder", logger.Error(ctx.Err()))
		return fmt.Errorf("timeout: %w", ctx.Err())
	case <-doneCh:
		f.logger.Info("signal forwarder stopped")
		return nil
	}
}

func (f *SignalForwarder) run() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.poll)
	defer ticker.Stop()

	for {
		select {
		case <-f.stopCh:
			return
		case <-ticker.C:
			f.forwardBacklog()
		}
	}
}

// forwardBacklog drains until the queue is empty or an error occurs.
func (f *SignalForwarder) forwardBacklog() {
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		n, err := f.forwardOnce(ctx)
		cancel()

		if err != nil {
			f.logger.Error("forward signals", logger.Error(err))
			return
		}
		if n < f.batch {
			return
		}
	}
}

func (f *SignalForwarder) forwardOnce(ctx context.Context) (int, error) {
	signals, err := f.hub.DrainSignals(ctx, f.batch)
	if err != nil {
		return 0, fmt.Errorf("drain: %w", err)
	}
	if len(signals) == 0 {
		return 0, nil
	}

	msgs := make([]kafka.Message, 0, len(signals))
	for i := range signals {
		msgs = append(msgs, kafka.Message{
			Key:   []byte(signals[i].Symbol),
			Value: &signals[i],
		})
	}

	if err := f.pub.PublishBatch(ctx, f.topic, msgs); err != nil {
		// The batch was already removed from the queue; put it back so
		// nothing is lost. Order across the failed batch is not preserved.
		for i := range signals {
			if reqErr := f.hub.PublishSignal(ctx, &signals[i]); reqErr != nil {
				f.logger.Error("requeue signal failed",
					logger.String("symbol", signals[i].Symbol),
					logger.Error(reqErr))
			}
		}
		return 0, fmt.Errorf("publish batch: %w", err)
	}

	f.logger.Debug("forwarded signals", logger.Int("count", len(signals)))
	return len(signals), nil
}
