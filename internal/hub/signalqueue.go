package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"MarketHub/internal/domain/models"
	"MarketHub/pkg/transport"

	"github.com/redis/go-redis/v9"
)

// SignalQueue is the durable hand-off path for signals: one global ordered
// sequence, append-only for producers, FIFO for consumers.
//
// Two consumption models are supported and must not be mixed in one
// deployment:
//
//   - Drain: competing consumers. Entries are removed; each signal reaches
//     exactly one caller. This is the primary contract.
//   - ReadFrom: broadcast via a named cursor per consumer. Entries stay in
//     place; a destructive Drain invalidates all cursors.
type SignalQueue struct {
	h  *transport.Handle
	ns string
}

func NewSignalQueue(h *transport.Handle, ns string) *SignalQueue {
	return &SignalQueue{h: h, ns: ns}
}

// Enqueue appends sig to the tail of the queue, bumps the sequence counter
// and records it as the latest signal for its symbol, all in one
// transactional pipeline. Visible to consumers immediately.
func (q *SignalQueue) Enqueue(ctx context.Context, sig *models.Signal) error {
	if err := sig.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(sig)
	if err != nil {
		return fmt.Errorf("marshal signal: %w", err)
	}
	return q.h.Do(ctx, "enqueue signal", func(ctx context.Context, c *redis.Client) error {
		pipe := c.TxPipeline()
		pipe.LPush(ctx, queueKey(q.ns), data)
		pipe.Incr(ctx, seqKey(q.ns))
		pipe.Set(ctx, latestSignalKey(q.ns, sig.Symbol), data, 0)
		_, err := pipe.Exec(ctx)
		return err
	})
}

// Drain removes and returns up to max signals from the head of the queue in
// enqueue order. An empty result means no backlog. The pop is atomic, so
// concurrent callers partition the backlog between them.
func (q *SignalQueue) Drain(ctx context.Context, max int) ([]models.Signal, error) {
	if max <= 0 {
		return nil, nil
	}
	var raw []string
	err := q.h.Do(ctx, "drain signals", func(ctx context.Context, c *redis.Client) error {
		vals, err := c.RPopCount(ctx, queueKey(q.ns), max).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		raw = vals
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decodeSignals(raw)
}

// ReadFrom returns up to max unread signals for the named consumer in
// enqueue order and advances its cursor. Entries are not removed; every
// named consumer sees the full stream.
func (q *SignalQueue) ReadFrom(ctx context.Context, consumer string, max int) ([]models.Signal, error) {
	if consumer == "" {
		return nil, fmt.Errorf("consumer name is required")
	}
	if max <= 0 {
		return nil, nil
	}

	var raw []string
	err := q.h.Do(ctx, "read signals", func(ctx context.Context, c *redis.Client) error {
		seq, err := c.Get(ctx, seqKey(q.ns)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		cursor, err := c.Get(ctx, cursorKey(q.ns, consumer)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		length, err := c.LLen(ctx, queueKey(q.ns)).Result()
		if err != nil {
			return err
		}

		unread := seq - cursor
		if unread > length {
			unread = length
		}
		if unread <= 0 {
			return nil
		}
		n := unread
		if n > int64(max) {
			n = int64(max)
		}

		// The list is newest-first, so the p-th enqueued entry sits at
		// negative index -p from the tail. Tail-anchored indices stay valid
		// when a concurrent enqueue pushes the head between the GET above
		// and this LRANGE; head-relative ones would shift by one per push.
		vals, err := c.LRange(ctx, queueKey(q.ns), -(cursor + n), -(cursor + 1)).Result()
		if err != nil {
			return err
		}
		for i, j := 0, len(vals)-1; i < j; i, j = i+1, j-1 {
			vals[i], vals[j] = vals[j], vals[i]
		}
		raw = vals

		return c.Set(ctx, cursorKey(q.ns, consumer), cursor+int64(len(vals)), 0).Err()
	})
	if err != nil {
		return nil, err
	}
	return decodeSignals(raw)
}

// Latest returns the most recent signal enqueued for symbol, or nil when
// none exists.
func (q *SignalQueue) Latest(ctx context.Context, symbol string) (*models.Signal, error) {
	var data []byte
	err := q.h.Do(ctx, "get latest signal", func(ctx context.Context, c *redis.Client) error {
		b, err := c.Get(ctx, latestSignalKey(q.ns, symbol)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		data = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	var sig models.Signal
	if err := json.Unmarshal(data, &sig); err != nil {
		return nil, fmt.Errorf("unmarshal signal for %s: %w", symbol, err)
	}
	return &sig, nil
}

// Len returns the current backlog size.
func (q *SignalQueue) Len(ctx context.Context) (int64, error) {
	var n int64
	err := q.h.Do(ctx, "queue length", func(ctx context.Context, c *redis.Client) error {
		length, err := c.LLen(ctx, queueKey(q.ns)).Result()
		if err != nil {
			return err
		}
		n = length
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func decodeSignals(raw []string) ([]models.Signal, error) {
	signals := make([]models.Signal, 0, len(raw))
	for _, r := range raw {
		var sig models.Signal
		if err := json.Unmarshal([]byte(r), &sig); err != nil {
			return nil, fmt.Errorf("unmarshal queued signal: %w", err)
		}
		signals = append(signals, sig)
	}
	return signals, nil
}
