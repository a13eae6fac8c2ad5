package hub

import (
	"context"
	"encoding/json"
	"fmt"

	"MarketHub/internal/domain/models"
	"MarketHub/pkg/transport"

	"github.com/redis/go-redis/v9"
)

// HistoryLog keeps a bounded, newest-first list of accepted snapshots per
// symbol. Append pushes to the head and trims to capacity in a single
// transactional pipeline, so the cap invariant holds even when the push and
// trim race with other appenders.
type HistoryLog struct {
	h   *transport.Handle
	ns  string
	cap int
}

func NewHistoryLog(h *transport.Handle, ns string, capacity int) *HistoryLog {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &HistoryLog{h: h, ns: ns, cap: capacity}
}

// Capacity returns the configured maximum entries per symbol.
func (l *HistoryLog) Capacity() int {
	return l.cap
}

// Append records an immutable copy of snap at the head of its symbol's
// history, evicting the oldest entries beyond capacity.
func (l *HistoryLog) Append(ctx context.Context, snap *models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal history entry: %w", err)
	}
	key := historyKey(l.ns, snap.Symbol)
	return l.h.Do(ctx, "append history", func(ctx context.Context, c *redis.Client) error {
		pipe := c.TxPipeline()
		pipe.LPush(ctx, key, data)
		pipe.LTrim(ctx, key, 0, int64(l.cap)-1)
		_, err := pipe.Exec(ctx)
		return err
	})
}

// Read returns up to limit entries for symbol, newest first. Repeated calls
// are independent; no cursor state is kept. limit values outside (0, cap]
// are clamped to the capacity.
func (l *HistoryLog) Read(ctx context.Context, symbol string, limit int) ([]models.Snapshot, error) {
	if limit <= 0 || limit > l.cap {
		limit = l.cap
	}
	var raw []string
	err := l.h.Do(ctx, "read history", func(ctx context.Context, c *redis.Client) error {
		vals, err := c.LRange(ctx, historyKey(l.ns, symbol), 0, int64(limit)-1).Result()
		if err != nil {
			return err
		}
		raw = vals
		return nil
	})
	if err != nil {
		return nil, err
	}

	entries := make([]models.Snapshot, 0, len(raw))
	for _, r := range raw {
		var snap models.Snapshot
		if err := json.Unmarshal([]byte(r), &snap); err != nil {
			return nil, fmt.Errorf("unmarshal history entry for %s: %w", symbol, err)
		}
		entries = append(entries, snap)
	}
	return entries, nil
}
