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

// ValueCache holds the most recently accepted snapshot per symbol.
// Overwrites are last-write-wins by call order; the store never reorders by
// the embedded timestamp.
type ValueCache struct {
	h  *transport.Handle
	ns string
}

func NewValueCache(h *transport.Handle, ns string) *ValueCache {
	return &ValueCache{h: h, ns: ns}
}

// Put stores snap as the current value for its symbol. No side effects when
// the transport is disconnected.
func (v *ValueCache) Put(ctx context.Context, snap *models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return v.h.Do(ctx, "set current", func(ctx context.Context, c *redis.Client) error {
		return c.Set(ctx, currentKey(v.ns, snap.Symbol), data, 0).Err()
	})
}

// Get returns the current snapshot for symbol, or nil when the symbol has
// never been written. Absence is not an error.
func (v *ValueCache) Get(ctx context.Context, symbol string) (*models.Snapshot, error) {
	var data []byte
	err := v.h.Do(ctx, "get current", func(ctx context.Context, c *redis.Client) error {
		b, err := c.Get(ctx, currentKey(v.ns, symbol)).Bytes()
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

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot for %s: %w", symbol, err)
	}
	return &snap, nil
}
