package hub

import (
	"context"
	"sort"
	"strings"

	"MarketHub/pkg/transport"

	"github.com/redis/go-redis/v9"
)

// SymbolRegistry enumerates every symbol the ValueCache currently tracks.
// It is a derived view recomputed on each call; caching it would let the
// result drift from the key space.
type SymbolRegistry struct {
	h  *transport.Handle
	ns string
}

func NewSymbolRegistry(h *transport.Handle, ns string) *SymbolRegistry {
	return &SymbolRegistry{h: h, ns: ns}
}

// List returns the sorted set of tracked symbols. Empty before any write.
// Cost is proportional to the number of distinct symbols ever written.
func (r *SymbolRegistry) List(ctx context.Context) ([]string, error) {
	prefix := currentKeyPrefix(r.ns)
	symbols := []string{}
	err := r.h.Do(ctx, "list symbols", func(ctx context.Context, c *redis.Client) error {
		iter := c.Scan(ctx, 0, prefix+"*", 0).Iterator()
		for iter.Next(ctx) {
			symbols = append(symbols, strings.TrimPrefix(iter.Val(), prefix))
		}
		return iter.Err()
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(symbols)
	return symbols, nil
}
