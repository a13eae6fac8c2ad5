package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"MarketHub/pkg/transport"

	"github.com/redis/go-redis/v9"
)

// EventBus fans payloads out to subscribers active at publish time.
// Delivery is at-most-once and non-durable: late subscribers never see
// earlier payloads and there is no replay. Anything needing delivery
// guarantees belongs on the SignalQueue instead.
type EventBus struct {
	h  *transport.Handle
	ns string
}

func NewEventBus(h *transport.Handle, ns string) *EventBus {
	return &EventBus{h: h, ns: ns}
}

// Publish sends payload to every current subscriber of topic and returns the
// delivery count. Zero deliveries is a normal outcome, not an error.
func (b *EventBus) Publish(ctx context.Context, topic string, payload interface{}) (int64, error) {
	var data []byte
	switch p := payload.(type) {
	case []byte:
		data = p
	case string:
		data = []byte(p)
	default:
		var err error
		data, err = json.Marshal(payload)
		if err != nil {
			return 0, fmt.Errorf("marshal payload: %w", err)
		}
	}

	var delivered int64
	err := b.h.Do(ctx, "publish", func(ctx context.Context, c *redis.Client) error {
		n, err := c.Publish(ctx, channelName(b.ns, topic), data).Result()
		if err != nil {
			return err
		}
		delivered = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return delivered, nil
}

// Subscribe opens a long-lived subscription on topic. The returned
// Subscription delivers payloads published while it is active; it buffers
// independently of publishers, so a slow subscriber never blocks Publish.
func (b *EventBus) Subscribe(ctx context.Context, topic string) (*Subscription, error) {
	client, err := b.h.Client()
	if err != nil {
		return nil, err
	}

	ps := client.Subscribe(ctx, channelName(b.ns, topic))
	// Confirm the subscription before handing it out, so a payload published
	// after Subscribe returns is guaranteed to be observed.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, &transport.TransportError{Op: "subscribe", Err: err}
	}

	sub := &Subscription{
		topic: topic,
		ps:    ps,
		ch:    make(chan []byte, 64),
		done:  make(chan struct{}),
	}
	go sub.pump()
	return sub, nil
}

// Subscription is a live read loop on one topic.
type Subscription struct {
	topic string
	ps    *redis.PubSub
	ch    chan []byte
	done  chan struct{}
	once  sync.Once
}

// pump must never park on a send once the subscription is closed, even when
// the subscriber stopped reading with a full buffer.
func (s *Subscription) pump() {
	defer close(s.ch)
	for msg := range s.ps.Channel() {
		select {
		case s.ch <- []byte(msg.Payload):
		case <-s.done:
			return
		}
	}
}

// Topic returns the subscribed topic name.
func (s *Subscription) Topic() string {
	return s.topic
}

// Channel yields raw payloads until the subscription is closed.
func (s *Subscription) Channel() <-chan []byte {
	return s.ch
}

// Close terminates the subscription; Channel is closed afterwards.
func (s *Subscription) Close() error {
	s.once.Do(func() { close(s.done) })
	return s.ps.Close()
}
