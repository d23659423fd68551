// Package broker implements the in-process snapshot fan-out. Command
// handlers publish committed aggregate snapshots into it; observers (SSE
// streams, the AMQP mirror) consume them through subscriptions.
//
// Delivery semantics: at-least-once with latest-value coalescing per entity.
// A publisher never blocks on a slow subscriber; a subscriber that lags
// skips intermediate snapshots of an entity and receives its newest state.
// Subscriptions are independent and cancellation is idempotent.
package broker

import (
	"sync"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/ports"
)

// EventBroker is the concrete fan-out hub. It implements both
// ports.EventPublisher (write side) and ports.EventStream (read side).
//
// The driver topic retains the last snapshot per driver so a new
// subscription starts with the current position when one is known. The
// order topic does not retain: order listings are seeded by a query, the
// stream only carries changes.
type EventBroker struct {
	orders  *topic[*order.Order]
	drivers *topic[*driver.Driver]
}

// NewEventBroker creates an empty fan-out hub.
func NewEventBroker() *EventBroker {
	return &EventBroker{
		orders:  newTopic[*order.Order]("orders", false),
		drivers: newTopic[*driver.Driver]("drivers", true),
	}
}

// PublishOrder fans an order snapshot out to all order subscribers.
// Never blocks.
func (b *EventBroker) PublishOrder(aggregate *order.Order) {
	b.orders.publish(aggregate.ID().String(), aggregate)
}

// PublishDriver fans a driver snapshot out to that driver's subscribers.
// Never blocks.
func (b *EventBroker) PublishDriver(aggregate *driver.Driver) {
	b.drivers.publish(aggregate.ID().String(), aggregate)
}

// SubscribeOrders subscribes to snapshots of every order change.
func (b *EventBroker) SubscribeOrders() ports.OrderSubscription {
	return b.orders.subscribe("")
}

// SubscribeDriver subscribes to position snapshots of a single driver.
// If the driver already has a known snapshot it is delivered first.
func (b *EventBroker) SubscribeDriver(driverID kernel.UUID) ports.DriverSubscription {
	return b.drivers.subscribe(driverID.String())
}

// Close cancels every active subscription. Used on shutdown.
func (b *EventBroker) Close() {
	b.orders.close()
	b.drivers.close()
}

// topic is one fan-out channel group keyed by entity ID.
type topic[T any] struct {
	name   string
	mu     sync.Mutex
	subs   map[*subscription[T]]struct{}
	last   map[string]T
	retain bool
	closed bool
}

func newTopic[T any](name string, retain bool) *topic[T] {
	return &topic[T]{
		name:   name,
		subs:   make(map[*subscription[T]]struct{}),
		last:   make(map[string]T),
		retain: retain,
	}
}

// publish records the snapshot as the pending value for its key on every
// matching subscriber and wakes their pumps. O(subscribers), no sends.
func (t *topic[T]) publish(key string, value T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return
	}
	if t.retain {
		t.last[key] = value
	}

	for sub := range t.subs {
		if sub.filterKey != "" && sub.filterKey != key {
			continue
		}
		sub.offer(key, value)
	}
}

// subscribe registers a subscription. filterKey narrows the feed to one
// entity; empty means all entities on the topic.
func (t *topic[T]) subscribe(filterKey string) *subscription[T] {
	sub := &subscription[T]{
		filterKey: filterKey,
		pending:   make(map[string]T),
		signal:    make(chan struct{}, 1),
		done:      make(chan struct{}),
		out:       make(chan T),
		topic:     t,
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		close(sub.out)
		return sub
	}
	t.subs[sub] = struct{}{}
	subscribersGauge.WithLabelValues(t.name).Inc()
	if t.retain && filterKey != "" {
		if value, ok := t.last[filterKey]; ok {
			sub.offer(filterKey, value)
		}
	}
	t.mu.Unlock()

	go sub.pump()
	return sub
}

func (t *topic[T]) remove(sub *subscription[T]) {
	t.mu.Lock()
	if _, registered := t.subs[sub]; registered {
		delete(t.subs, sub)
		subscribersGauge.WithLabelValues(t.name).Dec()
	}
	t.mu.Unlock()
}

func (t *topic[T]) close() {
	t.mu.Lock()
	subs := make([]*subscription[T], 0, len(t.subs))
	for sub := range t.subs {
		subs = append(subs, sub)
	}
	t.closed = true
	t.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

// subscription is one consumer's view of a topic. A pump goroutine drains
// the pending map into the out channel, so the consumer's pace never
// back-pressures publishers; it only deepens coalescing.
type subscription[T any] struct {
	filterKey string
	topic     *topic[T]

	mu      sync.Mutex
	pending map[string]T
	keys    []string // publication order of pending keys

	signal chan struct{}
	done   chan struct{}
	out    chan T
	once   sync.Once
}

// Events returns the receive channel. Closed after Unsubscribe.
func (s *subscription[T]) Events() <-chan T {
	return s.out
}

// Unsubscribe cancels the feed. Idempotent; safe to call concurrently and
// from the consuming goroutine.
func (s *subscription[T]) Unsubscribe() {
	s.once.Do(func() {
		s.topic.remove(s)
		close(s.done)
	})
}

// offer stores value as the newest pending snapshot for key and wakes the
// pump. Called with the topic lock held.
func (s *subscription[T]) offer(key string, value T) {
	s.mu.Lock()
	if _, exists := s.pending[key]; !exists {
		s.keys = append(s.keys, key)
	}
	s.pending[key] = value
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// next pops the oldest pending snapshot, if any.
func (s *subscription[T]) next() (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	if len(s.keys) == 0 {
		return zero, false
	}

	key := s.keys[0]
	s.keys = s.keys[1:]
	value := s.pending[key]
	delete(s.pending, key)
	return value, true
}

// pump moves pending snapshots to the out channel until unsubscribed.
func (s *subscription[T]) pump() {
	defer close(s.out)

	for {
		value, ok := s.next()
		if !ok {
			select {
			case <-s.signal:
				continue
			case <-s.done:
				return
			}
		}

		select {
		case s.out <- value:
			eventsDelivered.WithLabelValues(s.topic.name).Inc()
		case <-s.done:
			return
		}
	}
}
