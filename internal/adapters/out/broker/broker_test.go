package broker_test

import (
	"sync"
	"testing"
	"time"

	"dispatch/internal/adapters/out/broker"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *order.Order {
	t.Helper()
	item, err := order.NewItem("Burger", 10.0, 1)
	require.NoError(t, err)
	o, err := order.NewOrder(
		kernel.NewUUID(), kernel.NewUUID(), "Jane Customer",
		[]order.Item{item}, 10.0, "123 Test St", time.Now().UTC(),
	)
	require.NoError(t, err)
	return o
}

func newTestDriver(t *testing.T) *driver.Driver {
	t.Helper()
	d, err := driver.NewDriver(kernel.NewUUID(), "Alex Rider")
	require.NoError(t, err)
	return d
}

func receiveOrder(t *testing.T, sub interface{ Events() <-chan *order.Order }) *order.Order {
	t.Helper()
	select {
	case o, ok := <-sub.Events():
		require.True(t, ok, "subscription closed unexpectedly")
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for order snapshot")
		return nil
	}
}

func receiveDriver(t *testing.T, sub interface{ Events() <-chan *driver.Driver }) *driver.Driver {
	t.Helper()
	select {
	case d, ok := <-sub.Events():
		require.True(t, ok, "subscription closed unexpectedly")
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for driver snapshot")
		return nil
	}
}

func TestEventBroker_OrderFanOut(t *testing.T) {
	t.Run("delivers snapshots to every subscriber", func(t *testing.T) {
		b := broker.NewEventBroker()
		defer b.Close()

		subA := b.SubscribeOrders()
		subB := b.SubscribeOrders()
		defer subA.Unsubscribe()
		defer subB.Unsubscribe()

		o := newTestOrder(t)
		b.PublishOrder(o)

		assert.True(t, o.ID().IsEqual(receiveOrder(t, subA).ID()))
		assert.True(t, o.ID().IsEqual(receiveOrder(t, subB).ID()))
	})

	t.Run("slow subscriber sees the newest snapshot of an order", func(t *testing.T) {
		b := broker.NewEventBroker()
		defer b.Close()

		sub := b.SubscribeOrders()
		defer sub.Unsubscribe()

		o := newTestOrder(t)
		driverID := kernel.NewUUID()
		b.PublishOrder(o) // PENDING, likely coalesced away

		require.NoError(t, o.Assign(driverID))
		require.NoError(t, o.Accept())
		b.PublishOrder(o)

		// Without consuming in between, the subscriber must end up with the
		// accepted state; it may or may not see the pending one first.
		deadline := time.After(2 * time.Second)
		for {
			select {
			case got := <-sub.Events():
				if got.Status() == order.Accepted {
					return
				}
			case <-deadline:
				t.Fatal("never received the newest snapshot")
			}
		}
	})

	t.Run("distinct orders are never coalesced together", func(t *testing.T) {
		b := broker.NewEventBroker()
		defer b.Close()

		sub := b.SubscribeOrders()
		defer sub.Unsubscribe()

		first := newTestOrder(t)
		second := newTestOrder(t)
		b.PublishOrder(first)
		b.PublishOrder(second)

		got := map[string]bool{}
		got[receiveOrder(t, sub).ID().String()] = true
		got[receiveOrder(t, sub).ID().String()] = true

		assert.True(t, got[first.ID().String()])
		assert.True(t, got[second.ID().String()])
	})

	t.Run("publishing never blocks without consumers", func(t *testing.T) {
		b := broker.NewEventBroker()
		defer b.Close()

		sub := b.SubscribeOrders() // never consumed
		defer sub.Unsubscribe()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for range 1000 {
				b.PublishOrder(newTestOrder(t))
			}
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("publisher blocked on a slow subscriber")
		}
	})
}

func TestEventBroker_DriverSubscription(t *testing.T) {
	t.Run("filters to the requested driver", func(t *testing.T) {
		b := broker.NewEventBroker()
		defer b.Close()

		watched := newTestDriver(t)
		other := newTestDriver(t)

		sub := b.SubscribeDriver(watched.ID())
		defer sub.Unsubscribe()

		b.PublishDriver(other)
		b.PublishDriver(watched)

		got := receiveDriver(t, sub)
		assert.True(t, watched.ID().IsEqual(got.ID()))
	})

	t.Run("delivers the retained snapshot on subscribe", func(t *testing.T) {
		b := broker.NewEventBroker()
		defer b.Close()

		d := newTestDriver(t)
		require.NoError(t, d.ReportPosition(kernel.NewCoordinates(40.0, -3.0), time.Now().UTC()))
		b.PublishDriver(d)

		sub := b.SubscribeDriver(d.ID())
		defer sub.Unsubscribe()

		got := receiveDriver(t, sub)
		assert.True(t, d.ID().IsEqual(got.ID()))
		require.NotNil(t, got.Position())
	})

	t.Run("no retained snapshot for an unknown driver", func(t *testing.T) {
		b := broker.NewEventBroker()
		defer b.Close()

		sub := b.SubscribeDriver(kernel.NewUUID())
		defer sub.Unsubscribe()

		select {
		case <-sub.Events():
			t.Fatal("received a snapshot that was never published")
		case <-time.After(100 * time.Millisecond):
		}
	})
}

func TestEventBroker_Unsubscribe(t *testing.T) {
	t.Run("closes the events channel", func(t *testing.T) {
		b := broker.NewEventBroker()
		defer b.Close()

		sub := b.SubscribeOrders()
		sub.Unsubscribe()

		select {
		case _, ok := <-sub.Events():
			assert.False(t, ok)
		case <-time.After(2 * time.Second):
			t.Fatal("events channel not closed after unsubscribe")
		}
	})

	t.Run("is idempotent and race-safe", func(t *testing.T) {
		b := broker.NewEventBroker()
		defer b.Close()

		sub := b.SubscribeOrders()

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				sub.Unsubscribe()
			}()
		}
		wg.Wait()
	})

	t.Run("safe from the consuming goroutine", func(t *testing.T) {
		b := broker.NewEventBroker()
		defer b.Close()

		sub := b.SubscribeOrders()
		b.PublishOrder(newTestOrder(t))

		done := make(chan struct{})
		go func() {
			defer close(done)
			<-sub.Events()
			sub.Unsubscribe() // from the same goroutine that consumes
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("unsubscribe from consumer goroutine deadlocked")
		}
	})

	t.Run("does not affect other subscriptions", func(t *testing.T) {
		b := broker.NewEventBroker()
		defer b.Close()

		cancelled := b.SubscribeOrders()
		kept := b.SubscribeOrders()
		defer kept.Unsubscribe()

		cancelled.Unsubscribe()

		o := newTestOrder(t)
		b.PublishOrder(o)

		assert.True(t, o.ID().IsEqual(receiveOrder(t, kept).ID()))
	})
}

func TestEventBroker_Close(t *testing.T) {
	b := broker.NewEventBroker()
	sub := b.SubscribeOrders()

	b.Close()

	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed after broker close")
	}

	// Publishing after close is a no-op, not a panic.
	b.PublishOrder(newTestOrder(t))
}
