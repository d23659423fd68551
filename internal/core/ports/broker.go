package ports

import (
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
)

// OrderSubscription is a live feed of order snapshots.
//
// Every received value is the full current state of one order, never a diff.
// Delivery is at-least-once with latest-value coalescing per order: a slow
// consumer may miss intermediate snapshots of the same order but always ends
// up with its newest state. Snapshots of a single order arrive in the order
// they were published.
type OrderSubscription interface {
	// Events returns the receive channel. It is closed after Unsubscribe.
	Events() <-chan *order.Order

	// Unsubscribe cancels the feed. Idempotent; safe to call concurrently
	// and from the goroutine that consumes Events.
	Unsubscribe()
}

// DriverSubscription is a live feed of one driver's position snapshots,
// with the same delivery semantics as OrderSubscription. If the driver has
// a known snapshot at subscribe time it is delivered first.
type DriverSubscription interface {
	Events() <-chan *driver.Driver
	Unsubscribe()
}

// EventStream hands out snapshot subscriptions to observers such as the
// SSE endpoints. Subscriptions are independent: pacing or cancelling one
// never affects another.
type EventStream interface {
	// SubscribeOrders subscribes to snapshots of every order change.
	// Consumers apply their own scoping (role, customer, driver).
	SubscribeOrders() OrderSubscription

	// SubscribeDriver subscribes to position snapshots of a single driver.
	// The driver does not need to exist yet; the feed starts delivering
	// once it reports.
	SubscribeDriver(driverID kernel.UUID) DriverSubscription
}

// EventPublisher is the command-handler side of the fan-out: handlers
// publish the committed state of an aggregate after the transaction
// commits, never before. Publishing never blocks on slow subscribers.
type EventPublisher interface {
	PublishOrder(aggregate *order.Order)
	PublishDriver(aggregate *driver.Driver)
}
