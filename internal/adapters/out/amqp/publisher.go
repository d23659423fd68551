// Package amqp mirrors committed snapshots to a RabbitMQ fanout exchange so
// out-of-process consumers (analytics, external trackers) receive the same
// feed as in-process subscribers.
//
// The mirror is strictly best-effort from the caller's point of view:
// enqueueing never blocks a command handler, and a broker outage degrades to
// logged drops, never to a failed command.
package amqp

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/order"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	amqp "github.com/rabbitmq/amqp091-go"
)

var publishFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "dispatch_amqp_publish_failures_total",
	Help: "Snapshots that could not be mirrored to the AMQP exchange.",
})

const (
	routingKeyOrder  = "order"
	routingKeyDriver = "driver"

	// queueDepth bounds the in-memory backlog while the connection is down.
	// Beyond it the oldest snapshots are dropped; the in-process stream
	// remains authoritative.
	queueDepth = 1024
)

type envelope struct {
	routingKey string
	body       []byte
}

// Publisher mirrors snapshots to a durable fanout exchange through a single
// background goroutine with capped-exponential-backoff redialing.
// It implements ports.EventPublisher and is composed with the in-process
// broker at the composition root.
type Publisher struct {
	url      string
	exchange string
	logger   *slog.Logger

	queue chan envelope

	mu      sync.Mutex
	started bool
}

// NewPublisher creates a mirror for the given AMQP URL and exchange name.
// Nothing is dialed until Start.
func NewPublisher(url, exchange string, logger *slog.Logger) *Publisher {
	return &Publisher{
		url:      url,
		exchange: exchange,
		logger:   logger.With("component", "amqp_mirror"),
		queue:    make(chan envelope, queueDepth),
	}
}

// Start runs the mirror loop until ctx is cancelled. Safe to call once.
func (p *Publisher) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go p.run(ctx)
}

// PublishOrder enqueues an order snapshot for mirroring. Never blocks; on a
// full backlog the snapshot is dropped and counted.
func (p *Publisher) PublishOrder(aggregate *order.Order) {
	body, err := json.Marshal(orderMessage(aggregate))
	if err != nil {
		publishFailures.Inc()
		p.logger.Error("marshal order snapshot", "error", err)
		return
	}
	p.enqueue(envelope{routingKey: routingKeyOrder, body: body})
}

// PublishDriver enqueues a driver snapshot for mirroring. Never blocks.
func (p *Publisher) PublishDriver(aggregate *driver.Driver) {
	body, err := json.Marshal(driverMessage(aggregate))
	if err != nil {
		publishFailures.Inc()
		p.logger.Error("marshal driver snapshot", "error", err)
		return
	}
	p.enqueue(envelope{routingKey: routingKeyDriver, body: body})
}

func (p *Publisher) enqueue(env envelope) {
	select {
	case p.queue <- env:
	default:
		publishFailures.Inc()
		p.logger.Warn("mirror backlog full, dropping snapshot", "routing_key", env.routingKey)
	}
}

// run keeps one channel open and drains the backlog through it, redialing
// with capped exponential backoff whenever the connection drops. The
// snapshot being published when a connection dies is retried on the next
// connection, so upstream delivery stays at-least-once while connected.
func (p *Publisher) run(ctx context.Context) {
	var pending *envelope

	for {
		channel, conn, err := p.connect(ctx)
		if err != nil {
			// Only context cancellation gets connect to give up.
			return
		}

		p.logger.Info("mirror connected", "exchange", p.exchange)
		pending = p.drain(ctx, channel, pending)
		_ = channel.Close()
		_ = conn.Close()

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// connect dials and declares the exchange, retrying forever with capped
// exponential backoff until it succeeds or ctx is cancelled.
func (p *Publisher) connect(ctx context.Context) (*amqp.Channel, *amqp.Connection, error) {
	var (
		conn    *amqp.Connection
		channel *amqp.Channel
	)

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0

	operation := func() error {
		var err error
		conn, err = amqp.Dial(p.url)
		if err != nil {
			p.logger.Warn("mirror dial failed", "error", err)
			return err
		}

		channel, err = conn.Channel()
		if err != nil {
			_ = conn.Close()
			p.logger.Warn("mirror channel failed", "error", err)
			return err
		}

		if err = channel.ExchangeDeclare(
			p.exchange,
			"fanout",
			true,  // durable
			false, // auto-delete
			false, // internal
			false, // no-wait
			nil,
		); err != nil {
			_ = channel.Close()
			_ = conn.Close()
			p.logger.Warn("mirror exchange declare failed", "error", err)
			return err
		}

		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, nil, err
	}
	return channel, conn, nil
}

// drain publishes from the backlog until the channel errors or ctx ends.
// Returns the snapshot that failed mid-publish, if any, for the next
// connection to retry.
func (p *Publisher) drain(ctx context.Context, channel *amqp.Channel, carryOver *envelope) *envelope {
	publish := func(env envelope) error {
		return channel.PublishWithContext(ctx,
			p.exchange,
			env.routingKey,
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				DeliveryMode: amqp.Persistent,
				Timestamp:    time.Now().UTC(),
				ContentType:  "application/json",
				Body:         env.body,
			},
		)
	}

	if carryOver != nil {
		if err := publish(*carryOver); err != nil {
			publishFailures.Inc()
			p.logger.Error("mirror publish failed", "error", err)
			return carryOver
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case env := <-p.queue:
			if err := publish(env); err != nil {
				publishFailures.Inc()
				p.logger.Error("mirror publish failed", "error", err)
				return &env
			}
		}
	}
}
