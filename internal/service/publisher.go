package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	q "github.com/iliyamo/hotel-management/internal/queue"
)

// EventPublisher delivers lifecycle events to the outside world.
type EventPublisher interface {
	Publish(ctx context.Context, event q.ReservationEvent) error
}

// NopPublisher drops every event.  Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, q.ReservationEvent) error { return nil }

// AMQPPublisher publishes events to a durable RabbitMQ queue.  Each call
// dials, declares the queue (idempotent) and publishes one persistent
// message, so a broker restart never leaves it holding a dead channel.
type AMQPPublisher struct {
	URL   string
	Queue string
}

// NewAMQPPublisher returns a publisher for the reservation events queue.
func NewAMQPPublisher(url string) *AMQPPublisher {
	return &AMQPPublisher{URL: url, Queue: q.ReservationEventsQueue}
}

func (p *AMQPPublisher) Publish(ctx context.Context, event q.ReservationEvent) error {
	conn, err := amqp.Dial(p.URL)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		p.Queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Type:         "reservation." + event.To,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		p.Queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

// ErrPublisherOpen is returned while the breaker is open and events are
// being dropped without contacting the broker.
var ErrPublisherOpen = errors.New("event publisher circuit open")

// BreakerPublisher wraps a publisher with a circuit breaker so an
// unreachable broker costs one failed dial per Timeout instead of one per
// transition.
type BreakerPublisher struct {
	next EventPublisher
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerPublisher trips after 3 consecutive failures and probes again
// after timeout.
func NewBreakerPublisher(next EventPublisher, timeout time.Duration, log zerolog.Logger) *BreakerPublisher {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "reservation-events",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
	return &BreakerPublisher{next: next, cb: cb}
}

func (b *BreakerPublisher) Publish(ctx context.Context, event q.ReservationEvent) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Publish(ctx, event)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrPublisherOpen
	}
	return err
}

// State exposes the breaker state, mainly for tests and health output.
func (b *BreakerPublisher) State() gobreaker.State { return b.cb.State() }
