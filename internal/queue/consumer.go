package queue

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/iliyamo/hotel-management/internal/metrics"
	"github.com/iliyamo/hotel-management/internal/model"
)

// PaymentHandler applies a confirmed payment to a reservation.
type PaymentHandler interface {
	MarkPaid(ctx context.Context, id uint64) (model.ReservationStatus, error)
}

// temporary is implemented by errors that may succeed on a later attempt.
type temporary interface {
	Temporary() bool
}

type action int

const (
	actionAck action = iota
	actionReject
)

// PaymentConsumer listens to the payment.confirmed queue and marks the
// referenced reservations as paid.
type PaymentConsumer struct {
	url     string
	handler PaymentHandler
	log     zerolog.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewPaymentConsumer(url string, h PaymentHandler, log zerolog.Logger, m *metrics.Metrics) *PaymentConsumer {
	if h == nil {
		panic("nil handler passed to NewPaymentConsumer")
	}
	return &PaymentConsumer{
		url:     url,
		handler: h,
		log:     log.With().Str("component", "payment-consumer").Logger(),
		metrics: m,
		timeout: 10 * time.Second,
	}
}

// Run connects to RabbitMQ, declares the payment.confirmed queue (durable)
// and consumes until ctx is cancelled.  Broker failures trigger a
// reconnect with exponential backoff capped at 30s.
func (c *PaymentConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn().Err(err).Dur("retry_in", backoff).Msg("failed to dial broker")
			if !sleepCtx(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = c.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn().Err(err).Msg("consume loop ended; reconnecting")
		if !sleepCtx(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func (c *PaymentConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn().Err(err).Msg("set QoS failed")
	}

	if _, err := ch.QueueDeclare(PaymentConfirmedQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(PaymentConfirmedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if c.process(ctx, d.Body) == actionAck {
				_ = d.Ack(false)
			} else {
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
			}
		}
	}
}

// process handles one message body, {"reservation_id": 42, "reference":
// "..."}.  Malformed payloads and store
// failures are rejected; business rejections (already paid, canceled,
// unknown reservation) are acknowledged because redelivery cannot
// change their outcome.
func (c *PaymentConsumer) process(ctx context.Context, body []byte) action {
	if !gjson.ValidBytes(body) {
		c.log.Warn().Msg("invalid json body")
		c.metrics.RecordPayment("invalid")
		return actionReject
	}
	// The raw token must be a plain positive integer: gjson's Uint
	// truncates 1.5 and wraps -1.
	idRes := gjson.GetBytes(body, "reservation_id")
	id, err := strconv.ParseUint(idRes.Raw, 10, 64)
	if idRes.Type != gjson.Number || err != nil || id == 0 {
		c.log.Warn().Str("body", string(body)).Msg("invalid reservation_id")
		c.metrics.RecordPayment("invalid")
		return actionReject
	}
	ref := gjson.GetBytes(body, "reference").String()

	hctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	_, err = c.handler.MarkPaid(hctx, id)
	if err == nil {
		c.log.Info().Uint64("reservation_id", id).Str("reference", ref).Msg("payment applied")
		c.metrics.RecordPayment("paid")
		return actionAck
	}

	var tmp temporary
	if errors.As(err, &tmp) && tmp.Temporary() {
		c.log.Error().Err(err).Uint64("reservation_id", id).Str("reference", ref).Msg("payment not applied")
		c.metrics.RecordPayment("failed")
		return actionReject
	}
	c.log.Info().Err(err).Uint64("reservation_id", id).Str("reference", ref).Msg("payment ignored")
	c.metrics.RecordPayment("ignored")
	return actionAck
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
