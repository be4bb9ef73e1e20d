package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/hotel-management/internal/metrics"
	"github.com/iliyamo/hotel-management/internal/model"
)

type fakeHandler struct {
	calls []uint64
	err   error
}

func (f *fakeHandler) MarkPaid(_ context.Context, id uint64) (model.ReservationStatus, error) {
	f.calls = append(f.calls, id)
	if f.err != nil {
		return "", f.err
	}
	return model.StatusPaid, nil
}

type tempErr struct{ temp bool }

func (e tempErr) Error() string   { return "lifecycle failure" }
func (e tempErr) Temporary() bool { return e.temp }

func newTestConsumer(h PaymentHandler) (*PaymentConsumer, *metrics.Metrics) {
	m := metrics.New()
	return NewPaymentConsumer("amqp://unused", h, zerolog.Nop(), m), m
}

func TestProcessAppliesPayment(t *testing.T) {
	h := &fakeHandler{}
	c, m := newTestConsumer(h)

	got := c.process(context.Background(), []byte(`{"reservation_id": 42, "reference": "pi_123"}`))
	assert.Equal(t, actionAck, got)
	assert.Equal(t, []uint64{42}, h.calls)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentMessages.WithLabelValues("paid")))
}

func TestProcessRejectsMalformed(t *testing.T) {
	h := &fakeHandler{}
	c, m := newTestConsumer(h)

	bodies := []string{
		`not json`,
		`{"reference":"x"}`,
		`{"reservation_id":"42"}`,
		`{"reservation_id":0}`,
		`{"reservation_id":1.5}`,
		`{"reservation_id":-1}`,
		`{"reservation_id":1e3}`,
		`{"reservation_id":18446744073709551616}`,
	}
	for _, body := range bodies {
		assert.Equal(t, actionReject, c.process(context.Background(), []byte(body)), body)
	}
	assert.Empty(t, h.calls)
	assert.Equal(t, 8.0, testutil.ToFloat64(m.PaymentMessages.WithLabelValues("invalid")))
}

func TestProcessAcksBusinessRejection(t *testing.T) {
	h := &fakeHandler{err: tempErr{temp: false}}
	c, _ := newTestConsumer(h)
	assert.Equal(t, actionAck, c.process(context.Background(), []byte(`{"reservation_id": 7}`)))

	h.err = errors.New("plain error")
	assert.Equal(t, actionAck, c.process(context.Background(), []byte(`{"reservation_id": 7}`)))
}

func TestProcessRejectsStoreFailure(t *testing.T) {
	h := &fakeHandler{err: tempErr{temp: true}}
	c, m := newTestConsumer(h)
	assert.Equal(t, actionReject, c.process(context.Background(), []byte(`{"reservation_id": 7}`)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PaymentMessages.WithLabelValues("failed")))
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	c, _ := newTestConsumer(&fakeHandler{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.Run(ctx), context.Canceled)
}
