package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	q "github.com/iliyamo/hotel-management/internal/queue"
)

func TestBreakerPublisherOpensAfterConsecutiveFailures(t *testing.T) {
	inner := &recordingPublisher{err: errors.New("connection refused")}
	bp := NewBreakerPublisher(inner, time.Minute, zerolog.Nop())
	ev := q.ReservationEvent{ReservationID: 1, To: "canceled"}

	for i := 0; i < 3; i++ {
		err := bp.Publish(context.Background(), ev)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrPublisherOpen)
	}
	assert.Equal(t, gobreaker.StateOpen, bp.State())

	err := bp.Publish(context.Background(), ev)
	assert.ErrorIs(t, err, ErrPublisherOpen)
	assert.Len(t, inner.Events(), 3)
}

func TestBreakerPublisherPassesThrough(t *testing.T) {
	inner := &recordingPublisher{}
	bp := NewBreakerPublisher(inner, time.Minute, zerolog.Nop())
	require.NoError(t, bp.Publish(context.Background(), q.ReservationEvent{ReservationID: 2, To: "finished"}))
	assert.Equal(t, gobreaker.StateClosed, bp.State())
	assert.Len(t, inner.Events(), 1)
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.Publish(context.Background(), q.ReservationEvent{}))
}
