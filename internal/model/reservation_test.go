package model

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestReservationStatusTransitions(t *testing.T) {
    cases := []struct {
        from, to ReservationStatus
        ok       bool
    }{
        {StatusPending, StatusPaid, true},
        {StatusPending, StatusCanceled, true},
        {StatusPending, StatusFinished, false},
        {StatusPaid, StatusFinished, true},
        {StatusPaid, StatusCanceled, true},
        {StatusPaid, StatusPending, false},
        {StatusCanceled, StatusPending, false},
        {StatusCanceled, StatusPaid, false},
        {StatusFinished, StatusCanceled, false},
        {ReservationStatus("archived"), StatusCanceled, false},
    }
    for _, tc := range cases {
        assert.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
    }
}

func TestReservationStatusTerminal(t *testing.T) {
    assert.False(t, StatusPending.IsTerminal())
    assert.False(t, StatusPaid.IsTerminal())
    assert.True(t, StatusCanceled.IsTerminal())
    assert.True(t, StatusFinished.IsTerminal())
    assert.True(t, ReservationStatus("bogus").IsTerminal())
}

func TestParseReservationStatus(t *testing.T) {
    s, err := ParseReservationStatus("paid")
    require.NoError(t, err)
    assert.Equal(t, StatusPaid, s)

    _, err = ParseReservationStatus("PAID")
    assert.Error(t, err)
}
