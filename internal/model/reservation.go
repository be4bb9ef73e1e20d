package model

import (
    "fmt"
    "time"

    "github.com/shopspring/decimal"
)

// ReservationStatus is the lifecycle state of a reservation.  A new
// reservation starts as pending; payment moves it to paid; from there it
// either finishes at checkout or gets canceled.  Canceled and finished are
// terminal.
type ReservationStatus string

const (
    StatusPending  ReservationStatus = "pending"
    StatusPaid     ReservationStatus = "paid"
    StatusCanceled ReservationStatus = "canceled"
    StatusFinished ReservationStatus = "finished"
)

// reservationTransitions lists the allowed next states for every status.
var reservationTransitions = map[ReservationStatus][]ReservationStatus{
    StatusPending:  {StatusPaid, StatusCanceled},
    StatusPaid:     {StatusFinished, StatusCanceled},
    StatusCanceled: {},
    StatusFinished: {},
}

// IsValid reports whether s is one of the four known statuses.
func (s ReservationStatus) IsValid() bool {
    _, ok := reservationTransitions[s]
    return ok
}

// CanTransitionTo reports whether moving from s to target is allowed.
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
    for _, t := range reservationTransitions[s] {
        if t == target {
            return true
        }
    }
    return false
}

// IsTerminal reports whether no transition leaves s.  Unknown statuses are
// treated as terminal so they can never be moved.
func (s ReservationStatus) IsTerminal() bool {
    return len(reservationTransitions[s]) == 0
}

func (s ReservationStatus) String() string { return string(s) }

// ParseReservationStatus converts a raw column or query value.
func ParseReservationStatus(raw string) (ReservationStatus, error) {
    s := ReservationStatus(raw)
    if !s.IsValid() {
        return "", fmt.Errorf("invalid reservation status: %q", raw)
    }
    return s, nil
}

// Reservation is a customer's booking of one room for a date range.
//
// Fields:
//  ID           – primary key identifier.
//  CustomerID   – customer who holds the reservation.
//  RoomID       – reserved room.
//  CheckIn      – arrival date.
//  CheckOut     – departure date, after CheckIn.
//  Amount       – total price, fixed at creation.
//  Discount     – discount applied, fixed at creation.
//  TVA          – tax amount, fixed at creation.
//  Status       – lifecycle state (see ReservationStatus).
//  DateCreation – creation timestamp, never modified.
type Reservation struct {
    ID           uint64            `json:"id"`            // reservations.id
    CustomerID   uint64            `json:"customer_id"`   // reservations.customer_id
    RoomID       uint64            `json:"room_id"`       // reservations.room_id
    CheckIn      time.Time         `json:"check_in"`      // reservations.check_in
    CheckOut     time.Time         `json:"check_out"`     // reservations.check_out
    Amount       decimal.Decimal   `json:"amount"`        // reservations.amount
    Discount     decimal.Decimal   `json:"discount"`      // reservations.discount
    TVA          decimal.Decimal   `json:"tva"`           // reservations.tva
    Status       ReservationStatus `json:"status"`        // reservations.status
    DateCreation time.Time         `json:"date_creation"` // reservations.date_creation
}
