// Package queue defines message payloads exchanged over the message broker
// and the consumer that turns payment confirmations into paid reservations.
package queue

// Queue names.  Both queues are durable.
const (
	ReservationEventsQueue = "reservation.events"
	PaymentConfirmedQueue  = "payment.confirmed"
)

// ReservationEvent is published after a lifecycle transition commits.  It
// carries enough for downstream consumers (mailers, reporting) to react
// without querying the primary database.
type ReservationEvent struct {
	ReservationID uint64 `json:"reservation_id"`
	From          string `json:"from"`
	To            string `json:"to"`
	InvoiceCode   string `json:"invoice_code,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}
