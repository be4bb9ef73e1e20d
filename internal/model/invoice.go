package model

import (
    "time"

    "github.com/shopspring/decimal"
)

// Invoice statuses.  An invoice is issued when its reservation is paid.
const (
    InvoiceIssued = "issued"
)

// Invoice (facture) is the billing record attached to a paid reservation.
// At most one invoice exists per reservation; it is removed when the
// reservation is canceled and kept when the stay finishes.
type Invoice struct {
    ID            uint64          `json:"id"`             // invoices.id
    ReservationID uint64          `json:"reservation_id"` // invoices.reservation_id (unique)
    Code          string          `json:"code"`           // invoices.code
    Amount        decimal.Decimal `json:"amount"`         // invoices.amount
    Status        string          `json:"status"`         // invoices.status
    DateCreation  time.Time       `json:"date_creation"`  // invoices.date_creation
}
