package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-management/internal/model"
)

// InvoiceRepo manages the invoices table.  Invoice rows only change as a
// side effect of reservation transitions, so every write takes the
// caller's transaction.
type InvoiceRepo struct {
	db *sql.DB
}

// NewInvoiceRepo returns a new InvoiceRepo bound to the given database.
func NewInvoiceRepo(db *sql.DB) *InvoiceRepo { return &InvoiceRepo{db: db} }

const invoiceColumns = `id, reservation_id, code, amount, status, date_creation`

func scanInvoice(s rowScanner) (model.Invoice, error) {
	var inv model.Invoice
	err := s.Scan(&inv.ID, &inv.ReservationID, &inv.Code, &inv.Amount, &inv.Status, &inv.DateCreation)
	return inv, err
}

// CreateTx inserts inv inside tx and fills in its ID and DateCreation.
// ErrDuplicate is returned if the reservation already has an invoice.
func (r *InvoiceRepo) CreateTx(ctx context.Context, tx *sql.Tx, inv *model.Invoice) error {
	const q = `INSERT INTO invoices (reservation_id, code, amount, status, date_creation) VALUES (?, ?, ?, ?, ?)`
	now := time.Now().UTC().Truncate(time.Second)
	result, err := tx.ExecContext(ctx, q, inv.ReservationID, inv.Code, inv.Amount, inv.Status, now)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	inv.ID = uint64(id)
	inv.DateCreation = now
	return nil
}

// DeleteByReservationTx removes any invoice attached to the reservation.
// Deleting when no invoice exists is not an error.
func (r *InvoiceRepo) DeleteByReservationTx(ctx context.Context, tx *sql.Tx, reservationID uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM invoices WHERE reservation_id = ?`, reservationID)
	return err
}

// GetByID returns one invoice or sql.ErrNoRows.
func (r *InvoiceRepo) GetByID(ctx context.Context, id uint64) (model.Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ?`
	return scanInvoice(r.db.QueryRowContext(ctx, q, id))
}

// GetByReservation returns the invoice of a reservation or sql.ErrNoRows.
func (r *InvoiceRepo) GetByReservation(ctx context.Context, reservationID uint64) (model.Invoice, error) {
	q := `SELECT ` + invoiceColumns + ` FROM invoices WHERE reservation_id = ?`
	return scanInvoice(r.db.QueryRowContext(ctx, q, reservationID))
}

// List returns invoices newest first.
func (r *InvoiceRepo) List(ctx context.Context, p Page) ([]model.Invoice, error) {
	p = p.normalize()
	q := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Invoice, 0)
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
