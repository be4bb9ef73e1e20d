package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/hotel-management/internal/model"
)

// Dialect selects the small SQL differences between the production store
// (MySQL) and the embedded store used by tests (SQLite).
type Dialect int

const (
	DialectMySQL Dialect = iota
	DialectSQLite
)

// forUpdate returns the row-lock suffix for a SELECT inside a transaction.
// SQLite has no row locks; its transactions are opened with BEGIN
// IMMEDIATE instead, which serializes writers on the whole database.
func (d Dialect) forUpdate() string {
	if d == DialectSQLite {
		return ""
	}
	return " FOR UPDATE"
}

// ReservationRepo owns the reservations table and is the only writer of
// reservation status.  It performs no business validation: callers decide
// whether a status change is allowed.  All timestamps are stored in UTC.
type ReservationRepo struct {
	db      *sql.DB
	dialect Dialect
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// WithDialect switches the SQL dialect and returns the repo.
func (r *ReservationRepo) WithDialect(d Dialect) *ReservationRepo {
	r.dialect = d
	return r
}

// DB exposes the underlying handle so callers can open transactions that
// span several repositories.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationColumns = `id, customer_id, room_id, check_in, check_out, amount, discount, tva, status, date_creation`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(s rowScanner) (model.Reservation, error) {
	var (
		res    model.Reservation
		status string
	)
	err := s.Scan(&res.ID, &res.CustomerID, &res.RoomID, &res.CheckIn, &res.CheckOut,
		&res.Amount, &res.Discount, &res.TVA, &status, &res.DateCreation)
	if err != nil {
		return model.Reservation{}, err
	}
	res.Status = model.ReservationStatus(status)
	return res, nil
}

// GetStatus returns the current status of a reservation.  When no
// reservation with the given ID exists, sql.ErrNoRows is returned.
func (r *ReservationRepo) GetStatus(ctx context.Context, id uint64) (model.ReservationStatus, error) {
	var status string
	err := r.db.QueryRowContext(ctx, `SELECT status FROM reservations WHERE id = ?`, id).Scan(&status)
	if err != nil {
		return "", err
	}
	return model.ReservationStatus(status), nil
}

// GetStatusTx reads the status inside tx and locks the row until the
// transaction ends, so a precondition checked on the result still holds
// when the caller writes.
func (r *ReservationRepo) GetStatusTx(ctx context.Context, tx *sql.Tx, id uint64) (model.ReservationStatus, error) {
	q := `SELECT status FROM reservations WHERE id = ?` + r.dialect.forUpdate()
	var status string
	if err := tx.QueryRowContext(ctx, q, id).Scan(&status); err != nil {
		return "", err
	}
	return model.ReservationStatus(status), nil
}

// GetByIDTx loads and locks the full reservation row inside tx.
func (r *ReservationRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?` + r.dialect.forUpdate()
	return scanReservation(tx.QueryRowContext(ctx, q, id))
}

// SetStatusTx writes the status unconditionally.  sql.ErrNoRows is
// returned when no row was updated.
func (r *ReservationRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, id uint64, status model.ReservationStatus) error {
	result, err := tx.ExecContext(ctx, `UPDATE reservations SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// HasOverlapTx reports whether the room already holds a live reservation
// (pending or paid) whose stay intersects [checkIn, checkOut).  The caller
// is expected to have locked the room row first.
func (r *ReservationRepo) HasOverlapTx(ctx context.Context, tx *sql.Tx, roomID uint64, checkIn, checkOut time.Time) (bool, error) {
	const q = `SELECT COUNT(*) FROM reservations
			   WHERE room_id = ? AND status IN (?, ?) AND check_in < ? AND check_out > ?`
	var n int
	err := tx.QueryRowContext(ctx, q, roomID,
		string(model.StatusPending), string(model.StatusPaid),
		checkOut.UTC(), checkIn.UTC()).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateTx inserts a new pending reservation within the scope of an
// existing transaction and populates ID, Status and DateCreation on res.
// The caller must commit or rollback the transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (customer_id, room_id, check_in, check_out, amount, discount, tva, status, date_creation)
			   VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now().UTC().Truncate(time.Second)
	result, err := tx.ExecContext(ctx, q, res.CustomerID, res.RoomID, res.CheckIn.UTC(), res.CheckOut.UTC(),
		res.Amount, res.Discount, res.TVA, string(model.StatusPending), now)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	res.Status = model.StatusPending
	res.DateCreation = now
	return nil
}

// GetByID returns a single reservation or sql.ErrNoRows.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	return scanReservation(r.db.QueryRowContext(ctx, q, id))
}

// ReservationFilter narrows List.  Zero values mean "any".
type ReservationFilter struct {
	Status     model.ReservationStatus
	CustomerID uint64
	RoomID     uint64
	Page       Page
}

// List returns reservations newest first.  An empty slice (never nil) is
// returned when nothing matches.
func (r *ReservationRepo) List(ctx context.Context, f ReservationFilter) ([]model.Reservation, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.CustomerID != 0 {
		where = append(where, "customer_id = ?")
		args = append(args, f.CustomerID)
	}
	if f.RoomID != 0 {
		where = append(where, "room_id = ?")
		args = append(args, f.RoomID)
	}
	q := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	p := f.Page.normalize()
	q += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, p.Limit, p.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// ListByCustomer is List restricted to one customer.
func (r *ReservationRepo) ListByCustomer(ctx context.Context, customerID uint64, p Page) ([]model.Reservation, error) {
	return r.List(ctx, ReservationFilter{CustomerID: customerID, Page: p})
}
