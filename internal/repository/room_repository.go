package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-management/internal/model"
)

// RoomRepo manages the room inventory.
type RoomRepo struct {
	db      *sql.DB
	dialect Dialect
}

// NewRoomRepo constructs a RoomRepo with the provided DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// WithDialect switches the SQL dialect and returns the repo.
func (r *RoomRepo) WithDialect(d Dialect) *RoomRepo {
	r.dialect = d
	return r
}

const roomColumns = `id, number, type, capacity, price, description, available, date_creation`

func scanRoom(s rowScanner) (model.Room, error) {
	var rm model.Room
	err := s.Scan(&rm.ID, &rm.Number, &rm.Type, &rm.Capacity, &rm.Price, &rm.Description, &rm.Available, &rm.DateCreation)
	return rm, err
}

// Create inserts a room.  ErrDuplicate is returned when the number is taken.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	now := time.Now().UTC().Truncate(time.Second)
	const q = `INSERT INTO rooms (number, type, capacity, price, description, available, date_creation) VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rm.Number, rm.Type, rm.Capacity, rm.Price, rm.Description, rm.Available, now)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	rm.DateCreation = now
	return nil
}

// GetByID fetches a room or returns sql.ErrNoRows.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	return scanRoom(r.db.QueryRowContext(ctx, q, id))
}

// GetByIDTx fetches and locks a room inside tx.  Reservation creation
// locks the room so two overlapping bookings cannot both pass the overlap
// check.
func (r *RoomRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Room, error) {
	q := `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?` + r.dialect.forUpdate()
	return scanRoom(tx.QueryRowContext(ctx, q, id))
}

// List returns rooms ordered by number.  availableOnly hides rooms that
// are out of service.
func (r *RoomRepo) List(ctx context.Context, availableOnly bool, p Page) ([]model.Room, error) {
	p = p.normalize()
	q := `SELECT ` + roomColumns + ` FROM rooms`
	if availableOnly {
		q += ` WHERE available = TRUE`
	}
	q += ` ORDER BY number LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

// Update overwrites the mutable fields of a room.
func (r *RoomRepo) Update(ctx context.Context, rm *model.Room) error {
	const q = `UPDATE rooms SET number = ?, type = ?, capacity = ?, price = ?, description = ?, available = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, rm.Number, rm.Type, rm.Capacity, rm.Price, rm.Description, rm.Available, rm.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, rm.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a room.  Rooms referenced by reservations yield ErrConflict.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		if isReferenced(err) {
			return ErrConflict
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
