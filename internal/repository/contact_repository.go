package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-management/internal/model"
)

// ContactRepo stores messages sent through the contact form.
type ContactRepo struct{ db *sql.DB }

func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

// Create inserts a new unhandled message.
func (r *ContactRepo) Create(ctx context.Context, m *model.ContactMessage) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO contact_messages (name, email, subject, message, handled, date_creation) VALUES (?,?,?,?,?,?)",
		m.Name, m.Email, m.Subject, m.Message, false, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	m.ID = uint64(id)
	m.Handled = false
	m.DateCreation = now
	return nil
}

// List returns messages newest first.  With unhandledOnly, messages that
// were already dealt with are skipped.
func (r *ContactRepo) List(ctx context.Context, unhandledOnly bool, p Page) ([]model.ContactMessage, error) {
	p = p.normalize()
	q := "SELECT id, name, email, subject, message, handled, date_creation FROM contact_messages"
	if unhandledOnly {
		q += " WHERE handled = FALSE"
	}
	q += " ORDER BY id DESC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, q, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.ContactMessage, 0)
	for rows.Next() {
		var m model.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.Handled, &m.DateCreation); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// MarkHandled flags a message as dealt with.
func (r *ContactRepo) MarkHandled(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE contact_messages SET handled=TRUE WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM contact_messages WHERE id=?", id).Scan(&one); err != nil {
			return err
		}
	}
	return nil
}

func (r *ContactRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM contact_messages WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
