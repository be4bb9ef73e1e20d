package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-management/internal/model"
)

// FAQRepo stores the public FAQ list.
type FAQRepo struct{ db *sql.DB }

func NewFAQRepo(db *sql.DB) *FAQRepo { return &FAQRepo{db: db} }

// Create inserts an entry and fills in ID and DateCreation.
func (r *FAQRepo) Create(ctx context.Context, f *model.FAQ) error {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO faqs (question, answer, position, date_creation) VALUES (?,?,?,?)",
		f.Question, f.Answer, f.Position, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	f.DateCreation = now
	return nil
}

// List returns every entry ordered by position.
func (r *FAQRepo) List(ctx context.Context) ([]model.FAQ, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, question, answer, position, date_creation FROM faqs ORDER BY position, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.FAQ, 0)
	for rows.Next() {
		var f model.FAQ
		if err := rows.Scan(&f.ID, &f.Question, &f.Answer, &f.Position, &f.DateCreation); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Update overwrites question, answer and position.  Returns sql.ErrNoRows
// when the entry does not exist.
func (r *FAQRepo) Update(ctx context.Context, f *model.FAQ) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE faqs SET question=?, answer=?, position=? WHERE id=?",
		f.Question, f.Answer, f.Position, f.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, "SELECT 1 FROM faqs WHERE id=?", f.ID).Scan(&one); err != nil {
			return err
		}
	}
	return nil
}

func (r *FAQRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM faqs WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
