package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/hotel-management/internal/model"
)

// BlogRepo stores blog posts.
type BlogRepo struct{ db *sql.DB }

func NewBlogRepo(db *sql.DB) *BlogRepo { return &BlogRepo{db: db} }

const blogColumns = `id, title, slug, content, author, published, date_creation`

func scanBlog(s rowScanner) (model.BlogPost, error) {
	var b model.BlogPost
	err := s.Scan(&b.ID, &b.Title, &b.Slug, &b.Content, &b.Author, &b.Published, &b.DateCreation)
	return b, err
}

// Create inserts a post.  The slug must already be set; ErrDuplicate is
// returned when it is taken.
func (r *BlogRepo) Create(ctx context.Context, b *model.BlogPost) error {
	now := time.Now().UTC().Truncate(time.Second)
	const q = `INSERT INTO blog_posts (title, slug, content, author, published, date_creation) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, b.Title, b.Slug, b.Content, b.Author, b.Published, now)
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
	b.ID = uint64(id)
	b.DateCreation = now
	return nil
}

func (r *BlogRepo) GetByID(ctx context.Context, id uint64) (model.BlogPost, error) {
	return scanBlog(r.db.QueryRowContext(ctx, `SELECT `+blogColumns+` FROM blog_posts WHERE id = ?`, id))
}

// GetBySlug returns a published post by slug or sql.ErrNoRows.
func (r *BlogRepo) GetBySlug(ctx context.Context, slug string) (model.BlogPost, error) {
	q := `SELECT ` + blogColumns + ` FROM blog_posts WHERE slug = ? AND published = TRUE`
	return scanBlog(r.db.QueryRowContext(ctx, q, slug))
}

// List returns posts newest first.
func (r *BlogRepo) List(ctx context.Context, publishedOnly bool, p Page) ([]model.BlogPost, error) {
	p = p.normalize()
	q := `SELECT ` + blogColumns + ` FROM blog_posts`
	if publishedOnly {
		q += ` WHERE published = TRUE`
	}
	q += ` ORDER BY date_creation DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, q, p.Limit, p.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BlogPost, 0)
	for rows.Next() {
		b, err := scanBlog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update overwrites title, slug, content, author and published.
func (r *BlogRepo) Update(ctx context.Context, b *model.BlogPost) error {
	const q = `UPDATE blog_posts SET title = ?, slug = ?, content = ?, author = ?, published = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, b.Title, b.Slug, b.Content, b.Author, b.Published, b.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := r.GetByID(ctx, b.ID); err != nil {
			return err
		}
	}
	return nil
}

func (r *BlogRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blog_posts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
