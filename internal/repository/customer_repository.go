package repository

import (
	"context"      // context allows passing deadlines and cancellation signals to DB operations
	"database/sql" // sql provides generic database operations and drivers
	"strings"
	"time"

	"github.com/iliyamo/hotel-management/internal/model"
)

// CustomerRepo encapsulates all database queries related to customers.
type CustomerRepo struct {
	db *sql.DB // db is the underlying database connection pool
}

// NewCustomerRepo constructs a CustomerRepo with the provided DB handle.
func NewCustomerRepo(db *sql.DB) *CustomerRepo {
	return &CustomerRepo{db: db}
}

const customerColumns = `id, first_name, last_name, email, phone, address, date_creation`

func scanCustomer(s rowScanner) (model.Customer, error) {
	var c model.Customer
	err := s.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Address, &c.DateCreation)
	return c, err
}

// Create inserts a new customer and populates its ID and DateCreation.
// The email is normalized to lower case; ErrDuplicate is returned when it
// is already taken.
func (r *CustomerRepo) Create(ctx context.Context, c *model.Customer) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	now := time.Now().UTC().Truncate(time.Second)
	const q = `INSERT INTO customers (first_name, last_name, email, phone, address, date_creation) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.FirstName, c.LastName, c.Email, c.Phone, c.Address, now)
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
	c.ID = uint64(id)
	c.DateCreation = now
	return nil
}

// GetByID fetches a customer by its ID.  It returns sql.ErrNoRows if no
// row is found.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (model.Customer, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE id = ?`
	return scanCustomer(r.db.QueryRowContext(ctx, q, id))
}

// List returns customers ordered by last name.  When search is not empty
// it is matched against names and email.
func (r *CustomerRepo) List(ctx context.Context, search string, p Page) ([]model.Customer, error) {
	p = p.normalize()
	q := `SELECT ` + customerColumns + ` FROM customers`
	var args []any
	if s := strings.TrimSpace(search); s != "" {
		like := "%" + s + "%"
		q += ` WHERE first_name LIKE ? OR last_name LIKE ? OR email LIKE ?`
		args = append(args, like, like, like)
	}
	q += ` ORDER BY last_name, first_name, id LIMIT ? OFFSET ?`
	args = append(args, p.Limit, p.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update overwrites the mutable fields of a customer.  It returns
// sql.ErrNoRows when no row matches and ErrDuplicate on an email clash.
func (r *CustomerRepo) Update(ctx context.Context, c *model.Customer) error {
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	const q = `UPDATE customers SET first_name = ?, last_name = ?, email = ?, phone = ?, address = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, c.FirstName, c.LastName, c.Email, c.Phone, c.Address, c.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// MySQL reports 0 for an update that changes nothing, so confirm the row exists.
		if _, err := r.GetByID(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a customer.  Customers that still have reservations
// cannot be deleted and yield ErrConflict.
func (r *CustomerRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
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
