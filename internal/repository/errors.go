// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. Missing
// rows are reported as sql.ErrNoRows, exactly as database/sql does.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrConflict is returned when a delete or update cannot be
// performed because of dependent records, such as deleting a
// customer that still has reservations. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrDuplicate is returned when an insert or update violates a
// unique key (customer email, room number, agent username, blog
// slug, invoice per reservation).
var ErrDuplicate = errors.New("duplicate entry")

const (
	mysqlDuplicateEntry  = 1062
	mysqlRowIsReferenced = 1451
)

// isDuplicate reports whether err is a unique-key violation.  The string
// check covers drivers other than MySQL (SQLite in tests).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDuplicateEntry
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// isReferenced reports whether err is a foreign-key violation caused by
// deleting a parent row that still has children.
func isReferenced(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlRowIsReferenced
	}
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// Page bounds a list query.
type Page struct {
	Limit  int
	Offset int
}

// normalize clamps the page to 1..100 rows, defaulting to 20.
func (p Page) normalize() Page {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
