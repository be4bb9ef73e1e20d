package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-management/internal/database"
	"github.com/iliyamo/hotel-management/internal/metrics"
	"github.com/iliyamo/hotel-management/internal/model"
	"github.com/iliyamo/hotel-management/internal/repository"
)

const sqliteReservations = `CREATE TABLE reservations (
	id            INTEGER PRIMARY KEY,
	customer_id   INTEGER NOT NULL,
	room_id       INTEGER NOT NULL,
	check_in      DATETIME NOT NULL,
	check_out     DATETIME NOT NULL,
	amount        DECIMAL(10,2) NOT NULL,
	discount      DECIMAL(10,2) NOT NULL DEFAULT 0,
	tva           DECIMAL(10,2) NOT NULL DEFAULT 0,
	status        TEXT NOT NULL,
	date_creation DATETIME NOT NULL
)`

const sqliteInvoices = `CREATE TABLE invoices (
	id             INTEGER PRIMARY KEY,
	reservation_id INTEGER NOT NULL UNIQUE,
	code           TEXT NOT NULL UNIQUE,
	amount         DECIMAL(10,2) NOT NULL,
	status         TEXT NOT NULL,
	date_creation  DATETIME NOT NULL
)`

// openSQLite opens the development store in a temp dir.  Its transactions
// start with BEGIN IMMEDIATE, so concurrent writers queue on the busy
// timeout.
func openSQLite(t *testing.T, withInvoices bool) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hotel.db")
	db, err := database.OpenSQLite(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(sqliteReservations)
	require.NoError(t, err)
	if withInvoices {
		_, err = db.Exec(sqliteInvoices)
		require.NoError(t, err)
	}
	return db
}

func newSQLiteLifecycle(db *sql.DB) *Lifecycle {
	return NewLifecycle(db,
		repository.NewReservationRepo(db).WithDialect(repository.DialectSQLite),
		repository.NewInvoiceRepo(db),
		nil, metrics.New(), zerolog.Nop())
}

func seedReservation(t *testing.T, db *sql.DB, id uint64, status model.ReservationStatus) {
	t.Helper()
	in := time.Date(2026, 5, 10, 14, 0, 0, 0, time.UTC)
	_, err := db.Exec(`INSERT INTO reservations (id, customer_id, room_id, check_in, check_out, amount, discount, tva, status, date_creation)
		VALUES (?, 1, 1, ?, ?, '300.00', '0.00', '50.00', ?, ?)`,
		id, in, in.AddDate(0, 0, 3), string(status), in.AddDate(0, -1, 0))
	require.NoError(t, err)
}

func seedInvoice(t *testing.T, db *sql.DB, id, reservationID uint64) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO invoices (id, reservation_id, code, amount, status, date_creation) VALUES (?, ?, ?, '300.00', 'issued', ?)`,
		id, reservationID, fmt.Sprintf("FAC-%08d", id), time.Now().UTC())
	require.NoError(t, err)
}

func statusOf(t *testing.T, db *sql.DB, id uint64) model.ReservationStatus {
	t.Helper()
	st, err := repository.NewReservationRepo(db).GetStatus(context.Background(), id)
	require.NoError(t, err)
	return st
}

func invoiceCount(t *testing.T, db *sql.DB, reservationID uint64) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM invoices WHERE reservation_id = ?`, reservationID).Scan(&n))
	return n
}

func invoiceExists(t *testing.T, db *sql.DB, id uint64) bool {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM invoices WHERE id = ?`, id).Scan(&n))
	return n == 1
}

func TestSQLiteCheckoutThenCancelKeepsInvoice(t *testing.T) {
	db := openSQLite(t, true)
	lc := newSQLiteLifecycle(db)
	ctx := context.Background()
	seedReservation(t, db, 42, model.StatusPaid)
	seedInvoice(t, db, 7, 42)

	st, err := lc.Checkout(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFinished, st)
	assert.True(t, invoiceExists(t, db, 7))

	_, err = lc.Cancel(ctx, 42)
	require.ErrorIs(t, err, ErrAlreadyFinished)
	assert.True(t, invoiceExists(t, db, 7))
	assert.Equal(t, model.StatusFinished, statusOf(t, db, 42))
}

func TestSQLiteCancelPendingWithoutInvoice(t *testing.T) {
	db := openSQLite(t, true)
	lc := newSQLiteLifecycle(db)
	seedReservation(t, db, 99, model.StatusPending)

	st, err := lc.Cancel(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCanceled, st)
	assert.Equal(t, model.StatusCanceled, statusOf(t, db, 99))
	assert.Zero(t, invoiceCount(t, db, 99))
}

func TestSQLiteCancelPaidRemovesInvoice(t *testing.T) {
	db := openSQLite(t, true)
	lc := newSQLiteLifecycle(db)
	seedReservation(t, db, 5, model.StatusPaid)
	seedInvoice(t, db, 50, 5)

	_, err := lc.Cancel(context.Background(), 5)
	require.NoError(t, err)
	assert.Zero(t, invoiceCount(t, db, 5))
}

func TestSQLiteRejectionsLeaveStateUnchanged(t *testing.T) {
	db := openSQLite(t, true)
	lc := newSQLiteLifecycle(db)
	ctx := context.Background()
	seedReservation(t, db, 1, model.StatusCanceled)
	seedReservation(t, db, 2, model.StatusPending)
	seedReservation(t, db, 3, model.StatusFinished)
	seedInvoice(t, db, 30, 3)

	_, err := lc.Cancel(ctx, 1)
	require.ErrorIs(t, err, ErrAlreadyCanceled)
	assert.Equal(t, model.StatusCanceled, statusOf(t, db, 1))

	_, err = lc.Checkout(ctx, 2)
	require.ErrorIs(t, err, ErrNotPaid)
	assert.Equal(t, model.StatusPending, statusOf(t, db, 2))

	_, err = lc.Checkout(ctx, 3)
	require.ErrorIs(t, err, ErrNotPaid)
	assert.Equal(t, model.StatusFinished, statusOf(t, db, 3))
	assert.Equal(t, 1, invoiceCount(t, db, 3))

	_, err = lc.Cancel(ctx, 1000)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = lc.Checkout(ctx, 1000)
	require.ErrorIs(t, err, ErrNotFound)
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM reservations`).Scan(&n))
	assert.Equal(t, 3, n)
}

func TestSQLiteFaultAfterStatusWriteRollsBack(t *testing.T) {
	// Without an invoices table the DELETE fails after the status UPDATE
	// has already run inside the transaction.
	db := openSQLite(t, false)
	lc := newSQLiteLifecycle(db)
	seedReservation(t, db, 77, model.StatusPending)

	_, err := lc.Cancel(context.Background(), 77)
	require.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, model.StatusPending, statusOf(t, db, 77))
}

func TestSQLiteConcurrentCancelsFirstWins(t *testing.T) {
	db := openSQLite(t, true)
	lc := newSQLiteLifecycle(db)
	seedReservation(t, db, 500, model.StatusPending)

	const n = 12
	var (
		wg       sync.WaitGroup
		start    = make(chan struct{})
		errs     = make([]error, n)
		statuses = make([]model.ReservationStatus, n)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			statuses[i], errs[i] = lc.Cancel(context.Background(), 500)
		}(i)
	}
	close(start)
	wg.Wait()

	var ok, already int
	for i, err := range errs {
		switch {
		case err == nil:
			ok++
			assert.Equal(t, model.StatusCanceled, statuses[i])
		case errors.Is(err, ErrAlreadyCanceled):
			already++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, already)
	assert.Equal(t, model.StatusCanceled, statusOf(t, db, 500))
	assert.Zero(t, invoiceCount(t, db, 500))
}

func TestSQLiteMarkPaidThenCancel(t *testing.T) {
	db := openSQLite(t, true)
	lc := newSQLiteLifecycle(db)
	ctx := context.Background()
	seedReservation(t, db, 60, model.StatusPending)

	st, err := lc.MarkPaid(ctx, 60)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, st)
	inv, err := repository.NewInvoiceRepo(db).GetByReservation(ctx, 60)
	require.NoError(t, err)
	assert.Equal(t, "300", inv.Amount.String())
	assert.Equal(t, model.InvoiceIssued, inv.Status)

	_, err = lc.MarkPaid(ctx, 60)
	require.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Equal(t, 1, invoiceCount(t, db, 60))

	_, err = lc.Cancel(ctx, 60)
	require.NoError(t, err)
	assert.Zero(t, invoiceCount(t, db, 60))
}

func TestSQLiteCanceledContextIsInternal(t *testing.T) {
	db := openSQLite(t, true)
	lc := newSQLiteLifecycle(db)
	seedReservation(t, db, 70, model.StatusPending)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := lc.Cancel(ctx, 70)
	require.ErrorIs(t, err, ErrInternal)
	assert.Equal(t, model.StatusPending, statusOf(t, db, 70))
}
