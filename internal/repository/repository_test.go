package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-management/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestGetStatus(t *testing.T) {
	db, mock := newMock(t)
	repo := NewReservationRepo(db)

	mock.ExpectQuery(`SELECT status FROM reservations WHERE id = \?$`).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("paid"))
	st, err := repo.GetStatus(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPaid, st)

	mock.ExpectQuery(`SELECT status FROM reservations`).WillReturnError(sql.ErrNoRows)
	_, err = repo.GetStatus(context.Background(), 4)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetStatusTxLocksPerDialect(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status FROM reservations WHERE id = \? FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
	mock.ExpectQuery(`SELECT status FROM reservations WHERE id = \?$`).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	_, err = NewReservationRepo(db).GetStatusTx(ctx, tx, 1)
	require.NoError(t, err)
	_, err = NewReservationRepo(db).WithDialect(DialectSQLite).GetStatusTx(ctx, tx, 1)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatusTxMissingRow(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE reservations SET status = \? WHERE id = \?`).
		WithArgs("canceled", 9).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	err = NewReservationRepo(db).SetStatusTx(ctx, tx, 9, model.StatusCanceled)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListBuildsFilterAndClampsPage(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM reservations WHERE status = \? AND room_id = \? ORDER BY id DESC LIMIT \? OFFSET \?`).
		WithArgs("pending", 2, 100, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	list, err := NewReservationRepo(db).List(context.Background(), ReservationFilter{
		Status: model.StatusPending, RoomID: 2, Page: Page{Limit: 500, Offset: -3},
	})
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInvoiceCreateTxDuplicate(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO invoices`).
		WillReturnError(&mysql.MySQLError{Number: mysqlDuplicateEntry, Message: "Duplicate entry"})
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	err = NewInvoiceRepo(db).CreateTx(ctx, tx, &model.Invoice{ReservationID: 1, Code: "INV-1"})
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, tx.Rollback())
}

func TestInvoiceDeleteByReservationTolerantOfNoRow(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM invoices WHERE reservation_id = \?`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, NewInvoiceRepo(db).DeleteByReservationTx(ctx, tx, 5))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerDeleteMapsErrors(t *testing.T) {
	db, mock := newMock(t)
	repo := NewCustomerRepo(db)

	mock.ExpectExec(`DELETE FROM customers`).
		WillReturnError(&mysql.MySQLError{Number: mysqlRowIsReferenced, Message: "row is referenced"})
	assert.ErrorIs(t, repo.Delete(context.Background(), 1), ErrConflict)

	mock.ExpectExec(`DELETE FROM customers`).WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), 2), sql.ErrNoRows)

	mock.ExpectExec(`DELETE FROM customers`).WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo(t *testing.T) {
	db, mock := newMock(t)
	repo := NewSessionRepo(db)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO revoked_sessions`).
		WillReturnError(errors.New("UNIQUE constraint failed: revoked_sessions.token_hash"))
	assert.NoError(t, repo.Revoke(ctx, "h1", time.Now()))

	mock.ExpectQuery(`SELECT 1 FROM revoked_sessions`).WithArgs("h1").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	revoked, err := repo.IsRevoked(ctx, "h1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mock.ExpectQuery(`SELECT 1 FROM revoked_sessions`).WithArgs("h2").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	revoked, err = repo.IsRevoked(ctx, "h2")
	require.NoError(t, err)
	assert.False(t, revoked)

	mock.ExpectExec(`DELETE FROM revoked_sessions WHERE expires_at < \?`).
		WillReturnResult(sqlmock.NewResult(0, 4))
	n, err := repo.PurgeExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, Page{Limit: 20}, Page{}.normalize())
	assert.Equal(t, Page{Limit: 100, Offset: 5}, Page{Limit: 101, Offset: 5}.normalize())
}
