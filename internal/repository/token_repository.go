package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SessionRepo keeps the list of session tokens revoked by logout
// (single 'token_hash' column).  Session tokens are otherwise stateless,
// so a token stays valid until it expires unless it is listed here.
type SessionRepo struct{ DB *sql.DB }

func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{DB: db} }

// Revoke records a token hash as revoked until exp.  Revoking the same
// token twice is a no-op.
func (r *SessionRepo) Revoke(ctx context.Context, tokenHash string, exp time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO revoked_sessions (token_hash, expires_at) VALUES (?,?)",
		tokenHash, exp.UTC())
	if isDuplicate(err) {
		return nil
	}
	return err
}

// IsRevoked reports whether the token hash was revoked.
func (r *SessionRepo) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM revoked_sessions WHERE token_hash=? LIMIT 1",
		tokenHash).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PurgeExpired drops entries whose token has expired anyway.
func (r *SessionRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM revoked_sessions WHERE expires_at < ?", now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
