package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/hotel-management/internal/model"
	"github.com/iliyamo/hotel-management/internal/utils"
)

// AgentRepo persists staff accounts.
type AgentRepo struct{ DB *sql.DB }

func NewAgentRepo(db *sql.DB) *AgentRepo { return &AgentRepo{DB: db} }

// Create hashes the password and inserts the agent, returning its ID.
// Usernames are case-insensitive; ErrDuplicate is returned when taken.
func (r *AgentRepo) Create(ctx context.Context, username, password, fullName string, cost int) (uint64, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO agents (username, password_hash, full_name, date_creation) VALUES (?,?,?,?)",
		username, hash, fullName, time.Now().UTC().Truncate(time.Second))
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches an agent by normalized username.
func (r *AgentRepo) GetByUsername(ctx context.Context, username string) (model.Agent, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	var a model.Agent
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password_hash,full_name,date_creation FROM agents WHERE username=? LIMIT 1",
		username).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.FullName, &a.DateCreation)
	return a, err
}

// GetByID fetches an agent by id.
func (r *AgentRepo) GetByID(ctx context.Context, id uint64) (model.Agent, error) {
	var a model.Agent
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,password_hash,full_name,date_creation FROM agents WHERE id=? LIMIT 1",
		id).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.FullName, &a.DateCreation)
	return a, err
}

// List returns all agents ordered by username.
func (r *AgentRepo) List(ctx context.Context) ([]model.Agent, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,username,password_hash,full_name,date_creation FROM agents ORDER BY username")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Agent, 0)
	for rows.Next() {
		var a model.Agent
		if err := rows.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.FullName, &a.DateCreation); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Delete removes an agent account.
func (r *AgentRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM agents WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
