package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UserRow is a row of the users table
type UserRow struct {
	ID          int64          `db:"id"`
	Name        sql.NullString `db:"name"`
	SleepStatus int            `db:"sleep_status"` // 0 awake, 1 sleeping
}

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns a user row, or nil when the user is unknown
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*UserRow, error) {
	var row UserRow
	query := r.db.Rebind("SELECT id, name, sleep_status FROM users WHERE id = ?")
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return &row, nil
}

// Create registers a user; an existing row is left untouched
func (r *UserRepository) Create(ctx context.Context, q sqlx.ExtContext, row UserRow) error {
	query := r.db.Rebind(`
		INSERT INTO users (id, name, sleep_status)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO NOTHING
	`)
	if _, err := q.ExecContext(ctx, query, row.ID, row.Name, row.SleepStatus); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateStatus writes the name and sleep status; it reports whether the row existed
func (r *UserRepository) UpdateStatus(ctx context.Context, q sqlx.ExtContext, row UserRow) (bool, error) {
	query := r.db.Rebind("UPDATE users SET name = ?, sleep_status = ? WHERE id = ?")
	res, err := q.ExecContext(ctx, query, row.Name, row.SleepStatus, row.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n > 0, nil
}

// ListAwake returns the IDs of users that are not sleeping
func (r *UserRepository) ListAwake(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, "SELECT id FROM users WHERE sleep_status = 0 ORDER BY id"); err != nil {
		return nil, fmt.Errorf("failed to list awake users: %w", err)
	}
	return ids, nil
}

// ListSleepingSince returns sleeping users whose open cycle started before cutoff
// (seconds since epoch).
func (r *UserRepository) ListSleepingSince(ctx context.Context, cutoff float64) ([]int64, error) {
	query := r.db.Rebind(`
		SELECT DISTINCT u.id
		FROM users u
		JOIN sleep_records s ON s.user_id = u.id
		WHERE u.sleep_status = 1
		  AND s.wake_instant IS NULL
		  AND s.sleep_instant < ?
		ORDER BY u.id
	`)
	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query, cutoff); err != nil {
		return nil, fmt.Errorf("failed to list sleeping users: %w", err)
	}
	return ids, nil
}

func sleepStatus(sleeping bool) int {
	if sleeping {
		return 1
	}
	return 0
}
