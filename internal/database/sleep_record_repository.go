package database

import (
	"context"
	"fmt"

	"github.com/example/sleepbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

// SleepRecordRepository handles database operations for sleep records
type SleepRecordRepository struct {
	db *sqlx.DB
}

// NewSleepRecordRepository creates a new repository instance
func NewSleepRecordRepository(db *sqlx.DB) *SleepRecordRepository {
	return &SleepRecordRepository{db: db}
}

// ListByUser returns all records of a user, newest date first
func (r *SleepRecordRepository) ListByUser(ctx context.Context, userID int64) ([]models.SleepRecord, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, sleep_date, sleep_time, wake_time, duration,
		       sleep_quality, note, sleep_instant, wake_instant
		FROM sleep_records
		WHERE user_id = ?
		ORDER BY sleep_date DESC
	`)
	var records []models.SleepRecord
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get sleep records: %w", err)
	}
	return records, nil
}

// Upsert writes a record, replacing the one with the same (user_id, sleep_date)
func (r *SleepRecordRepository) Upsert(ctx context.Context, q sqlx.ExtContext, rec models.SleepRecord) error {
	query := `
		INSERT INTO sleep_records (
			user_id, sleep_date, sleep_time, wake_time, duration,
			sleep_quality, note, sleep_instant, wake_instant
		) VALUES (
			:user_id, :sleep_date, :sleep_time, :wake_time, :duration,
			:sleep_quality, :note, :sleep_instant, :wake_instant
		)
		ON CONFLICT (user_id, sleep_date) DO UPDATE SET
			sleep_time = excluded.sleep_time,
			wake_time = excluded.wake_time,
			duration = excluded.duration,
			sleep_quality = excluded.sleep_quality,
			note = excluded.note,
			sleep_instant = excluded.sleep_instant,
			wake_instant = excluded.wake_instant
	`
	if _, err := sqlx.NamedExecContext(ctx, q, query, rec); err != nil {
		return fmt.Errorf("failed to upsert sleep record %s: %w", rec.SleepDate, err)
	}
	return nil
}
