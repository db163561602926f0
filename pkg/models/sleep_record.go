package models

import "database/sql"

// SleepRecord is a row of the sleep_records table
type SleepRecord struct {
	ID           int64           `db:"id"`
	UserID       int64           `db:"user_id"`
	SleepDate    string          `db:"sleep_date"` // YYYY-MM-DD
	SleepTime    sql.NullString  `db:"sleep_time"`
	WakeTime     sql.NullString  `db:"wake_time"`
	Duration     sql.NullFloat64 `db:"duration"`
	Quality      sql.NullInt64   `db:"sleep_quality"`
	Note         sql.NullString  `db:"note"`
	SleepInstant sql.NullFloat64 `db:"sleep_instant"`
	WakeInstant  sql.NullFloat64 `db:"wake_instant"`
}

// NewSleepRecord converts a cycle into its row form
func NewSleepRecord(userID int64, c *Cycle) SleepRecord {
	rec := SleepRecord{
		UserID:       userID,
		SleepDate:    c.Date,
		SleepTime:    sql.NullString{String: c.SleepTime, Valid: c.SleepTime != ""},
		WakeTime:     sql.NullString{String: c.WakeTime, Valid: c.WakeTime != ""},
		Quality:      sql.NullInt64{Int64: int64(c.Quality), Valid: true},
		SleepInstant: sql.NullFloat64{Float64: c.SleepInstant, Valid: true},
	}
	if c.DurationHours != nil {
		rec.Duration = sql.NullFloat64{Float64: *c.DurationHours, Valid: true}
	}
	if c.Notes != nil {
		rec.Note = sql.NullString{String: *c.Notes, Valid: true}
	}
	if c.WakeInstant != nil {
		rec.WakeInstant = sql.NullFloat64{Float64: *c.WakeInstant, Valid: true}
	}
	return rec
}

// Cycle converts the row back into a cycle
func (r SleepRecord) Cycle() *Cycle {
	c := &Cycle{
		Date:         r.SleepDate,
		Quality:      int(r.Quality.Int64),
		SleepTime:    r.SleepTime.String,
		WakeTime:     r.WakeTime.String,
		SleepInstant: r.SleepInstant.Float64,
	}
	if r.Note.Valid {
		note := r.Note.String
		c.Notes = &note
	}
	if r.WakeInstant.Valid {
		wake := r.WakeInstant.Float64
		c.WakeInstant = &wake
	}
	if r.Duration.Valid {
		d := r.Duration.Float64
		c.DurationHours = &d
	}
	return c
}
