package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/sleepbot/pkg/models"
	"github.com/jmoiron/sqlx"
)

// Store is the durable home of users and their sleep diaries
type Store struct {
	db      *sqlx.DB
	users   *UserRepository
	records *SleepRecordRepository
}

// NewStore wraps an open connection
func NewStore(db *sqlx.DB) *Store {
	return &Store{
		db:      db,
		users:   NewUserRepository(db),
		records: NewSleepRecordRepository(db),
	}
}

// Open connects and returns a ready store
func Open(driver, dsn string) (*Store, error) {
	db, err := Connect(driver, dsn)
	if err != nil {
		return nil, err
	}
	return NewStore(db), nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// LoadUser hydrates a user with their whole diary. It returns nil, nil when
// the chat is unknown.
func (s *Store) LoadUser(ctx context.Context, chatID int64) (*models.User, error) {
	row, err := s.users.GetByID(ctx, chatID)
	if err != nil || row == nil {
		return nil, err
	}

	records, err := s.records.ListByUser(ctx, chatID)
	if err != nil {
		return nil, err
	}

	u := models.NewUser(row.ID, row.Name.String)
	u.IsSleeping = row.SleepStatus != 0
	// Rows come newest first; insert oldest first so the latest date is current.
	for i := len(records) - 1; i >= 0; i-- {
		u.PutCycle(records[i].Cycle())
	}
	return u, nil
}

// CreateUser registers a new chat
func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return s.users.Create(ctx, s.db, userRow(u))
}

// SaveUser writes the full user record, every cycle plus the sleep status,
// in one transaction.
func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := userRow(u)
	found, err := s.users.UpdateStatus(ctx, tx, row)
	if err != nil {
		return err
	}
	if !found {
		if err := s.users.Create(ctx, tx, row); err != nil {
			return err
		}
	}

	for _, c := range u.Cycles() {
		if err := s.records.Upsert(ctx, tx, models.NewSleepRecord(u.ChatID, c)); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user %d: %w", u.ChatID, err)
	}
	return nil
}

// ListOverdueSleepers returns chats still asleep in a cycle started before cutoff
func (s *Store) ListOverdueSleepers(ctx context.Context, cutoff float64) ([]int64, error) {
	return s.users.ListSleepingSince(ctx, cutoff)
}

// ListAwakeUsers returns chats that are not sleeping
func (s *Store) ListAwakeUsers(ctx context.Context) ([]int64, error) {
	return s.users.ListAwake(ctx)
}

func userRow(u *models.User) UserRow {
	return UserRow{
		ID:          u.ChatID,
		Name:        sql.NullString{String: u.DisplayName, Valid: u.DisplayName != ""},
		SleepStatus: sleepStatus(u.IsSleeping),
	}
}
