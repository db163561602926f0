package tracker

import (
	"context"
	"fmt"
	"time"

	"github.com/example/sleepbot/internal/session"
	"github.com/example/sleepbot/pkg/models"
	"github.com/rs/zerolog"
)

// Clock returns the current time
type Clock func() time.Time

// Store persists the full user record
type Store interface {
	SaveUser(ctx context.Context, u *models.User) error
}

// Tracker runs state machine transitions against cached users and commits
// every change to the store before returning. If the store rejects a write,
// the in-memory user is rolled back so cache and store stay in agreement.
type Tracker struct {
	cache *session.Cache
	store Store
	clock Clock
	loc   *time.Location
	log   zerolog.Logger
}

// Option configures a Tracker
type Option func(*Tracker)

// WithClock overrides the time source
func WithClock(c Clock) Option {
	return func(t *Tracker) { t.clock = c }
}

// WithLocation sets the zone used for calendar dates and display times
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) { t.loc = loc }
}

// New creates a tracker
func New(cache *session.Cache, store Store, log zerolog.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		cache: cache,
		store: store,
		clock: time.Now,
		loc:   time.Local,
		log:   log.With().Str("component", "tracker").Logger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start registers or loads the chat and returns a snapshot of the user. A
// user first seen without a name gets nameHint recorded now.
func (t *Tracker) Start(ctx context.Context, chatID int64, nameHint string) (*models.User, error) {
	var snapshot *models.User
	err := t.mutateAs(ctx, chatID, nameHint, "start", func(u *models.User, _ time.Time) (bool, error) {
		changed := false
		if u.DisplayName == "" && nameHint != "" {
			u.DisplayName = nameHint
			changed = true
		}
		snapshot = u.Clone()
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

// Sleep handles a request to go to sleep
func (t *Tracker) Sleep(ctx context.Context, chatID int64) (SleepOutcome, *models.Cycle, error) {
	var (
		outcome SleepOutcome
		cycle   *models.Cycle
	)
	err := t.mutate(ctx, chatID, "sleep", func(u *models.User, now time.Time) (bool, error) {
		var c *models.Cycle
		outcome, c = RequestSleep(u, now)
		if c == nil {
			return false, nil
		}
		cycle = c.Clone()
		return true, nil
	})
	if err != nil {
		return 0, nil, err
	}
	return outcome, cycle, nil
}

// ConfirmNewCycle starts a new cycle after an overwrite prompt. It reports
// ConfirmOverwrite without a cycle when the user has to be asked again.
func (t *Tracker) ConfirmNewCycle(ctx context.Context, chatID int64) (SleepOutcome, *models.Cycle, error) {
	var (
		outcome SleepOutcome
		cycle   *models.Cycle
	)
	err := t.mutate(ctx, chatID, "confirm_new_cycle", func(u *models.User, now time.Time) (bool, error) {
		o, c, err := ConfirmPendingOverwrite(u, now)
		if err != nil {
			return false, err
		}
		outcome = o
		if c == nil {
			return false, nil
		}
		cycle = c.Clone()
		return true, nil
	})
	if err != nil {
		return 0, nil, err
	}
	return outcome, cycle, nil
}

// KeepPrevious declines a pending overwrite and returns the kept date
func (t *Tracker) KeepPrevious(ctx context.Context, chatID int64) (string, error) {
	var date string
	err := t.mutate(ctx, chatID, "keep_previous", func(u *models.User, _ time.Time) (bool, error) {
		d, err := KeepPrevious(u)
		date = d
		return false, err
	})
	return date, err
}

// Wake finishes the open cycle
func (t *Tracker) Wake(ctx context.Context, chatID int64) (*models.Cycle, error) {
	var cycle *models.Cycle
	err := t.mutate(ctx, chatID, "wake", func(u *models.User, now time.Time) (bool, error) {
		c, err := EndSleep(u, now)
		if err != nil {
			return false, err
		}
		cycle = c.Clone()
		return true, nil
	})
	return cycle, err
}

// Quality rates the latest finished cycle
func (t *Tracker) Quality(ctx context.Context, chatID int64, arg string) (*models.Cycle, error) {
	var cycle *models.Cycle
	err := t.mutate(ctx, chatID, "quality", func(u *models.User, _ time.Time) (bool, error) {
		c, err := RateQuality(u, arg)
		if err != nil {
			return false, err
		}
		cycle = c.Clone()
		return true, nil
	})
	return cycle, err
}

// Notes annotates the latest cycle
func (t *Tracker) Notes(ctx context.Context, chatID int64, text string) (*models.Cycle, error) {
	var cycle *models.Cycle
	err := t.mutate(ctx, chatID, "notes", func(u *models.User, _ time.Time) (bool, error) {
		c, err := AddNotes(u, text)
		if err != nil {
			return false, err
		}
		cycle = c.Clone()
		return true, nil
	})
	return cycle, err
}

// StatsDates lists the dates that have a cycle
func (t *Tracker) StatsDates(ctx context.Context, chatID int64) ([]string, error) {
	var dates []string
	err := t.view(ctx, chatID, "", func(u *models.User) error {
		dates = ListDates(u)
		return nil
	})
	return dates, err
}

// StatsDetail summarises the cycle stored at date
func (t *Tracker) StatsDetail(ctx context.Context, chatID int64, date string) (Summary, error) {
	var summary Summary
	err := t.view(ctx, chatID, "", func(u *models.User) error {
		s, err := Summarize(u, date)
		summary = s
		return err
	})
	return summary, err
}

// Snapshot returns a deep copy of the user
func (t *Tracker) Snapshot(ctx context.Context, chatID int64) (*models.User, error) {
	var snapshot *models.User
	err := t.view(ctx, chatID, "", func(u *models.User) error {
		snapshot = u.Clone()
		return nil
	})
	return snapshot, err
}

func (t *Tracker) now() time.Time {
	return t.clock().In(t.loc)
}

func (t *Tracker) view(ctx context.Context, chatID int64, nameHint string, fn func(u *models.User) error) error {
	err := t.cache.With(ctx, chatID, nameHint, fn)
	if err != nil && !IsUserError(err) {
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return err
}

// mutate applies fn under the user's lock. fn reports whether it changed
// durable state; if so the whole user is saved, and a failed save restores
// the pre-operation snapshot.
func (t *Tracker) mutate(ctx context.Context, chatID int64, op string, fn func(u *models.User, now time.Time) (bool, error)) error {
	return t.mutateAs(ctx, chatID, "", op, fn)
}

// mutateAs is mutate with a name to register the chat under on first contact
func (t *Tracker) mutateAs(ctx context.Context, chatID int64, nameHint, op string, fn func(u *models.User, now time.Time) (bool, error)) error {
	var saveErr error
	err := t.cache.With(ctx, chatID, nameHint, func(u *models.User) error {
		before := u.Clone()

		changed, err := fn(u, t.now())
		if err != nil {
			t.log.Debug().Int64("chat_id", chatID).Str("op", op).Err(err).Msg("transition rejected")
			return err
		}
		if !changed {
			return nil
		}

		if err := t.store.SaveUser(ctx, u); err != nil {
			u.Restore(before)
			saveErr = err
			return fmt.Errorf("%w: %s for chat %d: %v", ErrStorageFailure, op, chatID, err)
		}

		t.log.Debug().Int64("chat_id", chatID).Str("op", op).Bool("sleeping", u.IsSleeping).Msg("transition committed")
		return nil
	})

	if saveErr != nil {
		t.log.Error().Int64("chat_id", chatID).Str("op", op).Err(saveErr).Msg("failed to persist user, change rolled back")
		return err
	}
	if err != nil && !IsUserError(err) {
		// the cache could not hydrate the user
		t.log.Error().Int64("chat_id", chatID).Str("op", op).Err(err).Msg("failed to load user")
		return fmt.Errorf("%w: %v", ErrStorageFailure, err)
	}
	return err
}
