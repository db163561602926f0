// Package tracker implements the sleep-cycle state machine.
//
// A user is AWAKE when IsSleeping is false and ASLEEP when it is true; in the
// latter case the most recently inserted cycle is the open one. The functions
// in this file are pure transitions on a *models.User: they validate first and
// only mutate once the transition is known to be legal. Tracker adds locking
// and persistence on top.
package tracker

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/example/sleepbot/pkg/models"
)

const (
	MinQuality = 1
	MaxQuality = 10
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// SleepOutcome is the result of asking to go to sleep
type SleepOutcome int

const (
	SleepStarted SleepOutcome = iota
	AlreadySleeping
	ConfirmOverwrite
)

func (o SleepOutcome) String() string {
	switch o {
	case SleepStarted:
		return "started"
	case AlreadySleeping:
		return "already_sleeping"
	case ConfirmOverwrite:
		return "confirm_overwrite"
	default:
		return "unknown"
	}
}

// DateOf formats the calendar date used as a cycle key
func DateOf(t time.Time) string {
	return t.Format(dateLayout)
}

// Instant converts t to fractional seconds since the epoch
func Instant(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// RequestSleep decides what a sleep command means for u at now. A date that
// already has a cycle is not overwritten; instead the date is parked in
// u.PendingOverwrite and ConfirmOverwrite is returned.
func RequestSleep(u *models.User, now time.Time) (SleepOutcome, *models.Cycle) {
	if u.IsSleeping {
		return AlreadySleeping, nil
	}
	today := DateOf(now)
	if u.HasCycle(today) {
		u.PendingOverwrite = today
		return ConfirmOverwrite, nil
	}
	return SleepStarted, BeginSleep(u, today, now)
}

// BeginSleep unconditionally starts a new cycle for date, replacing any cycle
// already stored there. Callers are expected to have checked that u is awake.
func BeginSleep(u *models.User, date string, now time.Time) *models.Cycle {
	c := &models.Cycle{
		Date:         date,
		SleepTime:    now.Format(timeLayout),
		SleepInstant: Instant(now),
	}
	u.PutCycle(c)
	u.IsSleeping = true
	u.PendingOverwrite = ""
	return c
}

// ConfirmPendingOverwrite starts a new cycle after the user agreed to an
// overwrite. The cycle is keyed by the date at confirmation, not the date the
// prompt was raised for. If the day has rolled over onto another date that
// already holds a cycle, the user is asked again about that date.
func ConfirmPendingOverwrite(u *models.User, now time.Time) (SleepOutcome, *models.Cycle, error) {
	if u.PendingOverwrite == "" {
		return 0, nil, fmt.Errorf("%w: no overwrite is awaiting confirmation", ErrInvalidTransition)
	}
	if u.IsSleeping {
		return 0, nil, fmt.Errorf("%w: a cycle is already open", ErrInvalidTransition)
	}

	today := DateOf(now)
	if today != u.PendingOverwrite && u.HasCycle(today) {
		u.PendingOverwrite = today
		return ConfirmOverwrite, nil, nil
	}
	return SleepStarted, BeginSleep(u, today, now), nil
}

// KeepPrevious drops a pending overwrite and returns the date whose record was
// left untouched, which is the date the user was asked about
func KeepPrevious(u *models.User) (string, error) {
	date := u.PendingOverwrite
	if date == "" {
		return "", fmt.Errorf("%w: no overwrite is awaiting confirmation", ErrInvalidTransition)
	}
	u.PendingOverwrite = ""
	return date, nil
}

// EndSleep finishes the open cycle
func EndSleep(u *models.User, now time.Time) (*models.Cycle, error) {
	if !u.IsSleeping {
		return nil, fmt.Errorf("%w: no open cycle to end", ErrInvalidTransition)
	}
	c, ok := u.Current()
	if !ok {
		return nil, fmt.Errorf("%w: sleeping without a recorded cycle", ErrInvalidTransition)
	}
	c.Finish(Instant(now), now.Format(timeLayout))
	u.IsSleeping = false
	return c, nil
}

// RateQuality sets the quality of the latest finished cycle. arg is the text
// following the command; its first word must be an integer in [1,10].
func RateQuality(u *models.User, arg string) (*models.Cycle, error) {
	c, ok := u.Current()
	if !ok || u.IsSleeping {
		return nil, fmt.Errorf("%w: finish a sleep cycle before rating it", ErrInvalidTransition)
	}

	fields := strings.Fields(arg)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: quality value is missing", ErrInvalidInput)
	}
	value, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, fmt.Errorf("%w: quality %q is not a number", ErrInvalidInput, fields[0])
	}
	if value < MinQuality || value > MaxQuality {
		return nil, fmt.Errorf("%w: quality %d is outside %d-%d", ErrInvalidInput, value, MinQuality, MaxQuality)
	}

	c.Quality = value
	return c, nil
}

// AddNotes attaches free text to the latest cycle. Rating first is not required.
func AddNotes(u *models.User, text string) (*models.Cycle, error) {
	c, ok := u.Current()
	if !ok {
		return nil, fmt.Errorf("%w: there is no cycle to annotate", ErrInvalidTransition)
	}

	notes := strings.Join(strings.Fields(text), " ")
	if notes == "" {
		return nil, fmt.Errorf("%w: notes are empty", ErrInvalidInput)
	}

	c.Notes = &notes
	return c, nil
}
