package tracker

import (
	"fmt"

	"github.com/example/sleepbot/pkg/models"
)

// NoNotes is shown in place of notes that were never written
const NoNotes = "none"

// Summary is a display-ready view of one cycle
type Summary struct {
	Date          string
	SleepTime     string
	WakeTime      string // empty while the cycle is open
	DurationHours float64
	Quality       int // 0 when unrated
	Notes         string
}

// Summarize projects the cycle stored at date. It never mutates u.
func Summarize(u *models.User, date string) (Summary, error) {
	c, ok := u.Cycle(date)
	if !ok {
		return Summary{}, fmt.Errorf("%w: no cycle on %s", ErrNotFound, date)
	}

	s := Summary{
		Date:      date,
		SleepTime: c.SleepTime,
		WakeTime:  c.WakeTime,
		Quality:   c.Quality,
		Notes:     NoNotes,
	}
	if c.DurationHours != nil {
		s.DurationHours = *c.DurationHours
	}
	if c.Notes != nil {
		s.Notes = *c.Notes
	}
	return s, nil
}

// ListDates returns every cycle date in iteration order
func ListDates(u *models.User) []string {
	return u.Dates()
}
