package models

import "math"

// Cycle is one sleep/wake episode, keyed by the calendar date it was started on
type Cycle struct {
	Date          string   `json:"date"`
	Quality       int      `json:"quality"`                  // 0 = not rated yet
	Notes         *string  `json:"notes,omitempty"`          // nil until set
	SleepTime     string   `json:"sleep_time"`               // display only
	WakeTime      string   `json:"wake_time,omitempty"`      // display only
	SleepInstant  float64  `json:"sleep_instant"`            // seconds since epoch
	WakeInstant   *float64 `json:"wake_instant,omitempty"`   // nil while the cycle is open
	DurationHours *float64 `json:"duration_hours,omitempty"` // set once, on wake
}

// IsOpen reports whether the cycle has not been finished yet
func (c *Cycle) IsOpen() bool {
	return c.WakeInstant == nil
}

// Finish stamps the wake fields and computes the duration in hours
// rounded to two decimals.
func (c *Cycle) Finish(wakeInstant float64, wakeTime string) {
	duration := RoundHours((wakeInstant - c.SleepInstant) / 3600)
	c.WakeInstant = &wakeInstant
	c.WakeTime = wakeTime
	c.DurationHours = &duration
}

// Clone returns a deep copy
func (c *Cycle) Clone() *Cycle {
	cp := *c
	if c.Notes != nil {
		notes := *c.Notes
		cp.Notes = &notes
	}
	if c.WakeInstant != nil {
		wake := *c.WakeInstant
		cp.WakeInstant = &wake
	}
	if c.DurationHours != nil {
		d := *c.DurationHours
		cp.DurationHours = &d
	}
	return &cp
}

// RoundHours rounds to two decimal places
func RoundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
