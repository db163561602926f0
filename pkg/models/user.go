package models

// User is a chat participant together with their sleep diary.
//
// Cycles are kept in insertion order: the current cycle is the one inserted
// last, not the one with the greatest date.
type User struct {
	ChatID      int64  `json:"chat_id" db:"id"`
	DisplayName string `json:"display_name" db:"name"`
	IsSleeping  bool   `json:"is_sleeping" db:"sleep_status"`

	// PendingOverwrite holds the date the user was asked to overwrite.
	// Empty when no confirmation is outstanding. Never persisted.
	PendingOverwrite string `json:"-" db:"-"`

	order  []string
	cycles map[string]*Cycle
}

// NewUser creates a user with an empty diary
func NewUser(chatID int64, name string) *User {
	return &User{
		ChatID:      chatID,
		DisplayName: name,
		cycles:      make(map[string]*Cycle),
	}
}

// Cycle returns the cycle for a date
func (u *User) Cycle(date string) (*Cycle, bool) {
	c, ok := u.cycles[date]
	return c, ok
}

// HasCycle reports whether the date already has a cycle
func (u *User) HasCycle(date string) bool {
	_, ok := u.cycles[date]
	return ok
}

// PutCycle stores c under c.Date, replacing any existing cycle for that date.
// The date becomes the most recently inserted one.
func (u *User) PutCycle(c *Cycle) {
	if u.cycles == nil {
		u.cycles = make(map[string]*Cycle)
	}
	if _, ok := u.cycles[c.Date]; ok {
		for i, d := range u.order {
			if d == c.Date {
				u.order = append(u.order[:i], u.order[i+1:]...)
				break
			}
		}
	}
	u.order = append(u.order, c.Date)
	u.cycles[c.Date] = c
}

// Current returns the most recently inserted cycle
func (u *User) Current() (*Cycle, bool) {
	if len(u.order) == 0 {
		return nil, false
	}
	return u.cycles[u.order[len(u.order)-1]], true
}

// Dates returns cycle dates in iteration order
func (u *User) Dates() []string {
	dates := make([]string, len(u.order))
	copy(dates, u.order)
	return dates
}

// Cycles returns the cycles in iteration order
func (u *User) Cycles() []*Cycle {
	res := make([]*Cycle, 0, len(u.order))
	for _, d := range u.order {
		res = append(res, u.cycles[d])
	}
	return res
}

// CycleCount returns the number of recorded cycles
func (u *User) CycleCount() int {
	return len(u.order)
}

// Clone returns a deep copy of the user, cycles included
func (u *User) Clone() *User {
	cp := &User{
		ChatID:           u.ChatID,
		DisplayName:      u.DisplayName,
		IsSleeping:       u.IsSleeping,
		PendingOverwrite: u.PendingOverwrite,
		order:            append([]string(nil), u.order...),
		cycles:           make(map[string]*Cycle, len(u.cycles)),
	}
	for d, c := range u.cycles {
		cp.cycles[d] = c.Clone()
	}
	return cp
}

// Restore overwrites u in place with the state held by snapshot.
// Pointers handed out to u stay valid.
func (u *User) Restore(snapshot *User) {
	*u = *snapshot.Clone()
}
