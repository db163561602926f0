package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/sleepbot/internal/tracker"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type delivery struct {
	chatID int64
	kind   ReminderKind
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []delivery
	fail map[int64]bool
}

func (n *fakeNotifier) SendReminder(chatID int64, kind ReminderKind) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail[chatID] {
		return errors.New("bot was blocked by the user")
	}
	n.sent = append(n.sent, delivery{chatID, kind})
	return nil
}

type fakeSource struct {
	sleepers   []int64
	awake      []int64
	lastCutoff float64
	err        error
}

func (s *fakeSource) ListOverdueSleepers(_ context.Context, cutoff float64) ([]int64, error) {
	s.lastCutoff = cutoff
	return s.sleepers, s.err
}

func (s *fakeSource) ListAwakeUsers(context.Context) ([]int64, error) {
	return s.awake, s.err
}

func newTestScheduler(n Notifier, src Source, now *time.Time, bedtime int) *Scheduler {
	return New(n, src, Settings{
		StartHour: 8,
		EndHour:   22,
		WakeAfter: 12 * time.Hour,
		BedtimeAt: bedtime,
		Location:  time.UTC,
		Clock:     func() time.Time { return *now },
	}, zerolog.Nop())
}

func TestCheckReminders_OutsideWindow(t *testing.T) {
	now := time.Date(2024, 3, 2, 3, 0, 0, 0, time.UTC)
	n := &fakeNotifier{}
	src := &fakeSource{sleepers: []int64{1}}

	s := newTestScheduler(n, src, &now, -1)
	assert.Zero(t, s.CheckReminders(context.Background()))
	assert.Empty(t, n.sent)
}

func TestCheckReminders_WakeReminder(t *testing.T) {
	now := time.Date(2024, 3, 2, 13, 0, 0, 0, time.UTC)
	n := &fakeNotifier{fail: map[int64]bool{2: true}}
	src := &fakeSource{sleepers: []int64{1, 2}}

	s := newTestScheduler(n, src, &now, -1)
	assert.Equal(t, 1, s.CheckReminders(context.Background()))
	assert.Equal(t, []delivery{{1, WakeReminder}}, n.sent)
	assert.Equal(t, tracker.Instant(now.Add(-12*time.Hour)), src.lastCutoff)

	// an hour later the same user is not nagged again, the failed one is retried
	now = now.Add(time.Hour)
	delete(n.fail, 2)
	assert.Equal(t, 1, s.CheckReminders(context.Background()))
	assert.Equal(t, []delivery{{1, WakeReminder}, {2, WakeReminder}}, n.sent)
}

func TestCheckReminders_ForgetsUsersWhoWoke(t *testing.T) {
	now := time.Date(2024, 3, 2, 13, 0, 0, 0, time.UTC)
	n := &fakeNotifier{}
	src := &fakeSource{sleepers: []int64{1}}
	s := newTestScheduler(n, src, &now, -1)

	require.Equal(t, 1, s.CheckReminders(context.Background()))

	src.sleepers = nil
	now = now.Add(time.Hour)
	require.Zero(t, s.CheckReminders(context.Background()))

	src.sleepers = []int64{1}
	now = now.Add(time.Hour)
	assert.Equal(t, 1, s.CheckReminders(context.Background()))
}

func TestCheckReminders_Bedtime(t *testing.T) {
	now := time.Date(2024, 3, 2, 21, 0, 0, 0, time.UTC)
	n := &fakeNotifier{}
	src := &fakeSource{awake: []int64{7, 8}}

	s := newTestScheduler(n, src, &now, 21)
	assert.Equal(t, 2, s.CheckReminders(context.Background()))
	assert.Equal(t, []delivery{{7, BedtimeReminder}, {8, BedtimeReminder}}, n.sent)

	now = now.Add(time.Hour)
	assert.Zero(t, s.CheckReminders(context.Background()))
}

func TestCheckReminders_SourceError(t *testing.T) {
	now := time.Date(2024, 3, 2, 21, 0, 0, 0, time.UTC)
	n := &fakeNotifier{}
	src := &fakeSource{awake: []int64{7}, err: errors.New("connection refused")}

	s := newTestScheduler(n, src, &now, 21)
	assert.Zero(t, s.CheckReminders(context.Background()))
	assert.Empty(t, n.sent)
}

func TestReminderKindString(t *testing.T) {
	assert.Equal(t, "wake", WakeReminder.String())
	assert.Equal(t, "bedtime", BedtimeReminder.String())
	assert.Equal(t, "unknown", ReminderKind(9).String())
}
