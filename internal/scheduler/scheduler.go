package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/example/sleepbot/internal/tracker"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// ReminderKind tells the notifier which message to send
type ReminderKind int

const (
	// WakeReminder asks a user who has been asleep for too long whether they forgot /wake
	WakeReminder ReminderKind = iota
	// BedtimeReminder nudges an awake user to start tracking the night
	BedtimeReminder
)

func (k ReminderKind) String() string {
	switch k {
	case WakeReminder:
		return "wake"
	case BedtimeReminder:
		return "bedtime"
	default:
		return "unknown"
	}
}

// Notifier interface for sending notifications
type Notifier interface {
	SendReminder(chatID int64, kind ReminderKind) error
}

// Source lists the chats that may need a reminder
type Source interface {
	ListOverdueSleepers(ctx context.Context, cutoff float64) ([]int64, error)
	ListAwakeUsers(ctx context.Context) ([]int64, error)
}

// Settings controls when reminders go out
type Settings struct {
	StartHour int
	EndHour   int
	WakeAfter time.Duration
	BedtimeAt int // negative disables bedtime reminders
	Location  *time.Location
	Clock     func() time.Time
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  Notifier
	source    Source
	settings  Settings
	log       zerolog.Logger

	mu       sync.Mutex
	ctx      context.Context
	reminded map[int64]time.Time
}

// New creates a new scheduler instance
func New(notifier Notifier, source Source, settings Settings, log zerolog.Logger) *Scheduler {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.Clock == nil {
		settings.Clock = time.Now
	}
	s := gocron.NewScheduler(settings.Location)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		notifier:  notifier,
		source:    source,
		settings:  settings,
		log:       log.With().Str("component", "scheduler").Logger(),
		ctx:       context.Background(),
		reminded:  make(map[int64]time.Time),
	}
}

// Start begins running all scheduled tasks. The hourly check runs until
// ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	if _, err := s.scheduler.Every(1).Hour().Do(s.runCheck); err != nil {
		return err
	}
	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	if s.scheduler.IsRunning() {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) runCheck() {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	s.CheckReminders(ctx)
}

// CheckReminders sends every reminder that is due at the current hour.
// It returns the number of reminders delivered.
func (s *Scheduler) CheckReminders(ctx context.Context) int {
	now := s.settings.Clock().In(s.settings.Location)
	hour := now.Hour()

	if hour < s.settings.StartHour || hour > s.settings.EndHour {
		s.log.Debug().
			Int("hour", hour).
			Int("start_hour", s.settings.StartHour).
			Int("end_hour", s.settings.EndHour).
			Msg("outside notification hours, skipping reminders")
		return 0
	}

	sent := s.wakeReminders(ctx, now)
	if s.settings.BedtimeAt >= 0 && hour == s.settings.BedtimeAt {
		sent += s.bedtimeReminders(ctx)
	}
	return sent
}

func (s *Scheduler) wakeReminders(ctx context.Context, now time.Time) int {
	cutoff := tracker.Instant(now.Add(-s.settings.WakeAfter))
	chats, err := s.source.ListOverdueSleepers(ctx, cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list overdue sleepers")
		return 0
	}

	s.mu.Lock()
	overdue := make(map[int64]bool, len(chats))
	for _, id := range chats {
		overdue[id] = true
	}
	// forget users who woke up so their next night can be reminded again
	for id := range s.reminded {
		if !overdue[id] {
			delete(s.reminded, id)
		}
	}
	s.mu.Unlock()

	sent := 0
	for _, id := range chats {
		s.mu.Lock()
		last, seen := s.reminded[id]
		s.mu.Unlock()
		if seen && now.Sub(last) < s.settings.WakeAfter {
			continue
		}
		if s.deliver(id, WakeReminder) {
			s.mu.Lock()
			s.reminded[id] = now
			s.mu.Unlock()
			sent++
		}
	}
	return sent
}

func (s *Scheduler) bedtimeReminders(ctx context.Context) int {
	chats, err := s.source.ListAwakeUsers(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list awake users")
		return 0
	}
	sent := 0
	for _, id := range chats {
		if s.deliver(id, BedtimeReminder) {
			sent++
		}
	}
	return sent
}

func (s *Scheduler) deliver(chatID int64, kind ReminderKind) bool {
	if err := s.notifier.SendReminder(chatID, kind); err != nil {
		s.log.Warn().Err(err).Int64("chat_id", chatID).Stringer("kind", kind).Msg("failed to send reminder")
		return false
	}
	s.log.Debug().Int64("chat_id", chatID).Stringer("kind", kind).Msg("reminder sent")
	return true
}
