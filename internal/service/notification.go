package service

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"

	"classbook/internal/models"
)

// NotificationLevel selects the toast style and its default duration.
type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
	LevelInfo    NotificationLevel = "info"
	LevelWarning NotificationLevel = "warning"
)

// Notification is one toast waiting to be displayed.
type Notification struct {
	ID        string            `json:"id"`
	Level     NotificationLevel `json:"level"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	CreatedAt time.Time         `json:"createdAt"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

// NotificationSettings controls which channels the user wants and how far
// ahead class reminders fire.
type NotificationSettings struct {
	PushEnabled     bool          `json:"pushEnabled"`
	EmailEnabled    bool          `json:"emailEnabled"`
	RemindersOn     bool          `json:"remindersOn"`
	ReminderLead    time.Duration `json:"reminderLead"`
	SoundEnabled    bool          `json:"soundEnabled"`
	DefaultDuration time.Duration `json:"defaultDuration"`
}

func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{
		PushEnabled:  true,
		EmailEnabled: true,
		RemindersOn:  true,
		ReminderLead: time.Hour,
		SoundEnabled: true,
	}
}

// NotificationService keeps the in-memory toast queue. Delivery to a real
// device channel happens elsewhere; this layer only orders and expires.
type NotificationService struct {
	mu       sync.Mutex
	queue    []Notification
	settings NotificationSettings
	log      zerolog.Logger
	now      func() time.Time
}

func NewNotificationService(settings NotificationSettings, log zerolog.Logger) *NotificationService {
	return &NotificationService{
		settings: settings,
		log:      log.With().Str("service", "NotificationService").Logger(),
		now:      time.Now,
	}
}

func durationFor(level NotificationLevel) time.Duration {
	switch level {
	case LevelError:
		return 8 * time.Second
	case LevelWarning:
		return 6 * time.Second
	default:
		return 4 * time.Second
	}
}

// Push queues a toast and returns its id.
func (s *NotificationService) Push(level NotificationLevel, title, message string) string {
	now := s.now()
	duration := s.settings.DefaultDuration
	if duration <= 0 {
		duration = durationFor(level)
	}

	notification := Notification{
		ID:        ksuid.New().String(),
		Level:     level,
		Title:     title,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
	}

	s.mu.Lock()
	s.queue = append(s.queue, notification)
	s.mu.Unlock()

	s.log.Debug().Str("level", string(level)).Str("id", notification.ID).Msg("notification queued")
	return notification.ID
}

func (s *NotificationService) Success(title, message string) string {
	return s.Push(LevelSuccess, title, message)
}

func (s *NotificationService) Error(title, message string) string {
	return s.Push(LevelError, title, message)
}

func (s *NotificationService) Info(title, message string) string {
	return s.Push(LevelInfo, title, message)
}

func (s *NotificationService) Warning(title, message string) string {
	return s.Push(LevelWarning, title, message)
}

// Pending drops expired toasts and returns the live ones in arrival order.
func (s *NotificationService) Pending() []Notification {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	live := s.queue[:0]
	for _, notification := range s.queue {
		if notification.ExpiresAt.After(now) {
			live = append(live, notification)
		}
	}
	s.queue = live

	out := make([]Notification, len(s.queue))
	copy(out, s.queue)
	return out
}

// Dismiss removes one toast by id; unknown ids are a no-op.
func (s *NotificationService) Dismiss(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, notification := range s.queue {
		if notification.ID == id {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return
		}
	}
}

func (s *NotificationService) Clear() {
	s.mu.Lock()
	s.queue = nil
	s.mu.Unlock()
}

func (s *NotificationService) Settings() NotificationSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

func (s *NotificationService) UpdateSettings(settings NotificationSettings) {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
}

// ScheduleReminder computes when the reminder for a class should fire.
// It returns false when reminders are off, the start time is unparseable
// or the reminder instant already passed.
func (s *NotificationService) ScheduleReminder(schedule *models.Schedule) (time.Time, bool) {
	if !s.settings.RemindersOn {
		return time.Time{}, false
	}

	start := schedule.StartsAt()
	if start.IsZero() {
		return time.Time{}, false
	}

	lead := s.settings.ReminderLead
	if lead <= 0 {
		lead = time.Hour
	}

	at := start.Add(-lead)
	if !at.After(s.now()) {
		return time.Time{}, false
	}
	return at, true
}
