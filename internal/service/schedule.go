package service

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"classbook/internal/cache"
	"classbook/internal/metrics"
	"classbook/internal/models"
	"classbook/internal/repository"
)

const (
	scheduleCachePrefix = "schedules_"
	monthCachePrefix    = "schedules_month"

	dayCacheTTL   = 5 * time.Minute
	monthCacheTTL = 10 * time.Minute

	editThreshold   = time.Hour
	cancelThreshold = 30 * time.Minute
)

// ScheduleService wraps the schedule repository with validation, the
// availability check, bounded retry and the day/month caches.
type ScheduleService struct {
	schedules  *repository.ScheduleRepository
	cache      cache.Cache
	validation *ValidationService
	retry      RetryConfig
	metrics    *metrics.Collector
	log        zerolog.Logger
	now        func() time.Time
}

func NewScheduleService(
	schedules *repository.ScheduleRepository,
	scheduleCache cache.Cache,
	validation *ValidationService,
	retry RetryConfig,
	collector *metrics.Collector,
	log zerolog.Logger,
) *ScheduleService {
	return &ScheduleService{
		schedules:  schedules,
		cache:      scheduleCache,
		validation: validation,
		retry:      retry,
		metrics:    collector,
		log:        log.With().Str("service", "ScheduleService").Logger(),
		now:        time.Now,
	}
}

// GetSchedulesByDate reads a single day, cache first (5 minute TTL).
func (s *ScheduleService) GetSchedulesByDate(ctx context.Context, date, token string) Response[[]models.Schedule] {
	if errs := s.validation.ValidateField("date", date); len(errs) > 0 {
		return fail[[]models.Schedule](errs[0], http.StatusBadRequest)
	}

	cacheKey := scheduleCachePrefix + date
	if cached, hit := s.cache.Get(cacheKey); hit {
		if schedules, okType := cached.([]models.Schedule); okType {
			s.metrics.RecordCacheHit()
			return ok(schedules, "loaded from cache")
		}
	}
	s.metrics.RecordCacheMiss()

	schedules, err := retryCall(ctx, s.retry, s.metrics, func() ([]models.Schedule, error) {
		return s.schedules.GetByDate(ctx, date, token)
	})
	if err != nil {
		return fromError[[]models.Schedule](s.log, "GetSchedulesByDate", err)
	}

	s.cache.Set(cacheKey, schedules, dayCacheTTL)
	return ok(schedules, "")
}

// GetSchedulesByMonth reads a month aggregation for one user, cache first
// (10 minute TTL).
func (s *ScheduleService) GetSchedulesByMonth(ctx context.Context, month string, userID int, token string) Response[[]models.Schedule] {
	if !validMonth(month) {
		return fail[[]models.Schedule]("invalid month", http.StatusBadRequest)
	}
	if userID <= 0 {
		return fail[[]models.Schedule]("user id must be positive", http.StatusBadRequest)
	}

	cacheKey := monthKey(month, userID)
	if cached, hit := s.cache.Get(cacheKey); hit {
		if schedules, okType := cached.([]models.Schedule); okType {
			s.metrics.RecordCacheHit()
			return ok(schedules, "loaded from cache")
		}
	}
	s.metrics.RecordCacheMiss()

	schedules, err := retryCall(ctx, s.retry, s.metrics, func() ([]models.Schedule, error) {
		return s.schedules.GetByMonthAndUser(ctx, month, userID, token)
	})
	if err != nil {
		return fromError[[]models.Schedule](s.log, "GetSchedulesByMonth", err)
	}

	s.cache.Set(cacheKey, schedules, monthCacheTTL)
	return ok(schedules, "")
}

// CreateSchedule validates, checks room availability, creates with retry
// (idempotency-keyed at the repository) and invalidates the touched day
// and the month aggregations.
func (s *ScheduleService) CreateSchedule(ctx context.Context, data models.CreateScheduleData, token string) Response[models.Schedule] {
	result := s.validation.ValidateRequired(map[string]any{
		"title":  data.Title,
		"date":   data.Date,
		"time":   data.Time,
		"roomId": data.RoomID,
		"userId": data.UserID,
	}, "title", "date", "time", "roomId", "userId")
	if !result.Valid {
		return invalid[models.Schedule](result)
	}
	if errs := s.validation.ValidateField("date", data.Date); len(errs) > 0 {
		return fail[models.Schedule]("date must be in the future", http.StatusBadRequest)
	}
	if errs := s.validation.ValidateField("time", data.Time); len(errs) > 0 {
		return fail[models.Schedule](errs[0], http.StatusBadRequest)
	}
	if len(data.Title) < 3 {
		return fail[models.Schedule]("title must have at least 3 characters", http.StatusBadRequest)
	}

	availability := s.CheckAvailability(ctx, data.Date, data.Time, data.RoomID, token)
	if !availability.Available {
		message := availability.Message
		if message == "" {
			message = "time slot is not available"
		}
		return fail[models.Schedule](message, http.StatusConflict)
	}

	schedule, err := retryCall(ctx, s.retry, s.metrics, func() (models.Schedule, error) {
		return s.schedules.Create(ctx, data, token)
	})
	if err != nil {
		return fromError[models.Schedule](s.log, "CreateSchedule", err)
	}

	s.cache.ClearPrefix(scheduleCachePrefix + data.Date)
	s.cache.ClearPrefix(monthCachePrefix)

	s.log.Info().Str("method", "CreateSchedule").Int("id", schedule.ID).Msg("schedule created")
	return ok(schedule, "schedule created")
}

func (s *ScheduleService) UpdateSchedule(ctx context.Context, id int, data models.UpdateScheduleData, token string) Response[models.Schedule] {
	if data.Date != "" {
		if errs := s.validation.ValidateField("date", data.Date); len(errs) > 0 {
			return fail[models.Schedule]("date must be in the future", http.StatusBadRequest)
		}
	}
	if data.Time != "" {
		if errs := s.validation.ValidateField("time", data.Time); len(errs) > 0 {
			return fail[models.Schedule](errs[0], http.StatusBadRequest)
		}
	}

	if data.Date != "" || data.Time != "" {
		current, err := s.schedules.GetByID(ctx, id, token)
		if err != nil {
			return fromError[models.Schedule](s.log, "UpdateSchedule", err)
		}
		checkDate := data.Date
		if checkDate == "" {
			checkDate = current.Date
		}
		checkTime := data.Time
		if checkTime == "" {
			checkTime = current.TimeStart
		}
		checkRoom := data.RoomID

		availability := s.CheckAvailability(ctx, checkDate, checkTime, checkRoom, token)
		if !availability.Available {
			message := availability.Message
			if message == "" {
				message = "time slot is not available"
			}
			return fail[models.Schedule](message, http.StatusConflict)
		}
	}

	schedule, err := s.schedules.Update(ctx, id, data, token)
	if err != nil {
		return fromError[models.Schedule](s.log, "UpdateSchedule", err)
	}

	s.cache.ClearPrefix(scheduleCachePrefix)
	return ok(schedule, "schedule updated")
}

func (s *ScheduleService) DeleteSchedule(ctx context.Context, id int, token string) Response[struct{}] {
	if err := s.schedules.Delete(ctx, id, token); err != nil {
		return fromError[struct{}](s.log, "DeleteSchedule", err)
	}
	s.cache.ClearPrefix(scheduleCachePrefix)
	return ok(struct{}{}, "schedule removed")
}

func (s *ScheduleService) CancelSchedule(ctx context.Context, id int, reason, token string) Response[struct{}] {
	if err := s.schedules.Cancel(ctx, id, reason, token); err != nil {
		return fromError[struct{}](s.log, "CancelSchedule", err)
	}
	s.cache.ClearPrefix(scheduleCachePrefix)
	return ok(struct{}{}, "schedule cancelled")
}

func (s *ScheduleService) ConfirmSchedule(ctx context.Context, id int, token string) Response[struct{}] {
	if err := s.schedules.Confirm(ctx, id, token); err != nil {
		return fromError[struct{}](s.log, "ConfirmSchedule", err)
	}
	s.cache.ClearPrefix(scheduleCachePrefix)
	return ok(struct{}{}, "schedule confirmed")
}

// CheckAvailability asks the server whether the slot is free. A local
// validation failure or transport error reads as unavailable rather than
// failing the caller.
func (s *ScheduleService) CheckAvailability(ctx context.Context, date, timeStr string, roomID int, token string) models.Availability {
	if errs := s.validation.ValidateField("date", date); len(errs) > 0 {
		return models.Availability{Available: false, Message: "invalid date"}
	}
	if errs := s.validation.ValidateField("time", timeStr); len(errs) > 0 {
		return models.Availability{Available: false, Message: "invalid time"}
	}

	availability, err := s.schedules.CheckAvailability(ctx, date, timeStr, roomID, token)
	if err != nil {
		s.log.Error().Str("method", "CheckAvailability").Err(err).Msg("availability check failed")
		return models.Availability{Available: false, Message: "could not verify availability"}
	}
	return availability
}

func (s *ScheduleService) SearchSchedules(ctx context.Context, filters models.ScheduleFilters, token string) Response[[]models.Schedule] {
	schedules, err := retryCall(ctx, s.retry, s.metrics, func() ([]models.Schedule, error) {
		return s.schedules.GetWithFilters(ctx, filters, token)
	})
	if err != nil {
		return fromError[[]models.Schedule](s.log, "SearchSchedules", err)
	}
	return ok(schedules, "")
}

func (s *ScheduleService) GetScheduleStats(ctx context.Context, filters models.ScheduleFilters, token string) Response[models.ScheduleStats] {
	stats, err := retryCall(ctx, s.retry, s.metrics, func() (models.ScheduleStats, error) {
		return s.schedules.GetStats(ctx, filters, token)
	})
	if err != nil {
		return fromError[models.ScheduleStats](s.log, "GetScheduleStats", err)
	}
	return ok(stats, "")
}

func (s *ScheduleService) GetUpcomingSchedules(ctx context.Context, limit int, token string) Response[[]models.Schedule] {
	schedules, err := retryCall(ctx, s.retry, s.metrics, func() ([]models.Schedule, error) {
		return s.schedules.GetUpcoming(ctx, limit, token)
	})
	if err != nil {
		return fromError[[]models.Schedule](s.log, "GetUpcomingSchedules", err)
	}
	return ok(schedules, "")
}

// CanEdit is advisory: editing closes one hour before the class starts.
// The server enforces the real rule.
func (s *ScheduleService) CanEdit(schedule *models.Schedule) bool {
	start := schedule.StartsAt()
	if start.IsZero() {
		return false
	}
	return start.Sub(s.now()) > editThreshold
}

// CanCancel is advisory: cancelling closes 30 minutes before start.
func (s *ScheduleService) CanCancel(schedule *models.Schedule) bool {
	start := schedule.StartsAt()
	if start.IsZero() {
		return false
	}
	return start.Sub(s.now()) > cancelThreshold
}

func validMonth(month string) bool {
	if len(month) == 0 || len(month) > 2 {
		return false
	}
	n := 0
	for _, r := range month {
		if r < '0' || r > '9' {
			return false
		}
		n = n*10 + int(r-'0')
	}
	return n >= 1 && n <= 12
}

func monthKey(month string, userID int) string {
	return monthCachePrefix + "_" + month + "_" + strconv.Itoa(userID)
}
