package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/segmentio/ksuid"

	"classbook/internal/models"
	"classbook/internal/transport"
)

// ScheduleRepository issues single-attempt calls against the /schedules
// endpoints.
type ScheduleRepository struct {
	client *transport.Client
}

func NewScheduleRepository(client *transport.Client) *ScheduleRepository {
	return &ScheduleRepository{client: client}
}

func (r *ScheduleRepository) GetAll(ctx context.Context, p transport.Pagination, token string) (transport.Paged[models.Schedule], error) {
	var out transport.Paged[models.Schedule]
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/schedules",
		Query:  paginationQuery(p),
		Token:  token,
	}, &out)
	return out, err
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id int, token string) (models.Schedule, error) {
	if id <= 0 {
		return models.Schedule{}, &transport.UnexpectedError{Message: fmt.Sprintf("invalid schedule id %d", id)}
	}
	var out models.Schedule
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/schedules/" + strconv.Itoa(id),
		Token:  token,
	}, &out)
	return out, err
}

// Create attaches a fresh idempotency key so the service layer may retry a
// transient failure without risking a duplicate schedule on the server.
func (r *ScheduleRepository) Create(ctx context.Context, data models.CreateScheduleData, token string) (models.Schedule, error) {
	var out models.Schedule
	err := r.client.Do(ctx, transport.Request{
		Method:         http.MethodPost,
		Path:           "/schedules",
		Body:           data,
		Token:          token,
		IdempotencyKey: ksuid.New().String(),
	}, &out)
	return out, err
}

func (r *ScheduleRepository) Update(ctx context.Context, id int, data models.UpdateScheduleData, token string) (models.Schedule, error) {
	var out models.Schedule
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodPut,
		Path:   "/schedules/" + strconv.Itoa(id),
		Body:   data,
		Token:  token,
	}, &out)
	return out, err
}

func (r *ScheduleRepository) Patch(ctx context.Context, id int, fields map[string]any, token string) (models.Schedule, error) {
	var out models.Schedule
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodPatch,
		Path:   "/schedules/" + strconv.Itoa(id),
		Body:   fields,
		Token:  token,
	}, &out)
	return out, err
}

func (r *ScheduleRepository) Delete(ctx context.Context, id int, token string) error {
	return r.client.Do(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   "/schedules/" + strconv.Itoa(id),
		Token:  token,
	}, nil)
}

func (r *ScheduleRepository) FindWhere(ctx context.Context, filters url.Values, p transport.Pagination, token string) (transport.Paged[models.Schedule], error) {
	query := paginationQuery(p)
	for key, values := range filters {
		for _, v := range values {
			query.Add(key, v)
		}
	}
	var out transport.Paged[models.Schedule]
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/schedules",
		Query:  query,
		Token:  token,
	}, &out)
	return out, err
}

func (r *ScheduleRepository) FindOne(ctx context.Context, filters url.Values, token string) (*models.Schedule, error) {
	var out []models.Schedule
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/schedules",
		Query:  filters,
		Token:  token,
	}, &out)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, nil
	}
	return &out[0], nil
}

func (r *ScheduleRepository) GetByDate(ctx context.Context, date string, token string) ([]models.Schedule, error) {
	var out []models.Schedule
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/schedules/date/" + url.PathEscape(date),
		Token:  token,
	}, &out)
	return out, err
}

func (r *ScheduleRepository) GetByMonthAndUser(ctx context.Context, month string, userID int, token string) ([]models.Schedule, error) {
	var out []models.Schedule
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/schedules/month/" + url.PathEscape(month) + "/user/" + strconv.Itoa(userID),
		Token:  token,
	}, &out)
	return out, err
}

func (r *ScheduleRepository) GetByDateRange(ctx context.Context, startDate, endDate string, token string) ([]models.Schedule, error) {
	query := url.Values{}
	query.Set("startDate", startDate)
	query.Set("endDate", endDate)

	var out []models.Schedule
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/schedules/range",
		Query:  query,
		Token:  token,
	}, &out)
	return out, err
}

func (r *ScheduleRepository) GetByRoom(ctx context.Context, roomID int, date string, token string) ([]models.Schedule, error) {
	query := url.Values{}
	if date != "" {
		query.Set("date", date)
	}
	var out []models.Schedule
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/schedules/room/" + strconv.Itoa(roomID),
		Query:  query,
		Token:  token,
	}, &out)
	return out, err
}

func (r *ScheduleRepository) GetWithFilters(ctx context.Context, filters models.ScheduleFilters, token string) ([]models.Schedule, error) {
	var out []models.Schedule
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/schedules/filter",
		Query:  scheduleFilterQuery(filters),
		Token:  token,
	}, &out)
	return out, err
}

func (r *ScheduleRepository) CheckAvailability(ctx context.Context, date, timeStr string, roomID int, token string) (models.Availability, error) {
	query := url.Values{}
	query.Set("date", date)
	query.Set("time", timeStr)
	query.Set("roomId", strconv.Itoa(roomID))

	var out models.Availability
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/schedules/check-availability",
		Query:  query,
		Token:  token,
	}, &out)
	return out, err
}

func (r *ScheduleRepository) Cancel(ctx context.Context, id int, reason string, token string) error {
	return r.client.Do(ctx, transport.Request{
		Method: http.MethodPatch,
		Path:   "/schedules/" + strconv.Itoa(id) + "/cancel",
		Body:   map[string]string{"reason": reason},
		Token:  token,
	}, nil)
}

func (r *ScheduleRepository) Confirm(ctx context.Context, id int, token string) error {
	return r.client.Do(ctx, transport.Request{
		Method: http.MethodPatch,
		Path:   "/schedules/" + strconv.Itoa(id) + "/confirm",
		Body:   map[string]string{},
		Token:  token,
	}, nil)
}

func (r *ScheduleRepository) GetStats(ctx context.Context, filters models.ScheduleFilters, token string) (models.ScheduleStats, error) {
	var out models.ScheduleStats
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/schedules/stats",
		Query:  scheduleFilterQuery(filters),
		Token:  token,
	}, &out)
	return out, err
}

func (r *ScheduleRepository) GetUpcoming(ctx context.Context, limit int, token string) ([]models.Schedule, error) {
	if limit <= 0 {
		limit = 5
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))

	var out []models.Schedule
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/schedules/upcoming",
		Query:  query,
		Token:  token,
	}, &out)
	return out, err
}

func scheduleFilterQuery(filters models.ScheduleFilters) url.Values {
	query := url.Values{}
	if filters.Date != "" {
		query.Set("date", filters.Date)
	}
	if filters.Month != "" {
		query.Set("month", filters.Month)
	}
	if filters.Year != "" {
		query.Set("year", filters.Year)
	}
	if filters.UserID > 0 {
		query.Set("userId", strconv.Itoa(filters.UserID))
	}
	if filters.RoomID > 0 {
		query.Set("roomId", strconv.Itoa(filters.RoomID))
	}
	if filters.Status != "" {
		query.Set("status", filters.Status)
	}
	return query
}
