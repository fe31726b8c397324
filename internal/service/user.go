package service

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"classbook/internal/cache"
	"classbook/internal/metrics"
	"classbook/internal/models"
	"classbook/internal/repository"
	"classbook/internal/transport"
)

const (
	userCachePrefix  = "user_"
	usersListKey     = "users_all"
	teachersCacheKey = "users_teachers"

	userCacheTTL = 5 * time.Minute
)

// UserService handles user administration: listing with local filters,
// CRUD, role queries and locally aggregated stats.
type UserService struct {
	users   *repository.UserRepository
	cache   cache.Cache
	retry   RetryConfig
	metrics *metrics.Collector
	log     zerolog.Logger
}

func NewUserService(
	users *repository.UserRepository,
	userCache cache.Cache,
	retry RetryConfig,
	collector *metrics.Collector,
	log zerolog.Logger,
) *UserService {
	return &UserService{
		users:   users,
		cache:   userCache,
		retry:   retry,
		metrics: collector,
		log:     log.With().Str("service", "UserService").Logger(),
	}
}

// GetUsers fetches the full user list (cached) and applies the filters
// locally, so refining a search does not hit the API again.
func (s *UserService) GetUsers(ctx context.Context, filters models.UserFilters, token string) Response[[]models.User] {
	users, err := s.allUsers(ctx, token)
	if err != nil {
		return fromError[[]models.User](s.log, "GetUsers", err)
	}
	return ok(applyUserFilters(users, filters), "")
}

func (s *UserService) GetUserByID(ctx context.Context, id int, token string) Response[models.User] {
	if id <= 0 {
		return fail[models.User]("user id must be positive", http.StatusBadRequest)
	}

	cacheKey := userCachePrefix + strconv.Itoa(id)
	if cached, hit := s.cache.Get(cacheKey); hit {
		if user, okType := cached.(models.User); okType {
			s.metrics.RecordCacheHit()
			return ok(user, "loaded from cache")
		}
	}
	s.metrics.RecordCacheMiss()

	user, err := retryCall(ctx, s.retry, s.metrics, func() (models.User, error) {
		return s.users.GetByID(ctx, id, token)
	})
	if err != nil {
		return fromError[models.User](s.log, "GetUserByID", err)
	}

	s.cache.Set(cacheKey, user, userCacheTTL)
	return ok(user, "")
}

func (s *UserService) CreateUser(ctx context.Context, data models.CreateUserData, token string) Response[models.User] {
	user, err := s.users.Create(ctx, data, token)
	if err != nil {
		return fromError[models.User](s.log, "CreateUser", err)
	}

	s.invalidateLists()
	s.log.Info().Str("method", "CreateUser").Int("id", user.ID).Str("role", string(user.Role)).Msg("user created")
	return ok(user, "user created")
}

func (s *UserService) UpdateUser(ctx context.Context, id int, data models.UpdateProfileData, token string) Response[models.User] {
	user, err := s.users.Update(ctx, id, data, token)
	if err != nil {
		return fromError[models.User](s.log, "UpdateUser", err)
	}

	s.cache.ClearPrefix(userCachePrefix + strconv.Itoa(id))
	s.invalidateLists()
	return ok(user, "user updated")
}

func (s *UserService) DeleteUser(ctx context.Context, id int, token string) Response[struct{}] {
	if err := s.users.Delete(ctx, id, token); err != nil {
		return fromError[struct{}](s.log, "DeleteUser", err)
	}

	s.cache.ClearPrefix(userCachePrefix + strconv.Itoa(id))
	s.invalidateLists()
	return ok(struct{}{}, "user removed")
}

func (s *UserService) ToggleUserStatus(ctx context.Context, id int, status bool, token string) Response[struct{}] {
	if err := s.users.ToggleStatus(ctx, id, status, token); err != nil {
		return fromError[struct{}](s.log, "ToggleUserStatus", err)
	}

	s.cache.ClearPrefix(userCachePrefix + strconv.Itoa(id))
	s.invalidateLists()
	return ok(struct{}{}, "user status updated")
}

// GetTeachers returns the users who can be assigned to a class, cached
// because the picker reads it on every schedule form.
func (s *UserService) GetTeachers(ctx context.Context, token string) Response[[]models.User] {
	if cached, hit := s.cache.Get(teachersCacheKey); hit {
		if teachers, okType := cached.([]models.User); okType {
			s.metrics.RecordCacheHit()
			return ok(teachers, "loaded from cache")
		}
	}
	s.metrics.RecordCacheMiss()

	teachers, err := retryCall(ctx, s.retry, s.metrics, func() ([]models.User, error) {
		return s.users.GetTeachers(ctx, token)
	})
	if err != nil {
		return fromError[[]models.User](s.log, "GetTeachers", err)
	}

	s.cache.Set(teachersCacheKey, teachers, userCacheTTL)
	return ok(teachers, "")
}

func (s *UserService) GetUsersByRole(ctx context.Context, role models.UserRole, token string) Response[[]models.User] {
	if !role.Known() {
		return fail[[]models.User]("unknown role", http.StatusBadRequest)
	}

	users, err := retryCall(ctx, s.retry, s.metrics, func() ([]models.User, error) {
		return s.users.GetUsersByRole(ctx, string(role), token)
	})
	if err != nil {
		return fromError[[]models.User](s.log, "GetUsersByRole", err)
	}
	return ok(users, "")
}

// SearchUsers delegates to the server-side search endpoint for queries
// that need more than the local filters.
func (s *UserService) SearchUsers(ctx context.Context, filters models.UserFilters, token string) Response[[]models.User] {
	users, err := retryCall(ctx, s.retry, s.metrics, func() ([]models.User, error) {
		return s.users.SearchUsers(ctx, filters, token)
	})
	if err != nil {
		return fromError[[]models.User](s.log, "SearchUsers", err)
	}
	return ok(users, "")
}

func (s *UserService) GetUsersPage(ctx context.Context, p transport.Pagination, token string) Paginated[models.User] {
	page, err := retryCall(ctx, s.retry, s.metrics, func() (transport.Paged[models.User], error) {
		return s.users.GetAll(ctx, p, token)
	})
	if err != nil {
		return paginatedFromError[models.User](s.log, "GetUsersPage", err)
	}
	return paginatedOK(page.Data, page.Total, page.Page, page.Limit, "")
}

// GetUserStats aggregates totals over the cached user list instead of a
// dedicated endpoint; the API exposes none for users.
func (s *UserService) GetUserStats(ctx context.Context, token string) Response[models.UserStats] {
	users, err := s.allUsers(ctx, token)
	if err != nil {
		return fromError[models.UserStats](s.log, "GetUserStats", err)
	}

	stats := models.UserStats{ByRole: make(map[string]int)}
	for _, user := range users {
		stats.Total++
		if user.Status {
			stats.Active++
		} else {
			stats.Inactive++
		}
		stats.ByRole[string(user.Role)]++
	}
	return ok(stats, "")
}

func (s *UserService) allUsers(ctx context.Context, token string) ([]models.User, error) {
	if cached, hit := s.cache.Get(usersListKey); hit {
		if users, okType := cached.([]models.User); okType {
			s.metrics.RecordCacheHit()
			return users, nil
		}
	}
	s.metrics.RecordCacheMiss()

	users, err := retryCall(ctx, s.retry, s.metrics, func() ([]models.User, error) {
		return s.users.SearchUsers(ctx, models.UserFilters{}, token)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Set(usersListKey, users, userCacheTTL)
	return users, nil
}

func (s *UserService) invalidateLists() {
	s.cache.ClearPrefix(usersListKey)
	s.cache.ClearPrefix(teachersCacheKey)
}

func applyUserFilters(users []models.User, filters models.UserFilters) []models.User {
	filtered := make([]models.User, 0, len(users))
	for _, user := range users {
		if filters.Name != "" && !strings.Contains(strings.ToLower(user.Name), strings.ToLower(filters.Name)) {
			continue
		}
		if filters.Email != "" && !strings.Contains(strings.ToLower(user.Email), strings.ToLower(filters.Email)) {
			continue
		}
		if filters.Role != "" && string(user.Role) != filters.Role {
			continue
		}
		if filters.Status != nil && user.Status != *filters.Status {
			continue
		}
		filtered = append(filtered, user)
	}
	return filtered
}
