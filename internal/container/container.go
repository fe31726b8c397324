package container

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"classbook/internal/cache"
	"classbook/internal/config"
	"classbook/internal/metrics"
	"classbook/internal/repository"
	"classbook/internal/service"
	"classbook/internal/store"
	"classbook/internal/transport"
)

// Container wires repositories and services once per process. Every
// accessor constructs on first use and memoizes, so the whole app shares
// one transport client, one cache and one session snapshot.
type Container struct {
	mu sync.Mutex

	cfg      *config.AppConfig
	log      zerolog.Logger
	sessions *store.SessionStore
	cache    cache.Cache
	metrics  *metrics.Collector

	instances map[string]any
}

func New(cfg *config.AppConfig, log zerolog.Logger, sessions *store.SessionStore, appCache cache.Cache, collector *metrics.Collector) *Container {
	if appCache == nil {
		appCache = cache.NewTTL()
	}
	return &Container{
		cfg:       cfg,
		log:       log,
		sessions:  sessions,
		cache:     appCache,
		metrics:   collector,
		instances: make(map[string]any),
	}
}

func (c *Container) retryConfig() service.RetryConfig {
	return service.RetryConfig{
		Attempts:  c.cfg.Retry.Attempts,
		BaseDelay: c.cfg.Retry.BaseDelay,
	}
}

// get memoizes by name. build runs outside the lock because builders call
// other accessors for their dependencies; a concurrent duplicate build is
// discarded in favor of the first one stored.
func (c *Container) get(name string, build func() any) any {
	c.mu.Lock()
	if instance, ok := c.instances[name]; ok {
		c.mu.Unlock()
		return instance
	}
	c.mu.Unlock()

	instance := build()

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.instances[name]; ok {
		return existing
	}
	c.instances[name] = instance
	return instance
}

func (c *Container) Client() *transport.Client {
	return c.get("client", func() any {
		return transport.NewClient(transport.Options{
			BaseURL:   c.cfg.API.BaseURL,
			Timeout:   c.cfg.API.Timeout,
			RateLimit: c.cfg.API.RateLimit,
			RateBurst: c.cfg.API.RateBurst,
			UserAgent: c.cfg.API.UserAgent,
		}, c.log, c.metrics)
	}).(*transport.Client)
}

func (c *Container) UserRepository() *repository.UserRepository {
	return c.get("userRepository", func() any {
		return repository.NewUserRepository(c.Client())
	}).(*repository.UserRepository)
}

func (c *Container) ScheduleRepository() *repository.ScheduleRepository {
	return c.get("scheduleRepository", func() any {
		return repository.NewScheduleRepository(c.Client())
	}).(*repository.ScheduleRepository)
}

func (c *Container) ValidationService() *service.ValidationService {
	return c.get("validationService", func() any {
		return service.NewValidationService(c.log)
	}).(*service.ValidationService)
}

func (c *Container) AuthService() *service.AuthService {
	return c.get("authService", func() any {
		return service.NewAuthService(
			c.UserRepository(),
			c.cache,
			c.sessions,
			c.ValidationService(),
			c.retryConfig(),
			c.metrics,
			c.log,
		)
	}).(*service.AuthService)
}

func (c *Container) ScheduleService() *service.ScheduleService {
	return c.get("scheduleService", func() any {
		return service.NewScheduleService(
			c.ScheduleRepository(),
			c.cache,
			c.ValidationService(),
			c.retryConfig(),
			c.metrics,
			c.log,
		)
	}).(*service.ScheduleService)
}

func (c *Container) UserService() *service.UserService {
	return c.get("userService", func() any {
		return service.NewUserService(
			c.UserRepository(),
			c.cache,
			c.retryConfig(),
			c.metrics,
			c.log,
		)
	}).(*service.UserService)
}

func (c *Container) NotificationService() *service.NotificationService {
	return c.get("notificationService", func() any {
		return service.NewNotificationService(service.DefaultNotificationSettings(), c.log)
	}).(*service.NotificationService)
}

func (c *Container) SessionStore() *store.SessionStore {
	return c.sessions
}

func (c *Container) Cache() cache.Cache {
	return c.cache
}

// Services materializes the full service bundle at once, for callers that
// want everything wired up front.
type Services struct {
	Auth          *service.AuthService
	Schedules     *service.ScheduleService
	Users         *service.UserService
	Notifications *service.NotificationService
	Validation    *service.ValidationService
}

func (c *Container) Services() Services {
	return Services{
		Auth:          c.AuthService(),
		Schedules:     c.ScheduleService(),
		Users:         c.UserService(),
		Notifications: c.NotificationService(),
		Validation:    c.ValidationService(),
	}
}

type Repositories struct {
	Users     *repository.UserRepository
	Schedules *repository.ScheduleRepository
}

func (c *Container) Repositories() Repositories {
	return Repositories{
		Users:     c.UserRepository(),
		Schedules: c.ScheduleRepository(),
	}
}

// Reset drops one memoized instance so the next accessor rebuilds it.
func (c *Container) Reset(name string) {
	c.mu.Lock()
	delete(c.instances, name)
	c.mu.Unlock()
}

// Clear drops every memoized instance.
func (c *Container) Clear() {
	c.mu.Lock()
	c.instances = make(map[string]any)
	c.mu.Unlock()
}

// Materialized lists the names of instances built so far, sorted.
func (c *Container) Materialized() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.instances))
	for name := range c.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
