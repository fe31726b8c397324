package service

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"classbook/internal/cache"
	"classbook/internal/metrics"
	"classbook/internal/models"
	"classbook/internal/repository"
	"classbook/internal/store"
	"classbook/internal/transport"
)

const sessionCacheKey = "auth_session"

// LoginResult is the payload of a successful login.
type LoginResult struct {
	User    models.User `json:"user"`
	Token   string      `json:"token"`
	Message string      `json:"message,omitempty"`
}

// AuthService owns the session snapshot: login, the current-user cache,
// profile and password mutations, and the one-time-code recovery flow.
type AuthService struct {
	users      *repository.UserRepository
	cache      cache.Cache
	sessions   *store.SessionStore
	validation *ValidationService
	retry      RetryConfig
	metrics    *metrics.Collector
	log        zerolog.Logger
}

func NewAuthService(
	users *repository.UserRepository,
	sessionCache cache.Cache,
	sessions *store.SessionStore,
	validation *ValidationService,
	retry RetryConfig,
	collector *metrics.Collector,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:      users,
		cache:      sessionCache,
		sessions:   sessions,
		validation: validation,
		retry:      retry,
		metrics:    collector,
		log:        log.With().Str("service", "AuthService").Logger(),
	}
}

// Login validates credentials locally, then authenticates with retry and
// stores the resulting session.
func (s *AuthService) Login(ctx context.Context, credentials models.LoginCredentials) Response[LoginResult] {
	s.log.Info().Str("method", "Login").Str("email", credentials.Email).Msg("login attempt")

	result := s.validation.ValidateRequired(map[string]any{
		"email":    credentials.Email,
		"password": credentials.Password,
	}, "email", "password")
	if !result.Valid {
		return invalid[LoginResult](result)
	}
	if errs := s.validation.ValidateField("email", credentials.Email); len(errs) > 0 {
		return fail[LoginResult](errs[0], http.StatusBadRequest)
	}
	if len(credentials.Password) < 6 {
		return fail[LoginResult]("password must have at least 6 characters", http.StatusBadRequest)
	}

	login, err := retryCall(ctx, s.retry, s.metrics, func() (repository.LoginResponse, error) {
		return s.users.Login(ctx, credentials)
	})
	if err != nil {
		return fromError[LoginResult](s.log, "Login", err)
	}

	s.sessions.Login(ctx, login.User, login.Token, "")
	s.cache.Set(sessionCacheKey, s.sessions.Session(), models.SessionTimeout)

	s.log.Info().Str("method", "Login").Int("user_id", login.User.ID).Msg("login succeeded")
	return ok(LoginResult{User: login.User, Token: login.Token, Message: login.Message}, "logged in")
}

// GetCurrentUser serves the session cache when the token matches; a cache
// miss falls through to the API and refreshes both cache and session.
func (s *AuthService) GetCurrentUser(ctx context.Context, token string) Response[models.User] {
	if cached, hit := s.cache.Get(sessionCacheKey); hit {
		if session, okType := cached.(models.Session); okType && session.Token == token {
			if user := session.User(); user != nil {
				s.metrics.RecordCacheHit()
				return ok(*user, "loaded from cache")
			}
		}
	}
	s.metrics.RecordCacheMiss()

	user, err := retryCall(ctx, s.retry, s.metrics, func() (models.User, error) {
		return s.users.GetCurrentUser(ctx, token)
	})
	if err != nil {
		return fromError[models.User](s.log, "GetCurrentUser", err)
	}

	s.sessions.UpdateUser(ctx, user)
	s.cache.Set(sessionCacheKey, s.sessions.Session(), models.SessionTimeout)
	return ok(user, "")
}

func (s *AuthService) ChangePassword(ctx context.Context, data models.ChangePasswordData, token string) Response[struct{}] {
	result := s.validation.Struct(data)
	if !result.Valid {
		return invalid[struct{}](result)
	}
	if errs := s.validation.ValidateField("password", data.NewPassword); len(errs) > 0 {
		return fail[struct{}](errs[0], http.StatusBadRequest)
	}
	if data.NewPassword != data.RepeatPassword {
		return fail[struct{}]("passwords do not match", http.StatusBadRequest)
	}
	if data.OldPassword == data.NewPassword {
		return fail[struct{}]("new password must differ from the current one", http.StatusBadRequest)
	}

	if err := s.users.ChangePassword(ctx, data, token); err != nil {
		return fromError[struct{}](s.log, "ChangePassword", err)
	}

	// Changing the password invalidates the server-side token; force a
	// fresh login.
	s.cache.ClearPrefix(sessionCacheKey)
	s.sessions.Logout(ctx)

	return ok(struct{}{}, "password changed")
}

func (s *AuthService) UpdateProfile(ctx context.Context, data models.UpdateProfileData, token string) Response[models.User] {
	if data.Email != "" {
		if errs := s.validation.ValidateField("email", data.Email); len(errs) > 0 {
			return fail[models.User](errs[0], http.StatusBadRequest)
		}
	}
	if data.Phone != "" {
		if errs := s.validation.ValidateField("phone", data.Phone); len(errs) > 0 {
			return fail[models.User](errs[0], http.StatusBadRequest)
		}
	}

	user, err := s.users.UpdateProfile(ctx, data, token)
	if err != nil {
		return fromError[models.User](s.log, "UpdateProfile", err)
	}

	s.sessions.UpdateUser(ctx, user)
	s.cache.Set(sessionCacheKey, s.sessions.Session(), models.SessionTimeout)

	return ok(user, "profile updated")
}

func (s *AuthService) UploadPhoto(ctx context.Context, userID int, file transport.FileRef, token string) Response[repository.PhotoUploadResult] {
	if file.URI == "" {
		return fail[repository.PhotoUploadResult]("photo file reference is required", http.StatusBadRequest)
	}
	if userID <= 0 {
		return fail[repository.PhotoUploadResult]("user id must be positive", http.StatusBadRequest)
	}

	result, err := s.users.UploadPhoto(ctx, userID, file, token)
	if err != nil {
		return fromError[repository.PhotoUploadResult](s.log, "UploadPhoto", err)
	}
	return ok(result, "photo uploaded")
}

// Logout clears the cache and the session snapshot unconditionally.
func (s *AuthService) Logout(ctx context.Context) Response[struct{}] {
	s.cache.Clear()
	s.sessions.Logout(ctx)
	s.log.Info().Str("method", "Logout").Msg("session cleared")
	return ok(struct{}{}, "logged out")
}

// RequestPasswordReset starts the recovery flow: the server emails a
// one-time code to the address.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) Response[struct{}] {
	if errs := s.validation.ValidateField("email", email); len(errs) > 0 {
		return fail[struct{}](errs[0], http.StatusBadRequest)
	}
	if err := s.users.CreateOTC(ctx, email); err != nil {
		return fromError[struct{}](s.log, "RequestPasswordReset", err)
	}
	return ok(struct{}{}, "recovery code sent, check your email")
}

func (s *AuthService) VerifyPasswordReset(ctx context.Context, email, code string) Response[struct{}] {
	if code == "" {
		return fail[struct{}]("recovery code is required", http.StatusBadRequest)
	}
	if err := s.users.VerifyOTC(ctx, email, code); err != nil {
		return fromError[struct{}](s.log, "VerifyPasswordReset", err)
	}
	return ok(struct{}{}, "code verified")
}

func (s *AuthService) CompletePasswordReset(ctx context.Context, data models.RecoveryPasswordData, code string) Response[struct{}] {
	result := s.validation.Struct(data)
	if !result.Valid {
		return invalid[struct{}](result)
	}
	if data.NewPassword != data.RepeatPassword {
		return fail[struct{}]("passwords do not match", http.StatusBadRequest)
	}
	if code == "" {
		return fail[struct{}]("recovery code is required", http.StatusBadRequest)
	}

	if err := s.users.ChangeRecoveryPassword(ctx, data, code); err != nil {
		return fromError[struct{}](s.log, "CompletePasswordReset", err)
	}
	return ok(struct{}{}, "password reset")
}

// SessionValid applies the local session rules (activity window plus
// token expiry); the server remains authoritative.
func (s *AuthService) SessionValid() bool {
	return s.sessions.TokenValid()
}

// TouchSession records activity; call it after any authenticated request.
func (s *AuthService) TouchSession(ctx context.Context) {
	s.sessions.TouchActivity(ctx)
}

func (s *AuthService) CurrentSession() models.Session {
	return s.sessions.Session()
}

// HasPermission compares role levels; unknown roles always fail.
func (s *AuthService) HasPermission(role, required models.UserRole) bool {
	if !role.Known() {
		return false
	}
	return role.Level() >= required.Level()
}
