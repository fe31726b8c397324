package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"classbook/internal/models"
	"classbook/internal/transport"
)

// UserRepository issues single-attempt calls against the /users endpoints.
// No caching or retry happens here; errors arrive pre-normalized from the
// transport.
type UserRepository struct {
	client *transport.Client
}

func NewUserRepository(client *transport.Client) *UserRepository {
	return &UserRepository{client: client}
}

type LoginResponse struct {
	Token   string      `json:"token" mapstructure:"token"`
	User    models.User `json:"user" mapstructure:"user"`
	Message string      `json:"message" mapstructure:"message"`
}

func (r *UserRepository) Login(ctx context.Context, credentials models.LoginCredentials) (LoginResponse, error) {
	var out LoginResponse
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/users/signin",
		Body:   credentials,
	}, &out)
	return out, err
}

func (r *UserRepository) GetCurrentUser(ctx context.Context, token string) (models.User, error) {
	var out models.User
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/users/me",
		Token:  token,
	}, &out)
	return out, err
}

func (r *UserRepository) GetAll(ctx context.Context, p transport.Pagination, token string) (transport.Paged[models.User], error) {
	var out transport.Paged[models.User]
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/users",
		Query:  paginationQuery(p),
		Token:  token,
	}, &out)
	return out, err
}

func (r *UserRepository) GetByID(ctx context.Context, id int, token string) (models.User, error) {
	if id <= 0 {
		return models.User{}, &transport.UnexpectedError{Message: fmt.Sprintf("invalid user id %d", id)}
	}
	var out models.User
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/users/" + strconv.Itoa(id),
		Token:  token,
	}, &out)
	return out, err
}

func (r *UserRepository) Create(ctx context.Context, data models.CreateUserData, token string) (models.User, error) {
	var out models.User
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/users",
		Body:   data,
		Token:  token,
	}, &out)
	return out, err
}

func (r *UserRepository) Update(ctx context.Context, id int, data models.UpdateProfileData, token string) (models.User, error) {
	var out models.User
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodPut,
		Path:   "/users/" + strconv.Itoa(id),
		Body:   data,
		Token:  token,
	}, &out)
	return out, err
}

func (r *UserRepository) Patch(ctx context.Context, id int, fields map[string]any, token string) (models.User, error) {
	var out models.User
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodPatch,
		Path:   "/users/" + strconv.Itoa(id),
		Body:   fields,
		Token:  token,
	}, &out)
	return out, err
}

func (r *UserRepository) Delete(ctx context.Context, id int, token string) error {
	return r.client.Do(ctx, transport.Request{
		Method: http.MethodDelete,
		Path:   "/users/" + strconv.Itoa(id),
		Token:  token,
	}, nil)
}

func (r *UserRepository) FindWhere(ctx context.Context, filters url.Values, p transport.Pagination, token string) (transport.Paged[models.User], error) {
	query := paginationQuery(p)
	for key, values := range filters {
		for _, v := range values {
			query.Add(key, v)
		}
	}
	var out transport.Paged[models.User]
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/users",
		Query:  query,
		Token:  token,
	}, &out)
	return out, err
}

func (r *UserRepository) FindOne(ctx context.Context, filters url.Values, token string) (*models.User, error) {
	var out []models.User
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/users",
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

func (r *UserRepository) GetUsersByRole(ctx context.Context, role string, token string) ([]models.User, error) {
	var out []models.User
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/users/role/" + url.PathEscape(role),
		Token:  token,
	}, &out)
	return out, err
}

// GetTeachers fetches every user the schedule forms can assign.
func (r *UserRepository) GetTeachers(ctx context.Context, token string) ([]models.User, error) {
	var out []models.User
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/users/all",
		Token:  token,
	}, &out)
	return out, err
}

func (r *UserRepository) SearchUsers(ctx context.Context, filters models.UserFilters, token string) ([]models.User, error) {
	query := url.Values{}
	if filters.Name != "" {
		query.Set("name", filters.Name)
	}
	if filters.Email != "" {
		query.Set("email", filters.Email)
	}
	if filters.Role != "" {
		query.Set("role", filters.Role)
	}
	if filters.Status != nil {
		query.Set("status", strconv.FormatBool(*filters.Status))
	}

	var out []models.User
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodGet,
		Path:   "/users/search",
		Query:  query,
		Token:  token,
	}, &out)
	return out, err
}

func (r *UserRepository) ChangePassword(ctx context.Context, data models.ChangePasswordData, token string) error {
	return r.client.Do(ctx, transport.Request{
		Method: http.MethodPut,
		Path:   "/users/changePassword",
		Body:   data,
		Token:  token,
	}, nil)
}

func (r *UserRepository) UpdateProfile(ctx context.Context, data models.UpdateProfileData, token string) (models.User, error) {
	var out models.User
	err := r.client.Do(ctx, transport.Request{
		Method: http.MethodPut,
		Path:   "/users/profile",
		Body:   data,
		Token:  token,
	}, &out)
	return out, err
}

type PhotoUploadResult struct {
	Photo    string `json:"photo" mapstructure:"photo"`
	PhotoURL string `json:"photoUrl" mapstructure:"photoUrl"`
}

// UploadPhoto sends the file reference as the "document" multipart field,
// matching what the API's upload middleware expects.
func (r *UserRepository) UploadPhoto(ctx context.Context, userID int, file transport.FileRef, token string) (PhotoUploadResult, error) {
	var out PhotoUploadResult
	err := r.client.DoMultipart(ctx, http.MethodPut,
		"/users/uploadimage/"+strconv.Itoa(userID), token, "document", file, &out)
	return out, err
}

func (r *UserRepository) ToggleStatus(ctx context.Context, id int, status bool, token string) error {
	return r.client.Do(ctx, transport.Request{
		Method: http.MethodPatch,
		Path:   "/users/" + strconv.Itoa(id) + "/status",
		Body:   map[string]bool{"status": status},
		Token:  token,
	}, nil)
}

// CreateOTC asks the server to email a one-time code for password
// recovery.
func (r *UserRepository) CreateOTC(ctx context.Context, email string) error {
	return r.client.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/users/otc",
		Body:   map[string]string{"email": email},
	}, nil)
}

func (r *UserRepository) VerifyOTC(ctx context.Context, email, code string) error {
	return r.client.Do(ctx, transport.Request{
		Method: http.MethodPost,
		Path:   "/users/otc/verify",
		Body:   map[string]string{"email": email, "code": code},
	}, nil)
}

// ChangeRecoveryPassword completes the recovery flow; the verified code
// stands in for the old password.
func (r *UserRepository) ChangeRecoveryPassword(ctx context.Context, data models.RecoveryPasswordData, code string) error {
	return r.client.Do(ctx, transport.Request{
		Method: http.MethodPut,
		Path:   "/users/recoveryPassword",
		Body: map[string]string{
			"email":     data.Email,
			"newPwd":    data.NewPassword,
			"repeatPwd": data.RepeatPassword,
			"code":      code,
		},
	}, nil)
}

func paginationQuery(p transport.Pagination) url.Values {
	query := url.Values{}
	if p.Page > 0 {
		query.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		query.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.SortBy != "" {
		query.Set("sortBy", p.SortBy)
	}
	if p.SortOrder != "" {
		query.Set("sortOrder", p.SortOrder)
	}
	return query
}
