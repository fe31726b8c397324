package service

import (
	"net/http"

	"github.com/rs/zerolog"

	"classbook/internal/transport"
)

// Response is the uniform envelope every service method returns. Callers
// branch on Success; errors never escape a service as panics or raw error
// values.
type Response[T any] struct {
	Success    bool   `json:"success"`
	Data       T      `json:"data,omitempty"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
}

// Paginated is the envelope for list reads, carrying paging metadata
// alongside the page of results.
type Paginated[T any] struct {
	Success    bool   `json:"success"`
	Data       []T    `json:"data"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"totalPages"`
	Message    string `json:"message,omitempty"`
	Error      string `json:"error,omitempty"`
	StatusCode int    `json:"statusCode,omitempty"`
}

func ok[T any](data T, message string) Response[T] {
	return Response[T]{
		Success:    true,
		Data:       data,
		Message:    message,
		StatusCode: http.StatusOK,
	}
}

func fail[T any](message string, statusCode int) Response[T] {
	return Response[T]{
		Success:    false,
		Error:      message,
		StatusCode: statusCode,
	}
}

func invalid[T any](result ValidationResult) Response[T] {
	return fail[T]("invalid data: "+result.FirstError(), http.StatusBadRequest)
}

func paginatedOK[T any](data []T, total, page, limit int, message string) Paginated[T] {
	if limit <= 0 {
		limit = 10
	}
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}
	return Paginated[T]{
		Success:    true,
		Data:       data,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		Message:    message,
	}
}

// fromError translates a normalized transport failure into the envelope,
// logging it with the service and method for traceability.
func fromError[T any](log zerolog.Logger, method string, err error) Response[T] {
	event := log.Error().Str("method", method).Err(err)

	switch e := err.(type) {
	case *transport.APIError:
		event.Int("status", e.Status).Msg("api error")
		return fail[T](e.Message, e.Status)
	case *transport.NetworkError:
		event.Msg("network error")
		return fail[T]("connection failed, check your network and try again", 0)
	case *transport.UnexpectedError:
		event.Msg("unexpected error")
		return fail[T]("unexpected error, try again later", http.StatusInternalServerError)
	default:
		event.Msg("unhandled error")
		return fail[T]("internal error, try again later", http.StatusInternalServerError)
	}
}

func paginatedFromError[T any](log zerolog.Logger, method string, err error) Paginated[T] {
	resp := fromError[[]T](log, method, err)
	return Paginated[T]{
		Success:    false,
		Error:      resp.Error,
		StatusCode: resp.StatusCode,
	}
}
