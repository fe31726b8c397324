package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{BaseURL: srv.URL}, zerolog.Nop(), nil)
}

func TestDoDecodesEnvelope(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":7,"name":"Ana"}}`))
	})

	var out struct {
		ID   int    `mapstructure:"id"`
		Name string `mapstructure:"name"`
	}
	if err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/users/7"}, &out); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if out.ID != 7 || out.Name != "Ana" {
		t.Fatalf("decoded %+v", out)
	}
}

func TestDoDecodesBareResource(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":3}`))
	})

	var out struct {
		ID int `mapstructure:"id"`
	}
	if err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/users/3"}, &out); err != nil {
		t.Fatalf("Do: %v", err)
	}
	if out.ID != 3 {
		t.Fatalf("decoded %+v", out)
	}
}

func TestDoAPIErrorCarriesServerMessage(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"schedule not found"}`))
	})

	err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/schedules/9"}, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Message != "schedule not found" {
		t.Fatalf("got %+v", apiErr)
	}
}

func TestDoAPIErrorFallsBackToStatusText(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/x"}, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Message != http.StatusText(http.StatusBadGateway) {
		t.Fatalf("message %q", apiErr.Message)
	}
}

func TestDoNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(Options{BaseURL: srv.URL}, zerolog.Nop(), nil)

	err := client.Do(context.Background(), Request{Method: http.MethodGet, Path: "/"}, nil)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %T: %v", err, err)
	}
}

func TestDoSetsHeaders(t *testing.T) {
	var got http.Header
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{}`))
	})

	err := client.Do(context.Background(), Request{
		Method:         http.MethodPost,
		Path:           "/schedules",
		Body:           map[string]string{"title": "Math"},
		Token:          "tok-123",
		IdempotencyKey: "key-456",
	}, nil)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	if got.Get("Authorization") != "Bearer tok-123" {
		t.Errorf("Authorization = %q", got.Get("Authorization"))
	}
	if got.Get("Idempotency-Key") != "key-456" {
		t.Errorf("Idempotency-Key = %q", got.Get("Idempotency-Key"))
	}
	if got.Get("X-Request-Id") == "" {
		t.Error("missing X-Request-Id")
	}
	if got.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", got.Get("Content-Type"))
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"network", &NetworkError{Message: "down"}, true},
		{"server error", &APIError{Status: 500}, true},
		{"throttled", &APIError{Status: 429}, true},
		{"not found", &APIError{Status: 404}, false},
		{"bad request", &APIError{Status: 400}, false},
		{"unexpected", &UnexpectedError{Message: "boom"}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err); got != tt.want {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestDecodePagedKeepsEnvelope(t *testing.T) {
	raw := []byte(`{"data":[{"id":1},{"id":2}],"total":2,"page":1,"limit":10}`)
	var out Paged[struct {
		ID int `mapstructure:"id"`
	}]
	if err := Decode(raw, &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out.Data) != 2 || out.Total != 2 {
		t.Fatalf("decoded %+v", out)
	}
}
