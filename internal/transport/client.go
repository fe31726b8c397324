package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"classbook/internal/metrics"
)

const requestIDHeader = "X-Request-Id"

// Options configures the shared API client. One Client is built at process
// start and handed to every repository.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables
	RateBurst int
	UserAgent string
}

type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
	log       zerolog.Logger
	metrics   *metrics.Collector
}

func NewClient(opts Options, log zerolog.Logger, collector *metrics.Collector) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		http:      &http.Client{Timeout: timeout},
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		userAgent: opts.UserAgent,
		limiter:   limiter,
		log:       log,
		metrics:   collector,
	}
}

// Request describes a single API call. Token and IdempotencyKey are
// optional; Body is JSON-encoded when non-nil.
type Request struct {
	Method         string
	Path           string
	Query          url.Values
	Body           any
	Token          string
	IdempotencyKey string
}

// Do performs one HTTP round trip and decodes the response into out (which
// may be nil for calls whose body is discarded). Every failure is one of
// APIError, NetworkError or UnexpectedError.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	var body io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return &UnexpectedError{Message: "encode request body", Err: err}
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := c.newRequest(ctx, req, body)
	if err != nil {
		return err
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return c.send(httpReq, out)
}

func (c *Client) newRequest(ctx context.Context, req Request, body io.Reader) (*http.Request, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, &UnexpectedError{Message: "build request", Err: err}
	}

	httpReq.Header.Set(requestIDHeader, uuid.NewString())
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)
	}
	return httpReq, nil
}

func (c *Client) send(httpReq *http.Request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(httpReq.Context()); err != nil {
			return &UnexpectedError{Message: "rate limiter wait", Err: err}
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.RecordRequest(httpReq.Method, 0, elapsed)
		c.log.Warn().
			Str("method", httpReq.Method).
			Str("path", httpReq.URL.Path).
			Str("request_id", httpReq.Header.Get(requestIDHeader)).
			Err(err).
			Msg("no response from server")
		return &NetworkError{Message: "no response from server, check your connection", Err: err}
	}
	defer resp.Body.Close()

	c.metrics.RecordRequest(httpReq.Method, resp.StatusCode, elapsed)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Message: "read response body", Err: err}
	}

	c.log.Debug().
		Str("method", httpReq.Method).
		Str("path", httpReq.URL.Path).
		Int("status", resp.StatusCode).
		Dur("latency", elapsed).
		Msg("api request")

	if resp.StatusCode >= 400 {
		return newAPIError(resp.StatusCode, raw)
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := Decode(raw, out); err != nil {
		return &UnexpectedError{Message: "decode response", Err: err}
	}
	return nil
}

func newAPIError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status, Message: http.StatusText(status)}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil {
		apiErr.Body = body
		if msg, ok := body["message"].(string); ok && msg != "" {
			apiErr.Message = msg
		} else if msg, ok := body["error"].(string); ok && msg != "" {
			apiErr.Message = msg
		}
	}
	return apiErr
}
