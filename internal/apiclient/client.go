// Package apiclient talks to the back-office REST API that owns events,
// packages, leads, quotes and the dashboard.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/sports-travel-platform/internal/apperr"
	"github.com/wolfman30/sports-travel-platform/internal/observability/metrics"
	"github.com/wolfman30/sports-travel-platform/internal/session"
	"github.com/wolfman30/sports-travel-platform/pkg/logging"
)

const (
	defaultBaseURL   = "http://localhost:5000/api"
	defaultUserAgent = "sportstravel-backoffice/0.1"
)

var tracer = otel.Tracer("sportstravel.internal.apiclient")

var errMissingToken = errors.New("response carried no token")

// Config controls how the client behaves.
type Config struct {
	BaseURL string
	// Token is used when the request context carries no session.
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
	Metrics    *metrics.CoreMetrics
	UserAgent  string
}

// Client wraps the REST endpoints. Requests are sent once; failures are
// returned to the caller without retrying.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.CoreMetrics
	userAgent  string
}

// New creates a configured Client with sane defaults.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base url %q", baseURL)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		baseURL:    baseURL,
		token:      strings.TrimSpace(cfg.Token),
		httpClient: httpClient,
		logger:     logger,
		metrics:    cfg.Metrics,
		userAgent:  userAgent,
	}, nil
}

// envelope is the response wrapper every endpoint uses.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error,omitempty"`
}

// request describes one call. Endpoint is the route template used for
// tracing and metric labels; Path is the concrete path.
type request struct {
	Method   string
	Endpoint string
	Path     string
	Query    url.Values
	Body     any
}

func (c *Client) invoke(ctx context.Context, r request) (json.RawMessage, error) {
	op := r.Method + " " + r.Endpoint
	ctx, span := tracer.Start(ctx, "apiclient.request")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", r.Method),
		attribute.String("sportstravel.endpoint", r.Endpoint),
	)

	start := time.Now()
	outcome := "transport_error"
	defer func() {
		c.metrics.ObserveAPIRequest(r.Method, r.Endpoint, outcome, time.Since(start).Seconds())
	}()

	var bodyReader io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			outcome = "encode_error"
			return nil, fmt.Errorf("apiclient: marshal %s body: %w", r.Endpoint, err)
		}
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.Method, c.buildURL(r.Path, r.Query), bodyReader)
	if err != nil {
		outcome = "encode_error"
		return nil, fmt.Errorf("apiclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if r.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth := c.authorization(ctx); auth != "" {
		req.Header.Set("Authorization", auth)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport error")
		c.logger.Warn("api request failed", "endpoint", r.Endpoint, "method", r.Method, "error", err)
		return nil, apperr.Network(op, err)
	}
	data, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	if readErr != nil {
		span.RecordError(readErr)
		return nil, apperr.Network(op, fmt.Errorf("read response: %w", readErr))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp.StatusCode, data)
		mapped := classify(op, apiErr)
		outcome = string(apperr.KindOf(mapped))
		span.RecordError(mapped)
		span.SetStatus(codes.Error, apiErr.Error())
		c.logger.Warn("api request rejected", "endpoint", r.Endpoint, "method", r.Method, "status", resp.StatusCode, "message", apiErr.Message)
		return nil, mapped
	}

	var env envelope
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &env); err != nil {
			outcome = "decode_error"
			span.RecordError(err)
			return nil, apperr.Network(op, fmt.Errorf("decode response: %w", err))
		}
	} else {
		env.Success = true
	}
	if !env.Success {
		outcome = string(apperr.KindValidation)
		apiErr := &apiError{StatusCode: resp.StatusCode, Message: env.Message}
		return nil, classify(op, apiErr)
	}
	outcome = "success"
	return env.Data, nil
}

func (c *Client) authorization(ctx context.Context) string {
	if s, ok := session.FromContext(ctx); ok {
		if h := s.AuthorizationHeader(); h != "" {
			return h
		}
	}
	if c.token != "" {
		return "Bearer " + c.token
	}
	return ""
}

func (c *Client) buildURL(path string, query url.Values) string {
	trimmedPath := "/" + strings.TrimLeft(path, "/")
	full := c.baseURL + trimmedPath
	if len(query) > 0 {
		full = full + "?" + query.Encode()
	}
	return full
}

// apiError is a non-2xx response from the API.
type apiError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
}

func (e *apiError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("apiclient: %s (status=%d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("apiclient: http status %d", e.StatusCode)
}

func decodeAPIError(status int, body []byte) *apiError {
	parsed := &apiError{StatusCode: status}
	var env struct {
		Message string          `json:"message"`
		Field   string          `json:"field"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		parsed.Message = strings.TrimSpace(string(body))
		return parsed
	}
	parsed.Message = env.Message
	parsed.Field = env.Field
	if parsed.Message == "" && len(env.Error) > 0 {
		var msg string
		if json.Unmarshal(env.Error, &msg) == nil {
			parsed.Message = msg
		}
	}
	return parsed
}

// classify maps a rejected response onto the error taxonomy. 404 is not
// found, 400 and 422 keep the server's message as a validation error and
// everything else is a network error.
func classify(op string, e *apiError) error {
	switch e.StatusCode {
	case http.StatusNotFound:
		msg := e.Message
		if msg == "" {
			msg = "resource not found"
		}
		return &apperr.Error{Kind: apperr.KindNotFound, Op: op, Msg: msg, Err: e}
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusOK, http.StatusCreated:
		msg := e.Message
		if msg == "" {
			msg = "request rejected"
		}
		return &apperr.Error{Kind: apperr.KindValidation, Op: op, Field: e.Field, Msg: msg, Err: e}
	default:
		return apperr.Network(op, e)
	}
}

// notFoundAs replaces a not-found error with the domain sentinel so callers
// can match it with errors.Is.
func notFoundAs(err error, sentinel error) error {
	if err != nil && apperr.IsNotFound(err) {
		return sentinel
	}
	return err
}

func decodeData[T any](raw json.RawMessage) (*T, error) {
	var out T
	if len(raw) == 0 || string(raw) == "null" {
		return &out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("apiclient: decode response: %w", err)
	}
	return &out, nil
}

// decodeList accepts either a bare array or an object holding the array
// under key.
func decodeList[T any](raw json.RawMessage, key string) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return []T{}, nil
	}
	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("apiclient: decode list: %w", err)
		}
		return out, nil
	}
	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("apiclient: decode list: %w", err)
	}
	inner, ok := wrapped[key]
	if !ok {
		return nil, errors.New("apiclient: decode list: missing " + key)
	}
	return decodeList[T](inner, key)
}
