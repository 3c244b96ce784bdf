// Package apiclient is the single conduit between newsroom tooling and the CMS
// REST API. Every call attaches the stored bearer token, normalizes failures
// into NetworkError, HTTPError or ShapeError and decodes the response against
// the endpoint's expected shape.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/Gilberthb/Umunsi-sub002/pkg/errors"
	"github.com/Gilberthb/Umunsi-sub002/pkg/httpclient"
	"github.com/Gilberthb/Umunsi-sub002/pkg/logger"
	"github.com/Gilberthb/Umunsi-sub002/pkg/tracing"
)

// DefaultBaseURL is used when no API URL is configured.
const DefaultBaseURL = "http://localhost:5000/api"

const maxBodyBytes = 10 << 20

// TokenSource yields the bearer token to attach to a request. An empty token
// means the request is sent unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func(ctx context.Context) (string, error)

// Token calls f.
func (f TokenFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// Config holds client configuration.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
	CircuitBreaker bool
	UserAgent      string
}

// Client talks to the CMS API.
type Client struct {
	baseURL   *url.URL
	http      httpclient.Doer
	tokens    TokenSource
	logger    *slog.Logger
	tracer    trace.Tracer
	userAgent string
}

// New creates a client. The underlying transport never retries: retry policy
// belongs to callers such as the session reconciler.
func New(cfg Config, tokens TokenSource, l *slog.Logger) (*Client, error) {
	hc := httpclient.DefaultConfig()
	hc.MaxRetries = 0
	if cfg.Timeout > 0 {
		hc.Timeout = cfg.Timeout
	}
	hc.RateLimitRPS = cfg.RateLimitRPS
	hc.RateLimitBurst = cfg.RateLimitBurst

	var doer httpclient.Doer = httpclient.New(hc)
	if cfg.CircuitBreaker {
		doer = httpclient.NewCircuitBreakerClient(doer.(*httpclient.Client), httpclient.DefaultCircuitBreakerConfig("cms-api"), l)
	}
	return NewWithDoer(cfg.BaseURL, doer, tokens, l, cfg.UserAgent)
}

// NewWithDoer creates a client over an existing transport.
func NewWithDoer(baseURL string, doer httpclient.Doer, tokens TokenSource, l *slog.Logger, userAgent string) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse API base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("API base URL must be http or https, got %q", baseURL)
	}
	if tokens == nil {
		tokens = TokenFunc(func(context.Context) (string, error) { return "", nil })
	}
	if l == nil {
		l = logger.Discard()
	}
	if userAgent == "" {
		userAgent = "newsctl"
	}
	return &Client{
		baseURL:   u,
		http:      doer,
		tokens:    tokens,
		logger:    l,
		tracer:    tracing.Tracer("github.com/Gilberthb/Umunsi-sub002/internal/apiclient"),
		userAgent: userAgent,
	}, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// request describes one API call.
type request struct {
	method   string
	path     string
	query    url.Values
	body     any
	upload   *multipartBody
	resource string
}

// call sends req, decodes the response with decode and records the outcome.
// Exactly one of a decoded value or an error is returned.
func call[T any](ctx context.Context, c *Client, req request, decode func([]byte) (T, error)) (T, error) {
	var zero T
	start := time.Now()
	ctx, _ = logger.EnsureCorrelationID(ctx)

	ctx, span := c.tracer.Start(ctx, "cms "+req.method+" "+req.resource,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.method),
			attribute.String("cms.resource", req.resource),
		),
	)
	defer span.End()

	body, err := c.send(ctx, req)
	var out T
	if err == nil {
		out, err = decode(body)
	}

	outcome := outcomeOf(err)
	observe(req.resource, req.method, outcome, time.Since(start))
	span.SetAttributes(attribute.String("cms.outcome", string(outcome)))

	l := logger.WithContext(ctx, c.logger)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(outcome))
		l.DebugContext(ctx, "api call failed",
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.String("outcome", string(outcome)),
			slog.String("error", err.Error()),
		)
		return zero, err
	}
	l.DebugContext(ctx, "api call succeeded",
		slog.String("method", req.method),
		slog.String("path", req.path),
		slog.Duration("duration", time.Since(start)),
	)
	return out, nil
}

// send performs the HTTP exchange and returns the body of a 2xx response.
func (c *Client) send(ctx context.Context, req request) ([]byte, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(ctx, httpReq)
	if err != nil {
		if errors.Is(err, apperrors.ErrNetwork) {
			return nil, err
		}
		return nil, &apperrors.NetworkError{Op: req.method + " " + req.path, Err: err}
	}

	trace.SpanFromContext(ctx).SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if !httpclient.IsSuccess(resp.StatusCode) {
		return nil, httpclient.ParseResponseError(resp)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &apperrors.NetworkError{Op: req.method + " " + req.path, Err: fmt.Errorf("read response body: %w", err)}
	}
	return data, nil
}

func (c *Client) newRequest(ctx context.Context, req request) (*http.Request, error) {
	target := c.baseURL.String() + req.path
	if len(req.query) > 0 {
		target += "?" + req.query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.upload != nil:
		buf, ct, err := req.upload.encode()
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case req.body != nil:
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", req.resource, err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("look up bearer token: %w", err)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpReq.Header.Set("X-Request-ID", logger.CorrelationIDFromContext(ctx))
	tracing.InjectHeaders(ctx, httpReq.Header)

	return httpReq, nil
}

// escape makes an id safe to use as one path segment.
func escape(id string) string {
	return url.PathEscape(id)
}
