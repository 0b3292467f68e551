// Package api implements the HTTP service clients for the remote coaching API.
// Clients shape requests and decode responses; they hold no state.
package api

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

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/simp-lee/coachsync/internal/domain"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://127.0.0.1:5000"

const maxResponseBytes = 8 << 20

// TokenSource supplies the bearer token for authenticated requests.
// Implementations return a *domain.AppError with CodeUnauthorized when no
// usable token exists.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Config holds client configuration.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Tokens     TokenSource
	// Limiter throttles outgoing requests when non-nil.
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

// Client performs requests against the remote API.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
	tokens     TokenSource
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// New creates a Client. An empty BaseURL falls back to DefaultBaseURL.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    baseURL,
		timeout:    cfg.Timeout,
		httpClient: httpClient,
		tokens:     cfg.Tokens,
		limiter:    cfg.Limiter,
		logger:     logger,
	}, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
	// Public requests are sent without a bearer token.
	Public bool
}

// Do executes req and returns the raw response body of a 2xx response.
// Non-2xx responses become a *domain.AppError whose code follows the status.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	var token string
	if !req.Public {
		if c.tokens == nil {
			return nil, domain.ErrUnauthorized
		}
		t, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		if t == "" {
			return nil, domain.ErrUnauthorized
		}
		token = t
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, domain.NewAppError(domain.CodeRemote, "", fmt.Errorf("rate limit wait: %w", err))
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, domain.NewAppError(domain.CodeInternal, "", fmt.Errorf("marshal request body: %w", err))
		}
		body = bytes.NewReader(payload)
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "", fmt.Errorf("create request: %w", err))
	}
	requestID := uuid.NewString()
	httpReq.Header.Set("accept", "*/*")
	httpReq.Header.Set("X-Request-ID", requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.WarnContext(ctx, "api request failed",
			slog.String("method", req.Method),
			slog.String("path", req.Path),
			slog.String("request_id", requestID),
			slog.Any("error", err),
		)
		return nil, domain.NewAppError(domain.CodeRemote, "", fmt.Errorf("%s %s: %w", req.Method, req.Path, err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, domain.NewAppError(domain.CodeRemote, "", fmt.Errorf("read response: %w", err))
	}

	c.logger.DebugContext(ctx, "api request",
		slog.String("method", req.Method),
		slog.String("path", req.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", time.Since(start)),
		slog.String("request_id", requestID),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.AppError{
			Code:    domain.CodeForStatus(resp.StatusCode),
			Message: remoteMessage(raw),
			Status:  resp.StatusCode,
			Err:     fmt.Errorf("%s %s failed with status %d", req.Method, req.Path, resp.StatusCode),
		}
	}
	return raw, nil
}

// remoteMessage extracts a server-provided message from an error body.
func remoteMessage(raw []byte) string {
	if len(raw) == 0 || !gjson.ValidBytes(raw) {
		return ""
	}
	root := gjson.ParseBytes(raw)
	if root.Type == gjson.String {
		return strings.TrimSpace(root.String())
	}
	for _, key := range []string{"message", "title", "error", "detail"} {
		if v := root.Get(key); v.Type == gjson.String && strings.TrimSpace(v.String()) != "" {
			return strings.TrimSpace(v.String())
		}
	}
	return ""
}

// IsCanceled reports whether err stems from context cancellation.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}
