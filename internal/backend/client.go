// Package backend is the HTTP client for the orchestrator service that routes a
// question to a specialist agent and returns a grounded answer.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	chatPath         = "/chat"
	healthPath       = "/health"
	defaultTimeout   = 60 * time.Second
	maxErrorBodySize = 240
)

var (
	ErrEmptyMessage      = errors.New("backend: message is empty")
	ErrMalformedResponse = errors.New("backend: malformed response")
)

// StatusError is returned for non-2xx replies.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend http %d", e.Code)
	}
	return fmt.Sprintf("backend http %d: %s", e.Code, e.Body)
}

type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chat performs one request/response exchange. There are no retries.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	if strings.TrimSpace(req.Message) == "" {
		return ChatResponse{}, ErrEmptyMessage
	}
	body, err := json.Marshal(req)
	if err != nil {
		return ChatResponse{}, fmt.Errorf("encode chat request: %w", err)
	}
	started := time.Now()
	payload, err := c.do(ctx, http.MethodPost, chatPath, body)
	if err != nil {
		c.log.Warn().Err(err).Str("session_id", req.SessionID).Dur("elapsed", time.Since(started)).Msg("chat exchange failed")
		return ChatResponse{}, err
	}
	var wire wireResponse
	if err := json.Unmarshal(payload, &wire); err != nil {
		return ChatResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if wire.Message == nil {
		return ChatResponse{}, fmt.Errorf("%w: missing message", ErrMalformedResponse)
	}
	resp := ChatResponse{
		Message: *wire.Message,
		Agent:   strings.TrimSpace(wire.Agent),
		Sources: wire.Sources,
	}
	c.log.Debug().
		Str("session_id", req.SessionID).
		Str("agent", resp.Agent).
		Int("sources", len(resp.Sources)).
		Dur("elapsed", time.Since(started)).
		Msg("chat exchange settled")
	return resp, nil
}

func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	payload, err := c.do(ctx, http.MethodGet, healthPath, nil)
	if err != nil {
		return HealthResponse{}, err
	}
	var out HealthResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return HealthResponse{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend request failed on %s: %w", path, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Code: resp.StatusCode, Body: compact(string(payload), maxErrorBodySize)}
	}
	return payload, nil
}

// compact collapses whitespace and cuts to limit runes.
func compact(text string, limit int) string {
	runes := []rune(strings.Join(strings.Fields(text), " "))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit-3]) + "..."
}
