// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package client

import (
	"bufio"
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
	"sync"
	"time"

	"github.com/danielhkuo/liftlog/models"
	"github.com/danielhkuo/liftlog/timer"
)

// DefaultTimeout bounds plain requests. Event streams are not bounded.
const DefaultTimeout = 10 * time.Second

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api returned status %d: %s", e.StatusCode, e.Message)
}

// Client talks to a LiftLog server. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	stream  *http.Client

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

// WithHTTPClient replaces the client used for plain requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken sets a session token obtained earlier.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New accepts "host:port" or a full http(s) URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("base url %q has no host", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: DefaultTimeout},
		stream:  &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Token returns the current session token, if any.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login exchanges the shared password for a session token and keeps it for
// later requests.
func (c *Client) Login(ctx context.Context, password string) (models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", models.LoginRequest{Password: password}, &resp); err != nil {
		return models.LoginResponse{}, err
	}

	c.mu.Lock()
	c.token = resp.Token
	c.mu.Unlock()
	return resp, nil
}

// Timers returns a timer.Store backed by the server's timer endpoints.
func (c *Client) Timers() *TimerStore {
	return &TimerStore{c: c}
}

// TimerStore implements timer.Store over HTTP, so a timer.Syncer can run
// against a remote server.
type TimerStore struct {
	c *Client
}

var _ timer.Store = (*TimerStore)(nil)

// Load returns the stored state as is. The daily reset is left to the
// caller's timer.LoadDay so it runs against the caller's own day.
func (s *TimerStore) Load(ctx context.Context, key string) (timer.State, error) {
	var snap timer.Snapshot
	err := s.c.do(ctx, http.MethodGet, timerPath(key)+"?raw=1", nil, &snap)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return timer.State{}, timer.ErrNotFound
	}
	if err != nil {
		return timer.State{}, err
	}
	return snap.State, nil
}

func (s *TimerStore) Save(ctx context.Context, key string, st timer.State) error {
	return s.c.do(ctx, http.MethodPut, timerPath(key), st, nil)
}

// Subscribe streams every state written for key until ctx is done or the
// server closes the stream. The first value is the state at connect time.
func (s *TimerStore) Subscribe(ctx context.Context, key string) (<-chan timer.State, error) {
	req, err := s.c.newRequest(ctx, http.MethodGet, timerPath(key)+"/events", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.c.stream.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, decodeError(resp)
	}

	out := make(chan timer.State, 1)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		var data []byte
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case line == "":
				if len(data) == 0 {
					continue
				}
				var st timer.State
				if err := json.Unmarshal(data, &st); err != nil {
					slog.Warn("dropping malformed timer event", "key", key, "error", err)
				} else {
					select {
					case out <- st:
					case <-ctx.Done():
						return
					}
				}
				data = data[:0]
			case strings.HasPrefix(line, "data:"):
				data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " ")...)
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			slog.Warn("timer event stream ended", "key", key, "error", err)
		}
	}()
	return out, nil
}

func timerPath(key string) string {
	return "/api/timers/" + url.PathEscape(key)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		r = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Message == "" {
		return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: body.Message}
}
