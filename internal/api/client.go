// Package api is the HTTP client for the cifra backend and the wire types
// both sides share.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "http://localhost:3001/api"
	defaultTimeout = 15 * time.Second
)

// TokenStore keeps the bearer token between runs.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// MemoryTokens is a TokenStore that forgets on exit.
type MemoryTokens struct{ token string }

func (m *MemoryTokens) Token(context.Context) (string, error) { return m.token, nil }

func (m *MemoryTokens) SetToken(_ context.Context, token string) error {
	m.token = token
	return nil
}

func (m *MemoryTokens) ClearToken(context.Context) error {
	m.token = ""
	return nil
}

type Options struct {
	BaseURL    string
	Tokens     TokenStore
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client talks to the backend REST API.
type Client struct {
	baseURL    string
	tokens     TokenStore
	httpClient *http.Client
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	tokens := opts.Tokens
	if tokens == nil {
		tokens = &MemoryTokens{}
	}
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{baseURL: baseURL, tokens: tokens, httpClient: hc}
}

func (c *Client) BaseURL() string { return c.baseURL }

// HasToken reports whether a token is stored. It does not check validity.
func (c *Client) HasToken(ctx context.Context) bool {
	tok, err := c.tokens.Token(ctx)
	return err == nil && tok != ""
}

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, username, email, password string) (*User, error) {
	var resp AuthResponse
	req := RegisterRequest{Username: username, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", false, req, &resp); err != nil {
		return nil, err
	}
	return c.signedIn(ctx, &resp)
}

// Login signs in and stores the returned token.
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	var resp AuthResponse
	req := LoginRequest{Username: username, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", false, req, &resp); err != nil {
		return nil, err
	}
	return c.signedIn(ctx, &resp)
}

func (c *Client) signedIn(ctx context.Context, resp *AuthResponse) (*User, error) {
	if resp.Token != "" {
		if err := c.tokens.SetToken(ctx, resp.Token); err != nil {
			return nil, fmt.Errorf("store token: %w", err)
		}
	}
	return &resp.User, nil
}

// Verify checks the stored token and returns its user.
func (c *Client) Verify(ctx context.Context) (*User, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodGet, "/auth/verify", true, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.User, nil
}

// Logout forgets the stored token. The server keeps no session state.
func (c *Client) Logout(ctx context.Context) error {
	return c.tokens.ClearToken(ctx)
}

func (c *Client) Progress(ctx context.Context) ([]LessonProgress, error) {
	var resp ProgressResponse
	if err := c.do(ctx, http.MethodGet, "/progress", true, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Progress, nil
}

func (c *Client) SaveLessonProgress(ctx context.Context, lessonID string, completed bool, currentStep int) error {
	req := LessonProgressRequest{LessonID: lessonID, Completed: completed, CurrentStep: currentStep}
	return c.do(ctx, http.MethodPost, "/progress/lesson", true, req, nil)
}

func (c *Client) Achievements(ctx context.Context) ([]Achievement, error) {
	var resp AchievementsResponse
	if err := c.do(ctx, http.MethodGet, "/achievements", true, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Achievements, nil
}

func (c *Client) AddAchievement(ctx context.Context, name, icon string) error {
	return c.do(ctx, http.MethodPost, "/achievements", true, AchievementRequest{Name: name, Icon: icon}, nil)
}

func (c *Client) SaveTestResult(ctx context.Context, r TestResultRequest) error {
	return c.do(ctx, http.MethodPost, "/tests/result", true, r, nil)
}

func (c *Client) TestResults(ctx context.Context) ([]TestResult, error) {
	var resp TestResultsResponse
	if err := c.do(ctx, http.MethodGet, "/tests/results", true, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var resp StatsResponse
	if err := c.do(ctx, http.MethodGet, "/stats", true, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Stats, nil
}

func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	var resp DashboardResponse
	if err := c.do(ctx, http.MethodGet, "/dashboard", true, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Dashboard, nil
}

func (c *Client) do(ctx context.Context, method, path string, auth bool, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if auth {
		tok, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("load token: %w", err)
		}
		if tok == "" {
			return ErrNoToken
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &Error{Status: resp.StatusCode}
		var msg MessageResponse
		if json.Unmarshal(raw, &msg) == nil {
			apiErr.Message = msg.Message
		}
		if apiErr.Message == "" {
			apiErr.Message = DefaultErrorMessage
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
