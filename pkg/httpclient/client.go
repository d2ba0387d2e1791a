// Package httpclient is a client for the learnfil HTTP API.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"digital.vasic.lessons/pkg/auth"
	"digital.vasic.lessons/pkg/lesson"
	"digital.vasic.lessons/pkg/progress"
	"digital.vasic.lessons/pkg/session"
)

// ClientOption configures an APIClient via functional options.
type ClientOption func(*APIClient)

// APIClient calls the learnfil API. Signing in stores the token,
// which is then sent as a bearer token with every request.
type APIClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// APIError is an error envelope returned by the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// ModuleSummary is a module with the caller's progress.
type ModuleSummary struct {
	lesson.Module
	LessonCount int                  `json:"lesson_count"`
	Progress    progress.ModuleStats `json:"progress"`
	Percent     int                  `json:"percent"`
}

// LessonSummary is a lesson listing entry.
type LessonSummary struct {
	lesson.Lesson
	Completed bool `json:"completed"`
}

type envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Code    string          `json:"code"`
	Message string          `json:"message"`
}

// NewAPIClient creates an API client targeting the given base URL.
func NewAPIClient(baseURL string, opts ...ClientOption) *APIClient {
	c := &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// WithTimeout overrides the default HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *APIClient) { c.httpClient.Timeout = d }
}

// WithToken starts the client with an existing token.
func WithToken(token string) ClientOption {
	return func(c *APIClient) { c.token = token }
}

// SignUp creates an email account and keeps its token.
func (c *APIClient) SignUp(ctx context.Context, name, email, password string) (*auth.Grant, error) {
	return c.grant(ctx, "/auth/signup", map[string]string{
		"name": name, "email": email, "password": password,
	})
}

// SignIn signs in with email and password and keeps the token.
func (c *APIClient) SignIn(ctx context.Context, email, password string) (*auth.Grant, error) {
	return c.grant(ctx, "/auth/signin", map[string]string{
		"email": email, "password": password,
	})
}

// ConnectWallet signs in with a wallet address and keeps the token.
func (c *APIClient) ConnectWallet(ctx context.Context, address string) (*auth.Grant, error) {
	return c.grant(ctx, "/auth/wallet", map[string]string{
		"wallet_address": address,
	})
}

func (c *APIClient) grant(ctx context.Context, path string, body any) (*auth.Grant, error) {
	var g auth.Grant
	if err := c.do(ctx, http.MethodPost, path, body, &g); err != nil {
		return nil, err
	}
	c.token = g.Token
	return &g, nil
}

// SignOut revokes the session and forgets the token.
func (c *APIClient) SignOut(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/auth/signout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

// Modules lists the course modules.
func (c *APIClient) Modules(ctx context.Context) ([]ModuleSummary, error) {
	var out []ModuleSummary
	err := c.do(ctx, http.MethodGet, "/modules", nil, &out)
	return out, err
}

// Lessons lists the lessons of a module.
func (c *APIClient) Lessons(ctx context.Context, moduleID string) ([]LessonSummary, error) {
	var out []LessonSummary
	err := c.do(ctx, http.MethodGet, "/modules/"+url.PathEscape(moduleID)+"/lessons", nil, &out)
	return out, err
}

// Lesson fetches one lesson.
func (c *APIClient) Lesson(ctx context.Context, lessonID string) (*lesson.Lesson, error) {
	var out lesson.Lesson
	if err := c.do(ctx, http.MethodGet, "/lessons/"+url.PathEscape(lessonID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Run submits code for a lesson.
func (c *APIClient) Run(ctx context.Context, lessonID, code string) (*session.Feedback, error) {
	var out session.Feedback
	path := "/lessons/" + url.PathEscape(lessonID) + "/run"
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"code": code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Complete marks a lesson complete without running it.
func (c *APIClient) Complete(ctx context.Context, lessonID, code string) (*progress.Record, error) {
	var out progress.Record
	path := "/lessons/" + url.PathEscape(lessonID) + "/complete"
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"code": code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Progress lists the caller's progress records.
func (c *APIClient) Progress(ctx context.Context) ([]progress.Record, error) {
	var out []progress.Record
	err := c.do(ctx, http.MethodGet, "/progress", nil, &out)
	return out, err
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("parse response (HTTP %d): %w", resp.StatusCode, err)
	}
	if env.Status != "success" {
		return &APIError{StatusCode: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("parse response data: %w", err)
	}
	return nil
}

// Token returns the stored token.
func (c *APIClient) Token() string {
	return c.token
}

// SetToken sets the token directly (e.g. when obtained externally).
func (c *APIClient) SetToken(token string) {
	c.token = token
}

// BaseURL returns the configured base URL.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}
