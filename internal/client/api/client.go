// Package api is the HTTP client for the task manager REST API.
package api

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

	"github.com/adanyl0v/task-manager/internal/models"
)

// TokenSource supplies the bearer token attached to protected calls.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource with a fixed value.
type StaticToken string

func (t StaticToken) Token() string {
	return string(t)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

type AuthResponse struct {
	Token string             `json:"token"`
	User  models.UserSummary `json:"user"`
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	body := map[string]string{"name": name, "email": email, "password": password}
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/signup", false, body, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	body := map[string]string{"email": email, "password": password}
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", false, body, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*models.UserSummary, error) {
	var out struct {
		User models.UserSummary `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/api/auth/me", true, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out.User, nil
}

// ListTasks fetches the caller's tasks. An empty status returns all of them.
func (c *Client) ListTasks(ctx context.Context, status string) ([]*models.Task, error) {
	path := "/api/tasks"
	if status != "" {
		path += "?" + url.Values{"status": {status}}.Encode()
	}

	var out struct {
		Count int            `json:"count"`
		Data  []*models.Task `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, path, true, nil, &out)
	if err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var out struct {
		Data *models.Task `json:"data"`
	}
	err := c.do(ctx, http.MethodGet, taskPath(id), true, nil, &out)
	if err != nil {
		return nil, err
	}
	return out.Data, nil
}

type TaskInput struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Priority    models.Priority `json:"priority,omitempty"`
	DueDate     string          `json:"dueDate"`
	DueTime     string          `json:"dueTime,omitempty"`
}

func (c *Client) CreateTask(ctx context.Context, input TaskInput) (*models.Task, error) {
	var out struct {
		Data *models.Task `json:"data"`
	}
	err := c.do(ctx, http.MethodPost, "/api/tasks", true, input, &out)
	if err != nil {
		return nil, err
	}
	return out.Data, nil
}

// TaskPatch sends only its non-nil fields.
type TaskPatch struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Priority    *models.Priority `json:"priority,omitempty"`
	DueDate     *string          `json:"dueDate,omitempty"`
	DueTime     *string          `json:"dueTime,omitempty"`
	Completed   *bool            `json:"completed,omitempty"`
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch TaskPatch) (*models.Task, error) {
	var out struct {
		Data *models.Task `json:"data"`
	}
	err := c.do(ctx, http.MethodPut, taskPath(id), true, patch, &out)
	if err != nil {
		return nil, err
	}
	return out.Data, nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), true, nil, nil)
}

func taskPath(id string) string {
	return "/api/tasks/" + url.PathEscape(id)
}

// do sends body as JSON and decodes a 2xx response into out. Any other
// status is returned as an *Error carrying the server's message.
func (c *Client) do(ctx context.Context, method, path string, protected bool, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if protected && c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	if out != nil {
		err = json.NewDecoder(resp.Body).Decode(out)
		if err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var envelope struct {
		Message string `json:"message"`
	}
	apiErr := &Error{Status: resp.StatusCode}
	if json.Unmarshal(data, &envelope) == nil && envelope.Message != "" {
		apiErr.Message = envelope.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
