package habitica

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultBaseURL is the Habitica v3 API endpoint
const DefaultBaseURL = "https://habitica.com/api/v3"

// Client is a Habitica REST API client. It performs single calls only;
// retry and backoff policy belong to the caller.
type Client struct {
	BaseURL string
	UserID  string
	Token   string
	HTTP    *http.Client
}

// APIError is a non-2xx response from the Habitica API
type APIError struct {
	Status     int
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("habitica: status %d", e.Status)
	}
	return fmt.Sprintf("habitica: status %d: %s", e.Status, e.Message)
}

// NewClient creates a Habitica API client authenticated as userID
func NewClient(baseURL, userID, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		UserID:  userID,
		Token:   token,
		HTTP: &http.Client{
			Timeout: timeout,
		},
	}
}

// envelope is the Habitica response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// UserTasks lists the authenticated user's tasks. taskType filters by
// the API's plural type names ("habits", "dailys", "todos", "rewards");
// empty lists everything.
func (c *Client) UserTasks(ctx context.Context, taskType string) ([]Task, error) {
	query := url.Values{}
	if taskType != "" {
		query.Set("type", taskType)
	}
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, "/tasks/user", query, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask creates one task and returns the created remote task
func (c *Client) CreateTask(ctx context.Context, create TaskCreate) (Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPost, "/tasks/user", nil, create, &task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// UpdateTask applies field updates to an existing task
func (c *Client) UpdateTask(ctx context.Context, taskID string, update TaskUpdate) (Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(taskID), nil, update, &task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// DeleteTask removes a task
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(taskID), nil, nil, nil)
}

// ScoreTask scores a task up or down
func (c *Client) ScoreTask(ctx context.Context, taskID string, dir Direction) error {
	path := "/tasks/" + url.PathEscape(taskID) + "/score/" + string(dir)
	return c.do(ctx, http.MethodPost, path, nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	fullURL := c.BaseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		buf = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, buf)
	if err != nil {
		return err
	}
	req.Header.Set("x-api-user", c.UserID)
	req.Header.Set("x-api-key", c.Token)
	req.Header.Set("x-client", c.UserID+"-habitui")
	req.Header.Set("Content-Type", "application/json")
	if method != http.MethodGet {
		req.Header.Set("X-Request-Id", uuid.NewString())
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode >= 400 {
		return &APIError{
			Status:     resp.StatusCode,
			Message:    errorMessage(data),
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}
	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode response data: %w", err)
	}
	return nil
}

// errorMessage pulls the human-readable message out of an error
// envelope, falling back to the raw body.
func errorMessage(data []byte) string {
	var env envelope
	if err := json.Unmarshal(data, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if env.Error != "" {
			return env.Error
		}
	}
	return strings.TrimSpace(string(data))
}

func parseRetryAfter(header string) time.Duration {
	secs, err := strconv.ParseFloat(strings.TrimSpace(header), 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
