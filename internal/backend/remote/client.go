// Package remote implements the service.Service interface over the task HTTP API.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"

	"todo/internal/config"
	"todo/internal/logging"
	"todo/internal/service"
)

const (
	// tasksPath is the collection endpoint.
	tasksPath = "/tasks"

	// clearCompletedPath deletes all completed tasks and returns the rest.
	clearCompletedPath = "/tasks?completed=true"
)

// ErrEmptyResponse is returned when a successful response carries no
// record where one is required.
var ErrEmptyResponse = errors.New("empty response")

// Client implements service.Service against the remote API.
type Client struct {
	tr      *Transport
	timeout time.Duration
	log     *log.Logger
}

var _ service.Service = (*Client)(nil)

// New creates a client from config. The base URL must be absolute http(s).
// When an API token is configured, requests carry it as a bearer token.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Client, error) {
	base, err := parseBase(cfg.APIBase)
	if err != nil {
		return nil, err
	}

	var httpClient *http.Client
	if cfg.APIToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.APIToken,
			TokenType:   "Bearer",
		})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	return NewWithHTTPClient(base, httpClient, cfg.Timeout, logger), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(base string, httpClient *http.Client, timeout time.Duration, logger *log.Logger) *Client {
	if logger == nil {
		logger = logging.Discard()
	}
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	logger = logger.WithPrefix("remote")
	return &Client{
		tr:      NewTransport(base, httpClient, logger),
		timeout: timeout,
		log:     logger,
	}
}

func parseBase(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid API base URL %q: %w", raw, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid API base URL %q: must be an absolute http(s) URL", raw)
	}
	return raw, nil
}

// List returns all tasks as sent by the API.
func (c *Client) List(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var tasks []service.Task
	if err := c.tr.Get(ctx, tasksPath, &tasks); err != nil {
		return nil, wrapError(err)
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, nil
}

// Create posts a new task and returns the server's copy.
func (c *Client) Create(ctx context.Context, title string) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var task service.Task
	body := struct {
		Title string `json:"title"`
	}{Title: title}
	if err := c.tr.Post(ctx, tasksPath, body, &task); err != nil {
		return service.Task{}, wrapError(err)
	}
	if task.ID == "" {
		return service.Task{}, fmt.Errorf("create task: %w", ErrEmptyResponse)
	}
	return task, nil
}

// Update sends a partial update for one task.
func (c *Client) Update(ctx context.Context, id string, u service.Update) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var task service.Task
	if err := c.tr.Patch(ctx, taskPath(id), u, &task); err != nil {
		return service.Task{}, wrapError(err)
	}
	if task.ID == "" {
		return service.Task{}, fmt.Errorf("update task %s: %w", id, ErrEmptyResponse)
	}
	return task, nil
}

// Remove deletes one task.
func (c *Client) Remove(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.tr.Delete(ctx, taskPath(id), nil); err != nil {
		return wrapError(err)
	}
	return nil
}

// ClearCompleted asks the API to delete completed tasks. If that call
// fails for any reason, or succeeds without returning the remaining list,
// it lists all tasks and filters completed ones out locally; nothing is
// written back in that case.
func (c *Client) ClearCompleted(ctx context.Context) ([]service.Task, error) {
	remaining, err := c.clearCompleted(ctx)
	if err == nil {
		return remaining, nil
	}
	c.log.Debug("clear completed endpoint failed, filtering locally", "err", err)

	tasks, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	return service.FilterTasks(tasks, service.FilterActive), nil
}

func (c *Client) clearCompleted(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var remaining []service.Task
	if err := c.tr.Delete(ctx, clearCompletedPath, &remaining); err != nil {
		return nil, err
	}
	// An empty body or null is not a remainder; "[]" is.
	if remaining == nil {
		return nil, fmt.Errorf("clear completed: %w", ErrEmptyResponse)
	}
	return remaining, nil
}

func taskPath(id string) string {
	return tasksPath + "/" + url.PathEscape(id)
}

// wrapError adds context to transport failures. HTTP status errors are
// returned as-is so callers can inspect them with errors.As.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var herr *HTTPError
	if errors.As(err, &herr) {
		return err
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out: %w", err)
	}

	return err
}
