// Package remote imports todos and users from the JSONPlaceholder API.
//
// Every call is best effort. Failures are logged and counted, then reported
// as an empty slice (todos) or an absent Option (users); nothing is returned
// as an error.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Makepad-fr/todogroups/internal/logging"
	"github.com/Makepad-fr/todogroups/internal/metrics"
	"github.com/Makepad-fr/todogroups/internal/model"
	"github.com/Makepad-fr/todogroups/internal/option"
)

const (
	DefaultBaseURL = "https://jsonplaceholder.typicode.com"
	DefaultTimeout = 10 * time.Second

	// endpoint labels
	EndpointUserTodos = "user_todos"
	EndpointUsers     = "users"
)

// Descriptions given to imported todos.
const (
	DescriptionDone       = "Done"
	DescriptionInProgress = "In progress"
)

// User is the part of a /users record the app reads.
type User struct {
	ID   model.ID `json:"id"`
	Name string   `json:"name"`
}

type remoteTodo struct {
	ID        model.ID `json:"id"`
	UserID    model.ID `json:"userId"`
	Title     string   `json:"title"`
	Completed bool     `json:"completed"`
}

// Client talks to the placeholder API.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     *log.Logger
	metrics *metrics.Recorder
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithTimeout bounds each request. Zero or negative disables the bound.
func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

func WithLogger(l *log.Logger) Option { return func(c *Client) { c.log = l } }

func WithMetrics(m *metrics.Recorder) Option { return func(c *Client) { c.metrics = m } }

func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    http.DefaultClient,
		timeout: DefaultTimeout,
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL reports where requests go.
func (c *Client) BaseURL() string { return c.baseURL }

// FetchTodosForUser returns the user's todos mapped into the local shape.
// The result is never nil. GroupID is left zero for the caller to set.
func (c *Client) FetchTodosForUser(ctx context.Context, userID model.ID) []model.Todo {
	var in []remoteTodo
	err := c.getJSON(ctx, fmt.Sprintf("/users/%d/todos", userID), &in)
	c.metrics.Remote(EndpointUserTodos, err == nil)
	if err != nil {
		c.log.Error("fetch todos for user", "user", userID, "err", err)
		return []model.Todo{}
	}
	out := make([]model.Todo, 0, len(in))
	for _, t := range in {
		desc := DescriptionInProgress
		if t.Completed {
			desc = DescriptionDone
		}
		out = append(out, model.Todo{
			ID:          t.ID,
			Title:       t.Title,
			Description: desc,
			Done:        t.Completed,
		})
	}
	return out
}

// FetchUsers lists users. Any failure, including a non-2xx status, is absent;
// an empty list from a healthy API is present.
func (c *Client) FetchUsers(ctx context.Context) option.Option[[]User] {
	var users []User
	err := c.getJSON(ctx, "/users", &users)
	c.metrics.Remote(EndpointUsers, err == nil)
	if err != nil {
		c.log.Error("fetch users", "err", err)
		return option.None[[]User]()
	}
	if users == nil {
		users = []User{}
	}
	return option.Some(users)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.Status)
}

func (c *Client) getJSON(ctx context.Context, path string, dst any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug("remote request", "url", url)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{URL: url, Status: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
