// Package restclient implements TaskRepository over the /tasks REST collection.
package restclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/runoshun/tasklist/internal/domain"
)

const maxBodySize = 4 << 20

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method  string
	URL     string
	Message string // "error" field of the response body, if any
	Code    int
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.Code, http.StatusText(e.Code))
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// Unwrap maps the status code, and a validation message the server echoed
// back, onto the domain sentinel errors.
func (e *StatusError) Unwrap() []error {
	var errs []error
	switch e.Code {
	case http.StatusNotFound:
		errs = append(errs, domain.ErrTaskNotFound)
	case http.StatusBadRequest:
		errs = append(errs, domain.ErrInvalidRequest)
		for _, sentinel := range []error{domain.ErrEmptyTask, domain.ErrInvalidOrder} {
			if e.Message == sentinel.Error() {
				errs = append(errs, sentinel)
			}
		}
	}
	return errs
}

// Client talks to a /tasks endpoint.
type Client struct {
	http    *http.Client
	baseURL string
}

// New creates a Client for the endpoint rooted at baseURL
// (e.g. "http://localhost:8080"; requests go to baseURL + "/tasks").
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

// NewWithHTTPClient creates a Client using hc.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *Client) collectionURL() string {
	return c.baseURL + "/tasks"
}

func (c *Client) itemURL(id int) string {
	return c.collectionURL() + "/" + strconv.Itoa(id)
}

// List returns every task sorted by order.
func (c *Client) List(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, http.MethodGet, c.collectionURL(), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Get retrieves a task by ID.
func (c *Client) Get(ctx context.Context, id int) (domain.Task, error) {
	var task domain.Task
	if err := c.do(ctx, http.MethodGet, c.itemURL(id), nil, &task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// Create posts a new task. Fields missing from the response keep the
// values that were sent, so backends answering only {"id": N} work too.
func (c *Client) Create(ctx context.Context, p domain.Patch) (domain.Task, error) {
	var task domain.Task
	task.Apply(p)
	if err := c.do(ctx, http.MethodPost, c.collectionURL(), p, &task); err != nil {
		return domain.Task{}, err
	}
	if task.IsNew() {
		return domain.Task{}, fmt.Errorf("create task: response has no id")
	}
	return task, nil
}

// Update sends the changed fields of a task.
func (c *Client) Update(ctx context.Context, id int, p domain.Patch) (domain.Task, error) {
	task := domain.Task{ID: id}
	task.Apply(p)
	if err := c.do(ctx, http.MethodPut, c.itemURL(id), p, &task); err != nil {
		return domain.Task{}, err
	}
	return task, nil
}

// Delete removes a task.
func (c *Client) Delete(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, c.itemURL(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(method, url, resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, url, err)
	}
	return nil
}

func statusError(method, url string, code int, body []byte) error {
	se := &StatusError{Method: method, URL: url, Code: code}
	var payload struct {
		Error string `json:"error"`
	}
	if err := sonic.Unmarshal(body, &payload); err == nil {
		se.Message = payload.Error
	}
	return se
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

// Ensure Client implements TaskRepository.
var _ domain.TaskRepository = (*Client)(nil)
