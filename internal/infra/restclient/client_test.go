package restclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/runoshun/tasklist/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	body   string
}

// stubServer answers every request with status and body and records it.
func stubServer(t *testing.T, status int, body string) (*Client, *[]recorded) {
	t.Helper()
	var reqs []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		reqs = append(reqs, recorded{method: r.Method, path: r.URL.Path, body: string(data)})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", time.Second), &reqs
}

func TestClient_List(t *testing.T) {
	c, reqs := stubServer(t, http.StatusOK,
		`[{"id":1,"task":"a","is_done":false,"order":0},{"id":2,"task":"b","is_done":true,"order":1}]`)

	tasks, err := c.List(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []domain.Task{
		{ID: 1, Task: "a", Order: 0},
		{ID: 2, Task: "b", IsDone: true, Order: 1},
	}, tasks)
	assert.Equal(t, recorded{method: http.MethodGet, path: "/tasks"}, (*reqs)[0])
}

func TestClient_Get(t *testing.T) {
	c, reqs := stubServer(t, http.StatusOK, `{"id":7,"task":"x","is_done":true,"order":3}`)

	task, err := c.Get(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, domain.Task{ID: 7, Task: "x", IsDone: true, Order: 3}, task)
	assert.Equal(t, "/tasks/7", (*reqs)[0].path)
}

func TestClient_Create(t *testing.T) {
	c, reqs := stubServer(t, http.StatusOK, `{"id":3,"task":"buy milk","is_done":false,"order":2}`)

	task, err := c.Create(context.Background(), domain.SetTask("buy milk").Union(domain.SetDone(false)))
	require.NoError(t, err)

	assert.Equal(t, domain.Task{ID: 3, Task: "buy milk", Order: 2}, task)
	req := (*reqs)[0]
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/tasks", req.path)
	assert.JSONEq(t, `{"task":"buy milk","is_done":false}`, req.body)
}

func TestClient_Create_IDOnlyResponse(t *testing.T) {
	c, _ := stubServer(t, http.StatusOK, `{"id":9}`)

	task, err := c.Create(context.Background(), domain.SetTask("legacy"))
	require.NoError(t, err)

	assert.Equal(t, 9, task.ID)
	assert.Equal(t, "legacy", task.Task)
}

func TestClient_Create_NoID(t *testing.T) {
	c, _ := stubServer(t, http.StatusOK, `{}`)

	_, err := c.Create(context.Background(), domain.SetTask("x"))
	assert.Error(t, err)
}

func TestClient_Update(t *testing.T) {
	c, reqs := stubServer(t, http.StatusOK, `{"id":4,"task":"a","is_done":true,"order":0}`)

	task, err := c.Update(context.Background(), 4, domain.SetDone(true))
	require.NoError(t, err)

	assert.True(t, task.IsDone)
	req := (*reqs)[0]
	assert.Equal(t, http.MethodPut, req.method)
	assert.Equal(t, "/tasks/4", req.path)
	assert.JSONEq(t, `{"is_done":true}`, req.body, "only changed fields are sent")
}

func TestClient_Delete(t *testing.T) {
	c, reqs := stubServer(t, http.StatusOK, `null`)

	require.NoError(t, c.Delete(context.Background(), 5))

	assert.Equal(t, recorded{method: http.MethodDelete, path: "/tasks/5"}, (*reqs)[0])
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
		target  error
		status  int
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"error":"task not found"}`, target: domain.ErrTaskNotFound, message: "task not found"},
		{name: "bad request", status: http.StatusBadRequest, body: `{"error":"task text cannot be empty"}`, target: domain.ErrInvalidRequest, message: "task text cannot be empty"},
		{name: "server error with html", status: http.StatusInternalServerError, body: `<html>oops</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := stubServer(t, tt.status, tt.body)

			_, err := c.Get(context.Background(), 1)
			require.Error(t, err)

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.Code)
			assert.Equal(t, tt.message, se.Message)
			assert.True(t, IsStatus(err, tt.status))
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			assert.Equal(t, tt.status == http.StatusBadRequest, errors.Is(err, domain.ErrEmptyTask))
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(block)
		srv.Close()
	})

	c := New(srv.URL, 50*time.Millisecond)
	_, err := c.List(context.Background())
	assert.Error(t, err)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).List(context.Background())
	assert.Error(t, err)
}
