package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/tasklist/internal/domain"
	"github.com/runoshun/tasklist/internal/infra/restclient"
	"github.com/runoshun/tasklist/internal/testutil"
)

func newTestServer(t *testing.T, repo domain.TaskRepository) (*httptest.Server, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)
	srv := httptest.NewServer(New(repo, logger).Handler())
	t.Cleanup(srv.Close)
	return srv, hook
}

func doRequest(t *testing.T, method, url, body string) (int, string, http.Header) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(bytes.TrimSpace(data)), resp.Header
}

func TestServer_ClientContract(t *testing.T) {
	testutil.RunRepositoryContract(t, func(t *testing.T) domain.TaskRepository {
		srv, _ := newTestServer(t, testutil.NewMockTaskRepository())
		return restclient.New(srv.URL, 5*time.Second)
	})
}

func TestServer_List(t *testing.T) {
	srv, _ := newTestServer(t, testutil.NewMockTaskRepository(
		domain.Task{ID: 2, Task: "b", Order: 1, IsDone: true},
		domain.Task{ID: 1, Task: "a", Order: 0},
	))

	status, body, header := doRequest(t, http.MethodGet, srv.URL+"/tasks", "")

	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"id":1,"task":"a","is_done":false,"order":0},{"id":2,"task":"b","is_done":true,"order":1}]`, body)
	assert.Contains(t, header.Get("Content-Type"), "application/json")
}

func TestServer_ListEmptyIsArray(t *testing.T) {
	srv, _ := newTestServer(t, testutil.NewMockTaskRepository())

	status, body, _ := doRequest(t, http.MethodGet, srv.URL+"/tasks", "")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "[]", body)
}

func TestServer_CreateIgnoresUnknownFields(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	srv, _ := newTestServer(t, repo)

	status, body, _ := doRequest(t, http.MethodPost, srv.URL+"/tasks", `{"task":"x","is_done":false,"cid":"c1"}`)

	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"id":1,"task":"x","is_done":false,"order":0}`, body)
}

func TestServer_PatchAndPut(t *testing.T) {
	repo := testutil.NewMockTaskRepository(domain.Task{ID: 1, Task: "a"})
	srv, _ := newTestServer(t, repo)

	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		status, _, _ := doRequest(t, method, srv.URL+"/tasks/1", `{"id":1,"is_done":true}`)
		assert.Equal(t, http.StatusOK, status, method)
	}
	assert.Len(t, repo.CallsFor("update"), 2)
}

func TestServer_DeleteReturnsNull(t *testing.T) {
	srv, _ := newTestServer(t, testutil.NewMockTaskRepository(domain.Task{ID: 1, Task: "a"}))

	status, body, _ := doRequest(t, http.MethodDelete, srv.URL+"/tasks/1", "")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "null", body)
}

func TestServer_Errors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   string
		status int
	}{
		{name: "unknown id", method: http.MethodGet, path: "/tasks/42", status: http.StatusNotFound, want: "task not found"},
		{name: "malformed id", method: http.MethodDelete, path: "/tasks/abc", status: http.StatusNotFound, want: "task not found"},
		{name: "missing task", method: http.MethodPost, path: "/tasks", body: `{"is_done":true}`, status: http.StatusBadRequest, want: domain.ErrEmptyTask.Error()},
		{name: "blank task", method: http.MethodPost, path: "/tasks", body: `{"task":"  "}`, status: http.StatusBadRequest, want: domain.ErrEmptyTask.Error()},
		{name: "negative order", method: http.MethodPut, path: "/tasks/1", body: `{"order":-1}`, status: http.StatusBadRequest, want: domain.ErrInvalidOrder.Error()},
		{name: "invalid json", method: http.MethodPost, path: "/tasks", body: `{"task":`, status: http.StatusBadRequest, want: "invalid request: invalid body"},
		{name: "unknown route", method: http.MethodGet, path: "/nope", status: http.StatusNotFound, want: "Not Found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, testutil.NewMockTaskRepository(domain.Task{ID: 1, Task: "a"}))

			status, body, _ := doRequest(t, tt.method, srv.URL+tt.path, tt.body)

			assert.Equal(t, tt.status, status)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, body)
		})
	}
}

func TestServer_InternalErrorIsLogged(t *testing.T) {
	repo := testutil.NewMockTaskRepository()
	repo.ListErr = errors.New("disk on fire")
	srv, hook := newTestServer(t, repo)

	status, body, _ := doRequest(t, http.MethodGet, srv.URL+"/tasks", "")

	assert.Equal(t, http.StatusInternalServerError, status)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, body)
	var messages []string
	for _, e := range hook.AllEntries() {
		messages = append(messages, e.Message)
	}
	assert.Contains(t, messages, "internal error")
	assert.Contains(t, messages, "request failed")
}

func TestServer_RequestIDs(t *testing.T) {
	srv, hook := newTestServer(t, testutil.NewMockTaskRepository())

	_, _, first := doRequest(t, http.MethodGet, srv.URL+"/tasks", "")
	_, _, second := doRequest(t, http.MethodGet, srv.URL+"/tasks", "")

	id := first.Get("X-Request-Id")
	assert.Len(t, id, 36, "uuid string")
	assert.NotEqual(t, id, second.Get("X-Request-Id"))

	entry := hook.AllEntries()[0]
	assert.Equal(t, id, entry.Data["request_id"])
	assert.Equal(t, http.StatusOK, entry.Data["status"])
}

func TestServer_RunShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	logger, _ := test.NewNullLogger()
	s := New(testutil.NewMockTaskRepository(), logger)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, addr) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
