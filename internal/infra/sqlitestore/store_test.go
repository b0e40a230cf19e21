package sqlitestore

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/runoshun/tasklist/internal/domain"
	"github.com/runoshun/tasklist/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), domain.DBFileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Contract(t *testing.T) {
	testutil.RunRepositoryContract(t, func(t *testing.T) domain.TaskRepository {
		return openTestStore(t)
	})
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "tasks.db")

	s, err := Open(path)
	require.NoError(t, err)
	created, err := s.Create(ctx, domain.SetTask("persisted"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestStore_DateModified(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	clock := &testutil.MockClock{NowTime: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
	s.clock = clock

	created, err := s.Create(ctx, domain.SetTask("a"))
	require.NoError(t, err)
	modified, err := s.Modified(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, clock.NowTime, modified)

	clock.NowTime = clock.NowTime.Add(time.Hour)
	_, err = s.Update(ctx, created.ID, domain.SetDone(true))
	require.NoError(t, err)
	modified, err = s.Modified(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, clock.NowTime, modified)

	_, err = s.Modified(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestStore_TrimsText(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	created, err := s.Create(ctx, domain.SetTask("  padded  "))
	require.NoError(t, err)
	assert.Equal(t, "padded", created.Task)
}

func TestStore_ListEmptyIsNotNil(t *testing.T) {
	tasks, err := openTestStore(t).List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, "file:memdb?mode=memory", sqliteDSN("file:memdb?mode=memory"))

	dsn := sqliteDSN("/tmp/tasks.db")
	assert.True(t, strings.HasPrefix(dsn, "file:///tmp/tasks.db?"), dsn)
	assert.Contains(t, dsn, "mode=rwc")
	assert.Contains(t, dsn, "busy_timeout")
}

func TestOpen_WithClock(t *testing.T) {
	ctx := context.Background()
	clock := &testutil.MockClock{NowTime: time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("JST", 9*60*60))}
	s, err := Open(filepath.Join(t.TempDir(), domain.DBFileName), WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	task, err := s.Create(ctx, domain.SetTask("a"))
	require.NoError(t, err)
	clock.NowTime = clock.NowTime.Add(time.Hour)
	_, err = s.Update(ctx, task.ID, domain.SetDone(true))
	require.NoError(t, err)

	var created, modified string
	err = s.db.QueryRowContext(ctx, `SELECT date_created, date_modified FROM todo_item WHERE id = ?`, task.ID).Scan(&created, &modified)
	require.NoError(t, err)
	assert.Equal(t, "2026-01-01T18:04:05Z", created, "stored in UTC")
	assert.Equal(t, "2026-01-01T19:04:05Z", modified)
}
