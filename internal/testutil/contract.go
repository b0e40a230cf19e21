package testutil

import (
	"context"
	"testing"

	"github.com/runoshun/tasklist/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RepositoryFactory returns an empty, ready-to-use repository.
type RepositoryFactory func(t *testing.T) domain.TaskRepository

// RunRepositoryContract checks the /tasks ordering and error semantics
// every domain.TaskRepository must share.
func RunRepositoryContract(t *testing.T, newRepo RepositoryFactory) {
	t.Helper()
	ctx := context.Background()

	seed := func(t *testing.T, repo domain.TaskRepository, texts ...string) []domain.Task {
		t.Helper()
		var out []domain.Task
		for _, text := range texts {
			task, err := repo.Create(ctx, domain.SetTask(text))
			require.NoError(t, err)
			out = append(out, task)
		}
		return out
	}
	textsOf := func(t *testing.T, repo domain.TaskRepository) []string {
		t.Helper()
		tasks, err := repo.List(ctx)
		require.NoError(t, err)
		var out []string
		for i, task := range tasks {
			assert.Equal(t, i, task.Order, "orders stay dense")
			out = append(out, task.Task)
		}
		return out
	}

	t.Run("empty list", func(t *testing.T) {
		tasks, err := newRepo(t).List(ctx)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("create appends and assigns ids", func(t *testing.T) {
		repo := newRepo(t)
		created := seed(t, repo, "a", "b")

		assert.NotZero(t, created[0].ID)
		assert.NotEqual(t, created[0].ID, created[1].ID)
		assert.Equal(t, 0, created[0].Order)
		assert.Equal(t, 1, created[1].Order)
		assert.False(t, created[1].IsDone)
		assert.Equal(t, []string{"a", "b"}, textsOf(t, repo))
	})

	t.Run("create with order inserts and shifts", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo, "a", "b")

		task, err := repo.Create(ctx, domain.SetTask("first").Union(domain.SetOrder(0)).Union(domain.SetDone(true)))
		require.NoError(t, err)

		assert.Equal(t, 0, task.Order)
		assert.True(t, task.IsDone)
		assert.Equal(t, []string{"first", "a", "b"}, textsOf(t, repo))
	})

	t.Run("create clamps order to count", func(t *testing.T) {
		repo := newRepo(t)
		seed(t, repo, "a")

		task, err := repo.Create(ctx, domain.SetTask("z").Union(domain.SetOrder(42)))
		require.NoError(t, err)
		assert.Equal(t, 1, task.Order)
	})

	t.Run("create rejects empty text", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Create(ctx, domain.SetTask("  "))
		assert.ErrorIs(t, err, domain.ErrEmptyTask)
		_, err = repo.Create(ctx, domain.SetDone(true))
		assert.ErrorIs(t, err, domain.ErrEmptyTask)
	})

	t.Run("get", func(t *testing.T) {
		repo := newRepo(t)
		created := seed(t, repo, "a")

		got, err := repo.Get(ctx, created[0].ID)
		require.NoError(t, err)
		assert.Equal(t, created[0], got)

		_, err = repo.Get(ctx, created[0].ID+100)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	t.Run("update fields", func(t *testing.T) {
		repo := newRepo(t)
		created := seed(t, repo, "a")

		got, err := repo.Update(ctx, created[0].ID, domain.SetTask("renamed").Union(domain.SetDone(true)))
		require.NoError(t, err)
		assert.Equal(t, domain.Task{ID: created[0].ID, Task: "renamed", IsDone: true, Order: 0}, got)

		got, err = repo.Update(ctx, created[0].ID, domain.SetDone(false))
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Task, "absent fields are left alone")
		assert.False(t, got.IsDone)
	})

	t.Run("update moves down", func(t *testing.T) {
		repo := newRepo(t)
		created := seed(t, repo, "a", "b", "c", "d")

		got, err := repo.Update(ctx, created[0].ID, domain.SetOrder(2))
		require.NoError(t, err)
		assert.Equal(t, 2, got.Order)
		assert.Equal(t, []string{"b", "c", "a", "d"}, textsOf(t, repo))
	})

	t.Run("update moves up", func(t *testing.T) {
		repo := newRepo(t)
		created := seed(t, repo, "a", "b", "c", "d")

		_, err := repo.Update(ctx, created[3].ID, domain.SetOrder(1))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "d", "b", "c"}, textsOf(t, repo))
	})

	t.Run("update unknown id", func(t *testing.T) {
		_, err := newRepo(t).Update(ctx, 999, domain.SetDone(true))
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
	})

	t.Run("update rejects empty text", func(t *testing.T) {
		repo := newRepo(t)
		created := seed(t, repo, "a")

		_, err := repo.Update(ctx, created[0].ID, domain.SetTask(""))
		assert.ErrorIs(t, err, domain.ErrEmptyTask)

		got, err := repo.Get(ctx, created[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "a", got.Task)
	})

	t.Run("delete compacts order", func(t *testing.T) {
		repo := newRepo(t)
		created := seed(t, repo, "a", "b", "c")

		require.NoError(t, repo.Delete(ctx, created[1].ID))
		assert.Equal(t, []string{"a", "c"}, textsOf(t, repo))

		_, err := repo.Get(ctx, created[1].ID)
		assert.ErrorIs(t, err, domain.ErrTaskNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, created[1].ID), domain.ErrTaskNotFound)
	})
}
