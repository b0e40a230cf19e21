package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/tasklist/internal/domain"
	"github.com/runoshun/tasklist/internal/model"
	"github.com/runoshun/tasklist/internal/testutil"
)

func newTestModel(t *testing.T, tasks ...domain.Task) (*Model, *testutil.MockTaskRepository) {
	t.Helper()
	repo := testutil.NewMockTaskRepository(tasks...)
	d := NewDispatcher(context.Background())
	m := New(model.NewCollection(repo, d, nil), d, DefaultTemplates(), nil)
	t.Cleanup(m.Close)
	return m, repo
}

// started returns a model whose initial fetch has completed.
func started(t *testing.T, tasks ...domain.Task) (*Model, *testutil.MockTaskRepository) {
	t.Helper()
	m, repo := newTestModel(t, tasks...)
	run(m, m.Init())
	require.True(t, m.loaded)
	return m, repo
}

// run executes cmd and every command produced by the resulting updates,
// in FIFO order, feeding their messages back into m.
func run(m *Model, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case tea.QuitMsg:
		default:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

// collect runs cmd without feeding anything back and returns its messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press sends each key and runs the resulting commands to completion.
func press(m *Model, keys ...string) {
	for _, k := range keys {
		_, cmd := m.Update(keyMsg(k))
		run(m, cmd)
	}
}

func texts(tasks []domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, task.Task)
	}
	return out
}

func rowTexts(m *Model) []string {
	out := make([]string, 0, len(m.rows))
	for _, row := range m.rows {
		out = append(out, row.Entity().Text())
	}
	return out
}

func threeTasks() []domain.Task {
	return []domain.Task{
		{ID: 1, Task: "a", Order: 0},
		{ID: 2, Task: "b", Order: 1},
		{ID: 3, Task: "c", Order: 2},
	}
}

func TestModel_LoadingUntilReset(t *testing.T) {
	m, _ := newTestModel(t, domain.Task{ID: 1, Task: "a"})

	assert.Contains(t, m.View(), "Loading...")

	cmd := m.Init()
	assert.Contains(t, m.View(), "Loading...", "rows wait for the reset event")
	assert.Empty(t, m.rows)

	run(m, cmd)

	view := m.View()
	assert.NotContains(t, view, "Loading...")
	assert.Contains(t, view, "[ ] a")
	assert.Equal(t, "1 item left", m.Footer())
}

func TestModel_FetchErrorIsShown(t *testing.T) {
	m, repo := newTestModel(t)
	repo.ListErr = errors.New("connection refused")

	run(m, m.Init())

	view := m.View()
	assert.Contains(t, view, "Loading...")
	assert.Contains(t, view, "Error: fetch: connection refused")
}

func TestModel_KeysIgnoredWhileLoading(t *testing.T) {
	m, repo := newTestModel(t, domain.Task{ID: 1, Task: "a"})
	initial := m.Init()

	press(m, "x", "enter", "tab", " ")

	assert.Empty(t, repo.CallsFor("create"), "nothing is created behind the loading screen")
	assert.Equal(t, "", m.input.Value())
	assert.Equal(t, FocusInput, m.focus)

	run(m, initial)

	assert.Equal(t, []string{"a"}, rowTexts(m))
	assert.Equal(t, []string{"a"}, texts(repo.Snapshot()))
	assert.Equal(t, 1, m.collection.Len())
}

func TestModel_QuitWhileLoading(t *testing.T) {
	m, _ := newTestModel(t)
	m.Init()

	_, cmd := m.Update(keyMsg("q"))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_RetryAfterFailedFetch(t *testing.T) {
	m, repo := newTestModel(t, domain.Task{ID: 1, Task: "a"})
	repo.ListErr = errors.New("connection refused")
	run(m, m.Init())
	require.False(t, m.loaded)
	assert.Contains(t, m.View(), "retry")

	repo.ListErr = nil
	press(m, "r")

	assert.True(t, m.loaded, "r works while the input has focus")
	assert.Equal(t, []string{"a"}, rowTexts(m))
	assert.Len(t, repo.CallsFor("list"), 2)
	assert.Equal(t, "", m.input.Value(), "r is not typed into the hidden input")
}

func TestModel_CreateOnEmptyRevealsMainAndFooter(t *testing.T) {
	m, repo := started(t)

	assert.False(t, m.showMain)
	assert.NotContains(t, m.View(), "mark all as complete")
	assert.NotContains(t, m.View(), "left")

	press(m, "buy milk", "enter")

	assert.True(t, m.showMain)
	assert.Equal(t, "", m.input.Value(), "input is cleared")
	view := m.View()
	assert.Contains(t, view, "mark all as complete")
	assert.Contains(t, view, "[ ] buy milk")
	assert.Contains(t, view, "1 item left")
	assert.Equal(t, []string{"buy milk"}, texts(repo.Snapshot()))
}

func TestModel_CreateIgnoresBlankInput(t *testing.T) {
	m, repo := started(t)

	press(m, "   ", "enter")

	assert.Empty(t, m.rows)
	assert.Empty(t, m.input.Value())
	assert.Empty(t, repo.CallsFor("create"))
}

func TestModel_TwoTasksOneDone(t *testing.T) {
	m, repo := started(t)

	press(m, "first", "enter", "second", "enter")
	assert.Equal(t, "2 items left", m.Footer())

	press(m, "tab", " ")

	assert.Equal(t, "1 item left", m.Footer())
	assert.False(t, m.allDone)
	require.Len(t, repo.Snapshot(), 2)
	assert.True(t, repo.Snapshot()[0].IsDone)
	assert.False(t, repo.Snapshot()[1].IsDone)
	assert.Contains(t, m.View(), "[x] first")
}

func TestModel_ToggleAll(t *testing.T) {
	m, repo := started(t,
		domain.Task{ID: 1, Task: "a", Order: 0},
		domain.Task{ID: 2, Task: "b", Order: 1, IsDone: true},
		domain.Task{ID: 3, Task: "c", Order: 2},
	)
	press(m, "tab")

	press(m, "A")

	assert.True(t, m.allDone, "checkbox checked")
	assert.Equal(t, 0, m.collection.CountLeft())
	assert.Equal(t, "0 items left", m.Footer())
	assert.Len(t, repo.CallsFor("update"), 3, "one save per task")
	for _, task := range repo.Snapshot() {
		assert.True(t, task.IsDone, task.Task)
	}

	press(m, "A")

	assert.False(t, m.allDone)
	assert.Equal(t, 3, m.collection.CountLeft())
	assert.Len(t, repo.CallsFor("update"), 6)
}

func TestModel_ToggleAllOnEmptyListIsNoop(t *testing.T) {
	m, repo := started(t)
	press(m, "tab", "A")

	assert.False(t, m.allDone)
	assert.Empty(t, repo.CallsFor("update"))
}

func TestModel_CheckboxFollowsLastToggle(t *testing.T) {
	m, _ := started(t, domain.Task{ID: 1, Task: "a"})
	press(m, "tab")

	press(m, "x")
	assert.True(t, m.allDone, "checked once nothing is left")

	press(m, "x")
	assert.False(t, m.allDone)
}

func TestModel_EditCommit(t *testing.T) {
	m, repo := started(t, domain.Task{ID: 1, Task: "a"})
	press(m, "tab", "e")

	row := m.SelectedRow()
	require.True(t, row.Editing())
	assert.Equal(t, "a", row.input.Value(), "input is pre-filled")

	press(m, "bc", "enter")

	assert.False(t, row.Editing())
	assert.Equal(t, "abc", row.Entity().Text())
	assert.Equal(t, "abc", repo.Tasks[1].Task)
	assert.Contains(t, m.View(), "[ ] abc")
}

func TestModel_EditEmptyCommitDeletes(t *testing.T) {
	m, repo := started(t, domain.Task{ID: 1, Task: "a"})
	press(m, "tab", "enter", "backspace", "enter")

	assert.Empty(t, m.rows)
	assert.False(t, m.showMain)
	assert.Len(t, repo.CallsFor("delete"), 1)
	assert.Empty(t, repo.CallsFor("update"))
	assert.Empty(t, repo.Snapshot())
}

func TestModel_EditCancel(t *testing.T) {
	m, repo := started(t, domain.Task{ID: 1, Task: "a"})
	press(m, "tab", "e", "zzz", "esc")

	row := m.SelectedRow()
	assert.False(t, row.Editing())
	assert.Equal(t, "a", row.Entity().Text())
	assert.Empty(t, repo.CallsFor("update"))
}

func TestModel_FocusLossCommits(t *testing.T) {
	m, repo := started(t, threeTasks()...)

	press(m, "tab", "e", "!", "tab")
	assert.Equal(t, "a!", repo.Tasks[1].Task)
	assert.Equal(t, FocusInput, m.focus)

	press(m, "tab", "e", "?", "down")
	assert.Equal(t, "a!?", repo.Tasks[1].Task)
	assert.Equal(t, 1, m.cursor)
}

func TestModel_Delete(t *testing.T) {
	m, repo := started(t, threeTasks()...)
	press(m, "tab", "down", "d")

	assert.Equal(t, []string{"a", "c"}, rowTexts(m))
	assert.Equal(t, []string{"a", "c"}, texts(repo.Snapshot()))
	assert.Equal(t, "2 items left", m.Footer())
}

func TestModel_MoveRows(t *testing.T) {
	m, repo := started(t, threeTasks()...)
	press(m, "tab")

	press(m, "J")
	assert.Equal(t, []string{"b", "a", "c"}, rowTexts(m))
	assert.Equal(t, 1, m.cursor, "moved row stays selected")
	assert.Equal(t, []string{"b", "a", "c"}, texts(repo.Snapshot()))

	press(m, "J")
	assert.Equal(t, []string{"b", "c", "a"}, rowTexts(m))
	assert.Equal(t, 2, m.cursor)

	press(m, "J")
	assert.Equal(t, []string{"b", "c", "a"}, rowTexts(m), "last row cannot move down")

	press(m, "K", "K")
	assert.Equal(t, []string{"a", "b", "c"}, rowTexts(m))
	assert.Equal(t, []string{"a", "b", "c"}, texts(repo.Snapshot()))
	assert.Equal(t, 0, m.cursor)
}

func TestModel_PersistenceErrorInStatusLine(t *testing.T) {
	m, repo := started(t, domain.Task{ID: 1, Task: "a"})
	repo.UpdateErr = errors.New("boom")

	press(m, "tab", " ")

	require.Error(t, m.Err())
	assert.ErrorIs(t, m.Err(), repo.UpdateErr)
	assert.Contains(t, m.View(), "Error: update \"a\": boom")
	// No rollback: the optimistic state is kept.
	assert.True(t, m.SelectedRow().Entity().IsDone())

	press(m, "j")
	assert.NoError(t, m.Err(), "cleared on the next key")
}

func TestModel_CollectionErrorsArriveAsMsgError(t *testing.T) {
	m, repo := started(t, domain.Task{ID: 1, Task: "a"})
	repo.UpdateErr = errors.New("boom")
	press(m, "tab")

	_, cmd := m.Update(keyMsg(" "))
	msgs := collect(cmd)
	require.Len(t, msgs, 1)
	require.IsType(t, MsgApply{}, msgs[0])

	_, cmd = m.Update(msgs[0])
	assert.NoError(t, m.Err(), "not shown until MsgError is delivered")
	msgs = collect(cmd)
	require.Len(t, msgs, 1)
	failed, ok := msgs[0].(MsgError)
	require.True(t, ok)
	assert.ErrorIs(t, failed.Err, repo.UpdateErr)

	m.Update(failed)
	assert.EqualError(t, m.Err(), `update "a": boom`)
}

func TestModel_RefreshSendsMsgReload(t *testing.T) {
	m, repo := started(t, domain.Task{ID: 1, Task: "a"})
	press(m, "tab")

	_, cmd := m.Update(keyMsg("r"))

	assert.Equal(t, []tea.Msg{MsgReload{}}, collect(cmd))
	assert.Len(t, repo.CallsFor("list"), 1, "fetched once the message arrives")
}

func TestModel_Refresh(t *testing.T) {
	m, repo := started(t, domain.Task{ID: 1, Task: "a"})
	_, err := repo.Create(context.Background(), domain.SetTask("from elsewhere"))
	require.NoError(t, err)

	press(m, "tab", "r")

	assert.Equal(t, []string{"a", "from elsewhere"}, rowTexts(m))
	assert.Equal(t, "2 items left", m.Footer())
}

func TestModel_ResetDetachesOldRows(t *testing.T) {
	m, _ := started(t, domain.Task{ID: 1, Task: "a"})
	old := m.rows[0]

	press(m, "tab", "r")

	require.Len(t, m.rows, 1)
	assert.NotSame(t, old, m.rows[0])
	assert.Nil(t, old.subs)
}

func TestModel_QuitKeys(t *testing.T) {
	t.Run("q in list", func(t *testing.T) {
		m, _ := started(t)
		m.focus = FocusList
		_, cmd := m.Update(keyMsg("q"))
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})

	t.Run("q in input is typed", func(t *testing.T) {
		m, _ := started(t)
		press(m, "q")
		assert.Equal(t, "q", m.input.Value())
	})

	t.Run("ctrl+c anywhere", func(t *testing.T) {
		m, _ := started(t)
		_, cmd := m.Update(keyMsg("ctrl+c"))
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})
}

func TestModel_Help(t *testing.T) {
	m, _ := started(t)
	press(m, "tab", "?")

	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "toggle all")

	press(m, "?")
	assert.False(t, m.showHelp)
}

func TestModel_RowsFollowCollectionOrder(t *testing.T) {
	m, _ := started(t, threeTasks()...)

	require.NoError(t, m.collection.Get(3).Save(domain.SetOrder(0)))

	assert.Equal(t, []string{"c", "a", "b"}, rowTexts(m))
}
