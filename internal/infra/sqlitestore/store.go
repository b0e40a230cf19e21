// Package sqlitestore provides a SQLite implementation of TaskRepository.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/runoshun/tasklist/internal/domain"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Store implements domain.TaskRepository on a SQLite database.
// Fields are ordered to minimize memory padding.
type Store struct {
	db    *sql.DB
	clock domain.Clock
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for the creation and modification dates.
func WithClock(clock domain.Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// Open opens (creating if needed) the database at dbPath and ensures the schema.
func Open(dbPath string, opts ...Option) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Order shifts must run serialized.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, clock: domain.RealClock{}}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Initialize(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Initialize creates the table if it doesn't exist.
func (s *Store) Initialize() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS todo_item (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	task TEXT NOT NULL,
	is_done INTEGER NOT NULL DEFAULT 0,
	"order" INTEGER NOT NULL,
	date_created TEXT NOT NULL,
	date_modified TEXT NOT NULL
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, task, is_done, "order" FROM todo_item`

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (domain.Task, error) {
	var t domain.Task
	var done int
	if err := row.Scan(&t.ID, &t.Task, &done, &t.Order); err != nil {
		return domain.Task{}, err
	}
	t.IsDone = done == 1
	return t, nil
}

// List returns every task sorted by order.
func (s *Store) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY "order", id;`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Get retrieves a task by ID.
func (s *Store) Get(ctx context.Context, id int) (domain.Task, error) {
	return getTask(ctx, s.db, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getTask(ctx context.Context, q querier, id int) (domain.Task, error) {
	t, err := scanTask(q.QueryRowContext(ctx, selectColumns+` WHERE id = ?;`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	if err != nil {
		return domain.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// Create inserts a task. Without an order it is appended; with one, later
// tasks shift down to make room.
func (s *Store) Create(ctx context.Context, p domain.Patch) (domain.Task, error) {
	if p.Task == nil {
		return domain.Task{}, domain.ErrEmptyTask
	}
	if err := p.Validate(); err != nil {
		return domain.Task{}, err
	}

	var created domain.Task
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		count, err := countTasks(ctx, tx)
		if err != nil {
			return err
		}
		order := count
		if p.Order != nil {
			order = domain.ClampOrder(*p.Order, count)
		}
		if order < count {
			if _, err := tx.ExecContext(ctx, `UPDATE todo_item SET "order" = "order" + 1 WHERE "order" >= ?;`, order); err != nil {
				return fmt.Errorf("shift tasks: %w", err)
			}
		}

		now := s.now()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO todo_item (task, is_done, "order", date_created, date_modified) VALUES (?, ?, ?, ?, ?);`,
			strings.TrimSpace(*p.Task), boolInt(p.IsDone != nil && *p.IsDone), order, now, now)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		created, err = getTask(ctx, tx, int(id))
		return err
	})
	return created, err
}

// Update applies the patch to an existing task.
func (s *Store) Update(ctx context.Context, id int, p domain.Patch) (domain.Task, error) {
	if err := p.Validate(); err != nil {
		return domain.Task{}, err
	}

	var updated domain.Task
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := getTask(ctx, tx, id)
		if err != nil {
			return err
		}

		sets := []string{"date_modified = ?"}
		args := []any{s.now()}
		if p.Task != nil {
			sets = append(sets, "task = ?")
			args = append(args, strings.TrimSpace(*p.Task))
		}
		if p.IsDone != nil {
			sets = append(sets, "is_done = ?")
			args = append(args, boolInt(*p.IsDone))
		}
		if p.Order != nil {
			count, err := countTasks(ctx, tx)
			if err != nil {
				return err
			}
			to := domain.ClampOrder(*p.Order, count)
			if err := shiftForMove(ctx, tx, current.Order, to); err != nil {
				return err
			}
			sets = append(sets, `"order" = ?`)
			args = append(args, to)
		}

		args = append(args, id)
		query := `UPDATE todo_item SET ` + strings.Join(sets, ", ") + ` WHERE id = ?;`
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("update task %d: %w", id, err)
		}
		updated, err = getTask(ctx, tx, id)
		return err
	})
	return updated, err
}

// Delete removes a task by ID and closes the gap in the ordering.
func (s *Store) Delete(ctx context.Context, id int) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := getTask(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM todo_item WHERE id = ?;`, id); err != nil {
			return fmt.Errorf("delete task %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE todo_item SET "order" = "order" - 1 WHERE "order" >= ?;`, current.Order); err != nil {
			return fmt.Errorf("shift tasks: %w", err)
		}
		return nil
	})
}

// Modified returns the date_modified timestamp of a task.
func (s *Store) Modified(ctx context.Context, id int) (time.Time, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT date_modified FROM todo_item WHERE id = ?;`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, domain.ErrTaskNotFound
	}
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, raw)
}

func shiftForMove(ctx context.Context, tx *sql.Tx, from, to int) error {
	var err error
	switch {
	case from < to:
		_, err = tx.ExecContext(ctx, `UPDATE todo_item SET "order" = "order" - 1 WHERE "order" > ? AND "order" <= ?;`, from, to)
	case from > to:
		_, err = tx.ExecContext(ctx, `UPDATE todo_item SET "order" = "order" + 1 WHERE "order" >= ? AND "order" < ?;`, to, from)
	}
	if err != nil {
		return fmt.Errorf("shift tasks: %w", err)
	}
	return nil
}

func countTasks(ctx context.Context, tx *sql.Tx) (int, error) {
	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM todo_item;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) now() string {
	return s.clock.Now().UTC().Format(time.RFC3339)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}

// Ensure Store implements TaskRepository and StoreInitializer.
var (
	_ domain.TaskRepository   = (*Store)(nil)
	_ domain.StoreInitializer = (*Store)(nil)
)
