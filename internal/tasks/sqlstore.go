package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL DEFAULT 'pending',
	priority    TEXT NOT NULL DEFAULT 'medium',
	due_date    TIMESTAMP,
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);
CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(due_date);
`

// SQLStore is a SQLite-backed task store using the pure-Go sqlite driver.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore opens (or creates) the SQLite database at path and ensures the
// schema exists. Use ":memory:" for an ephemeral store.
func NewSQLStore(path string) (*SQLStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	// SQLite allows a single writer; a single connection also keeps
	// ":memory:" databases from silently forking per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLStore{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

const taskColumns = "id, title, description, status, priority, due_date, created_at, updated_at"

func scanTask(row interface{ Scan(...any) error }) (*Task, error) {
	var t Task
	var due sql.NullTime
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &due, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	return &t, nil
}

// Create inserts a new task.
func (s *SQLStore) Create(ctx context.Context, params CreateParams) (*Task, error) {
	now := time.Now().UTC()

	var due sql.NullTime
	if params.DueDate != nil {
		due = sql.NullTime{Time: params.DueDate.UTC(), Valid: true}
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, status, priority, due_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		params.Title, params.Description, params.Status, params.Priority, due, now, now)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.Get(ctx, id)
}

// Get returns the task with the given ID.
func (s *SQLStore) Get(ctx context.Context, id int64) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// GetByTitle returns the most recent task whose title contains text,
// case-insensitive.
func (s *SQLStore) GetByTitle(ctx context.Context, text string) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+` FROM tasks
		 WHERE lower(title) LIKE '%' || lower(?) || '%'
		 ORDER BY created_at DESC, id DESC LIMIT 1`,
		strings.TrimSpace(text))
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task by title: %w", err)
	}
	return t, nil
}

// filterClause builds the WHERE fragment and args for a filter.
func filterClause(filter *Filter) (string, []any) {
	if filter == nil || filter.IsZero() {
		return "", nil
	}

	var conds []string
	var args []any
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		conds = append(conds, "priority = ?")
		args = append(args, filter.Priority)
	}
	if filter.DueBefore != nil {
		conds = append(conds, "due_date IS NOT NULL AND due_date <= ?")
		args = append(args, filter.DueBefore.UTC())
	}
	if filter.DueAfter != nil {
		conds = append(conds, "due_date IS NOT NULL AND due_date >= ?")
		args = append(args, filter.DueAfter.UTC())
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns tasks newest first.
func (s *SQLStore) List(ctx context.Context, skip, limit int, filter *Filter) ([]*Task, error) {
	if limit <= 0 {
		limit = 100
	}
	if skip < 0 {
		skip = 0
	}

	where, args := filterClause(filter)
	query := "SELECT " + taskColumns + " FROM tasks" + where +
		" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, skip)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

// Update applies the set fields of params to the task.
func (s *SQLStore) Update(ctx context.Context, id int64, params UpdateParams) (*Task, error) {
	var sets []string
	var args []any

	if params.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *params.Title)
	}
	if params.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *params.Description)
	}
	if params.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *params.Status)
	}
	if params.Priority != nil {
		sets = append(sets, "priority = ?")
		args = append(args, *params.Priority)
	}
	if params.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, params.DueDate.UTC())
	} else if params.ClearDue {
		sets = append(sets, "due_date = NULL")
	}

	if len(sets) == 0 {
		return s.Get(ctx, id)
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC())
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE tasks SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrNotFound
	}

	return s.Get(ctx, id)
}

// Delete removes the task with the given ID.
func (s *SQLStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete task %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of tasks matching filter.
func (s *SQLStore) Count(ctx context.Context, filter *Filter) (int, error) {
	where, args := filterClause(filter)
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tasks"+where, args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return n, nil
}

var _ Store = (*SQLStore)(nil)
