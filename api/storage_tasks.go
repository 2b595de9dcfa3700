package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// taskFilters carries the optional listing parameters. Zero values mean
// "absent"; Page and Limit are expected to be set by the boundary parser.
type taskFilters struct {
	CategoryID int
	Status     string
	Priority   string
	Search     string
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

// taskSortColumns is the allow-list for ORDER BY. Anything else silently
// falls back to created_at; column names are never taken from the caller.
var taskSortColumns = []string{"title", "due_date", "status", "priority", "created_at"}

func (f taskFilters) sortColumn() string {
	for _, c := range taskSortColumns {
		if f.SortBy == c {
			return c
		}
	}
	return "created_at"
}

func (f taskFilters) sortDirection() string {
	if strings.EqualFold(f.SortOrder, "asc") {
		return "ASC"
	}
	return "DESC"
}

func (f taskFilters) offset() int {
	return (f.Page - 1) * f.Limit
}

// taskPredicates builds the WHERE clause shared by the page query and the
// count query. Every value is a bound parameter.
func taskPredicates(userID int, f taskFilters) (string, []any) {
	var b strings.Builder
	args := []any{userID}
	fmt.Fprintf(&b, "WHERE t.user_id = $%d", len(args))
	if f.CategoryID > 0 {
		args = append(args, f.CategoryID)
		fmt.Fprintf(&b, " AND t.category_id = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		fmt.Fprintf(&b, " AND t.status = $%d", len(args))
	}
	if f.Priority != "" {
		args = append(args, f.Priority)
		fmt.Fprintf(&b, " AND t.priority = $%d", len(args))
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern)
		fmt.Fprintf(&b, " AND (t.title ILIKE $%d OR t.description ILIKE $%d)", len(args)-1, len(args))
	}
	return b.String(), args
}

const taskColumns = `t.id, t.title, t.description, t.status, t.priority, t.due_date,
			 t.category_id, c.name, t.user_id, t.created_at, t.updated_at`

func buildTasksQuery(userID int, f taskFilters) (string, []any) {
	where, args := taskPredicates(userID, f)
	args = append(args, f.Limit, f.offset())
	query := fmt.Sprintf(`SELECT %s
		  FROM tasks t
		  LEFT JOIN categories c ON c.id = t.category_id
		  %s
		  ORDER BY t.%s %s
		  LIMIT $%d OFFSET $%d`,
		taskColumns, where, f.sortColumn(), f.sortDirection(), len(args)-1, len(args))
	return query, args
}

// buildTasksCountQuery mirrors the filter predicates without sorting or
// pagination, so pagination.total counts every matching row.
func buildTasksCountQuery(userID int, f taskFilters) (string, []any) {
	where, args := taskPredicates(userID, f)
	return fmt.Sprintf(`SELECT COUNT(*) FROM tasks t %s`, where), args
}

func scanTask(scanner interface{ Scan(...any) error }) (*task, error) {
	var t task
	err := scanner.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate,
		&t.CategoryID, &t.CategoryName, &t.UserID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *storage) getTasks(userID int, f taskFilters) ([]task, error) {
	query, args := buildTasksQuery(userID, f)
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *storage) countTasks(userID int, f taskFilters) (int, error) {
	query, args := buildTasksCountQuery(userID, f)
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	var total int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&total)
	return total, err
}

// getTaskByID is owner scoped, like getCategoryByID.
func (s *storage) getTaskByID(id, userID int) (*task, error) {
	query := fmt.Sprintf(`SELECT %s
		  FROM tasks t
		  LEFT JOIN categories c ON c.id = t.category_id
		  WHERE t.id = $1 AND t.user_id = $2`, taskColumns)
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	t, err := scanTask(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return t, nil
}

func (s *storage) insertTask(t *task) error {
	query := `INSERT INTO tasks (title, description, status, priority, due_date, category_id, user_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING id, created_at, updated_at`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.CategoryID, t.UserID)
	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

func (s *storage) updateTask(t *task) error {
	query := `UPDATE tasks
			  SET title = $1, description = $2, status = $3, priority = $4, due_date = $5,
				  category_id = $6, updated_at = NOW()
			  WHERE id = $7 AND user_id = $8
			  RETURNING updated_at`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.CategoryID, t.ID, t.UserID)
	return row.Scan(&t.UpdatedAt)
}

func (s *storage) updateTaskStatus(id, userID int, status string) error {
	query := `UPDATE tasks
			  SET status = $1, updated_at = NOW()
			  WHERE id = $2 AND user_id = $3`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	_, err := s.db.ExecContext(ctx, query, status, id, userID)
	return err
}

func (s *storage) deleteTask(id, userID int) error {
	query := `DELETE FROM tasks
			  WHERE id = $1 AND user_id = $2`
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	_, err := s.db.ExecContext(ctx, query, id, userID)
	return err
}
