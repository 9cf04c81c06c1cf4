package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/todolite/todolite-go/internal/model"
)

var (
	ErrTodoNotFound  = errors.New("todo not found")
	ErrDuplicateTodo = errors.New("todo id already exists")
)

// TodoRepository handles todo persistence operations.
type TodoRepository struct {
	db *sql.DB
}

// NewTodoRepository creates a new TodoRepository.
func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// Insert stores a new todo. A primary-key collision on the todo id is
// surfaced as ErrDuplicateTodo.
func (r *TodoRepository) Insert(ctx context.Context, todo *model.Todo) error {
	query := `INSERT INTO todos (id, user_id, text, completed) VALUES (?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, todo.ID, todo.UserID, todo.Text, todo.Completed)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateTodo
		}
		return err
	}
	return nil
}

// GetByID retrieves a todo by id, scoped to its owner. A todo owned by a
// different user is indistinguishable from a missing one.
func (r *TodoRepository) GetByID(ctx context.Context, userID int64, id string) (*model.Todo, error) {
	query := `SELECT id, user_id, text, completed, created_at FROM todos WHERE id = ? AND user_id = ?`

	todo := &model.Todo{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&todo.ID, &todo.UserID, &todo.Text, &todo.Completed, &todo.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, err
	}

	return todo, nil
}

// ListByUser retrieves all todos owned by a user in insertion order.
func (r *TodoRepository) ListByUser(ctx context.Context, userID int64) ([]model.Todo, error) {
	query := `SELECT id, user_id, text, completed, created_at FROM todos
		WHERE user_id = ? ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []model.Todo
	for rows.Next() {
		var t model.Todo
		if err := rows.Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &t.CreatedAt); err != nil {
			return nil, err
		}
		todos = append(todos, t)
	}

	return todos, rows.Err()
}

// SetCompleted updates the completed flag of a todo, scoped to its owner.
// Existence is checked by the caller via GetByID; rows affected is not
// consulted because setting the flag to its current value affects none.
func (r *TodoRepository) SetCompleted(ctx context.Context, userID int64, id string, completed bool) error {
	query := `UPDATE todos SET completed = ? WHERE id = ? AND user_id = ?`

	_, err := r.db.ExecContext(ctx, query, completed, id, userID)
	return err
}

// Delete permanently removes a todo, scoped to its owner.
func (r *TodoRepository) Delete(ctx context.Context, userID int64, id string) error {
	query := `DELETE FROM todos WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTodoNotFound
	}

	return nil
}

// DeleteCompleted removes all completed todos owned by a user. Deleting
// none is not an error.
func (r *TodoRepository) DeleteCompleted(ctx context.Context, userID int64) error {
	query := `DELETE FROM todos WHERE user_id = ? AND completed = 1`

	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

// Stats returns per-user todo counts for every registered user, ordered by
// email. Users with no todos appear with zero counts.
func (r *TodoRepository) Stats(ctx context.Context) ([]model.UserStats, error) {
	query := `SELECT u.email,
			COUNT(t.id),
			CAST(COALESCE(SUM(t.completed), 0) AS SIGNED)
		FROM users u
		LEFT JOIN todos t ON t.user_id = u.id
		GROUP BY u.id, u.email
		ORDER BY u.email ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []model.UserStats
	for rows.Next() {
		var s model.UserStats
		if err := rows.Scan(&s.Email, &s.TotalTodos, &s.CompletedTodos); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}
