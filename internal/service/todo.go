package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/todolite/todolite-go/internal/model"
	"github.com/todolite/todolite-go/internal/repository"
)

var (
	ErrTextRequired    = errors.New("todo text must not be empty")
	ErrTextTooLong     = errors.New("todo text must be at most 500 characters")
	ErrIDTooLong       = errors.New("todo id must be at most 36 characters")
	ErrTodoNotFound    = errors.New("todo not found")
	ErrDuplicateTodoID = errors.New("todo id already exists")
)

// MaxTextLength bounds todo text; the column is VARCHAR(500).
const MaxTextLength = 500

// MaxIDLength bounds client-supplied todo ids; the column is VARCHAR(36)
// and the update/delete handlers refuse anything longer, so a longer id
// would create a todo that could never be addressed again.
const MaxIDLength = 36

// TodoStore is the persistence contract the todo service depends on,
// implemented by repository.TodoRepository.
type TodoStore interface {
	Insert(ctx context.Context, todo *model.Todo) error
	GetByID(ctx context.Context, userID int64, id string) (*model.Todo, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Todo, error)
	SetCompleted(ctx context.Context, userID int64, id string, completed bool) error
	Delete(ctx context.Context, userID int64, id string) error
	DeleteCompleted(ctx context.Context, userID int64) error
	Stats(ctx context.Context) ([]model.UserStats, error)
}

// TodoService handles todo business logic. Every operation except Stats
// is scoped to the owning user.
type TodoService struct {
	store TodoStore
}

// NewTodoService creates a new TodoService.
func NewTodoService(store TodoStore) *TodoService {
	return &TodoService{store: store}
}

// Create stores a new todo for a user. Text is trimmed and must be
// non-empty. When the client supplies no id one is generated.
func (s *TodoService) Create(ctx context.Context, userID int64, req model.CreateTodoRequest) (model.TodoResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return model.TodoResponse{}, ErrTextRequired
	}
	if len(text) > MaxTextLength {
		return model.TodoResponse{}, ErrTextTooLong
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	} else if len(id) > MaxIDLength {
		return model.TodoResponse{}, ErrIDTooLong
	}

	todo := &model.Todo{
		ID:     id,
		UserID: userID,
		Text:   text,
	}

	if err := s.store.Insert(ctx, todo); err != nil {
		if errors.Is(err, repository.ErrDuplicateTodo) {
			return model.TodoResponse{}, ErrDuplicateTodoID
		}
		return model.TodoResponse{}, err
	}

	return todoToResponse(todo), nil
}

// List returns all todos owned by a user in insertion order.
func (s *TodoService) List(ctx context.Context, userID int64) ([]model.TodoResponse, error) {
	todos, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]model.TodoResponse, len(todos))
	for i, t := range todos {
		result[i] = todoToResponse(&t)
	}
	return result, nil
}

// SetCompleted updates the completed flag of a todo. A nil completed
// leaves the flag unchanged and echoes the current state.
func (s *TodoService) SetCompleted(ctx context.Context, userID int64, id string, completed *bool) (model.TodoResponse, error) {
	todo, err := s.store.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTodoNotFound) {
			return model.TodoResponse{}, ErrTodoNotFound
		}
		return model.TodoResponse{}, err
	}

	if completed != nil && *completed != todo.Completed {
		if err := s.store.SetCompleted(ctx, userID, id, *completed); err != nil {
			return model.TodoResponse{}, err
		}
		todo.Completed = *completed
	}

	return todoToResponse(todo), nil
}

// Delete permanently removes a todo owned by the user.
func (s *TodoService) Delete(ctx context.Context, userID int64, id string) error {
	err := s.store.Delete(ctx, userID, id)
	if errors.Is(err, repository.ErrTodoNotFound) {
		return ErrTodoNotFound
	}
	return err
}

// ClearCompleted removes all completed todos owned by the user. A list
// with no completed todos is a successful no-op.
func (s *TodoService) ClearCompleted(ctx context.Context, userID int64) error {
	return s.store.DeleteCompleted(ctx, userID)
}

// Stats returns per-user todo counts across all registered users.
func (s *TodoService) Stats(ctx context.Context) ([]model.UserStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		stats = []model.UserStats{}
	}
	return stats, nil
}

func todoToResponse(t *model.Todo) model.TodoResponse {
	return model.TodoResponse{
		ID:        t.ID,
		Text:      t.Text,
		Completed: t.Completed,
	}
}
