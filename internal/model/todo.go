package model

import (
	"encoding/json"
	"time"
)

// Todo represents a todo row in the database.
type Todo struct {
	ID        string
	UserID    int64
	Text      string
	Completed bool
	CreatedAt time.Time
}

// CreateTodoRequest represents a todo creation request. ID is optional;
// clients that render optimistically supply their own, otherwise the
// server generates one.
type CreateTodoRequest struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
}

// UpdateTodoRequest represents a partial todo update. The completed field
// is kept raw so that an absent or non-boolean value can be told apart
// from false: only a JSON boolean changes the flag.
type UpdateTodoRequest struct {
	Completed json.RawMessage `json:"completed"`
}

// CompletedFlag returns the requested completed value, or nil when the
// field is absent or not a boolean. Either way the flag stays unchanged
// and the current state is echoed back.
func (r UpdateTodoRequest) CompletedFlag() *bool {
	var b bool
	if err := json.Unmarshal(r.Completed, &b); err != nil {
		return nil
	}
	return &b
}

// TodoResponse represents a single todo in API responses.
type TodoResponse struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// UserStats represents one row of the per-user usage statistics view.
type UserStats struct {
	Email          string `json:"email"`
	TotalTodos     int64  `json:"total_todos"`
	CompletedTodos int64  `json:"completed_todos"`
}
