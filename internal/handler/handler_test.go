package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/todolite/todolite-go/internal/middleware"
	"github.com/todolite/todolite-go/internal/model"
	"github.com/todolite/todolite-go/internal/repository"
	"github.com/todolite/todolite-go/internal/service"
)

const testSecret = "handler-test-secret"

// memStore is an in-memory implementation of both service.UserStore and
// service.TodoStore, returning the repository package's sentinel errors.
type memStore struct {
	users      []model.User
	todos      []model.Todo
	nextUserID int64
}

func (s *memStore) Create(_ context.Context, user *model.User) error {
	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	s.nextUserID++
	user.ID = s.nextUserID
	user.CreatedAt = time.Now()
	s.users = append(s.users, *user)
	return nil
}

func (s *memStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			user := u
			return &user, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memStore) Insert(_ context.Context, todo *model.Todo) error {
	for _, t := range s.todos {
		if t.ID == todo.ID {
			return repository.ErrDuplicateTodo
		}
	}
	s.todos = append(s.todos, *todo)
	return nil
}

func (s *memStore) GetTodoByID(_ context.Context, userID int64, id string) (*model.Todo, error) {
	for _, t := range s.todos {
		if t.ID == id && t.UserID == userID {
			todo := t
			return &todo, nil
		}
	}
	return nil, repository.ErrTodoNotFound
}

func (s *memStore) ListByUser(_ context.Context, userID int64) ([]model.Todo, error) {
	var result []model.Todo
	for _, t := range s.todos {
		if t.UserID == userID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (s *memStore) SetCompleted(_ context.Context, userID int64, id string, completed bool) error {
	for i, t := range s.todos {
		if t.ID == id && t.UserID == userID {
			s.todos[i].Completed = completed
			return nil
		}
	}
	return nil
}

func (s *memStore) Delete(_ context.Context, userID int64, id string) error {
	for i, t := range s.todos {
		if t.ID == id && t.UserID == userID {
			s.todos = append(s.todos[:i], s.todos[i+1:]...)
			return nil
		}
	}
	return repository.ErrTodoNotFound
}

func (s *memStore) DeleteCompleted(_ context.Context, userID int64) error {
	var kept []model.Todo
	for _, t := range s.todos {
		if t.UserID == userID && t.Completed {
			continue
		}
		kept = append(kept, t)
	}
	s.todos = kept
	return nil
}

func (s *memStore) Stats(_ context.Context) ([]model.UserStats, error) {
	stats := make([]model.UserStats, 0, len(s.users))
	for _, u := range s.users {
		row := model.UserStats{Email: u.Email}
		for _, t := range s.todos {
			if t.UserID != u.ID {
				continue
			}
			row.TotalTodos++
			if t.Completed {
				row.CompletedTodos++
			}
		}
		stats = append(stats, row)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Email < stats[j].Email })
	return stats, nil
}

// todoStoreAdapter renames GetTodoByID to the GetByID the TodoStore
// interface expects; memStore already carries a GetByID for users.
type todoStoreAdapter struct{ *memStore }

func (a todoStoreAdapter) GetByID(ctx context.Context, userID int64, id string) (*model.Todo, error) {
	return a.memStore.GetTodoByID(ctx, userID, id)
}

// newTestServer assembles the API routes the same way cmd/api/main.go
// does, minus rate limiting, over an in-memory store.
func newTestServer() (*httptest.Server, *memStore) {
	store := &memStore{}

	authService := service.NewAuthService(store, testSecret, time.Hour)
	authHandler := NewAuthHandler(authService)

	todoService := service.NewTodoService(todoStoreAdapter{store})
	todoHandler := NewTodoHandler(todoService)

	r := chi.NewRouter()
	r.Post("/api/register", authHandler.HandleRegister)
	r.Post("/api/login", authHandler.HandleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(testSecret))
		r.Get("/api/me", authHandler.HandleMe)
		r.Get("/api/todos", todoHandler.HandleList)
		r.Post("/api/todos", todoHandler.HandleCreate)
		r.Patch("/api/todos/{id}", todoHandler.HandleUpdate)
		r.Delete("/api/todos/{id}", todoHandler.HandleDelete)
		r.Delete("/api/todos", todoHandler.HandleClearCompleted)
		r.Get("/api/stats", todoHandler.HandleStats)
	})

	return httptest.NewServer(r), store
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, map[string]json.RawMessage) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var decoded map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return resp, decoded
}

// registerAndLogin creates an account and returns a valid bearer token.
func registerAndLogin(t *testing.T, baseURL, email string) string {
	t.Helper()

	resp, _ := doJSON(t, http.MethodPost, baseURL+"/api/register", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status = %d, want %d", email, resp.StatusCode, http.StatusCreated)
	}

	resp, body := doJSON(t, http.MethodPost, baseURL+"/api/login", "", map[string]string{
		"email":    email,
		"password": "password123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status = %d, want %d", email, resp.StatusCode, http.StatusOK)
	}

	var token string
	if err := json.Unmarshal(body["token"], &token); err != nil {
		t.Fatalf("decoding token: %v", err)
	}
	return token
}
