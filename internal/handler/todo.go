package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/todolite/todolite-go/internal/middleware"
	"github.com/todolite/todolite-go/internal/model"
	"github.com/todolite/todolite-go/internal/service"
)

// TodoHandler handles HTTP requests for todo operations.
type TodoHandler struct {
	service *service.TodoService
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(svc *service.TodoService) *TodoHandler {
	return &TodoHandler{service: svc}
}

// HandleList handles GET /api/todos requests.
func (h *TodoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("no token provided"))
		return
	}

	todos, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		slog.Error("listing todos failed", "error", err, "user_id", identity.UserID)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, map[string][]model.TodoResponse{"todos": todos})
}

// HandleCreate handles POST /api/todos requests.
func (h *TodoHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("no token provided"))
		return
	}

	var req model.CreateTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	todo, err := h.service.Create(r.Context(), identity.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTextRequired),
			errors.Is(err, service.ErrTextTooLong),
			errors.Is(err, service.ErrIDTooLong):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrDuplicateTodoID):
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		default:
			slog.Error("creating todo failed", "error", err, "user_id", identity.UserID)
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]model.TodoResponse{"todo": todo})
}

// HandleUpdate handles PATCH /api/todos/{id} requests. Only the completed
// flag is mutable; an absent or non-boolean flag echoes the current state.
func (h *TodoHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("no token provided"))
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" || len(id) > service.MaxIDLength {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid todo id"))
		return
	}

	var req model.UpdateTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	todo, err := h.service.SetCompleted(r.Context(), identity.UserID, id, req.CompletedFlag())
	if err != nil {
		if errors.Is(err, service.ErrTodoNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		slog.Error("updating todo failed", "error", err, "user_id", identity.UserID, "todo_id", id)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]model.TodoResponse{"todo": todo})
}

// HandleDelete handles DELETE /api/todos/{id} requests.
func (h *TodoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("no token provided"))
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" || len(id) > service.MaxIDLength {
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid todo id"))
		return
	}

	if err := h.service.Delete(r.Context(), identity.UserID, id); err != nil {
		if errors.Is(err, service.ErrTodoNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse(err.Error()))
			return
		}
		slog.Error("deleting todo failed", "error", err, "user_id", identity.UserID, "todo_id", id)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, messageResponse("todo deleted"))
}

// HandleClearCompleted handles DELETE /api/todos requests. Clearing a list
// with no completed todos succeeds as a no-op.
func (h *TodoHandler) HandleClearCompleted(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("no token provided"))
		return
	}

	if err := h.service.ClearCompleted(r.Context(), identity.UserID); err != nil {
		slog.Error("clearing completed todos failed", "error", err, "user_id", identity.UserID)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, messageResponse("completed todos cleared"))
}

// HandleStats handles GET /api/stats requests. The view is authenticated
// but deliberately not owner-scoped: it aggregates across all users.
func (h *TodoHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.IdentityFromContext(r.Context()); !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("no token provided"))
		return
	}

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		slog.Error("loading stats failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, map[string][]model.UserStats{"stats": stats})
}
