package task

import (
	"encoding/json"
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/pomorix/service-core-go/internal/auth"
	"github.com/pomorix/service-core-go/internal/task/entity"
	"github.com/pomorix/service-core-go/pkg/utilities"
)

// Handler exposes HTTP endpoints for task operations.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(db *sqlx.DB, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: NewService(db, nil), logger: logger}
}

type CreateTaskRequest struct {
	Title              string `json:"title"`
	EstimatedPomodoros *int   `json:"estimated_pomodoros"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utilities.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	t, err := h.svc.Create(r.Context(), userID, req.Title, req.EstimatedPomodoros)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	utilities.WriteJSON(w, http.StatusCreated, t)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	tasks, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if tasks == nil {
		tasks = []*entity.Task{}
	}
	utilities.WriteJSON(w, http.StatusOK, tasks)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	t, err := h.svc.Get(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, t)
}

type UpdateTaskRequest struct {
	Title              *string `json:"title"`
	EstimatedPomodoros *int    `json:"estimated_pomodoros"`
	IsCompleted        *bool   `json:"is_completed"`
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utilities.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	t, err := h.svc.Update(r.Context(), userID, r.PathValue("id"), UpdateInput{
		Title:              req.Title,
		EstimatedPomodoros: req.EstimatedPomodoros,
		IsCompleted:        req.IsCompleted,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	t, err := h.svc.ToggleActive(r.Context(), userID, r.PathValue("id"))
	if err != nil {
		h.respondErr(w, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.svc.Restore(r.Context(), userID, r.PathValue("id")); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch err {
	case ErrNotFound:
		utilities.WriteError(w, http.StatusNotFound, "task not found")
	case ErrEmptyTitle:
		utilities.WriteError(w, http.StatusBadRequest, "title is required")
	case ErrAlreadyActive:
		utilities.WriteError(w, http.StatusConflict, "task is not deleted")
	default:
		h.logger.Warnw("task operation failed", "err", err)
		utilities.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
