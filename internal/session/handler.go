package session

import (
	"context"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/pomorix/service-core-go/internal/auth"
	"github.com/pomorix/service-core-go/internal/session/entity"
	"github.com/pomorix/service-core-go/pkg/utilities"
)

// Handler exposes the session lifecycle over HTTP.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type StartSessionRequest struct {
	SessionType entity.Type `json:"session_type"`
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utilities.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	snap, err := h.svc.Start(r.Context(), userID, req.SessionType)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	utilities.WriteJSON(w, http.StatusCreated, snap)
}

func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	snap, err := h.svc.Current(r.Context(), userID)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	if snap == nil {
		utilities.WriteJSON(w, http.StatusOK, map[string]any{"session": nil})
		return
	}
	utilities.WriteJSON(w, http.StatusOK, map[string]any{"session": snap})
}

func (h *Handler) Pause(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.Pause)
}

func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.Resume)
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.Complete)
}

func (h *Handler) Abort(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.svc.Abort)
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, userID string) error) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := op(r.Context(), userID); err != nil {
		h.respondErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch err {
	case ErrInvalidType:
		utilities.WriteError(w, http.StatusBadRequest, "invalid session type")
	case ErrNoActiveTask:
		utilities.WriteError(w, http.StatusBadRequest, "no active task found, set a task as active first")
	case ErrNoTasksFound:
		utilities.WriteError(w, http.StatusBadRequest, "no tasks found")
	case ErrNoActiveSession:
		utilities.WriteError(w, http.StatusBadRequest, "no active session")
	case ErrAlreadyPaused:
		utilities.WriteError(w, http.StatusConflict, "session already paused")
	case ErrNotPaused:
		utilities.WriteError(w, http.StatusConflict, "session not paused")
	default:
		h.logger.Warnw("session operation failed", "err", err)
		utilities.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
