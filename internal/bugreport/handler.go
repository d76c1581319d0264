package bugreport

import (
	"encoding/json"
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/pomorix/service-core-go/internal/auth"
	"github.com/pomorix/service-core-go/internal/bugreport/entity"
	"github.com/pomorix/service-core-go/pkg/utilities"
)

// Handler exposes bug report endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(db *sqlx.DB, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: NewService(db), logger: logger}
}

type CreateReportRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utilities.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	report, err := h.svc.Create(r.Context(), userID, req.Title, req.Description)
	if err != nil {
		if err == ErrEmptyTitle {
			utilities.WriteError(w, http.StatusBadRequest, "title is required")
			return
		}
		h.logger.Warnw("create bug report failed", "err", err)
		utilities.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	utilities.WriteJSON(w, http.StatusCreated, report)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	reports, err := h.svc.List(r.Context(), userID)
	if err != nil {
		h.logger.Warnw("list bug reports failed", "err", err)
		utilities.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if reports == nil {
		reports = []*entity.BugReport{}
	}
	utilities.WriteJSON(w, http.StatusOK, reports)
}
