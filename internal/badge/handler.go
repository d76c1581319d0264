package badge

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pomorix/service-core-go/internal/auth"
	"github.com/pomorix/service-core-go/internal/badge/entity"
	"github.com/pomorix/service-core-go/pkg/utilities"
)

// Handler exposes badge catalog read endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) Definitions(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	views, err := h.svc.GetAllDefinitions(r.Context(), userID)
	if err != nil {
		h.logger.Warnw("list badge definitions failed", "err", err)
		utilities.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	utilities.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) Unlocked(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	badges, err := h.svc.GetUserBadges(r.Context(), userID)
	if err != nil {
		h.logger.Warnw("list user badges failed", "err", err)
		utilities.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if badges == nil {
		badges = []*entity.UnlockedView{}
	}
	utilities.WriteJSON(w, http.StatusOK, badges)
}
