package settings

import (
	"encoding/json"
	"net/http"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/pomorix/service-core-go/internal/auth"
	"github.com/pomorix/service-core-go/pkg/utilities"
)

// Handler exposes HTTP endpoints for user settings.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(db *sqlx.DB, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: NewService(db, nil), logger: logger}
}

// Svc returns the underlying service for wiring into the session domain.
func (h *Handler) Svc() *Service { return h.svc }

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	st, err := h.svc.GetOrCreate(r.Context(), userID)
	if err != nil {
		h.logger.Warnw("get settings failed", "err", err)
		utilities.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	utilities.WriteJSON(w, http.StatusOK, st)
}

type UpdateSettingsRequest struct {
	PomodoroDuration   *int    `json:"pomodoro_duration"`
	ShortBreak         *int    `json:"short_break"`
	LongBreak          *int    `json:"long_break"`
	DailyGoalPomodoros *int    `json:"daily_goal_pomodoros"`
	AlarmSound         *string `json:"alarm_sound"`
	TickingSound       *string `json:"ticking_sound"`
	Volume             *int    `json:"volume"`
	AutoStartBreaks    *bool   `json:"auto_start_breaks"`
	AutoStartPomodoros *bool   `json:"auto_start_pomodoros"`
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utilities.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	st, err := h.svc.Update(r.Context(), userID, UpdateInput{
		PomodoroDuration:   req.PomodoroDuration,
		ShortBreak:         req.ShortBreak,
		LongBreak:          req.LongBreak,
		DailyGoalPomodoros: req.DailyGoalPomodoros,
		AlarmSound:         req.AlarmSound,
		TickingSound:       req.TickingSound,
		Volume:             req.Volume,
		AutoStartBreaks:    req.AutoStartBreaks,
		AutoStartPomodoros: req.AutoStartPomodoros,
	})
	if err != nil {
		if err == ErrInvalidValue {
			utilities.WriteError(w, http.StatusBadRequest, "invalid settings value")
			return
		}
		h.logger.Warnw("update settings failed", "err", err)
		utilities.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	utilities.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	st, err := h.svc.Reset(r.Context(), userID)
	if err != nil {
		h.logger.Warnw("reset settings failed", "err", err)
		utilities.WriteError(w, http.StatusInternalServerError, "internal error")
		return
	}
	utilities.WriteJSON(w, http.StatusOK, st)
}
