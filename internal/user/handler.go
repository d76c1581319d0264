package user

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/pomorix/service-core-go/internal/auth"
	"github.com/pomorix/service-core-go/internal/user/entity"
	"github.com/pomorix/service-core-go/pkg/utilities"
)

// Handler exposes the public signin endpoint and the authenticated
// profile endpoint.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type SigninRequest struct {
	Email          string  `json:"email"`
	AuthProvider   string  `json:"auth_provider"`
	AuthProviderID *string `json:"auth_provider_id"`
	Password       string  `json:"password"`
}

func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utilities.WriteError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	switch req.AuthProvider {
	case entity.ProviderGoogle, entity.ProviderGithub, entity.ProviderEmail:
	default:
		utilities.WriteError(w, http.StatusBadRequest, "unknown auth provider")
		return
	}
	result, err := h.svc.Signin(r.Context(), SigninInput{
		Email:          req.Email,
		AuthProvider:   req.AuthProvider,
		AuthProviderID: req.AuthProviderID,
		Password:       req.Password,
	})
	if err != nil {
		h.respondErr(w, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserID(r.Context())
	if !ok {
		utilities.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	rng := entity.AnalyticsRange(r.URL.Query().Get("range"))
	switch rng {
	case entity.RangeLast7Days, entity.RangeLast30Days, entity.RangeAllTime:
	case "":
		rng = entity.RangeLast7Days
	default:
		utilities.WriteError(w, http.StatusBadRequest, "unknown analytics range")
		return
	}
	profile, err := h.svc.Profile(r.Context(), userID, rng)
	if err != nil {
		h.respondErr(w, err)
		return
	}
	utilities.WriteJSON(w, http.StatusOK, profile)
}

func (h *Handler) respondErr(w http.ResponseWriter, err error) {
	switch err {
	case ErrBadCredentials:
		utilities.WriteError(w, http.StatusUnauthorized, "invalid credentials")
	case ErrUserNotFound:
		utilities.WriteError(w, http.StatusNotFound, "user not found")
	default:
		h.logger.Warnw("user operation failed", "err", err)
		utilities.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
