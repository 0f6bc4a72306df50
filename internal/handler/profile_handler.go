package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/vetorre/curator/internal/middleware"
	"github.com/vetorre/curator/internal/model"
)

// PlanUpdater はプロフィールのプラン更新インターフェース。
type PlanUpdater interface {
	UpdatePlan(ctx context.Context, id string, plan model.Plan, expiresAt *time.Time) error
}

// SessionDeleter はセッションの破棄インターフェース。
type SessionDeleter interface {
	DeleteByID(ctx context.Context, id string) error
}

// QuotaReader は本日の残り利用可能回数の取得インターフェース。
type QuotaReader interface {
	RemainingToday(ctx context.Context, profile *model.Profile) (int, error)
}

// ProfileHandler はプロフィールとセッションのHTTPハンドラー。
type ProfileHandler struct {
	planUpdater    PlanUpdater
	sessionDeleter SessionDeleter
	quotaReader    QuotaReader
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(planUpdater PlanUpdater, sessionDeleter SessionDeleter, quotaReader QuotaReader) *ProfileHandler {
	return &ProfileHandler{
		planUpdater:    planUpdater,
		sessionDeleter: sessionDeleter,
		quotaReader:    quotaReader,
	}
}

// meResponse は現在のプロフィールと残り利用枠のレスポンスボディ。
type meResponse struct {
	*model.Profile
	RemainingToday int `json:"remainingToday"`
}

// Me は認証済みユーザーのプロフィールを返す。
// GET /auth/me
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := middleware.ProfileFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	remaining, err := h.quotaReader.RemainingToday(r.Context(), profile)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{Profile: profile, RemainingToday: remaining})
}

// Logout は現在のセッションを破棄する。
// POST /auth/logout
func (h *ProfileHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sessionID := middleware.SessionIDFromRequest(r)
	if sessionID != "" {
		if err := h.sessionDeleter.DeleteByID(r.Context(), sessionID); err != nil {
			middleware.WriteError(w, err)
			return
		}
	}

	// Cookieベースのクライアント向けにセッションCookieを失効させる
	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}

// planUpdateRequest はプラン変更リクエストのボディ。
type planUpdateRequest struct {
	Plan      string     `json:"plan"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// UpdatePlan は認証済みユーザーのプランを変更する。
// 決済処理は扱わず、検証済みのプラン値をそのまま反映する。
// POST /api/profile/plan
func (h *ProfileHandler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	profile, err := middleware.ProfileFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req planUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	plan := model.Plan(req.Plan)
	switch plan {
	case model.PlanFree, model.PlanStarter, model.PlanPro:
	default:
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("不明なプランです"))
		return
	}

	if err := h.planUpdater.UpdatePlan(r.Context(), profile.ID, plan, req.ExpiresAt); err != nil {
		middleware.WriteError(w, err)
		return
	}

	profile.Plan = plan
	profile.PlanExpiresAt = req.ExpiresAt
	writeJSON(w, http.StatusOK, profile)
}
