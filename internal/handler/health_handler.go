package handler

import (
	"context"
	"net/http"

	"github.com/vetorre/curator/internal/middleware"
	"github.com/vetorre/curator/internal/model"
)

// Pinger はデータベース疎通確認のインターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler はヘルスチェックのHTTPハンドラー。
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check はデータベース疎通を含むヘルスチェック結果を返す。
// GET /health
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	if err := h.db.PingContext(r.Context()); err != nil {
		middleware.WriteErrorResponse(w, http.StatusServiceUnavailable, model.NewStoreOperationError("疎通確認"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
