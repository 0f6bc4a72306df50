package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/vetorre/curator/internal/middleware"
	"github.com/vetorre/curator/internal/model"
)

// FeedServiceInterface はフィードハンドラーが必要とするサービスインターフェース。
type FeedServiceInterface interface {
	// FetchCandidates はフィードURLから変換候補を取得する。
	FetchCandidates(ctx context.Context, feedURL string, maxItems int) ([]model.FeedCandidate, error)
}

// FeedHandler はフィードプレビューのHTTPハンドラー。
type FeedHandler struct {
	service FeedServiceInterface
}

// NewFeedHandler はFeedHandlerを生成する。
func NewFeedHandler(service FeedServiceInterface) *FeedHandler {
	return &FeedHandler{service: service}
}

// feedPreviewRequest はフィードプレビューリクエストのボディ。
type feedPreviewRequest struct {
	URL      string `json:"url"`
	MaxItems int    `json:"max_items"`
}

// Preview はフィードURLから変換候補の一覧を返す。
// POST /api/admin/feed/preview
func (h *FeedHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req feedPreviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if strings.TrimSpace(req.URL) == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("フィードURLが空です"))
		return
	}

	candidates, err := h.service.FetchCandidates(r.Context(), req.URL, req.MaxItems)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if candidates == nil {
		candidates = []model.FeedCandidate{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"candidates": candidates})
}
