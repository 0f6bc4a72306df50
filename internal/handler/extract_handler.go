package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/vetorre/curator/internal/middleware"
	"github.com/vetorre/curator/internal/model"
)

// ExtractServiceInterface は抽出ハンドラーが必要とするサービスインターフェース。
type ExtractServiceInterface interface {
	ExtractTool(ctx context.Context, id, title, description string) (*model.Tool, error)
	ExtractNews(ctx context.Context, id, title, description string) (*model.News, error)
	GenerateToolFromTopic(ctx context.Context, topic string) (*model.Tool, error)
	GenerateNewsFromTopic(ctx context.Context, topic string) (*model.News, error)
	GenerateToolBatch(ctx context.Context, count int) ([]*model.Tool, error)
	GenerateNewsBatch(ctx context.Context, count int) ([]*model.News, error)
}

// ReviewEnqueuer はレビューキューへの投入インターフェース。
type ReviewEnqueuer interface {
	EnqueueTools(items []*model.Tool)
	EnqueueNews(items []*model.News)
}

// 一括生成の既定件数と上限。
const (
	defaultBatchCount = 3
	maxBatchCount     = 10
)

// ExtractHandler はAI抽出・生成のHTTPハンドラー。
type ExtractHandler struct {
	service  ExtractServiceInterface
	enqueuer ReviewEnqueuer
}

// NewExtractHandler はExtractHandlerを生成する。
func NewExtractHandler(service ExtractServiceInterface, enqueuer ReviewEnqueuer) *ExtractHandler {
	return &ExtractHandler{service: service, enqueuer: enqueuer}
}

// extractRequest はフィード候補からの抽出リクエストのボディ。
type extractRequest struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// topicRequest はトピックからの生成リクエストのボディ。
type topicRequest struct {
	Topic string `json:"topic"`
}

// batchRequest は一括生成リクエストのボディ。
type batchRequest struct {
	Count int `json:"count"`
}

// clampBatchCount は一括生成件数を既定値と上限に収める。
func clampBatchCount(count int) int {
	if count <= 0 {
		return defaultBatchCount
	}
	if count > maxBatchCount {
		return maxBatchCount
	}
	return count
}

// ExtractTool はフィード候補からツールエントリを抽出する。
// 同一候補が処理中の場合は409を返す。
// POST /api/admin/extract/tool
func (h *ExtractHandler) ExtractTool(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ID) == "" || strings.TrimSpace(req.Title) == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("候補IDとタイトルは必須です"))
		return
	}

	tool, err := h.service.ExtractTool(r.Context(), req.ID, req.Title, req.Description)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

// ExtractNews はフィード候補からニュース記事を抽出する。
// POST /api/admin/extract/news
func (h *ExtractHandler) ExtractNews(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.ID) == "" || strings.TrimSpace(req.Title) == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("候補IDとタイトルは必須です"))
		return
	}

	article, err := h.service.ExtractNews(r.Context(), req.ID, req.Title, req.Description)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// GenerateTool はトピックからツールドラフトを生成して返す。
// 生成結果はキューに入らず、手動フォームへ渡される。
// POST /api/admin/generate/tool
func (h *ExtractHandler) GenerateTool(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("トピックが空です"))
		return
	}

	tool, err := h.service.GenerateToolFromTopic(r.Context(), req.Topic)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

// GenerateNews はトピックからニュースドラフトを生成して返す。
// POST /api/admin/generate/news
func (h *ExtractHandler) GenerateNews(w http.ResponseWriter, r *http.Request) {
	var req topicRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("トピックが空です"))
		return
	}

	article, err := h.service.GenerateNewsFromTopic(r.Context(), req.Topic)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// GenerateToolBatch はツールを一括生成してレビューキューへ投入する。
// POST /api/admin/generate/tools/batch
func (h *ExtractHandler) GenerateToolBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tools, err := h.service.GenerateToolBatch(r.Context(), clampBatchCount(req.Count))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	h.enqueuer.EnqueueTools(tools)
	writeJSON(w, http.StatusOK, map[string]any{"queued": len(tools)})
}

// GenerateNewsBatch はニュースを一括生成してレビューキューへ投入する。
// POST /api/admin/generate/news/batch
func (h *ExtractHandler) GenerateNewsBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	articles, err := h.service.GenerateNewsBatch(r.Context(), clampBatchCount(req.Count))
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	h.enqueuer.EnqueueNews(articles)
	writeJSON(w, http.StatusOK, map[string]any{"queued": len(articles)})
}
