package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vetorre/curator/internal/middleware"
	"github.com/vetorre/curator/internal/model"
)

// ReviewServiceInterface はレビューハンドラーが必要とするサービスインターフェース。
type ReviewServiceInterface interface {
	Tools() []*model.Tool
	News() []*model.News
	PublishTool(ctx context.Context, id string) (*model.Tool, error)
	PublishNews(ctx context.Context, id string) (*model.News, error)
	EditTool(id string) (*model.Tool, error)
	EditNews(id string) (*model.News, error)
	DiscardTool(id string)
	DiscardNews(id string)
	PublishAllTools(ctx context.Context) (int, error)
	PublishAllNews(ctx context.Context) (int, error)
}

// ReviewHandler はレビューキュー操作のHTTPハンドラー。
type ReviewHandler struct {
	service ReviewServiceInterface
}

// NewReviewHandler はReviewHandlerを生成する。
func NewReviewHandler(service ReviewServiceInterface) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// ListTools はレビュー待ちのツール一覧をキュー順で返す。
// GET /api/admin/review/tools
func (h *ReviewHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	items := h.service.Tools()
	if items == nil {
		items = []*model.Tool{}
	}
	writeJSON(w, http.StatusOK, items)
}

// ListNews はレビュー待ちのニュース一覧をキュー順で返す。
// GET /api/admin/review/news
func (h *ReviewHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	items := h.service.News()
	if items == nil {
		items = []*model.News{}
	}
	writeJSON(w, http.StatusOK, items)
}

// PublishTool はキュー内のツールを公開し、キューから取り除く。
// POST /api/admin/review/tool/{id}/publish
func (h *ReviewHandler) PublishTool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tool, err := h.service.PublishTool(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

// PublishNews はキュー内のニュースを公開し、キューから取り除く。
// POST /api/admin/review/news/{id}/publish
func (h *ReviewHandler) PublishNews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	article, err := h.service.PublishNews(r.Context(), id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// EditTool はキューからツールを取り出し、編集フォーム用に返す。
// POST /api/admin/review/tool/{id}/edit
func (h *ReviewHandler) EditTool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tool, err := h.service.EditTool(id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tool)
}

// EditNews はキューからニュースを取り出し、編集フォーム用に返す。
// POST /api/admin/review/news/{id}/edit
func (h *ReviewHandler) EditNews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	article, err := h.service.EditNews(id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// DiscardTool はキューからツールを破棄する。存在しないIDでも成功を返す。
// POST /api/admin/review/tool/{id}/discard
func (h *ReviewHandler) DiscardTool(w http.ResponseWriter, r *http.Request) {
	h.service.DiscardTool(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// DiscardNews はキューからニュースを破棄する。存在しないIDでも成功を返す。
// POST /api/admin/review/news/{id}/discard
func (h *ReviewHandler) DiscardNews(w http.ResponseWriter, r *http.Request) {
	h.service.DiscardNews(chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

// PublishAllTools はキュー内の全ツールをキュー順に公開する。
// 途中で失敗した場合は残りを中断し、公開済み件数とともにエラーを返す。
// POST /api/admin/review/tool/publish-all
func (h *ReviewHandler) PublishAllTools(w http.ResponseWriter, r *http.Request) {
	published, err := h.service.PublishAllTools(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"published": published})
}

// PublishAllNews はキュー内の全ニュースをキュー順に公開する。
// POST /api/admin/review/news/publish-all
func (h *ReviewHandler) PublishAllNews(w http.ResponseWriter, r *http.Request) {
	published, err := h.service.PublishAllNews(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"published": published})
}
