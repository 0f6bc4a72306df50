package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vetorre/curator/internal/middleware"
	"github.com/vetorre/curator/internal/model"
)

// CatalogOrchestratorInterface はカタログハンドラーが必要とする永続化操作。
type CatalogOrchestratorInterface interface {
	CreateOrUpdateTool(ctx context.Context, tool *model.Tool, existingID string) (*model.Tool, error)
	CreateOrUpdateNews(ctx context.Context, article *model.News, existingID string) (*model.News, error)
	RemoveTool(ctx context.Context, id string) error
	RemoveNews(ctx context.Context, id string) error
}

// ToolLister はツール一覧の取得インターフェース。
type ToolLister interface {
	ListAll(ctx context.Context) ([]*model.Tool, error)
}

// NewsLister はニュース一覧の取得インターフェース。
type NewsLister interface {
	ListAll(ctx context.Context) ([]*model.News, error)
}

// CatalogHandler はツールとニュースのカタログ操作のHTTPハンドラー。
type CatalogHandler struct {
	orchestrator CatalogOrchestratorInterface
	toolLister   ToolLister
	newsLister   NewsLister
}

// NewCatalogHandler はCatalogHandlerを生成する。
func NewCatalogHandler(orchestrator CatalogOrchestratorInterface, toolLister ToolLister, newsLister NewsLister) *CatalogHandler {
	return &CatalogHandler{
		orchestrator: orchestrator,
		toolLister:   toolLister,
		newsLister:   newsLister,
	}
}

// ListTools はツール一覧を返す。
// GET /api/tools
func (h *CatalogHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	tools, err := h.toolLister.ListAll(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if tools == nil {
		tools = []*model.Tool{}
	}
	writeJSON(w, http.StatusOK, tools)
}

// ListNews はニュース一覧を返す。
// GET /api/news
func (h *CatalogHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	articles, err := h.newsLister.ListAll(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if articles == nil {
		articles = []*model.News{}
	}
	writeJSON(w, http.StatusOK, articles)
}

// CreateTool はツールを新規作成する。
// POST /api/admin/tools
func (h *CatalogHandler) CreateTool(w http.ResponseWriter, r *http.Request) {
	var tool model.Tool
	if !decodeJSON(w, r, &tool) {
		return
	}

	saved, err := h.orchestrator.CreateOrUpdateTool(r.Context(), &tool, "")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// UpdateTool は既存ツールを更新する。パス中のIDのみが更新対象を決める。
// PUT /api/admin/tools/{id}
func (h *CatalogHandler) UpdateTool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var tool model.Tool
	if !decodeJSON(w, r, &tool) {
		return
	}

	saved, err := h.orchestrator.CreateOrUpdateTool(r.Context(), &tool, id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteTool はツールを削除する。
// DELETE /api/admin/tools/{id}
func (h *CatalogHandler) DeleteTool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.orchestrator.RemoveTool(r.Context(), id); err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateNews はニュース記事を新規作成する。
// POST /api/admin/news
func (h *CatalogHandler) CreateNews(w http.ResponseWriter, r *http.Request) {
	var article model.News
	if !decodeJSON(w, r, &article) {
		return
	}

	saved, err := h.orchestrator.CreateOrUpdateNews(r.Context(), &article, "")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// UpdateNews は既存ニュース記事を更新する。
// PUT /api/admin/news/{id}
func (h *CatalogHandler) UpdateNews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var article model.News
	if !decodeJSON(w, r, &article) {
		return
	}

	saved, err := h.orchestrator.CreateOrUpdateNews(r.Context(), &article, id)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// DeleteNews はニュース記事を削除する。
// DELETE /api/admin/news/{id}
func (h *CatalogHandler) DeleteNews(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.orchestrator.RemoveNews(r.Context(), id); err != nil {
		middleware.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
