package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vetorre/curator/internal/genai"
	"github.com/vetorre/curator/internal/middleware"
	"github.com/vetorre/curator/internal/model"
)

// QuotaLimiter は日次利用枠の消費インターフェース。
type QuotaLimiter interface {
	TryConsume(ctx context.Context, profile *model.Profile, feature string) (bool, error)
}

// ToolFinder は単一ツールの取得インターフェース。
type ToolFinder interface {
	FindByID(ctx context.Context, id string) (*model.Tool, error)
}

// InsightsHandler はツールインサイト生成（スライド・チュートリアル）と
// トレンド分析のHTTPハンドラー。インサイト生成はプラン別の日次利用枠で制限される。
type InsightsHandler struct {
	limiter   QuotaLimiter
	generator genai.ContentGenerator
	finder    ToolFinder
	tools     ToolLister
}

// NewInsightsHandler はInsightsHandlerを生成する。
func NewInsightsHandler(limiter QuotaLimiter, generator genai.ContentGenerator, finder ToolFinder, tools ToolLister) *InsightsHandler {
	return &InsightsHandler{
		limiter:   limiter,
		generator: generator,
		finder:    finder,
		tools:     tools,
	}
}

// tutorialModule はチュートリアル生成結果の1モジュール。
type tutorialModule struct {
	Title       string `json:"title"`
	Body        string `json:"body"`
	ImagePrompt string `json:"imagePrompt,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// tutorialResponse はチュートリアル生成のレスポンスボディ。
type tutorialResponse struct {
	Modules []tutorialModule `json:"modules"`
}

// loadTool は対象ツールを取得し、利用枠を消費する。
// 存在しないツールへの要求で枠を浪費しないよう、ツールの解決を先に行う。
// 枠の消費は生成より先に行い、拒否された場合はアップセル用エラーを書き込む。
func (h *InsightsHandler) loadTool(w http.ResponseWriter, r *http.Request, feature string) (*model.Tool, bool) {
	toolID := chi.URLParam(r, "toolID")
	tool, err := h.finder.FindByID(r.Context(), toolID)
	if err != nil {
		middleware.WriteError(w, err)
		return nil, false
	}
	if tool == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewNotFoundError("ツール", toolID))
		return nil, false
	}

	profile, _ := middleware.ProfileFromContext(r.Context())
	if _, err := h.limiter.TryConsume(r.Context(), profile, feature); err != nil {
		middleware.WriteError(w, err)
		return nil, false
	}
	return tool, true
}

// Slides は対象ツールのプレゼン用スライドを生成する。
// POST /api/insights/{toolID}/slides
func (h *InsightsHandler) Slides(w http.ResponseWriter, r *http.Request) {
	tool, ok := h.loadTool(w, r, "slides")
	if !ok {
		return
	}

	toolJSON, err := json.Marshal(tool)
	if err != nil {
		middleware.WriteError(w, model.NewStoreOperationError("ツールのシリアライズ"))
		return
	}

	result := h.generator.GenerateJSON(r.Context(), genai.SlidesRequest(string(toolJSON)))
	if result.Status != genai.StatusOK {
		middleware.WriteError(w, model.NewGenerationFailedError("スライドを生成できませんでした"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(result.Raw)
}

// Tutorial は対象ツールの学習チュートリアルを生成する。
// 各モジュールの挿絵はベストエフォートで生成し、失敗しても本文は返す。
// POST /api/insights/{toolID}/tutorial
func (h *InsightsHandler) Tutorial(w http.ResponseWriter, r *http.Request) {
	tool, ok := h.loadTool(w, r, "tutorial")
	if !ok {
		return
	}

	toolJSON, err := json.Marshal(tool)
	if err != nil {
		middleware.WriteError(w, model.NewStoreOperationError("ツールのシリアライズ"))
		return
	}

	result := h.generator.GenerateJSON(r.Context(), genai.TutorialRequest(string(toolJSON)))
	if result.Status != genai.StatusOK {
		middleware.WriteError(w, model.NewGenerationFailedError("チュートリアルを生成できませんでした"))
		return
	}

	var resp tutorialResponse
	if err := json.Unmarshal(result.Raw, &resp); err != nil {
		middleware.WriteError(w, model.NewGenerationFailedError("チュートリアルの解析に失敗しました"))
		return
	}

	for i := range resp.Modules {
		prompt := resp.Modules[i].ImagePrompt
		if prompt == "" {
			continue
		}
		imageURL, err := h.generator.GenerateImage(r.Context(), prompt)
		if err != nil {
			continue
		}
		resp.Modules[i].ImageURL = imageURL
	}

	writeJSON(w, http.StatusOK, resp)
}

// AnalyzeTrends は公開済みツール全体からトレンド分析レポートを生成する。
// POST /api/admin/analyze/trends
func (h *InsightsHandler) AnalyzeTrends(w http.ResponseWriter, r *http.Request) {
	tools, err := h.tools.ListAll(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	catalogJSON, err := json.Marshal(tools)
	if err != nil {
		middleware.WriteError(w, model.NewStoreOperationError("カタログのシリアライズ"))
		return
	}

	system, user := genai.TrendsPrompt(string(catalogJSON))
	report, err := h.generator.GenerateText(r.Context(), system, user)
	if err != nil {
		middleware.WriteError(w, model.NewGenerationFailedError("レポートを生成できませんでした"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"report": report})
}
