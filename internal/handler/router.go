package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vetorre/curator/internal/genai"
	"github.com/vetorre/curator/internal/metrics"
	"github.com/vetorre/curator/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	ProfileFinder     middleware.ProfileFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// ヘルスチェックとメトリクス
	DB       Pinger
	Gatherer prometheus.Gatherer

	// カタログ
	CatalogOrchestrator CatalogOrchestratorInterface
	ToolLister          ToolLister
	NewsLister          NewsLister

	// フィードと抽出
	FeedService    FeedServiceInterface
	ExtractService ExtractServiceInterface
	ReviewService  ReviewServiceInterface
	Enqueuer       ReviewEnqueuer

	// AI生成
	Generator genai.ContentGenerator

	// インサイト
	Limiter    QuotaLimiter
	ToolFinder ToolFinder

	// プロフィール
	PlanUpdater    PlanUpdater
	SessionDeleter SessionDeleter
	QuotaReader    QuotaReader

	// 変更通知
	ChangeNotifier ChangeSubscriber
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → Recovery → SecurityHeaders → Logging → [Session → RateLimit(General) → (Admin)]
//
// ヘルスチェック、メトリクス、公開カタログは認証チェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// CORS ミドルウェアを最上位に適用（プリフライトを含む全ルートに効く）
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))

	healthHandler := NewHealthHandler(deps.DB)
	catalogHandler := NewCatalogHandler(deps.CatalogOrchestrator, deps.ToolLister, deps.NewsLister)
	feedHandler := NewFeedHandler(deps.FeedService)
	extractHandler := NewExtractHandler(deps.ExtractService, deps.Enqueuer)
	reviewHandler := NewReviewHandler(deps.ReviewService)
	genaiHandler := NewGenAIHandler(deps.Generator, deps.ToolLister, deps.NewsLister)
	insightsHandler := NewInsightsHandler(deps.Limiter, deps.Generator, deps.ToolFinder, deps.ToolLister)
	profileHandler := NewProfileHandler(deps.PlanUpdater, deps.SessionDeleter, deps.QuotaReader)
	changesHandler := NewChangesHandler(deps.ChangeNotifier)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler.Check)
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	// 公開カタログ
	r.Get("/api/tools", catalogHandler.ListTools)
	r.Get("/api/news", catalogHandler.ListNews)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder, deps.ProfileFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// セッションとプロフィール
		r.Get("/auth/me", profileHandler.Me)
		r.Post("/auth/logout", profileHandler.Logout)
		r.Post("/api/profile/plan", profileHandler.UpdatePlan)

		// 変更イベントのSSEストリーム
		r.Get("/api/changes", changesHandler.Stream)

		// 利用枠で制限されるインサイト生成
		r.Route("/api/insights/{toolID}", func(r chi.Router) {
			r.With(deps.RateLimiter.GenerationMiddleware()).Post("/slides", insightsHandler.Slides)
			r.With(deps.RateLimiter.GenerationMiddleware()).Post("/tutorial", insightsHandler.Tutorial)
		})

		// AI生成プロキシ
		r.With(deps.RateLimiter.GenerationMiddleware()).Post("/api/genai", genaiHandler.Handle)

		// --- 管理者専用ルート ---
		r.Route("/api/admin", func(r chi.Router) {
			r.Use(middleware.NewAdminMiddleware())

			// フィードプレビュー
			r.Post("/feed/preview", feedHandler.Preview)

			// AI抽出・生成（生成専用レート制限を追加）
			r.Group(func(r chi.Router) {
				r.Use(deps.RateLimiter.GenerationMiddleware())
				r.Post("/extract/tool", extractHandler.ExtractTool)
				r.Post("/extract/news", extractHandler.ExtractNews)
				r.Post("/generate/tool", extractHandler.GenerateTool)
				r.Post("/generate/news", extractHandler.GenerateNews)
				r.Post("/generate/tools/batch", extractHandler.GenerateToolBatch)
				r.Post("/generate/news/batch", extractHandler.GenerateNewsBatch)
				r.Post("/analyze/trends", insightsHandler.AnalyzeTrends)
			})

			// レビューキュー
			r.Route("/review", func(r chi.Router) {
				r.Get("/tools", reviewHandler.ListTools)
				r.Get("/news", reviewHandler.ListNews)

				r.Post("/tool/publish-all", reviewHandler.PublishAllTools)
				r.Post("/tool/{id}/publish", reviewHandler.PublishTool)
				r.Post("/tool/{id}/discard", reviewHandler.DiscardTool)
				r.Post("/tool/{id}/edit", reviewHandler.EditTool)

				r.Post("/news/publish-all", reviewHandler.PublishAllNews)
				r.Post("/news/{id}/publish", reviewHandler.PublishNews)
				r.Post("/news/{id}/discard", reviewHandler.DiscardNews)
				r.Post("/news/{id}/edit", reviewHandler.EditNews)
			})

			// カタログの直接編集
			r.Route("/tools", func(r chi.Router) {
				r.Post("/", catalogHandler.CreateTool)
				r.Put("/{id}", catalogHandler.UpdateTool)
				r.Delete("/{id}", catalogHandler.DeleteTool)
			})
			r.Route("/news", func(r chi.Router) {
				r.Post("/", catalogHandler.CreateNews)
				r.Put("/{id}", catalogHandler.UpdateNews)
				r.Delete("/{id}", catalogHandler.DeleteNews)
			})
		})
	})

	return r
}
