// Package extract はフィード候補やトピックからのAI抽出パイプラインを提供する。
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vetorre/curator/internal/genai"
	"github.com/vetorre/curator/internal/metrics"
	"github.com/vetorre/curator/internal/model"
)

// ツールドラフトのフォールバック値。
const (
	defaultToolCategory = "Uncategorized"
	defaultToolPrice    = "Free"
	defaultToolWebsite  = "#"
	defaultNewsCategory = "General"
)

// Service はAI抽出パイプライン。
// 構造化データ生成と画像付与の2段階で動作し、
// 画像生成の失敗は決定的なプレースホルダーで回復する。
type Service struct {
	gen            genai.ContentGenerator
	logger         *slog.Logger
	collector      metrics.MetricsCollector
	maxConcurrency int

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewService はServiceの新しいインスタンスを生成する。
// maxConcurrencyが0以下の場合はデフォルト値4を使用する。
func NewService(gen genai.ContentGenerator, logger *slog.Logger, collector metrics.MetricsCollector, maxConcurrency int) *Service {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &Service{
		gen:            gen,
		logger:         logger,
		collector:      collector,
		maxConcurrency: maxConcurrency,
		inflight:       make(map[string]struct{}),
	}
}

// tryAcquire は候補IDの処理スロットを取得する。
// 同一IDが処理中の場合はfalseを返す。
func (s *Service) tryAcquire(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[id]; busy {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

// release は候補IDの処理スロットを解放する。
func (s *Service) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}

// ExtractTool はフィード候補からツールエントリを抽出する。
// 同一候補IDへの重複要求はALREADY_PROCESSINGエラーになる。
func (s *Service) ExtractTool(ctx context.Context, id, title, description string) (*model.Tool, error) {
	if !s.tryAcquire(id) {
		return nil, model.NewAlreadyProcessingError(id)
	}
	defer s.release(id)

	draft, err := s.generateToolDraft(ctx, genai.ExtractToolRequest(title, description))
	if err != nil {
		return nil, err
	}

	tool := s.buildTool(ctx, draft, title, description, draftID("gen", 0))
	return tool, nil
}

// ExtractNews はフィード候補からニュース記事を抽出する。
// 同一候補IDへの重複要求はALREADY_PROCESSINGエラーになる。
func (s *Service) ExtractNews(ctx context.Context, id, title, description string) (*model.News, error) {
	if !s.tryAcquire(id) {
		return nil, model.NewAlreadyProcessingError(id)
	}
	defer s.release(id)

	draft, err := s.generateNewsDraft(ctx, genai.ExtractNewsRequest(title, description))
	if err != nil {
		return nil, err
	}

	article := s.buildNews(ctx, draft, title, description, draftID("news-gen", 0))
	return article, nil
}

// GenerateToolFromTopic はトピックからツールエントリを生成する。
func (s *Service) GenerateToolFromTopic(ctx context.Context, topic string) (*model.Tool, error) {
	draft, err := s.generateToolDraft(ctx, genai.ToolRequest(topic))
	if err != nil {
		return nil, err
	}

	tool := s.buildTool(ctx, draft, topic, "", draftID("gen", 0))
	return tool, nil
}

// GenerateNewsFromTopic はトピックからニュース記事を生成する。
func (s *Service) GenerateNewsFromTopic(ctx context.Context, topic string) (*model.News, error) {
	draft, err := s.generateNewsDraft(ctx, genai.NewsRequest(topic))
	if err != nil {
		return nil, err
	}

	article := s.buildNews(ctx, draft, topic, "", draftID("news-gen", 0))
	return article, nil
}

// GenerateToolBatch は複数のツールエントリを一括生成する。
// 画像付与は並列に行うが、出力は生成順を保持する。
func (s *Service) GenerateToolBatch(ctx context.Context, count int) ([]*model.Tool, error) {
	start := time.Now()
	result := s.gen.GenerateJSON(ctx, genai.ToolBatchRequest(count))
	s.collector.RecordGenerationLatency(time.Since(start))

	if result.Status == genai.StatusFailed {
		s.collector.RecordGenerationFailure("tool")
		return nil, model.NewGenerationFailedError("応答が得られませんでした")
	}

	var batch struct {
		Tools []model.ToolDraft `json:"tools"`
	}
	if result.Status == genai.StatusOK {
		// 配列の途中が壊れている場合も得られた分だけ使う
		_ = json.Unmarshal(result.Raw, &batch)
	}
	s.collector.RecordGenerationSuccess("tool")

	tools := make([]*model.Tool, len(batch.Tools))
	sem := make(chan struct{}, s.maxConcurrency)
	var wg sync.WaitGroup

	for i, draft := range batch.Tools {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int, d model.ToolDraft) {
			defer wg.Done()
			defer func() { <-sem }()
			tools[idx] = s.buildTool(ctx, &d, "", "", draftID("gen", idx))
		}(i, draft)
	}
	wg.Wait()

	return tools, nil
}

// GenerateNewsBatch は複数のニュース記事を一括生成する。
// 画像付与は並列に行うが、出力は生成順を保持する。
func (s *Service) GenerateNewsBatch(ctx context.Context, count int) ([]*model.News, error) {
	start := time.Now()
	result := s.gen.GenerateJSON(ctx, genai.NewsBatchRequest(count))
	s.collector.RecordGenerationLatency(time.Since(start))

	if result.Status == genai.StatusFailed {
		s.collector.RecordGenerationFailure("news")
		return nil, model.NewGenerationFailedError("応答が得られませんでした")
	}

	var batch struct {
		Articles []model.NewsDraft `json:"articles"`
	}
	if result.Status == genai.StatusOK {
		_ = json.Unmarshal(result.Raw, &batch)
	}
	s.collector.RecordGenerationSuccess("news")

	articles := make([]*model.News, len(batch.Articles))
	sem := make(chan struct{}, s.maxConcurrency)
	var wg sync.WaitGroup

	for i, draft := range batch.Articles {
		wg.Add(1)
		sem <- struct{}{}

		go func(idx int, d model.NewsDraft) {
			defer wg.Done()
			defer func() { <-sem }()
			articles[idx] = s.buildNews(ctx, &d, "", "", draftID("news-gen", idx))
		}(i, draft)
	}
	wg.Wait()

	return articles, nil
}

// generateToolDraft は構造化生成を実行し、ツールドラフトへデコードする。
// JSONとして不正な応答は空のドラフトへ縮退し、フォールバックに委ねる。
func (s *Service) generateToolDraft(ctx context.Context, req genai.Request) (*model.ToolDraft, error) {
	start := time.Now()
	result := s.gen.GenerateJSON(ctx, req)
	s.collector.RecordGenerationLatency(time.Since(start))

	if result.Status == genai.StatusFailed {
		s.collector.RecordGenerationFailure("tool")
		return nil, model.NewGenerationFailedError("応答が得られませんでした")
	}

	draft := &model.ToolDraft{}
	if result.Status == genai.StatusOK {
		_ = json.Unmarshal(result.Raw, draft)
	}
	s.collector.RecordGenerationSuccess("tool")
	return draft, nil
}

// generateNewsDraft は構造化生成を実行し、ニュースドラフトへデコードする。
func (s *Service) generateNewsDraft(ctx context.Context, req genai.Request) (*model.NewsDraft, error) {
	start := time.Now()
	result := s.gen.GenerateJSON(ctx, req)
	s.collector.RecordGenerationLatency(time.Since(start))

	if result.Status == genai.StatusFailed {
		s.collector.RecordGenerationFailure("news")
		return nil, model.NewGenerationFailedError("応答が得られませんでした")
	}

	draft := &model.NewsDraft{}
	if result.Status == genai.StatusOK {
		_ = json.Unmarshal(result.Raw, draft)
	}
	s.collector.RecordGenerationSuccess("news")
	return draft, nil
}

// buildTool はドラフトとフォールバック値からツールを組み立て、画像を付与する。
func (s *Service) buildTool(ctx context.Context, draft *model.ToolDraft, fallbackName, fallbackDesc, id string) *model.Tool {
	tool := &model.Tool{
		ID:          id,
		Name:        firstNonEmpty(draft.Name, fallbackName, "名称未設定ツール"),
		Description: firstNonEmpty(draft.Description, fallbackDesc),
		Category:    firstNonEmpty(draft.Category, defaultToolCategory),
		Tags:        draft.Tags,
		Price:       firstNonEmpty(draft.Price, defaultToolPrice),
		Website:     firstNonEmpty(draft.Website, defaultToolWebsite),
		Features:    draft.Features,
		UseCases:    draft.UseCases,
		Pros:        draft.Pros,
		Cons:        draft.Cons,
		HowToUse:    draft.HowToUse,
	}

	tool.ImageURL = s.enrichImage(ctx, genai.ToolImagePrompt(tool.Name, tool.Category), tool.Name, "tool")
	return tool
}

// buildNews はドラフトとフォールバック値からニュース記事を組み立て、画像を付与する。
// Dateは公開時にオーケストレーターが採番するためここでは設定しない。
func (s *Service) buildNews(ctx context.Context, draft *model.NewsDraft, fallbackTitle, fallbackDesc, id string) *model.News {
	article := &model.News{
		ID:          id,
		Title:       firstNonEmpty(draft.Title, fallbackTitle, "無題の記事"),
		Description: firstNonEmpty(draft.Description, fallbackDesc),
		Content:     firstNonEmpty(draft.Content, draft.Description, fallbackDesc),
		Category:    firstNonEmpty(draft.Category, defaultNewsCategory),
		Source:      draft.Source,
	}

	article.ImageURL = s.enrichImage(ctx, genai.NewsImagePrompt(article.Title), article.Title, "news")
	return article
}

// enrichImage は画像を生成し、失敗時は決定的なプレースホルダーURLへ縮退する。
// 画像の失敗はエントリ全体の失敗にしない。
func (s *Service) enrichImage(ctx context.Context, prompt, seed, kind string) string {
	url, err := s.gen.GenerateImage(ctx, prompt)
	if err != nil {
		s.logger.Warn("画像生成に失敗したためプレースホルダーを使用します",
			slog.String("kind", kind),
			slog.String("seed", seed),
			slog.String("error", err.Error()),
		)
		s.collector.RecordImageFallback(kind)
		return PlaceholderImageURL(seed)
	}
	return url
}

// firstNonEmpty は最初の空でない値を返す。
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// draftID は未保存ドラフトの一時IDを生成する。
func draftID(prefix string, index int) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixMilli(), index)
}
