// Package publish は公開・編集・削除のオーケストレーションを提供する。
package publish

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/vetorre/curator/internal/extract"
	"github.com/vetorre/curator/internal/metrics"
	"github.com/vetorre/curator/internal/model"
	"github.com/vetorre/curator/internal/repository"
	"github.com/vetorre/curator/internal/store"
)

// 投稿時のデフォルト値。
const (
	defaultPrice       = "Free"
	defaultCategory    = "Uncategorized"
	defaultWebsite     = "#"
	defaultNewsSource  = "Vetorre Blog"
	defaultNewsCategory = "General"
)

// Sanitizer はHTMLサニタイズのインターフェース。
type Sanitizer interface {
	Sanitize(rawHTML string) string
}

// Orchestrator はツールとニュースの永続化を統括する。
// 投稿時のデフォルト補完、検証、サニタイズ、変更通知をまとめて行う。
type Orchestrator struct {
	toolRepo  repository.ToolRepository
	newsRepo  repository.NewsRepository
	sanitizer Sanitizer
	notifier  *store.Notifier
	logger    *slog.Logger
	collector metrics.MetricsCollector
	now       func() time.Time

	mu           sync.Mutex
	lastSavedTool *model.Tool
	lastSavedNews *model.News
}

// NewOrchestrator はOrchestratorの新しいインスタンスを生成する。
func NewOrchestrator(
	toolRepo repository.ToolRepository,
	newsRepo repository.NewsRepository,
	sanitizer Sanitizer,
	notifier *store.Notifier,
	logger *slog.Logger,
	collector metrics.MetricsCollector,
) *Orchestrator {
	return &Orchestrator{
		toolRepo:  toolRepo,
		newsRepo:  newsRepo,
		sanitizer: sanitizer,
		notifier:  notifier,
		logger:    logger,
		collector: collector,
		now:       time.Now,
	}
}

// WithClock は現在時刻の取得関数を差し替える。テストで使用する。
func (o *Orchestrator) WithClock(now func() time.Time) *Orchestrator {
	o.now = now
	return o
}

// CreateOrUpdateTool はツールを作成または更新する。
// existingIDが空の場合は新規作成となり、IDはストアがUUIDで採番する。
// existingIDが指定された場合は更新のみ行い、ペイロード中のIDは使用しない。
func (o *Orchestrator) CreateOrUpdateTool(ctx context.Context, tool *model.Tool, existingID string) (*model.Tool, error) {
	if strings.TrimSpace(tool.Name) == "" || strings.TrimSpace(tool.Description) == "" {
		return nil, model.NewValidationError("ツール名と説明は必須です")
	}

	record := *tool
	applyToolDefaults(&record)

	if existingID != "" {
		record.ID = existingID
		if err := o.toolRepo.Update(ctx, existingID, &record); err != nil {
			return nil, err
		}
	} else {
		// 生成ドラフトの一時ID（gen-...）を持ち込まず、ストアに採番させる
		record.ID = ""
		if err := o.toolRepo.Create(ctx, &record); err != nil {
			return nil, err
		}
	}

	o.mu.Lock()
	saved := record
	o.lastSavedTool = &saved
	o.mu.Unlock()

	o.collector.RecordPublish("tool")
	o.notifier.Publish(store.Event{Collection: "tools", Kind: store.EventKindUpsert, ID: record.ID})
	o.logger.Info("ツールを保存しました",
		slog.String("tool_id", record.ID),
		slog.String("name", record.Name),
		slog.Bool("update", existingID != ""),
	)

	return &record, nil
}

// CreateOrUpdateNews はニュース記事を作成または更新する。
// 新規作成時のDateは呼び出し側の値を無視して投稿時刻で採番される。
// 本文は保存前にサニタイズされる。
func (o *Orchestrator) CreateOrUpdateNews(ctx context.Context, article *model.News, existingID string) (*model.News, error) {
	if strings.TrimSpace(article.Title) == "" || strings.TrimSpace(article.Content) == "" {
		return nil, model.NewValidationError("タイトルと本文は必須です")
	}

	record := *article
	record.Content = o.sanitizer.Sanitize(record.Content)
	applyNewsDefaults(&record)

	if existingID != "" {
		record.ID = existingID
		if err := o.newsRepo.Update(ctx, existingID, &record); err != nil {
			return nil, err
		}
	} else {
		record.ID = ""
		record.Date = o.now().UTC()
		if err := o.newsRepo.Create(ctx, &record); err != nil {
			return nil, err
		}
	}

	o.mu.Lock()
	saved := record
	o.lastSavedNews = &saved
	o.mu.Unlock()

	o.collector.RecordPublish("news")
	o.notifier.Publish(store.Event{Collection: "news", Kind: store.EventKindUpsert, ID: record.ID})
	o.logger.Info("ニュースを保存しました",
		slog.String("news_id", record.ID),
		slog.String("title", record.Title),
		slog.Bool("update", existingID != ""),
	)

	return &record, nil
}

// RemoveTool は指定ツールを削除する。削除は終端的でundoはない。
func (o *Orchestrator) RemoveTool(ctx context.Context, id string) error {
	if err := o.toolRepo.Delete(ctx, id); err != nil {
		return err
	}

	o.notifier.Publish(store.Event{Collection: "tools", Kind: store.EventKindDelete, ID: id})
	o.logger.Info("ツールを削除しました", slog.String("tool_id", id))
	return nil
}

// RemoveNews は指定ニュース記事を削除する。
func (o *Orchestrator) RemoveNews(ctx context.Context, id string) error {
	if err := o.newsRepo.Delete(ctx, id); err != nil {
		return err
	}

	o.notifier.Publish(store.Event{Collection: "news", Kind: store.EventKindDelete, ID: id})
	o.logger.Info("ニュースを削除しました", slog.String("news_id", id))
	return nil
}

// LastSavedTool は直近に保存されたツールを返す。編集再開フローで使用する。
func (o *Orchestrator) LastSavedTool() *model.Tool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastSavedTool
}

// LastSavedNews は直近に保存されたニュースを返す。
func (o *Orchestrator) LastSavedNews() *model.News {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastSavedNews
}

// applyToolDefaults は未指定フィールドへ投稿時デフォルトを補完する。
func applyToolDefaults(tool *model.Tool) {
	if tool.ImageURL == "" {
		tool.ImageURL = extract.PlaceholderImageURL(tool.Name)
	}
	if tool.Price == "" {
		tool.Price = defaultPrice
	}
	if tool.Category == "" {
		tool.Category = defaultCategory
	}
	if tool.Website == "" {
		tool.Website = defaultWebsite
	}
	if tool.Tags == nil {
		tool.Tags = []string{}
	}
}

// applyNewsDefaults は未指定フィールドへ投稿時デフォルトを補完する。
func applyNewsDefaults(article *model.News) {
	if article.ImageURL == "" {
		article.ImageURL = extract.PlaceholderImageURL(article.Title)
	}
	if article.Category == "" {
		article.Category = defaultNewsCategory
	}
	if article.Source == "" {
		article.Source = defaultNewsSource
	}
}
