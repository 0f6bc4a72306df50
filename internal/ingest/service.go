// Package ingest はRSS/Atomフィードの取得と候補化を提供する。
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/vetorre/curator/internal/model"
)

// RawFetcher はリレー経由のコンテンツ取得のインターフェース。
type RawFetcher interface {
	FetchRaw(ctx context.Context, targetURL string) (string, error)
}

// Service はフィードを取得し、変換候補のリストへ変換する。
// 候補は永続化されず、フェッチごとに作り直される。
type Service struct {
	fetcher  RawFetcher
	logger   *slog.Logger
	maxItems int
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(fetcher RawFetcher, logger *slog.Logger, maxItems int) *Service {
	return &Service{
		fetcher:  fetcher,
		logger:   logger,
		maxItems: maxItems,
	}
}

// FetchCandidates はフィードURLから変換候補を取得する。
// 各候補のIDはフェッチ結果内の位置トークン（rss-<index>）となる。
// タイトルや説明のない項目は空文字で補う。
// maxItemsが0以下の場合はサービス既定値を使い、既定値を超える指定は切り詰める。
func (s *Service) FetchCandidates(ctx context.Context, feedURL string, maxItems int) ([]model.FeedCandidate, error) {
	if maxItems <= 0 || maxItems > s.maxItems {
		maxItems = s.maxItems
	}

	raw, err := s.fetcher.FetchRaw(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(raw) == "" {
		s.logger.Warn("フィードが空レスポンスを返しました",
			slog.String("feed_url", feedURL),
		)
		return nil, model.NewFeedUnavailableError(feedURL)
	}

	parser := gofeed.NewParser()
	feed, err := parser.ParseString(raw)
	if err != nil {
		s.logger.Error("フィードのパースに失敗しました",
			slog.String("feed_url", feedURL),
			slog.String("error", err.Error()),
		)
		return nil, model.NewFeedUnavailableError(feedURL)
	}

	candidates := make([]model.FeedCandidate, 0, maxItems)
	for i, item := range feed.Items {
		if i >= maxItems {
			break
		}

		// タイトルや説明のないフィードもあるため空文字のまま受け入れ、
		// IDは文書内の出現位置から採番する
		candidate := model.FeedCandidate{ID: fmt.Sprintf("rss-%d", i)}
		if item != nil {
			candidate.Title = strings.TrimSpace(item.Title)
			candidate.Description = strings.TrimSpace(item.Description)
		}

		candidates = append(candidates, candidate)
	}

	s.logger.Info("フィードを取得しました",
		slog.String("feed_url", feedURL),
		slog.Int("total_items", len(feed.Items)),
		slog.Int("candidates", len(candidates)),
	)

	return candidates, nil
}
