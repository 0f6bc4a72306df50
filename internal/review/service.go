package review

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vetorre/curator/internal/model"
)

// ToolPublisher はツールの永続化のインターフェース。
type ToolPublisher interface {
	CreateOrUpdateTool(ctx context.Context, tool *model.Tool, existingID string) (*model.Tool, error)
}

// NewsPublisher はニュースの永続化のインターフェース。
type NewsPublisher interface {
	CreateOrUpdateNews(ctx context.Context, article *model.News, existingID string) (*model.News, error)
}

// Service はツールとニュースのレビューキューを保持し、
// 公開・編集・破棄の終端遷移を提供する。
type Service struct {
	tools *Queue[*model.Tool]
	news  *Queue[*model.News]

	toolPub ToolPublisher
	newsPub NewsPublisher
	logger  *slog.Logger

	mu         sync.Mutex
	discarded  map[string]struct{}
	publishing map[string]struct{}
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(toolPub ToolPublisher, newsPub NewsPublisher, logger *slog.Logger) *Service {
	return &Service{
		tools:      NewQueue(func(t *model.Tool) string { return t.ID }),
		news:       NewQueue(func(n *model.News) string { return n.ID }),
		toolPub:    toolPub,
		newsPub:    newsPub,
		logger:     logger,
		discarded:  make(map[string]struct{}),
		publishing: make(map[string]struct{}),
	}
}

// claimPublish は公開処理中のIDを登録する。登録済みならfalseを返す。
// 同一IDへの同時公開でストアに二重作成が走るのを防ぐ。
func (s *Service) claimPublish(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.publishing[id]; ok {
		return false
	}
	s.publishing[id] = struct{}{}
	return true
}

// releasePublish は公開処理中の登録を解除する。
func (s *Service) releasePublish(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.publishing, id)
}

// consumeDiscarded は破棄済みIDかどうかを判定し、該当すれば記録を消費する。
func (s *Service) consumeDiscarded(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.discarded[id]; ok {
		delete(s.discarded, id)
		return true
	}
	return false
}

// markDiscarded はIDを破棄済みとして記録する。
// キューに存在しないIDへのDiscardは、完了前の非同期生成を黙って落とすための記録になる。
func (s *Service) markDiscarded(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discarded[id] = struct{}{}
}

// EnqueueTools はツール群をキュー先頭へ追加する。
// 破棄済みIDの要素は黙って落とす。
func (s *Service) EnqueueTools(items []*model.Tool) {
	kept := make([]*model.Tool, 0, len(items))
	for _, item := range items {
		if s.consumeDiscarded(item.ID) {
			s.logger.Info("破棄済みの生成結果を破棄します",
				slog.String("kind", "tool"),
				slog.String("id", item.ID),
			)
			continue
		}
		kept = append(kept, item)
	}
	s.tools.PrependAll(kept)
}

// EnqueueNews はニュース群をキュー先頭へ追加する。
// 破棄済みIDの要素は黙って落とす。
func (s *Service) EnqueueNews(items []*model.News) {
	kept := make([]*model.News, 0, len(items))
	for _, item := range items {
		if s.consumeDiscarded(item.ID) {
			s.logger.Info("破棄済みの生成結果を破棄します",
				slog.String("kind", "news"),
				slog.String("id", item.ID),
			)
			continue
		}
		kept = append(kept, item)
	}
	s.news.PrependAll(kept)
}

// Tools はツールキューのスナップショットを返す。
func (s *Service) Tools() []*model.Tool {
	return s.tools.Snapshot()
}

// News はニュースキューのスナップショットを返す。
func (s *Service) News() []*model.News {
	return s.news.Snapshot()
}

// PublishTool は指定ツールを公開し、成功時にキューから取り除く。
// 同一IDへの公開は同時に1件のみ受け付ける。
func (s *Service) PublishTool(ctx context.Context, id string) (*model.Tool, error) {
	if !s.claimPublish(id) {
		return nil, model.NewAlreadyProcessingError(id)
	}
	defer s.releasePublish(id)

	tool, ok := s.tools.FindByID(id)
	if !ok {
		return nil, model.NewNotFoundError("レビュー対象", id)
	}

	saved, err := s.toolPub.CreateOrUpdateTool(ctx, tool, "")
	if err != nil {
		return nil, err
	}

	s.tools.RemoveByID(id)
	return saved, nil
}

// PublishNews は指定ニュースを公開し、成功時にキューから取り除く。
// 同一IDへの公開は同時に1件のみ受け付ける。
func (s *Service) PublishNews(ctx context.Context, id string) (*model.News, error) {
	if !s.claimPublish(id) {
		return nil, model.NewAlreadyProcessingError(id)
	}
	defer s.releasePublish(id)

	article, ok := s.news.FindByID(id)
	if !ok {
		return nil, model.NewNotFoundError("レビュー対象", id)
	}

	saved, err := s.newsPub.CreateOrUpdateNews(ctx, article, "")
	if err != nil {
		return nil, err
	}

	s.news.RemoveByID(id)
	return saved, nil
}

// EditTool は指定ツールをキューから取り出して返す。
// 手動フォームでの編集に使う。
func (s *Service) EditTool(id string) (*model.Tool, error) {
	tool, ok := s.tools.FindByID(id)
	if !ok {
		return nil, model.NewNotFoundError("レビュー対象", id)
	}
	s.tools.RemoveByID(id)
	return tool, nil
}

// EditNews は指定ニュースをキューから取り出して返す。
func (s *Service) EditNews(id string) (*model.News, error) {
	article, ok := s.news.FindByID(id)
	if !ok {
		return nil, model.NewNotFoundError("レビュー対象", id)
	}
	s.news.RemoveByID(id)
	return article, nil
}

// DiscardTool は指定ツールをキューから取り除く。
// キューに存在しない場合も破棄済みとして記録し、完了前の生成結果を落とす。
func (s *Service) DiscardTool(id string) {
	if !s.tools.RemoveByID(id) {
		s.markDiscarded(id)
	}
}

// DiscardNews は指定ニュースをキューから取り除く。
func (s *Service) DiscardNews(id string) {
	if !s.news.RemoveByID(id) {
		s.markDiscarded(id)
	}
}

// PublishAllTools はツールキューの全要素を先頭から順に公開する。
// 公開数を返す。途中で失敗した場合、未公開の要素はキューに残る。
func (s *Service) PublishAllTools(ctx context.Context) (int, error) {
	published := 0
	for _, tool := range s.tools.Snapshot() {
		if _, err := s.toolPub.CreateOrUpdateTool(ctx, tool, ""); err != nil {
			return published, err
		}
		s.tools.RemoveByID(tool.ID)
		published++
	}
	return published, nil
}

// PublishAllNews はニュースキューの全要素を先頭から順に公開する。
func (s *Service) PublishAllNews(ctx context.Context) (int, error) {
	published := 0
	for _, article := range s.news.Snapshot() {
		if _, err := s.newsPub.CreateOrUpdateNews(ctx, article, ""); err != nil {
			return published, err
		}
		s.news.RemoveByID(article.ID)
		published++
	}
	return published, nil
}
