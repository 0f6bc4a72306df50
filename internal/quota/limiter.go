// Package quota はプラン別の日次利用上限を提供する。
package quota

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vetorre/curator/internal/metrics"
	"github.com/vetorre/curator/internal/model"
)

// プラン別の1日あたり上限回数。
const (
	StarterDailyLimit = 5
	ProDailyLimit     = 10
)

// CounterStore は利用回数カウンタのインターフェース。
// 上限判定と加算は単一操作として原子的に行われる。
type CounterStore interface {
	IncrementWithCeiling(ctx context.Context, userID, day string, ceiling int) (bool, error)
	CurrentCount(ctx context.Context, userID, day string) (int, error)
}

// Limiter はプランに応じてAI機能の利用可否を判定する。
// 無料プランは回数制ではなく無条件で拒否される。
type Limiter struct {
	store     CounterStore
	logger    *slog.Logger
	collector metrics.MetricsCollector
	now       func() time.Time
}

// NewLimiter はLimiterの新しいインスタンスを生成する。
func NewLimiter(store CounterStore, logger *slog.Logger, collector metrics.MetricsCollector) *Limiter {
	return &Limiter{
		store:     store,
		logger:    logger,
		collector: collector,
		now:       time.Now,
	}
}

// WithClock は現在時刻の取得関数を差し替える。テストで使用する。
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	l.now = now
	return l
}

// dayKey は現在のUTC暦日キー（YYYY-MM-DD）を返す。
// 日付の切り替わりはタイムゾーンに依存しない。
func (l *Limiter) dayKey() string {
	return l.now().UTC().Format("2006-01-02")
}

// dailyLimit はプランの1日あたり上限を返す。上限のないプランは0を返す。
func dailyLimit(plan model.Plan) int {
	switch plan {
	case model.PlanStarter:
		return StarterDailyLimit
	case model.PlanPro:
		return ProDailyLimit
	default:
		return 0
	}
}

// TryConsume は利用枠を1消費する。
// 許可された場合は(true, nil)、拒否された場合は(false, APIError)を返す。
// 判定と加算は原子的で、同時リクエストが上限を超えることはない。
func (l *Limiter) TryConsume(ctx context.Context, profile *model.Profile, feature string) (bool, error) {
	if profile == nil {
		l.collector.RecordLimiterDenial("none")
		return false, model.NewPlanRequiredError()
	}

	plan := profile.Plan
	// 期限切れの有料プランは無料プランとして扱う
	if profile.PlanExpiresAt != nil && profile.PlanExpiresAt.Before(l.now()) {
		plan = model.PlanFree
	}

	limit := dailyLimit(plan)
	if limit == 0 {
		l.logger.Info("無料プランのため利用を拒否しました",
			slog.String("user_id", profile.ID),
			slog.String("feature", feature),
		)
		l.collector.RecordLimiterDenial(string(plan))
		return false, model.NewPlanRequiredError()
	}

	allowed, err := l.store.IncrementWithCeiling(ctx, profile.ID, l.dayKey(), limit)
	if err != nil {
		return false, fmt.Errorf("利用回数の判定に失敗: %w", err)
	}
	if !allowed {
		l.logger.Info("日次上限に達したため利用を拒否しました",
			slog.String("user_id", profile.ID),
			slog.String("feature", feature),
			slog.Int("limit", limit),
		)
		l.collector.RecordLimiterDenial(string(plan))
		return false, model.NewLimitExceededError(limit)
	}

	return true, nil
}

// RemainingToday は本日の残り利用可能回数を返す。
func (l *Limiter) RemainingToday(ctx context.Context, profile *model.Profile) (int, error) {
	if profile == nil {
		return 0, nil
	}

	limit := dailyLimit(profile.Plan)
	if limit == 0 {
		return 0, nil
	}

	count, err := l.store.CurrentCount(ctx, profile.ID, l.dayKey())
	if err != nil {
		return 0, fmt.Errorf("利用回数の取得に失敗: %w", err)
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
