// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/vetorre/curator/internal/model"
)

// ToolRepository はツールコレクションの永続化インターフェース。
type ToolRepository interface {
	// ListAll は全ツールをcreated_at降順で取得する。
	ListAll(ctx context.Context) ([]*model.Tool, error)

	// FindByID は指定IDのツールを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Tool, error)

	// Create はツールを作成する。IDが空の場合はストア側でUUIDを採番し、
	// 引数のレコードに書き戻す。
	Create(ctx context.Context, tool *model.Tool) error

	// Update は指定IDのツールを更新する。
	// id列とcreated_at列は更新対象に含めない。
	Update(ctx context.Context, id string, tool *model.Tool) error

	// Delete は指定IDのツールを削除する。削除は終端的でundoはない。
	Delete(ctx context.Context, id string) error
}

// NewsRepository はニュースコレクションの永続化インターフェース。
type NewsRepository interface {
	// ListAll は全記事をdate降順で取得する。
	ListAll(ctx context.Context) ([]*model.News, error)

	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.News, error)

	// Create は記事を作成する。IDが空の場合はストア側でUUIDを採番し、
	// 引数のレコードに書き戻す。
	Create(ctx context.Context, article *model.News) error

	// Update は指定IDの記事を更新する。
	// id列とcreated_at列は更新対象に含めない。
	Update(ctx context.Context, id string, article *model.News) error

	// Delete は指定IDの記事を削除する。削除は終端的でundoはない。
	Delete(ctx context.Context, id string) error
}

// ProfileRepository はプロフィールの永続化インターフェース。
type ProfileRepository interface {
	// FindByID は指定IDのプロフィールを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Profile, error)

	// Create はプロフィールを作成する。
	Create(ctx context.Context, profile *model.Profile) error

	// UpdatePlan は指定プロフィールのプランと有効期限のみを更新する。
	// 他のフィールドは変更しない。
	UpdatePlan(ctx context.Context, id string, plan model.Plan, expiresAt *time.Time) error
}

// SessionRepository はセッションの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// FindByID は指定IDのセッションを取得する。
	// 期限切れまたは未検出の場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)

	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
}

// UsageCounterStore は(ユーザー, 日付)ごとの利用カウンタの永続化インターフェース。
// チェックとインクリメントはストレージ層で単一のアトミック操作として実行される。
type UsageCounterStore interface {
	// IncrementWithCeiling は指定日のカウンタが上限未満の場合のみ1加算する。
	// 加算できた場合はtrueを、上限到達済みの場合はfalseを返す。
	// 同一ユーザーへの並行呼び出しでも上限を超えて加算されることはない。
	IncrementWithCeiling(ctx context.Context, userID, day string, ceiling int) (bool, error)

	// CurrentCount は指定日のカウンタ値を返す。未記録の場合は0。
	CurrentCount(ctx context.Context, userID, day string) (int, error)
}
