// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, feed, generation, quota, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeFeedUnavailable   = "FEED_UNAVAILABLE"
	ErrCodeGenerationFailed  = "GENERATION_FAILED"
	ErrCodeLimitExceeded     = "LIMIT_EXCEEDED"
	ErrCodeStoreOperation    = "STORE_OPERATION_FAILED"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeUnknownTask       = "UNKNOWN_TASK"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeAlreadyProcessing = "ALREADY_PROCESSING"
	ErrCodeInvalidRequest    = "INVALID_REQUEST"
)

// NewFeedUnavailableError はフィード取得失敗エラーを生成する。
// リレー経由の取得失敗・空レスポンスの両方で使用する。自動リトライは行わない。
func NewFeedUnavailableError(url string) *APIError {
	return &APIError{
		Code:     ErrCodeFeedUnavailable,
		Message:  fmt.Sprintf("フィードを取得できませんでした: %s", url),
		Category: "feed",
		Action:   "URLが有効なRSS/Atomフィードか確認し、しばらく待ってから再度お試しください。",
	}
}

// NewGenerationFailedError はAI生成失敗エラーを生成する。
// 生成器が利用可能なテキストを返さなかった場合にのみ使用する。
// パース可能だが不完全な応答はフィールド単位のフォールバックで回復し、
// このエラーにはしない。
func NewGenerationFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeGenerationFailed,
		Message:  fmt.Sprintf("AI生成に失敗しました: %s", reason),
		Category: "generation",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewLimitExceededError は利用上限超過エラーを生成する。
// システムエラーではなくアップセル表示用のメッセージとして扱う。
func NewLimitExceededError(limit int) *APIError {
	return &APIError{
		Code:     ErrCodeLimitExceeded,
		Message:  fmt.Sprintf("本日のAI生成上限（%d回）に達しました。", limit),
		Category: "quota",
		Action:   "Proプランにアップグレードすると1日の上限が拡大されます。",
	}
}

// NewPlanRequiredError は無料プランでのゲート付き機能利用エラーを生成する。
// 無料プランは回数制ではなく無条件で拒否される。
func NewPlanRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeLimitExceeded,
		Message:  "この機能はStarter以上のプランで利用できます。",
		Category: "quota",
		Action:   "StarterまたはProプランへのアップグレードをご検討ください。",
	}
}

// NewStoreOperationError はストア操作失敗エラーを生成する。
func NewStoreOperationError(op string) *APIError {
	return &APIError{
		Code:     ErrCodeStoreOperation,
		Message:  fmt.Sprintf("データストアの操作に失敗しました: %s", op),
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewUnauthorizedError は認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を実行する権限がありません。",
		Category: "auth",
		Action:   "管理者アカウントでログインしてください。",
	}
}

// NewUnknownTaskError は生成プロキシの未知タスクエラーを生成する。
func NewUnknownTaskError(task string) *APIError {
	return &APIError{
		Code:     ErrCodeUnknownTask,
		Message:  fmt.Sprintf("未知のタスクです: %s", task),
		Category: "validation",
		Action:   "サポートされているタスク名を指定してください。",
	}
}

// NewNotFoundError は対象未検出エラーを生成する。
func NewNotFoundError(kind, id string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("指定された%sが見つかりません: %s", kind, id),
		Category: "validation",
		Action:   "IDを確認してください。",
	}
}

// NewAlreadyProcessingError は同一候補への重複抽出要求エラーを生成する。
func NewAlreadyProcessingError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeAlreadyProcessing,
		Message:  fmt.Sprintf("この候補は現在処理中です: %s", id),
		Category: "validation",
		Action:   "処理が完了するまでお待ちください。",
	}
}
