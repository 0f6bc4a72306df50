// Package model はドメインモデルを定義する。
package model

import "time"

// Plan は購読プランを表す。
type Plan string

const (
	// PlanFree は無料プラン。ゲート付きAI機能は利用できない。
	PlanFree Plan = "free"
	// PlanStarter はスタータープラン（1日5回までのAI生成）。
	PlanStarter Plan = "starter"
	// PlanPro はプロプラン（1日10回までのAI生成）。
	PlanPro Plan = "pro"
)

// Role はユーザーの権限区分を表す。
type Role string

const (
	// RoleUser は一般ユーザー。
	RoleUser Role = "user"
	// RoleAdmin は管理ダッシュボードへアクセスできる管理者。
	RoleAdmin Role = "admin"
)

// Profile はサービス利用者のプロフィールを表す。
// プランはゲート付き機能の利用上限を、ロールは管理画面の可視性を決める。
type Profile struct {
	ID            string     `json:"id"`
	Email         string     `json:"email"`
	Role          Role       `json:"role"`
	Plan          Plan       `json:"plan"`
	PlanExpiresAt *time.Time `json:"planExpiresAt,omitempty"`
	CreatedAt     time.Time  `json:"-"`
	UpdatedAt     time.Time  `json:"-"`
}

// IsAdmin は管理者権限を持つかを返す。
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
