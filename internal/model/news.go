// Package model はドメインモデルを定義する。
package model

import "time"

// News はディレクトリに掲載するニュース記事を表す。
// Dateは作成時にサーバー側で採番するISO-8601タイムスタンプで、
// 一覧のデフォルトソートキーとして使用される。
type News struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Source      string    `json:"source"`
	Category    string    `json:"category"`
	ImageURL    string    `json:"imageUrl"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// NewsDraft はAI生成が返す部分的なニュースデータを表す。
// 欠落フィールドは呼び出し側がフォールバック値で埋める。
type NewsDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	Category    string `json:"category"`
	Source      string `json:"source"`
}

// FeedCandidate はフィード取得で得られた変換候補を表す。
// IDは1回のフェッチ結果内でのみ一意な位置トークン（rss-<index>）で、
// 永続化されることはない。フェッチごとに作り直される。
type FeedCandidate struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}
