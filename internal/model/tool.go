// Package model はドメインモデルを定義する。
package model

import "time"

// Tool はディレクトリに掲載するAIツールを表す。
// IDは未保存のドラフトでは空文字列、保存時にストアがUUIDを採番する。
// AI生成直後のドラフトには gen-<unixミリ秒>-<index> 形式の一時IDが付く。
type Tool struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Price       string   `json:"price"`
	Website     string   `json:"website"`
	ImageURL    string   `json:"imageUrl"`
	Features    []string `json:"features,omitempty"`
	UseCases    []string `json:"useCases,omitempty"`
	Pros        []string `json:"pros,omitempty"`
	Cons        []string `json:"cons,omitempty"`
	HowToUse    string   `json:"howToUse,omitempty"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// ToolDraft はAI生成が返す部分的なツールデータを表す。
// 欠落フィールドは呼び出し側がフォールバック値で埋める。
type ToolDraft struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	Price       string   `json:"price"`
	Website     string   `json:"website"`
	Features    []string `json:"features"`
	UseCases    []string `json:"useCases"`
	Pros        []string `json:"pros"`
	Cons        []string `json:"cons"`
	HowToUse    string   `json:"howToUse"`
}
