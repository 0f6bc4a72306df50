package genai

import (
	"fmt"
)

// プロンプト定義。生成結果は呼び出し側でパースし、
// 欠落フィールドはフォールバック値で補う前提のため、
// スキーマはプロンプト内で指示する。

const toolSchema = `{
  "name": string,
  "description": string (2-3 sentences),
  "category": string (e.g. "Text Generation", "Image Generation", "Code Assistant"),
  "tags": string[] (3-5 items),
  "price": string (e.g. "Free", "Freemium", "$20/month"),
  "website": string (official URL, or "#" if unknown),
  "features": string[] (3-5 items),
  "useCases": string[] (3-5 items),
  "pros": string[] (2-4 items),
  "cons": string[] (2-4 items),
  "howToUse": string (short getting-started guide)
}`

const newsSchema = `{
  "title": string,
  "description": string (1-2 sentence summary),
  "content": string (full article body, markdown allowed),
  "category": string (e.g. "Research", "Industry", "Product"),
  "source": string (publication or company name)
}`

// ToolRequest は単一ツールの生成リクエストを構築する。
func ToolRequest(topic string) Request {
	return Request{
		System: "You are an editor of an AI tool directory. Respond with a single JSON object only.",
		User: fmt.Sprintf(
			"Write a directory entry for the AI tool related to: %q.\nUse exactly this JSON shape:\n%s",
			topic, toolSchema,
		),
	}
}

// ToolBatchRequest は複数ツールの一括生成リクエストを構築する。
// 応答は {"tools": [...]} 形式。
func ToolBatchRequest(count int) Request {
	return Request{
		System: "You are an editor of an AI tool directory. Respond with a single JSON object only.",
		User: fmt.Sprintf(
			"Pick %d currently notable AI tools and write a directory entry for each.\nRespond as {\"tools\": [...]} where each element has this shape:\n%s",
			count, toolSchema,
		),
		MaxTokens: 4096,
	}
}

// NewsRequest は単一ニュース記事の生成リクエストを構築する。
func NewsRequest(topic string) Request {
	return Request{
		System: "You are a journalist covering AI industry news. Respond with a single JSON object only.",
		User: fmt.Sprintf(
			"Write a news article about: %q.\nUse exactly this JSON shape:\n%s",
			topic, newsSchema,
		),
	}
}

// NewsBatchRequest は複数ニュース記事の一括生成リクエストを構築する。
// 応答は {"articles": [...]} 形式。
func NewsBatchRequest(count int) Request {
	return Request{
		System: "You are a journalist covering AI industry news. Respond with a single JSON object only.",
		User: fmt.Sprintf(
			"Write %d news articles about recent developments in AI.\nRespond as {\"articles\": [...]} where each element has this shape:\n%s",
			count, newsSchema,
		),
		MaxTokens: 4096,
	}
}

// ExtractToolRequest はフィード項目からツールエントリを抽出するリクエストを構築する。
func ExtractToolRequest(title, description string) Request {
	return Request{
		System: "You are an editor of an AI tool directory. Respond with a single JSON object only.",
		User: fmt.Sprintf(
			"The following RSS item announces or discusses an AI tool.\nTitle: %s\nDescription: %s\n\nExtract a directory entry for the tool. Use exactly this JSON shape:\n%s",
			title, description, toolSchema,
		),
	}
}

// ExtractNewsRequest はフィード項目からニュース記事を抽出するリクエストを構築する。
func ExtractNewsRequest(title, description string) Request {
	return Request{
		System: "You are a journalist covering AI industry news. Respond with a single JSON object only.",
		User: fmt.Sprintf(
			"Rewrite the following RSS item as a full news article.\nTitle: %s\nDescription: %s\n\nUse exactly this JSON shape:\n%s",
			title, description, newsSchema,
		),
	}
}

// IntelligentSearchRequest はカタログに対する自然言語検索のリクエストを構築する。
// catalogJSONは {id, name, description} の配列。応答は {"toolIds": [...], "newsIds": [...]}。
func IntelligentSearchRequest(query, catalogJSON string) Request {
	return Request{
		System: "You match a user query against a catalog. Respond with a single JSON object only.",
		User: fmt.Sprintf(
			"Catalog:\n%s\n\nQuery: %q\n\nReturn the ids of matching entries as {\"toolIds\": string[], \"newsIds\": string[]}. Return empty arrays when nothing matches.",
			catalogJSON, query,
		),
	}
}

// SlidesRequest はツール紹介スライドの生成リクエストを構築する。
// 応答は {"slides": [{"title": string, "bullets": string[]}]} 形式。
func SlidesRequest(toolJSON string) Request {
	return Request{
		System: "You create concise presentation outlines. Respond with a single JSON object only.",
		User: fmt.Sprintf(
			"Create a 5-slide presentation introducing this AI tool:\n%s\n\nRespond as {\"slides\": [{\"title\": string, \"bullets\": string[]}]}.",
			toolJSON,
		),
	}
}

// TutorialRequest はツールのチュートリアル生成リクエストを構築する。
// 応答は {"modules": [{"title": string, "body": string, "imagePrompt": string}]} 形式。
func TutorialRequest(toolJSON string) Request {
	return Request{
		System: "You write practical software tutorials. Respond with a single JSON object only.",
		User: fmt.Sprintf(
			"Write a beginner tutorial for this AI tool as 3-5 modules:\n%s\n\nRespond as {\"modules\": [{\"title\": string, \"body\": string, \"imagePrompt\": string}]}. imagePrompt describes an illustrative image for the module.",
			toolJSON,
		),
		MaxTokens: 4096,
	}
}

// ToolImagePrompt はツールのサムネイル画像プロンプトを構築する。
func ToolImagePrompt(name, category string) string {
	return fmt.Sprintf(
		"Minimal flat illustration representing %q, an AI tool in the %q category. Clean background, no text.",
		name, category,
	)
}

// NewsImagePrompt はニュース記事のサムネイル画像プロンプトを構築する。
func NewsImagePrompt(title string) string {
	return fmt.Sprintf(
		"Editorial illustration for a technology news article titled %q. Abstract, modern, no text.",
		title,
	)
}

// TrendsPrompt は保存済みツール群に対するトレンド分析レポートのプロンプトを構築する。
// 応答はマークダウンの自由形式テキスト。
func TrendsPrompt(catalogJSON string) (system, user string) {
	system = "You are an analyst of the AI tool market. Respond in markdown."
	user = fmt.Sprintf(
		"Analyze the following tool catalog and write a short trend report: dominant categories, pricing patterns, notable gaps.\n\n%s",
		catalogJSON,
	)
	return system, user
}

// ChatPrompt はサイト案内チャットのプロンプトを構築する。
func ChatPrompt(message string) (system, user string) {
	system = "You are the assistant of an AI tool directory website. Answer briefly and helpfully."
	user = message
	return system, user
}

// PodcastPrompt はニュース群からポッドキャスト原稿を生成するプロンプトを構築する。
func PodcastPrompt(articlesJSON string) (system, user string) {
	system = "You write scripts for a short tech news podcast. Respond with the spoken script only."
	user = fmt.Sprintf(
		"Write a 2-minute podcast script covering these articles:\n%s",
		articlesJSON,
	)
	return system, user
}
