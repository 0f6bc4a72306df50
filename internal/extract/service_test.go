package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/vetorre/curator/internal/genai"
	"github.com/vetorre/curator/internal/metrics"
	"github.com/vetorre/curator/internal/model"
)

// mockGenerator はテスト用のContentGeneratorモック。
type mockGenerator struct {
	generateJSONFn  func(ctx context.Context, req genai.Request) genai.Result
	generateImageFn func(ctx context.Context, prompt string) (string, error)
}

func (m *mockGenerator) GenerateJSON(ctx context.Context, req genai.Request) genai.Result {
	return m.generateJSONFn(ctx, req)
}

func (m *mockGenerator) GenerateText(ctx context.Context, system, user string) (string, error) {
	return "", nil
}

func (m *mockGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if m.generateImageFn != nil {
		return m.generateImageFn(ctx, prompt)
	}
	return "https://images.example.com/generated.png", nil
}

func (m *mockGenerator) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	return "", nil
}

func (m *mockGenerator) Speech(ctx context.Context, text string) ([]byte, error) {
	return nil, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func okJSON(t *testing.T, v any) genai.Result {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return genai.Result{Status: genai.StatusOK, Raw: raw}
}

// 抽出結果にドラフトの値が反映されることを検証
func TestService_ExtractTool(t *testing.T) {
	gen := &mockGenerator{
		generateJSONFn: func(ctx context.Context, req genai.Request) genai.Result {
			return okJSON(t, model.ToolDraft{
				Name:        "SummarizeBot",
				Description: "Summarizes articles.",
				Category:    "Text Generation",
				Price:       "Freemium",
				Website:     "https://summarizebot.example.com",
			})
		},
	}
	svc := NewService(gen, newTestLogger(), metrics.NopCollector{}, 4)

	tool, err := svc.ExtractTool(context.Background(), "rss-0", "SummarizeBot launch", "A new summarizer.")
	if err != nil {
		t.Fatalf("ExtractTool() error = %v", err)
	}

	if tool.Name != "SummarizeBot" {
		t.Errorf("tool.Name = %q, want %q", tool.Name, "SummarizeBot")
	}
	if tool.Category != "Text Generation" {
		t.Errorf("tool.Category = %q, want %q", tool.Category, "Text Generation")
	}
	if !strings.HasPrefix(tool.ID, "gen-") {
		t.Errorf("tool.ID = %q, want prefix %q", tool.ID, "gen-")
	}
}

// 不正なJSON応答でもフィード項目の値で縮退することを検証
func TestService_ExtractTool_MalformedFallsBack(t *testing.T) {
	gen := &mockGenerator{
		generateJSONFn: func(ctx context.Context, req genai.Request) genai.Result {
			return genai.Result{Status: genai.StatusMalformed}
		},
	}
	svc := NewService(gen, newTestLogger(), metrics.NopCollector{}, 4)

	tool, err := svc.ExtractTool(context.Background(), "rss-1", "Fallback Tool", "Original description.")
	if err != nil {
		t.Fatalf("ExtractTool() error = %v", err)
	}

	if tool.Name != "Fallback Tool" {
		t.Errorf("tool.Name = %q, want %q", tool.Name, "Fallback Tool")
	}
	if tool.Description != "Original description." {
		t.Errorf("tool.Description = %q, want %q", tool.Description, "Original description.")
	}
	if tool.Category != "Uncategorized" {
		t.Errorf("tool.Category = %q, want %q", tool.Category, "Uncategorized")
	}
	if tool.Price != "Free" {
		t.Errorf("tool.Price = %q, want %q", tool.Price, "Free")
	}
	if tool.Website != "#" {
		t.Errorf("tool.Website = %q, want %q", tool.Website, "#")
	}
}

// 生成自体の失敗がGENERATION_FAILEDになることを検証
func TestService_ExtractTool_GenerationFailed(t *testing.T) {
	gen := &mockGenerator{
		generateJSONFn: func(ctx context.Context, req genai.Request) genai.Result {
			return genai.Result{Status: genai.StatusFailed, Err: errors.New("api down")}
		},
	}
	svc := NewService(gen, newTestLogger(), metrics.NopCollector{}, 4)

	_, err := svc.ExtractTool(context.Background(), "rss-2", "T", "D")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeGenerationFailed {
		t.Errorf("apiErr.Code = %q, want %q", apiErr.Code, model.ErrCodeGenerationFailed)
	}
}

// 同一候補IDへの重複抽出がALREADY_PROCESSINGになることを検証
func TestService_ExtractTool_DuplicateInFlight(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	// 完了後の再抽出でも生成関数が呼ばれるため、startedは一度だけ閉じる
	var startOnce sync.Once
	gen := &mockGenerator{
		generateJSONFn: func(ctx context.Context, req genai.Request) genai.Result {
			startOnce.Do(func() { close(started) })
			<-release
			return okJSON(t, model.ToolDraft{Name: "Slow"})
		},
	}
	svc := NewService(gen, newTestLogger(), metrics.NopCollector{}, 4)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		svc.ExtractTool(context.Background(), "rss-3", "T", "D")
	}()

	<-started

	_, err := svc.ExtractTool(context.Background(), "rss-3", "T", "D")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeAlreadyProcessing {
		t.Errorf("expected ALREADY_PROCESSING, got %v", err)
	}

	close(release)
	wg.Wait()

	// 完了後は同じIDで再び抽出できる
	if _, err := svc.ExtractTool(context.Background(), "rss-3", "T", "D"); err != nil {
		t.Errorf("retry after completion: %v", err)
	}
}

// 異なる候補IDは並行して処理できることを検証
func TestService_ExtractTool_DistinctIDsConcurrent(t *testing.T) {
	var active, peak int
	var mu sync.Mutex

	gen := &mockGenerator{
		generateJSONFn: func(ctx context.Context, req genai.Request) genai.Result {
			mu.Lock()
			active++
			if active > peak {
				peak = active
			}
			mu.Unlock()

			time.Sleep(20 * time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
			return okJSON(t, model.ToolDraft{Name: "Concurrent"})
		},
	}
	svc := NewService(gen, newTestLogger(), metrics.NopCollector{}, 4)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			svc.ExtractTool(context.Background(), fmt.Sprintf("rss-%d", n), "T", "D")
		}(i)
	}
	wg.Wait()

	if peak < 2 {
		t.Errorf("peak concurrency = %d, want >= 2", peak)
	}
}

// 画像生成失敗が決定的なプレースホルダーで回復することを検証
func TestService_ExtractTool_ImageFallback(t *testing.T) {
	gen := &mockGenerator{
		generateJSONFn: func(ctx context.Context, req genai.Request) genai.Result {
			return okJSON(t, model.ToolDraft{Name: "Pixel Tool"})
		},
		generateImageFn: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("image api down")
		},
	}
	svc := NewService(gen, newTestLogger(), metrics.NopCollector{}, 4)

	tool, err := svc.ExtractTool(context.Background(), "rss-4", "T", "D")
	if err != nil {
		t.Fatalf("ExtractTool() error = %v", err)
	}

	want := "https://picsum.photos/seed/pixel-tool/600/400"
	if tool.ImageURL != want {
		t.Errorf("tool.ImageURL = %q, want %q", tool.ImageURL, want)
	}

	// 同じ名前からは常に同じURLが得られる
	tool2, err := svc.ExtractTool(context.Background(), "rss-5", "T", "D")
	if err != nil {
		t.Fatalf("ExtractTool() second error = %v", err)
	}
	if tool2.ImageURL != want {
		t.Errorf("second ImageURL = %q, want %q", tool2.ImageURL, want)
	}
}

// ニュース抽出のフォールバックとDate未設定を検証
func TestService_ExtractNews(t *testing.T) {
	gen := &mockGenerator{
		generateJSONFn: func(ctx context.Context, req genai.Request) genai.Result {
			return okJSON(t, model.NewsDraft{
				Title:       "Model Release",
				Description: "A lab released a model.",
				Content:     "Full article body.",
				Category:    "Research",
				Source:      "Example Lab",
			})
		},
	}
	svc := NewService(gen, newTestLogger(), metrics.NopCollector{}, 4)

	article, err := svc.ExtractNews(context.Background(), "rss-0", "fallback title", "fallback desc")
	if err != nil {
		t.Fatalf("ExtractNews() error = %v", err)
	}

	if article.Title != "Model Release" {
		t.Errorf("article.Title = %q, want %q", article.Title, "Model Release")
	}
	if !article.Date.IsZero() {
		t.Errorf("article.Date = %v, want zero (stamped at publish)", article.Date)
	}
	if !strings.HasPrefix(article.ID, "news-gen-") {
		t.Errorf("article.ID = %q, want prefix %q", article.ID, "news-gen-")
	}
}

// 一括生成が入力順を保持することを検証
func TestService_GenerateToolBatch_PreservesOrder(t *testing.T) {
	gen := &mockGenerator{
		generateJSONFn: func(ctx context.Context, req genai.Request) genai.Result {
			return okJSON(t, map[string]any{
				"tools": []model.ToolDraft{
					{Name: "Alpha"},
					{Name: "Beta"},
					{Name: "Gamma"},
				},
			})
		},
		generateImageFn: func(ctx context.Context, prompt string) (string, error) {
			// 画像付与に揺らぎを入れても順序が保たれることを確認する
			time.Sleep(time.Duration(len(prompt)%3) * 5 * time.Millisecond)
			return "https://images.example.com/x.png", nil
		},
	}
	svc := NewService(gen, newTestLogger(), metrics.NopCollector{}, 2)

	tools, err := svc.GenerateToolBatch(context.Background(), 3)
	if err != nil {
		t.Fatalf("GenerateToolBatch() error = %v", err)
	}

	if len(tools) != 3 {
		t.Fatalf("len(tools) = %d, want 3", len(tools))
	}
	wantNames := []string{"Alpha", "Beta", "Gamma"}
	for i, want := range wantNames {
		if tools[i].Name != want {
			t.Errorf("tools[%d].Name = %q, want %q", i, tools[i].Name, want)
		}
	}
}

// 一括生成のID採番がインデックスを含むことを検証
func TestService_GenerateNewsBatch_IDs(t *testing.T) {
	gen := &mockGenerator{
		generateJSONFn: func(ctx context.Context, req genai.Request) genai.Result {
			return okJSON(t, map[string]any{
				"articles": []model.NewsDraft{
					{Title: "One"},
					{Title: "Two"},
				},
			})
		},
	}
	svc := NewService(gen, newTestLogger(), metrics.NopCollector{}, 2)

	articles, err := svc.GenerateNewsBatch(context.Background(), 2)
	if err != nil {
		t.Fatalf("GenerateNewsBatch() error = %v", err)
	}

	if len(articles) != 2 {
		t.Fatalf("len(articles) = %d, want 2", len(articles))
	}
	if !strings.HasSuffix(articles[0].ID, "-0") || !strings.HasSuffix(articles[1].ID, "-1") {
		t.Errorf("IDs = %q, %q, want index suffixes", articles[0].ID, articles[1].ID)
	}
}

// slugifyの入出力を検証
func TestSlugify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"小文字化", "ChatGPT", "chatgpt"},
		{"空白のハイフン化", "Stable Diffusion XL", "stable-diffusion-xl"},
		{"記号の除去", "Tool: v2.0!", "tool-v2-0"},
		{"空文字", "", "entry"},
		{"記号のみ", "!!!", "entry"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := slugify(tt.input); got != tt.want {
				t.Errorf("slugify(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
