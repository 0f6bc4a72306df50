package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/vetorre/curator/internal/model"
)

// mockRawFetcher はテスト用のリレー取得モック。
type mockRawFetcher struct {
	fetchRawFn func(ctx context.Context, targetURL string) (string, error)
}

func (m *mockRawFetcher) FetchRaw(ctx context.Context, targetURL string) (string, error) {
	return m.fetchRawFn(ctx, targetURL)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>AI News</title>
    <item>
      <title>First Story</title>
      <description>Summary of the first story.</description>
    </item>
    <item>
      <title>Second Story</title>
    </item>
    <item>
      <title></title>
      <description>Untitled entry.</description>
    </item>
    <item>
      <title>Third Story</title>
      <description>Summary of the third story.</description>
    </item>
  </channel>
</rss>`

// フィード項目が位置トークンID付きの候補へ変換されることを検証
func TestService_FetchCandidates(t *testing.T) {
	fetcher := &mockRawFetcher{
		fetchRawFn: func(ctx context.Context, targetURL string) (string, error) {
			return sampleRSS, nil
		},
	}
	svc := NewService(fetcher, newTestLogger(), 20)

	candidates, err := svc.FetchCandidates(context.Background(), "https://example.com/feed.xml", 0)
	if err != nil {
		t.Fatalf("FetchCandidates() error = %v", err)
	}

	if len(candidates) != 4 {
		t.Fatalf("len(candidates) = %d, want 4", len(candidates))
	}

	if candidates[0].ID != "rss-0" {
		t.Errorf("candidates[0].ID = %q, want %q", candidates[0].ID, "rss-0")
	}
	if candidates[0].Title != "First Story" {
		t.Errorf("candidates[0].Title = %q, want %q", candidates[0].Title, "First Story")
	}
	if candidates[3].ID != "rss-3" {
		t.Errorf("candidates[3].ID = %q, want %q", candidates[3].ID, "rss-3")
	}
	if candidates[3].Title != "Third Story" {
		t.Errorf("candidates[3].Title = %q, want %q", candidates[3].Title, "Third Story")
	}
}

// タイトルのない項目も空文字のまま保持され、IDが出現位置から採番されることを検証
func TestService_FetchCandidates_MissingTitle(t *testing.T) {
	fetcher := &mockRawFetcher{
		fetchRawFn: func(ctx context.Context, targetURL string) (string, error) {
			return sampleRSS, nil
		},
	}
	svc := NewService(fetcher, newTestLogger(), 20)

	candidates, err := svc.FetchCandidates(context.Background(), "https://example.com/feed.xml", 0)
	if err != nil {
		t.Fatalf("FetchCandidates() error = %v", err)
	}

	if len(candidates) != 4 {
		t.Fatalf("len(candidates) = %d, want 4", len(candidates))
	}
	if candidates[2].ID != "rss-2" {
		t.Errorf("candidates[2].ID = %q, want %q", candidates[2].ID, "rss-2")
	}
	if candidates[2].Title != "" {
		t.Errorf("candidates[2].Title = %q, want empty", candidates[2].Title)
	}
	if candidates[2].Description != "Untitled entry." {
		t.Errorf("candidates[2].Description = %q, want %q", candidates[2].Description, "Untitled entry.")
	}
}

// 説明のない項目は空文字で補われることを検証
func TestService_FetchCandidates_MissingDescription(t *testing.T) {
	fetcher := &mockRawFetcher{
		fetchRawFn: func(ctx context.Context, targetURL string) (string, error) {
			return sampleRSS, nil
		},
	}
	svc := NewService(fetcher, newTestLogger(), 20)

	candidates, err := svc.FetchCandidates(context.Background(), "https://example.com/feed.xml", 0)
	if err != nil {
		t.Fatalf("FetchCandidates() error = %v", err)
	}

	if candidates[1].Title != "Second Story" {
		t.Errorf("candidates[1].Title = %q, want %q", candidates[1].Title, "Second Story")
	}
	if candidates[1].Description != "" {
		t.Errorf("candidates[1].Description = %q, want empty", candidates[1].Description)
	}
}

// 最大件数で候補が打ち切られることを検証
func TestService_FetchCandidates_MaxItems(t *testing.T) {
	fetcher := &mockRawFetcher{
		fetchRawFn: func(ctx context.Context, targetURL string) (string, error) {
			return sampleRSS, nil
		},
	}
	svc := NewService(fetcher, newTestLogger(), 2)

	candidates, err := svc.FetchCandidates(context.Background(), "https://example.com/feed.xml", 0)
	if err != nil {
		t.Fatalf("FetchCandidates() error = %v", err)
	}

	if len(candidates) != 2 {
		t.Errorf("len(candidates) = %d, want 2", len(candidates))
	}
}

// リクエスト指定の件数が有効で、既定値超過は切り詰められることを検証
func TestService_FetchCandidates_RequestedMaxItems(t *testing.T) {
	fetcher := &mockRawFetcher{
		fetchRawFn: func(ctx context.Context, targetURL string) (string, error) {
			return sampleRSS, nil
		},
	}
	svc := NewService(fetcher, newTestLogger(), 20)

	candidates, err := svc.FetchCandidates(context.Background(), "https://example.com/feed.xml", 1)
	if err != nil {
		t.Fatalf("FetchCandidates() error = %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("len(candidates) = %d, want 1", len(candidates))
	}

	// 既定値を超える指定は既定値へ切り詰める
	candidates, err = svc.FetchCandidates(context.Background(), "https://example.com/feed.xml", 100)
	if err != nil {
		t.Fatalf("FetchCandidates() error = %v", err)
	}
	if len(candidates) != 4 {
		t.Errorf("len(candidates) = %d, want 4", len(candidates))
	}
}

// 空レスポンスはフィード取得エラーになることを検証
func TestService_FetchCandidates_EmptyResponse(t *testing.T) {
	fetcher := &mockRawFetcher{
		fetchRawFn: func(ctx context.Context, targetURL string) (string, error) {
			return "   ", nil
		},
	}
	svc := NewService(fetcher, newTestLogger(), 20)

	_, err := svc.FetchCandidates(context.Background(), "https://example.com/feed.xml", 0)
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeFeedUnavailable {
		t.Errorf("apiErr.Code = %q, want %q", apiErr.Code, model.ErrCodeFeedUnavailable)
	}
}

// パース不能なコンテンツはフィード取得エラーになることを検証
func TestService_FetchCandidates_ParseFailure(t *testing.T) {
	fetcher := &mockRawFetcher{
		fetchRawFn: func(ctx context.Context, targetURL string) (string, error) {
			return "<html><body>not a feed</body></html>", nil
		},
	}
	svc := NewService(fetcher, newTestLogger(), 20)

	_, err := svc.FetchCandidates(context.Background(), "https://example.com/feed.xml", 0)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// 取得エラーがそのまま伝播することを検証
func TestService_FetchCandidates_FetchError(t *testing.T) {
	wantErr := model.NewFeedUnavailableError("https://example.com/feed.xml")
	fetcher := &mockRawFetcher{
		fetchRawFn: func(ctx context.Context, targetURL string) (string, error) {
			return "", wantErr
		},
	}
	svc := NewService(fetcher, newTestLogger(), 20)

	_, err := svc.FetchCandidates(context.Background(), "https://example.com/feed.xml", 0)
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
