package relay

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vetorre/curator/internal/model"
)

// mockSSRFGuard はテスト用のSSRF検証モック。
type mockSSRFGuard struct {
	validateURLFn func(rawURL string) error
}

func (m *mockSSRFGuard) ValidateURL(rawURL string) error {
	if m.validateURLFn != nil {
		return m.validateURLFn(rawURL)
	}
	return nil
}

func (m *mockSSRFGuard) NewSafeClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// リレー応答のcontentsが取り出されることを検証
func TestClient_FetchRaw_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/get" {
			t.Errorf("path = %q, want %q", r.URL.Path, "/get")
		}
		if got := r.URL.Query().Get("url"); got != "https://example.com/feed.xml" {
			t.Errorf("url param = %q, want %q", got, "https://example.com/feed.xml")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"contents": "<rss></rss>", "status": {"http_code": 200}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, &mockSSRFGuard{}, newTestLogger(), 5*time.Second)

	contents, err := client.FetchRaw(context.Background(), "https://example.com/feed.xml")
	if err != nil {
		t.Fatalf("FetchRaw() error = %v", err)
	}
	if contents != "<rss></rss>" {
		t.Errorf("contents = %q, want %q", contents, "<rss></rss>")
	}
}

// SSRF検証に失敗したURLは取得しないことを検証
func TestClient_FetchRaw_SSRFBlocked(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	guard := &mockSSRFGuard{
		validateURLFn: func(rawURL string) error {
			return errors.New("blocked host")
		},
	}
	client := NewClient(server.URL, guard, newTestLogger(), 5*time.Second)

	_, err := client.FetchRaw(context.Background(), "http://169.254.169.254/")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if called {
		t.Error("relay should not be contacted for blocked URLs")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeFeedUnavailable {
		t.Errorf("apiErr.Code = %q, want %q", apiErr.Code, model.ErrCodeFeedUnavailable)
	}
}

// リレー自体が異常ステータスを返した場合のエラーを検証
func TestClient_FetchRaw_RelayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, &mockSSRFGuard{}, newTestLogger(), 5*time.Second)

	_, err := client.FetchRaw(context.Background(), "https://example.com/feed.xml")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// 取得先が4xx/5xxを返した場合のエラーを検証
func TestClient_FetchRaw_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"contents": "Not Found", "status": {"http_code": 404}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, &mockSSRFGuard{}, newTestLogger(), 5*time.Second)

	_, err := client.FetchRaw(context.Background(), "https://example.com/missing.xml")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// 不正なJSON応答の場合のエラーを検証
func TestClient_FetchRaw_MalformedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not-json`))
	}))
	defer server.Close()

	client := NewClient(server.URL, &mockSSRFGuard{}, newTestLogger(), 5*time.Second)

	_, err := client.FetchRaw(context.Background(), "https://example.com/feed.xml")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
