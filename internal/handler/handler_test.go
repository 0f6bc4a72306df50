package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/vetorre/curator/internal/genai"
	"github.com/vetorre/curator/internal/middleware"
	"github.com/vetorre/curator/internal/model"
)

// --- 共有モック定義 ---

// mockToolLister はToolListerのモック実装。
type mockToolLister struct {
	listAllFn func(ctx context.Context) ([]*model.Tool, error)
}

func (m *mockToolLister) ListAll(ctx context.Context) ([]*model.Tool, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

// mockNewsLister はNewsListerのモック実装。
type mockNewsLister struct {
	listAllFn func(ctx context.Context) ([]*model.News, error)
}

func (m *mockNewsLister) ListAll(ctx context.Context) ([]*model.News, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

// mockGenerator はgenai.ContentGeneratorのモック実装。
type mockGenerator struct {
	generateJSONFn  func(ctx context.Context, req genai.Request) genai.Result
	generateTextFn  func(ctx context.Context, system, user string) (string, error)
	generateImageFn func(ctx context.Context, prompt string) (string, error)
	transcribeFn    func(ctx context.Context, audio []byte, filename string) (string, error)
	speechFn        func(ctx context.Context, text string) ([]byte, error)
}

func (m *mockGenerator) GenerateJSON(ctx context.Context, req genai.Request) genai.Result {
	if m.generateJSONFn != nil {
		return m.generateJSONFn(ctx, req)
	}
	return genai.Result{Status: genai.StatusOK, Raw: json.RawMessage(`{}`)}
}

func (m *mockGenerator) GenerateText(ctx context.Context, system, user string) (string, error) {
	if m.generateTextFn != nil {
		return m.generateTextFn(ctx, system, user)
	}
	return "", nil
}

func (m *mockGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if m.generateImageFn != nil {
		return m.generateImageFn(ctx, prompt)
	}
	return "", nil
}

func (m *mockGenerator) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if m.transcribeFn != nil {
		return m.transcribeFn(ctx, audio, filename)
	}
	return "", nil
}

func (m *mockGenerator) Speech(ctx context.Context, text string) ([]byte, error) {
	if m.speechFn != nil {
		return m.speechFn(ctx, text)
	}
	return nil, nil
}

// mockEnqueuer はReviewEnqueuerのモック実装。
type mockEnqueuer struct {
	tools []*model.Tool
	news  []*model.News
}

func (m *mockEnqueuer) EnqueueTools(items []*model.Tool) {
	m.tools = append(m.tools, items...)
}

func (m *mockEnqueuer) EnqueueNews(items []*model.News) {
	m.news = append(m.news, items...)
}

// --- 共有テストヘルパー ---

// withProfile はテスト用にリクエストコンテキストにプロフィールを注入するヘルパー。
func withProfile(r *http.Request, profile *model.Profile) *http.Request {
	ctx := middleware.ContextWithProfile(r.Context(), profile)
	return r.WithContext(ctx)
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseErrorResponse はレスポンスボディから統一エラーレスポンスをパースするヘルパー。
func parseErrorResponse(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponseBody {
	t.Helper()
	var body middleware.ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return body
}

// decodeJSONヘルパーが不正なボディでINVALID_REQUESTを書き込むことを検証
func TestDecodeJSON_InvalidBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	w := httptest.NewRecorder()

	var v struct{}
	if decodeJSON(w, req, &v) {
		t.Fatal("decodeJSON() = true, want false")
	}
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}

	body := parseErrorResponse(t, w)
	if body.Code != model.ErrCodeInvalidRequest {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeInvalidRequest)
	}
}
