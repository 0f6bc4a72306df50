package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vetorre/curator/internal/model"
)

// mockCatalogOrchestrator はCatalogOrchestratorInterfaceのモック実装。
type mockCatalogOrchestrator struct {
	createOrUpdateToolFn func(ctx context.Context, tool *model.Tool, existingID string) (*model.Tool, error)
	createOrUpdateNewsFn func(ctx context.Context, article *model.News, existingID string) (*model.News, error)
	removeToolFn         func(ctx context.Context, id string) error
	removeNewsFn         func(ctx context.Context, id string) error
}

func (m *mockCatalogOrchestrator) CreateOrUpdateTool(ctx context.Context, tool *model.Tool, existingID string) (*model.Tool, error) {
	if m.createOrUpdateToolFn != nil {
		return m.createOrUpdateToolFn(ctx, tool, existingID)
	}
	return tool, nil
}

func (m *mockCatalogOrchestrator) CreateOrUpdateNews(ctx context.Context, article *model.News, existingID string) (*model.News, error) {
	if m.createOrUpdateNewsFn != nil {
		return m.createOrUpdateNewsFn(ctx, article, existingID)
	}
	return article, nil
}

func (m *mockCatalogOrchestrator) RemoveTool(ctx context.Context, id string) error {
	if m.removeToolFn != nil {
		return m.removeToolFn(ctx, id)
	}
	return nil
}

func (m *mockCatalogOrchestrator) RemoveNews(ctx context.Context, id string) error {
	if m.removeNewsFn != nil {
		return m.removeNewsFn(ctx, id)
	}
	return nil
}

// 公開ツール一覧が返ることを検証
func TestCatalogHandler_ListTools(t *testing.T) {
	lister := &mockToolLister{
		listAllFn: func(ctx context.Context) ([]*model.Tool, error) {
			return []*model.Tool{{ID: "tool-1", Name: "PixelForge"}}, nil
		},
	}
	h := NewCatalogHandler(&mockCatalogOrchestrator{}, lister, &mockNewsLister{})

	req := httptest.NewRequest(http.MethodGet, "/api/tools", nil)
	w := httptest.NewRecorder()

	h.ListTools(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var tools []*model.Tool
	if err := json.NewDecoder(w.Body).Decode(&tools); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(tools) != 1 || tools[0].Name != "PixelForge" {
		t.Errorf("tools = %v, want one PixelForge entry", tools)
	}
}

// 一覧が空でも空配列で応答することを検証
func TestCatalogHandler_ListNews_Empty(t *testing.T) {
	h := NewCatalogHandler(&mockCatalogOrchestrator{}, &mockToolLister{}, &mockNewsLister{})

	req := httptest.NewRequest(http.MethodGet, "/api/news", nil)
	w := httptest.NewRecorder()

	h.ListNews(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want empty array", got)
	}
}

// 作成が空のexistingIDでオーケストレーターを呼び201を返すことを検証
func TestCatalogHandler_CreateTool(t *testing.T) {
	orch := &mockCatalogOrchestrator{
		createOrUpdateToolFn: func(ctx context.Context, tool *model.Tool, existingID string) (*model.Tool, error) {
			if existingID != "" {
				t.Errorf("existingID = %q, want empty", existingID)
			}
			tool.ID = "assigned-uuid"
			return tool, nil
		},
	}
	h := NewCatalogHandler(orch, &mockToolLister{}, &mockNewsLister{})

	body := `{"name": "PixelForge", "description": "An image tool."}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/tools", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	h.CreateTool(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusCreated)
	}

	var tool model.Tool
	if err := json.NewDecoder(w.Body).Decode(&tool); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if tool.ID != "assigned-uuid" {
		t.Errorf("tool.ID = %q, want %q", tool.ID, "assigned-uuid")
	}
}

// 更新がパス中のIDをexistingIDとして渡すことを検証
func TestCatalogHandler_UpdateNews_UsesPathID(t *testing.T) {
	orch := &mockCatalogOrchestrator{
		createOrUpdateNewsFn: func(ctx context.Context, article *model.News, existingID string) (*model.News, error) {
			if existingID != "news-1" {
				t.Errorf("existingID = %q, want %q", existingID, "news-1")
			}
			return article, nil
		},
	}
	h := NewCatalogHandler(orch, &mockToolLister{}, &mockNewsLister{})

	// ボディ中のIDはパスのIDより優先されない
	body := `{"id": "forged-id", "title": "Updated", "content": "Body."}`
	req := httptest.NewRequest(http.MethodPut, "/api/admin/news/news-1", bytes.NewBufferString(body))
	req = withChiURLParam(req, "id", "news-1")
	w := httptest.NewRecorder()

	h.UpdateNews(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

// バリデーション失敗が400で返ることを検証
func TestCatalogHandler_CreateNews_ValidationFailed(t *testing.T) {
	orch := &mockCatalogOrchestrator{
		createOrUpdateNewsFn: func(ctx context.Context, article *model.News, existingID string) (*model.News, error) {
			return nil, model.NewValidationError("タイトルは必須です")
		},
	}
	h := NewCatalogHandler(orch, &mockToolLister{}, &mockNewsLister{})

	req := httptest.NewRequest(http.MethodPost, "/api/admin/news", bytes.NewBufferString(`{"content": "Body."}`))
	w := httptest.NewRecorder()

	h.CreateNews(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// 削除が204を返すことを検証
func TestCatalogHandler_DeleteTool(t *testing.T) {
	var removedID string
	orch := &mockCatalogOrchestrator{
		removeToolFn: func(ctx context.Context, id string) error {
			removedID = id
			return nil
		},
	}
	h := NewCatalogHandler(orch, &mockToolLister{}, &mockNewsLister{})

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/tools/tool-1", nil)
	req = withChiURLParam(req, "id", "tool-1")
	w := httptest.NewRecorder()

	h.DeleteTool(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if removedID != "tool-1" {
		t.Errorf("removedID = %q, want %q", removedID, "tool-1")
	}
}

// 存在しないレコードの削除が404で返ることを検証
func TestCatalogHandler_DeleteNews_NotFound(t *testing.T) {
	orch := &mockCatalogOrchestrator{
		removeNewsFn: func(ctx context.Context, id string) error {
			return model.NewNotFoundError("記事", id)
		},
	}
	h := NewCatalogHandler(orch, &mockToolLister{}, &mockNewsLister{})

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/news/missing", nil)
	req = withChiURLParam(req, "id", "missing")
	w := httptest.NewRecorder()

	h.DeleteNews(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
