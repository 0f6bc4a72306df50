package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vetorre/curator/internal/middleware"
	"github.com/vetorre/curator/internal/model"
	"github.com/vetorre/curator/internal/store"
)

// mockSessionFinder はmiddleware.SessionFinderのモック実装。
type mockSessionFinder struct {
	sessions map[string]string // session id → user id
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	userID, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &model.Session{ID: id, UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

// mockProfileFinder はmiddleware.ProfileFinderのモック実装。
type mockProfileFinder struct {
	profiles map[string]*model.Profile
}

func (m *mockProfileFinder) FindByID(ctx context.Context, id string) (*model.Profile, error) {
	return m.profiles[id], nil
}

// mockPinger はPingerのモック実装。
type mockPinger struct {
	pingFn func(ctx context.Context) error
}

func (m *mockPinger) PingContext(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rateLimiter.Stop)

	sessions := &mockSessionFinder{sessions: map[string]string{
		"admin-session": "admin-1",
		"user-session":  "user-1",
	}}
	profiles := &mockProfileFinder{profiles: map[string]*model.Profile{
		"admin-1": {ID: "admin-1", Role: model.RoleAdmin, Plan: model.PlanPro},
		"user-1":  {ID: "user-1", Role: model.RoleUser, Plan: model.PlanFree},
	}}

	deps := &RouterDeps{
		Logger:              slog.New(slog.NewJSONHandler(io.Discard, nil)),
		SessionFinder:       sessions,
		ProfileFinder:       profiles,
		CORSAllowedOrigin:   "https://app.example.com",
		RateLimiter:         rateLimiter,
		DB:                  &mockPinger{},
		Gatherer:            prometheus.NewRegistry(),
		CatalogOrchestrator: &mockCatalogOrchestrator{},
		ToolLister:          &mockToolLister{},
		NewsLister:          &mockNewsLister{},
		FeedService:         &mockFeedService{},
		ExtractService:      &mockExtractService{},
		ReviewService:       &mockReviewService{},
		Enqueuer:            &mockEnqueuer{},
		Generator:           &mockGenerator{},
		Limiter:             &mockQuotaLimiter{},
		ToolFinder:          &mockToolFinder{},
		PlanUpdater:         &mockPlanUpdater{},
		SessionDeleter:      &mockSessionDeleter{},
		QuotaReader:         &mockQuotaReader{},
		ChangeNotifier:      store.NewNotifier(),
	}
	return NewRouter(deps)
}

// 公開ルートが認証なしで応答することを検証
func TestRouter_PublicRoutes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"health", http.MethodGet, "/health", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK},
		{"public tools", http.MethodGet, "/api/tools", http.StatusOK},
		{"public news", http.MethodGet, "/api/news", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

// 認証が必要なルートがセッションなしで401になることを検証
func TestRouter_RequiresAuthentication(t *testing.T) {
	router := newTestRouter(t)

	paths := []string{"/auth/me", "/api/changes", "/api/admin/review/tools"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want %d", path, w.Code, http.StatusUnauthorized)
		}
	}
}

// 管理者ルートが一般ユーザーに403を返すことを検証
func TestRouter_AdminRoutesForbidden(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/review/tools", nil)
	req.Header.Set("Authorization", "Bearer user-session")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

// 管理者セッションで管理ルートに到達できることを検証
func TestRouter_AdminRoutesAllowed(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/review/tools", nil)
	req.Header.Set("Authorization", "Bearer admin-session")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Body.String(); got != "[]\n" {
		t.Errorf("body = %q, want empty array", got)
	}
}

// CORSプリフライトが認証なしで200を返すことを検証
func TestRouter_PreflightAlwaysSucceeds(t *testing.T) {
	router := newTestRouter(t)

	paths := []string{"/api/genai", "/api/admin/extract/tool", "/api/tools"}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodOptions, path, nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()

		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("%s: status = %d, want %d", path, w.Code, http.StatusOK)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
			t.Errorf("%s: Allow-Origin = %q, want configured origin", path, got)
		}
	}
}

// 認証済みユーザーが自身のプロフィールを取得できることを検証
func TestRouter_AuthenticatedMe(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer user-session")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
}

// ヘルスチェックがDB疎通失敗で503を返すことを検証
func TestHealthHandler_DBFailure(t *testing.T) {
	h := NewHealthHandler(&mockPinger{
		pingFn: func(ctx context.Context) error {
			return context.DeadlineExceeded
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	h.Check(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}
