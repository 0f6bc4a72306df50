package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/vetorre/curator/internal/model"
)

// SSRFValidator はSSRF検証のインターフェース。
type SSRFValidator interface {
	ValidateURL(rawURL string) error
	NewSafeClient(timeout time.Duration) *http.Client
}

// maxBodySize はリレー応答の最大読み取りサイズ。
const maxBodySize = 10 * 1024 * 1024

// Client はCORSリレー経由で外部コンテンツを取得するクライアント。
// リレーは GET <base>/get?url=<encoded> に対して
// {"contents": "...", "status": {"http_code": 200}} 形式のJSONを返す。
type Client struct {
	baseURL   string
	ssrfGuard SSRFValidator
	logger    *slog.Logger
	timeout   time.Duration
}

// relayEnvelope はリレーのJSON応答。
type relayEnvelope struct {
	Contents string `json:"contents"`
	Status   struct {
		HTTPCode int `json:"http_code"`
	} `json:"status"`
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(baseURL string, ssrfGuard SSRFValidator, logger *slog.Logger, timeout time.Duration) *Client {
	return &Client{
		baseURL:   baseURL,
		ssrfGuard: ssrfGuard,
		logger:    logger,
		timeout:   timeout,
	}
}

// FetchRaw は対象URLのコンテンツをリレー経由で取得して返す。
// 対象URLはSSRF検証を通過したもののみ許可する。
func (c *Client) FetchRaw(ctx context.Context, targetURL string) (string, error) {
	if err := c.ssrfGuard.ValidateURL(targetURL); err != nil {
		c.logger.Error("SSRF検証に失敗しました",
			slog.String("target_url", targetURL),
			slog.String("error", err.Error()),
		)
		return "", model.NewFeedUnavailableError(targetURL)
	}

	relayURL := fmt.Sprintf("%s/get?url=%s", c.baseURL, url.QueryEscape(targetURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, relayURL, nil)
	if err != nil {
		return "", fmt.Errorf("リクエスト作成に失敗: %w", err)
	}
	req.Header.Set("User-Agent", "Curator/1.0")
	req.Header.Set("Accept", "application/json")

	client := c.ssrfGuard.NewSafeClient(c.timeout)
	resp, err := client.Do(req)
	if err != nil {
		c.logger.Error("リレーへのリクエストに失敗しました",
			slog.String("target_url", targetURL),
			slog.String("error", err.Error()),
		)
		return "", model.NewFeedUnavailableError(targetURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("リレーが異常ステータスを返しました",
			slog.String("target_url", targetURL),
			slog.Int("status_code", resp.StatusCode),
		)
		return "", model.NewFeedUnavailableError(targetURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("リレー応答の読み取りに失敗: %w", err)
	}

	var envelope relayEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("リレー応答のパースに失敗: %w", err)
	}

	// http_codeが0のリレー実装もあるため、明示的なエラーコードのみ拒否する
	if envelope.Status.HTTPCode >= 400 {
		c.logger.Error("取得先が異常ステータスを返しました",
			slog.String("target_url", targetURL),
			slog.Int("http_code", envelope.Status.HTTPCode),
		)
		return "", model.NewFeedUnavailableError(targetURL)
	}

	return envelope.Contents, nil
}
