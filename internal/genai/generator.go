// Package genai はAIコンテンツ生成クライアントを提供する。
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// ResultStatus は構造化生成結果の状態。
type ResultStatus string

const (
	// StatusOK は有効なJSONが得られた状態。
	StatusOK ResultStatus = "ok"
	// StatusMalformed は応答は得られたがJSONとして解釈できない状態。
	// 呼び出し側はフィールド単位のフォールバックで回復する。
	StatusMalformed ResultStatus = "malformed"
	// StatusFailed は応答自体が得られなかった状態。
	StatusFailed ResultStatus = "failed"
)

// Result は構造化生成の結果を表す。
// StatusがStatusOKのときのみRawが有効なJSONを保持する。
type Result struct {
	Status ResultStatus
	Raw    json.RawMessage
	Err    error
}

// Request は構造化生成のリクエストを表す。
type Request struct {
	System    string
	User      string
	MaxTokens int
}

// ContentGenerator はAI生成のインターフェースを定義する。
// 実装はAPIの失敗をエラーで返し、リトライは行わない。
type ContentGenerator interface {
	// GenerateJSON はJSON形式の構造化データを生成する。
	GenerateJSON(ctx context.Context, req Request) Result

	// GenerateText は自由形式のテキストを生成する。
	GenerateText(ctx context.Context, system, user string) (string, error)

	// GenerateImage はプロンプトから画像を生成し、data URL形式で返す。
	GenerateImage(ctx context.Context, prompt string) (string, error)

	// Transcribe は音声データを文字起こしする。
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)

	// Speech はテキストから音声データを生成する。
	Speech(ctx context.Context, text string) ([]byte, error)
}

// OpenAIGenerator はOpenAI APIを使用するContentGeneratorの実装。
type OpenAIGenerator struct {
	client     *openai.Client
	logger     *slog.Logger
	model      string
	imageModel string
	timeout    time.Duration
}

// NewOpenAIGenerator はOpenAIGeneratorの新しいインスタンスを生成する。
// baseURLを指定すると接続先を差し替えられる（テストや互換API向け）。
func NewOpenAIGenerator(apiKey, baseURL, model, imageModel string, timeout time.Duration, logger *slog.Logger) *OpenAIGenerator {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAIGenerator{
		client:     openai.NewClientWithConfig(config),
		logger:     logger,
		model:      model,
		imageModel: imageModel,
		timeout:    timeout,
	}
}

// GenerateJSON はJSON形式の構造化データを生成する。
// APIエラーはStatusFailed、JSONとして不正な応答はStatusMalformedになる。
func (g *OpenAIGenerator) GenerateJSON(ctx context.Context, req Request) Result {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.7,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		g.logger.Error("構造化生成のAPI呼び出しに失敗しました",
			slog.String("error", err.Error()),
		)
		return Result{Status: StatusFailed, Err: fmt.Errorf("構造化生成に失敗: %w", err)}
	}

	if len(resp.Choices) == 0 {
		return Result{Status: StatusFailed, Err: fmt.Errorf("構造化生成の応答が空です")}
	}

	raw := stripCodeFence(resp.Choices[0].Message.Content)
	if raw == "" {
		return Result{Status: StatusFailed, Err: fmt.Errorf("構造化生成の応答が空です")}
	}

	if !json.Valid([]byte(raw)) {
		g.logger.Warn("構造化生成の応答がJSONとして不正です",
			slog.Int("length", len(raw)),
		)
		return Result{Status: StatusMalformed}
	}

	return Result{Status: StatusOK, Raw: json.RawMessage(raw)}
}

// GenerateText は自由形式のテキストを生成する。
func (g *OpenAIGenerator) GenerateText(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		MaxTokens:   2048,
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("テキスト生成に失敗: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("テキスト生成の応答が空です")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// GenerateImage はプロンプトから画像を生成し、data URL形式で返す。
func (g *OpenAIGenerator) GenerateImage(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateImage(ctx, openai.ImageRequest{
		Model:          g.imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return "", fmt.Errorf("画像生成に失敗: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return "", fmt.Errorf("画像生成の応答が空です")
	}

	return "data:image/png;base64," + resp.Data[0].B64JSON, nil
}

// Transcribe は音声データを文字起こしする。
func (g *OpenAIGenerator) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		Reader:   bytes.NewReader(audio),
		FilePath: filename,
	})
	if err != nil {
		return "", fmt.Errorf("文字起こしに失敗: %w", err)
	}

	return strings.TrimSpace(resp.Text), nil
}

// Speech はテキストから音声データを生成する。
func (g *OpenAIGenerator) Speech(ctx context.Context, text string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model: openai.TTSModel1,
		Input: text,
		Voice: openai.VoiceAlloy,
	})
	if err != nil {
		return nil, fmt.Errorf("音声生成に失敗: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("音声データの読み取りに失敗: %w", err)
	}

	return data, nil
}

// stripCodeFence はマークダウンのコードフェンスで囲まれたJSONを取り出す。
// フェンスのない応答はそのままトリムして返す。
func stripCodeFence(content string) string {
	trimmed := strings.TrimSpace(content)

	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	return trimmed
}

// compile-time interface check
var _ ContentGenerator = (*OpenAIGenerator)(nil)
