package handler

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vetorre/curator/internal/genai"
	"github.com/vetorre/curator/internal/middleware"
	"github.com/vetorre/curator/internal/model"
)

// GenAIHandler はAI生成タスクの汎用プロキシハンドラー。
// タスク識別子に応じてプロンプトを組み立て、生成結果をそのまま返す。
type GenAIHandler struct {
	generator genai.ContentGenerator
	tools     ToolLister
	news      NewsLister
}

// NewGenAIHandler はGenAIHandlerを生成する。
func NewGenAIHandler(generator genai.ContentGenerator, tools ToolLister, news NewsLister) *GenAIHandler {
	return &GenAIHandler{generator: generator, tools: tools, news: news}
}

// genaiRequest はAI生成プロキシのリクエストボディ。
type genaiRequest struct {
	Task    string          `json:"task"`
	Payload json.RawMessage `json:"payload"`
}

// genaiPayload は各タスクが参照するペイロードの全フィールド。
// タスクごとに必要なフィールドだけを読む。
type genaiPayload struct {
	Topic   string `json:"topic"`
	Count   int    `json:"count"`
	Prompt  string `json:"prompt"`
	Message string `json:"message"`
	Query   string `json:"query"`
	Text    string `json:"text"`
	Audio   string `json:"audio"`
}

// Handle はタスク識別子に基づいて生成処理をディスパッチする。
// 未知のタスクは400、生成の失敗は500を返す。
// POST /api/genai
func (h *GenAIHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req genaiRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var payload genaiPayload
	if len(req.Payload) > 0 {
		if err := json.Unmarshal(req.Payload, &payload); err != nil {
			middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
				Code:     model.ErrCodeInvalidRequest,
				Message:  "ペイロードの解析に失敗しました。",
				Category: "validation",
				Action:   "正しいJSON形式でリクエストしてください。",
			})
			return
		}
	}

	switch req.Task {
	case "generate-news":
		h.handleJSON(w, r, genai.NewsBatchRequest(clampBatchCount(payload.Count)))
	case "generate-directory-news":
		topic := payload.Topic
		if strings.TrimSpace(topic) == "" {
			topic = "the AI tools industry"
		}
		h.handleJSON(w, r, genai.NewsRequest(topic))
	case "generate-tools":
		h.handleJSON(w, r, genai.ToolBatchRequest(clampBatchCount(payload.Count)))
	case "generate-image":
		h.handleImage(w, r, payload.Prompt)
	case "chat":
		h.handleChat(w, r, payload.Message)
	case "transcribe-audio":
		h.handleTranscribe(w, r, payload.Audio)
	case "generate-speech":
		h.handleSpeech(w, r, payload.Text)
	case "intelligent-search":
		h.handleIntelligentSearch(w, r, payload.Query)
	case "generate-podcast":
		h.handlePodcast(w, r)
	default:
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewUnknownTaskError(req.Task))
	}
}

// handleJSON は構造化生成タスクを実行し、生成されたJSONをそのまま返す。
func (h *GenAIHandler) handleJSON(w http.ResponseWriter, r *http.Request, genReq genai.Request) {
	result := h.generator.GenerateJSON(r.Context(), genReq)
	if result.Status != genai.StatusOK {
		middleware.WriteError(w, model.NewGenerationFailedError("構造化データを生成できませんでした"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(result.Raw)
}

func (h *GenAIHandler) handleImage(w http.ResponseWriter, r *http.Request, prompt string) {
	if strings.TrimSpace(prompt) == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("画像プロンプトが空です"))
		return
	}
	imageURL, err := h.generator.GenerateImage(r.Context(), prompt)
	if err != nil {
		middleware.WriteError(w, model.NewGenerationFailedError("画像を生成できませんでした"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"imageUrl": imageURL})
}

func (h *GenAIHandler) handleChat(w http.ResponseWriter, r *http.Request, message string) {
	if strings.TrimSpace(message) == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("メッセージが空です"))
		return
	}
	system, user := genai.ChatPrompt(message)
	response, err := h.generator.GenerateText(r.Context(), system, user)
	if err != nil {
		middleware.WriteError(w, model.NewGenerationFailedError("応答を生成できませんでした"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": response})
}

func (h *GenAIHandler) handleTranscribe(w http.ResponseWriter, r *http.Request, audioB64 string) {
	if strings.TrimSpace(audioB64) == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("音声データが空です"))
		return
	}
	audio, err := base64.StdEncoding.DecodeString(audioB64)
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("音声データのデコードに失敗しました"))
		return
	}
	text, err := h.generator.Transcribe(r.Context(), audio, "audio.webm")
	if err != nil {
		middleware.WriteError(w, model.NewGenerationFailedError("文字起こしに失敗しました"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"text": text})
}

func (h *GenAIHandler) handleSpeech(w http.ResponseWriter, r *http.Request, text string) {
	if strings.TrimSpace(text) == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("読み上げテキストが空です"))
		return
	}
	audio, err := h.generator.Speech(r.Context(), text)
	if err != nil {
		middleware.WriteError(w, model.NewGenerationFailedError("音声を生成できませんでした"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"audio": "data:audio/mpeg;base64," + base64.StdEncoding.EncodeToString(audio),
	})
}

// handleIntelligentSearch は現在のカタログを文脈としてID照合検索を行う。
func (h *GenAIHandler) handleIntelligentSearch(w http.ResponseWriter, r *http.Request, query string) {
	if strings.TrimSpace(query) == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("検索クエリが空です"))
		return
	}

	catalogJSON, err := h.catalogJSON(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	h.handleJSON(w, r, genai.IntelligentSearchRequest(query, catalogJSON))
}

// handlePodcast は公開済みニュースからポッドキャスト台本を生成する。
func (h *GenAIHandler) handlePodcast(w http.ResponseWriter, r *http.Request) {
	articles, err := h.news.ListAll(r.Context())
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	articlesJSON, err := json.Marshal(articles)
	if err != nil {
		middleware.WriteError(w, model.NewStoreOperationError("記事一覧のシリアライズ"))
		return
	}

	system, user := genai.PodcastPrompt(string(articlesJSON))
	script, err := h.generator.GenerateText(r.Context(), system, user)
	if err != nil {
		middleware.WriteError(w, model.NewGenerationFailedError("台本を生成できませんでした"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"script": script})
}

// catalogJSON は検索文脈用に現在のツールとニュース一覧をJSON化する。
func (h *GenAIHandler) catalogJSON(r *http.Request) (string, error) {
	tools, err := h.tools.ListAll(r.Context())
	if err != nil {
		return "", err
	}
	news, err := h.news.ListAll(r.Context())
	if err != nil {
		return "", err
	}

	catalog := map[string]any{"tools": tools, "news": news}
	raw, err := json.Marshal(catalog)
	if err != nil {
		return "", model.NewStoreOperationError("カタログのシリアライズ")
	}
	return string(raw), nil
}
