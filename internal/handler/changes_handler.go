package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vetorre/curator/internal/middleware"
	"github.com/vetorre/curator/internal/model"
	"github.com/vetorre/curator/internal/store"
)

// heartbeatInterval はSSE接続維持用コメントの送信間隔。
const heartbeatInterval = 30 * time.Second

// ChangeSubscriber は変更イベント購読のインターフェース。
type ChangeSubscriber interface {
	Subscribe() (<-chan store.Event, func())
}

// ChangesHandler はストア変更イベントのSSE配信ハンドラー。
// クライアントはイベント受信を契機に一覧を再取得する。
type ChangesHandler struct {
	notifier ChangeSubscriber
}

// NewChangesHandler はChangesHandlerを生成する。
func NewChangesHandler(notifier ChangeSubscriber) *ChangesHandler {
	return &ChangesHandler{notifier: notifier}
}

// Stream は変更イベントをServer-Sent Eventsで配信する。
// クライアントの切断まで接続を維持する。
// GET /api/changes
func (h *ChangesHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		middleware.WriteError(w, model.NewStoreOperationError("ストリーミング応答"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// 接続確立を即座にクライアントへ伝える
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	events, cancel := h.notifier.Subscribe()
	defer cancel()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		case event, open := <-events:
			if !open {
				return
			}
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
