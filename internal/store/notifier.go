package store

import (
	"sync"
)

// EventKind は変更イベントの種別。
type EventKind string

const (
	EventKindUpsert EventKind = "upsert"
	EventKindDelete EventKind = "delete"
)

// Event はデータ変更の通知イベント。
type Event struct {
	Collection string    `json:"collection"`
	Kind       EventKind `json:"kind"`
	ID         string    `json:"id"`
}

// Notifier はプロセス内の変更通知ハブ。
// 公開・削除などの変更を購読者へファンアウトする。
type Notifier struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

// NewNotifier はNotifierを生成する。
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan Event)}
}

// Subscribe は変更イベントの購読を開始する。
// 返されるチャネルと、購読を解除する関数を返す。
func (n *Notifier) Subscribe() (<-chan Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++

	// 遅い購読者がいてもPublishをブロックしないようバッファを持たせる
	ch := make(chan Event, 16)
	n.subs[id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
	}

	return ch, cancel
}

// Publish は全購読者へイベントを配信する。
// バッファが満杯の購読者はそのイベントを取りこぼす。
func (n *Notifier) Publish(event Event) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// SubscriberCount は現在の購読者数を返す。
func (n *Notifier) SubscriberCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
