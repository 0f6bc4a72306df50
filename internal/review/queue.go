// Package review は公開前レビューキューを提供する。
package review

import (
	"sync"
)

// Queue はIDを持つ要素の順序付きステージング領域。
// 新しい要素ほど先頭に置かれ、全操作はミューテックスで直列化される。
type Queue[T any] struct {
	mu    sync.Mutex
	items []T
	idOf  func(T) string
}

// NewQueue はQueueの新しいインスタンスを生成する。
// idOfは要素からIDを取り出す関数。
func NewQueue[T any](idOf func(T) string) *Queue[T] {
	return &Queue[T]{idOf: idOf}
}

// PrependAll は要素群を先頭へまとめて追加する。
// 追加分の内部順序は保たれ、既存要素より前に置かれる。
func (q *Queue[T]) PrependAll(items []T) {
	if len(items) == 0 {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	next := make([]T, 0, len(items)+len(q.items))
	next = append(next, items...)
	next = append(next, q.items...)
	q.items = next
}

// RemoveByID は指定IDの要素を取り除く。
// 要素が存在しない場合は何もせずfalseを返す（冪等）。
func (q *Queue[T]) RemoveByID(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	next := q.items[:0]
	removed := false
	for _, item := range q.items {
		if q.idOf(item) == id {
			removed = true
			continue
		}
		next = append(next, item)
	}
	q.items = next
	return removed
}

// FindByID は指定IDの要素を返す。
func (q *Queue[T]) FindByID(id string) (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, item := range q.items {
		if q.idOf(item) == id {
			return item, true
		}
	}

	var zero T
	return zero, false
}

// Snapshot は現在の内容のコピーを先頭から順に返す。
func (q *Queue[T]) Snapshot() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]T, len(q.items))
	copy(out, q.items)
	return out
}

// Clear は全要素を取り除く。
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}

// Len は現在の要素数を返す。
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
