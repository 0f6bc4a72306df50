package quota

import (
	"context"
	"sync"
)

// MemoryCounterStore はメモリ上のCounterStore実装。
// テストやDBなしの起動確認で使用する。
type MemoryCounterStore struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewMemoryCounterStore はMemoryCounterStoreを生成する。
func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{counts: make(map[string]int)}
}

func key(userID, day string) string {
	return userID + "|" + day
}

// IncrementWithCeiling は上限未満の場合のみカウントを1加算する。
func (s *MemoryCounterStore) IncrementWithCeiling(ctx context.Context, userID, day string, ceiling int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(userID, day)
	if s.counts[k] >= ceiling {
		return false, nil
	}
	s.counts[k]++
	return true, nil
}

// CurrentCount は指定日の利用回数を返す。
func (s *MemoryCounterStore) CurrentCount(ctx context.Context, userID, day string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts[key(userID, day)], nil
}

// compile-time interface check
var _ CounterStore = (*MemoryCounterStore)(nil)
