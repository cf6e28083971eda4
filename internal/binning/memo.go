package binning

import "sync"

type memoKey struct{ s, e uint64 }

// Memo caches bin sets by finest-level cell pair, which fully determines the
// set. Each Memo owns its cache; nothing is shared between instances.
type Memo struct {
	mu    sync.Mutex
	sets  map[memoKey]*BinSet
	limit int
}

// NewMemo creates a memo holding at most limit sets. When full, the cache is
// dropped and refilled. A limit <= 0 means 4096.
func NewMemo(limit int) *Memo {
	if limit <= 0 {
		limit = 4096
	}
	return &Memo{sets: make(map[memoKey]*BinSet), limit: limit}
}

// BinsForRange is a cached BinsForRange. The returned set is a copy.
func (m *Memo) BinsForRange(start, end uint64) (*BinSet, error) {
	if err := CheckRange(start, end); err != nil {
		return nil, err
	}
	s, e := cells(start, end)
	k := memoKey{s, e}

	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.sets[k]
	if !ok {
		if len(m.sets) >= m.limit {
			m.sets = make(map[memoKey]*BinSet)
		}
		set = binsForCells(s, e)
		m.sets[k] = set
	}
	return set.Clone(), nil
}

// Len returns the number of cached sets.
func (m *Memo) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sets)
}
