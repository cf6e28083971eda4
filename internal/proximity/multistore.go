package proximity

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/inodb/vibe-nearest/internal/binning"
	"github.com/inodb/vibe-nearest/internal/feature"
)

// MultiStore searches several stores as one. Fetches run concurrently and
// results are concatenated in store order.
type MultiStore struct {
	stores []FeatureStore
	limit  int
}

// NewMultiStore combines stores. At most 8 fetches run at once by default.
func NewMultiStore(stores ...FeatureStore) *MultiStore {
	return &MultiStore{stores: stores, limit: 8}
}

// SetLimit sets the number of concurrent fetches. n <= 0 removes the limit.
func (m *MultiStore) SetLimit(n int) {
	m.limit = n
}

// Fetch queries every store; the first error cancels the rest.
func (m *MultiStore) Fetch(ctx context.Context, chrom string, bins *binning.BinSet, start, end uint64) ([]*feature.Feature, error) {
	parts := make([][]*feature.Feature, len(m.stores))

	g, gctx := errgroup.WithContext(ctx)
	if m.limit > 0 {
		g.SetLimit(m.limit)
	}
	for i, st := range m.stores {
		i, st := i, st
		g.Go(func() error {
			feats, err := st.Fetch(gctx, chrom, bins, start, end)
			if err != nil {
				return err
			}
			parts[i] = feats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var n int
	for _, p := range parts {
		n += len(p)
	}
	out := make([]*feature.Feature, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out, nil
}

// ChromSize returns the largest size reported by any member store.
func (m *MultiStore) ChromSize(chrom string) (uint64, bool) {
	var size uint64
	var found bool
	for _, st := range m.stores {
		cs, ok := st.(ChromSizer)
		if !ok {
			continue
		}
		if n, ok := cs.ChromSize(chrom); ok {
			found = true
			size = max(size, n)
		}
	}
	return size, found
}
