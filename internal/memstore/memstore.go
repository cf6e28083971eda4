// Package memstore provides an in-memory feature store backed by one interval
// tree per chromosome.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/biogo/store/interval"

	"github.com/inodb/vibe-nearest/internal/binning"
	"github.com/inodb/vibe-nearest/internal/feature"
)

// entry is a tree element. Its range is the feature's closed extent
// [Start, End] written half-open, so zero-length features are never empty.
type entry struct {
	f      *feature.Feature
	id     uintptr
	bin    binning.BinID
	binned bool // false when the feature straddles a top-level bin
}

func (e *entry) ID() uintptr { return e.id }

func (e *entry) Range() interval.IntRange {
	return interval.IntRange{Start: int(e.f.Start), End: int(e.f.End) + 1}
}

func (e *entry) Overlap(r interval.IntRange) bool {
	return int(e.f.Start) < r.End && int(e.f.End)+1 > r.Start
}

// query matches tree ranges passing the inclusive overlap test.
type query struct{ start, end int }

func (q query) Overlap(r interval.IntRange) bool {
	return r.Start <= q.end && r.End > q.start
}

// Store holds features in memory. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	trees  map[string]*interval.IntTree
	sizes  map[string]uint64
	count  int
	nextID uintptr
}

// New creates an empty store.
func New() *Store {
	return &Store{
		trees: make(map[string]*interval.IntTree),
		sizes: make(map[string]uint64),
	}
}

// Add inserts features. Each is keyed by the bin binning.Assign gives it.
func (s *Store) Add(feats ...*feature.Feature) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	touched := make(map[string]bool)
	for _, f := range feats {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("add %s: %w", f, err)
		}
		if f.End > binning.MaxCoord {
			return fmt.Errorf("add %s: %w", f, binning.ErrUnsupportedRange)
		}

		e := &entry{f: f, id: s.nextID}
		if bin, err := binning.Assign(f.Start, f.End); err == nil {
			e.bin, e.binned = bin, true
		}

		tree, ok := s.trees[f.Chrom]
		if !ok {
			tree = &interval.IntTree{}
			s.trees[f.Chrom] = tree
		}
		if err := tree.Insert(e, true); err != nil {
			return fmt.Errorf("insert %s: %w", f, err)
		}
		touched[f.Chrom] = true
		s.nextID++
		s.count++
	}

	for chrom := range touched {
		s.trees[chrom].AdjustRanges()
	}
	return nil
}

// SetChromSize records a chromosome length.
func (s *Store) SetChromSize(chrom string, size uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sizes[chrom] = size
}

// ChromSize returns a recorded chromosome length.
func (s *Store) ChromSize(chrom string) (uint64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.sizes[chrom]
	return n, ok
}

// Len returns the number of stored features.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Chromosomes returns a sorted list of chromosomes holding features.
func (s *Store) Chromosomes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chroms := make([]string, 0, len(s.trees))
	for chrom := range s.trees {
		chroms = append(chroms, chrom)
	}
	sort.Strings(chroms)
	return chroms
}

// Fetch returns features on chrom passing the inclusive overlap test against
// [start, end), ordered by start. Features whose bin is not in bins are
// skipped; features that could not be binned always pass.
func (s *Store) Fetch(ctx context.Context, chrom string, bins *binning.BinSet, start, end uint64) ([]*feature.Feature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	tree, ok := s.trees[chrom]
	if !ok {
		return nil, nil
	}

	var out []*feature.Feature
	for _, it := range tree.Get(query{start: int(start), end: int(end)}) {
		e := it.(*entry)
		if bins != nil && e.binned && !bins.Contains(e.bin) {
			continue
		}
		if e.f.Overlaps(start, end) {
			out = append(out, e.f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out, nil
}
