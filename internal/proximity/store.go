package proximity

import (
	"context"
	"errors"
	"fmt"

	"github.com/inodb/vibe-nearest/internal/binning"
	"github.com/inodb/vibe-nearest/internal/feature"
)

// FeatureStore fetches features on chrom that pass the inclusive overlap test
// feature.Start <= end && feature.End >= start.
//
// bins is advisory: a store that keys features by bin may use it to prune
// candidates, any other store may ignore it. A nil bins means no bin filter.
type FeatureStore interface {
	Fetch(ctx context.Context, chrom string, bins *binning.BinSet, start, end uint64) ([]*feature.Feature, error)
}

// ChromSizer is implemented by stores that know chromosome lengths. Searches
// use it to stop growing a window past the end of a chromosome.
type ChromSizer interface {
	ChromSize(chrom string) (uint64, bool)
}

var (
	// ErrStoreUnavailable marks failures returned by a FeatureStore.
	ErrStoreUnavailable = errors.New("feature store unavailable")

	// ErrInvalidDirection is returned for a direction outside none/upstream/downstream.
	ErrInvalidDirection = errors.New("invalid direction")

	// ErrInvalidCount is returned for a negative k.
	ErrInvalidCount = errors.New("invalid feature count")
)

// StoreError wraps the error a FeatureStore returned. Both ErrStoreUnavailable
// and the original error match with errors.Is.
type StoreError struct {
	Chrom      string
	Start, End uint64
	Err        error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("fetch %s:%d-%d: %v", e.Chrom, e.Start, e.End, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Err}
}
