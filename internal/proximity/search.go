// Package proximity implements overlap and nearest-feature searches over a
// FeatureStore. Searches are stateless: every call computes its own bin sets
// and windows, so a Searcher may be shared between goroutines as long as its
// store supports concurrent reads.
package proximity

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/inodb/vibe-nearest/internal/binning"
	"github.com/inodb/vibe-nearest/internal/feature"
	"github.com/inodb/vibe-nearest/internal/metrics"
)

// Config controls window expansion in k-nearest searches.
type Config struct {
	MaxIterations int    // windows queried before giving up
	InitialStep   uint64 // first expansion step in bases
}

// DefaultConfig returns the standard expansion schedule.
func DefaultConfig() Config {
	return Config{
		MaxIterations: 32,
		InitialStep:   350,
	}
}

// Searcher runs searches against a FeatureStore.
type Searcher struct {
	store  FeatureStore
	cfg    Config
	logger *zap.Logger
}

// NewSearcher creates a searcher over store with the default config.
func NewSearcher(store FeatureStore) *Searcher {
	return &Searcher{
		store:  store,
		cfg:    DefaultConfig(),
		logger: zap.NewNop(),
	}
}

// SetConfig replaces the expansion config. Zero fields keep their defaults.
func (s *Searcher) SetConfig(cfg Config) {
	def := DefaultConfig()
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = def.MaxIterations
	}
	if cfg.InitialStep == 0 {
		cfg.InitialStep = def.InitialStep
	}
	s.cfg = cfg
}

// Config returns the active expansion config.
func (s *Searcher) Config() Config {
	return s.cfg
}

// SetLogger sets the logger for debug and warning messages.
func (s *Searcher) SetLogger(l *zap.Logger) {
	s.logger = l
}

// Overlap returns the features on chrom passing the inclusive overlap test
// against [start, end). Order is whatever the store returns.
func (s *Searcher) Overlap(ctx context.Context, chrom string, start, end uint64) ([]*feature.Feature, error) {
	metrics.SearchesTotal.WithLabelValues("overlap").Inc()
	return s.overlap(ctx, chrom, start, end)
}

func (s *Searcher) overlap(ctx context.Context, chrom string, start, end uint64) ([]*feature.Feature, error) {
	bins, err := binning.QueryBins(start, end)
	if err != nil {
		return nil, err
	}

	t := time.Now()
	feats, err := s.store.Fetch(ctx, chrom, bins, start, end)
	metrics.StoreFetchDuration.Observe(time.Since(t).Seconds())
	if err != nil {
		metrics.StoreFetchErrorsTotal.Inc()
		return nil, &StoreError{Chrom: chrom, Start: start, End: end, Err: err}
	}
	return feats, nil
}

func (s *Searcher) chromSize(chrom string) (uint64, bool) {
	if cs, ok := s.store.(ChromSizer); ok {
		return cs.ChromSize(chrom)
	}
	return 0, false
}
