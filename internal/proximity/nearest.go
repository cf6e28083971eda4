package proximity

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/inodb/vibe-nearest/internal/binning"
	"github.com/inodb/vibe-nearest/internal/feature"
	"github.com/inodb/vibe-nearest/internal/metrics"
)

// Reasons a k-nearest search stops before finding k candidates.
const (
	stopChromStart    = "chrom_start"
	stopChromEnd      = "chrom_end"
	stopMaxRange      = "max_range"
	stopMaxIterations = "max_iterations"
)

// Hit is a feature annotated with its distance to the query. Dist is 0 when
// the feature overlaps the query, otherwise the gap to the nearer edge.
type Hit struct {
	*feature.Feature
	Dist uint64
}

// Distance returns the gap between f and [start, end), or 0 if they overlap.
func Distance(f *feature.Feature, start, end uint64) uint64 {
	switch {
	case f.End < start:
		return start - f.End
	case f.Start > end:
		return f.Start - end
	}
	return 0
}

// KNearest returns the k features on chrom closest to [start, end), growing
// the query window until at least k candidates are found. dir restricts
// growth to the start side (upstream) or end side (downstream) without regard
// to strand.
//
// Features tied with the k-th closest are all returned, so the result may be
// longer than k. It may also be shorter when the window cannot grow any
// further: an upstream search reaching position 0, a window reaching the end
// of a chromosome the store knows the size of, or a window reaching the
// widest range the bin index supports.
func (s *Searcher) KNearest(ctx context.Context, chrom string, start, end uint64, k int, dir Direction) ([]Hit, error) {
	metrics.SearchesTotal.WithLabelValues("nearest").Inc()
	return s.kNearest(ctx, chrom, start, end, k, dir)
}

func (s *Searcher) kNearest(ctx context.Context, chrom string, start, end uint64, k int, dir Direction) ([]Hit, error) {
	if !dir.valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, dir)
	}
	if k < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCount, k)
	}
	if err := binning.CheckRange(start, end); err != nil {
		return nil, err
	}
	if k == 0 {
		return nil, nil
	}

	feats, err := s.overlap(ctx, chrom, start, end)
	if err != nil {
		return nil, err
	}

	size, hasSize := s.chromSize(chrom)
	qs, qe := start, end
	iter, change := 1, s.cfg.InitialStep
	stop := ""

	for len(feats) < k {
		if dir == DirectionUpstream && qs == 0 {
			stop = stopChromStart
			break
		}
		if iter >= s.cfg.MaxIterations {
			stop = stopMaxIterations
			break
		}

		ns, ne := qs, qe
		if dir != DirectionDownstream {
			ns = qs - min(qs, change)
		}
		if dir != DirectionUpstream {
			ne = qe + min(binning.MaxCoord-qe, change)
			if hasSize && ne > size {
				ne = max(size, end)
			}
		}
		ns, ne = clampWidth(ns, ne, start, end)
		if ns == qs && ne == qe {
			stop = stopMaxRange
			if hasSize && qe >= size {
				stop = stopChromEnd
			}
			break
		}

		qs, qe = ns, ne
		iter++
		change = min(change*uint64(iter+5), binning.MaxRange)

		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.logger.Debug("expanding search window",
			zap.String("chrom", chrom),
			zap.Uint64("start", qs),
			zap.Uint64("end", qe),
			zap.Int("k", k),
			zap.Int("found", len(feats)),
			zap.Int("iteration", iter))

		feats, err = s.overlap(ctx, chrom, qs, qe)
		if err != nil {
			return nil, err
		}
	}

	metrics.SearchIterations.Observe(float64(iter))
	if stop != "" {
		metrics.SearchExhaustedTotal.WithLabelValues(stop).Inc()
		s.logger.Debug("search window exhausted",
			zap.String("chrom", chrom),
			zap.Uint64("start", start),
			zap.Uint64("end", end),
			zap.Int("k", k),
			zap.Int("found", len(feats)),
			zap.String("reason", stop))
	}

	return truncate(rank(feats, start, end), k), nil
}

// clampWidth shrinks a grown window to fewer than binning.MaxRange bases,
// giving back growth on the end side first. [start, end) always stays inside.
func clampWidth(qs, qe, start, end uint64) (uint64, uint64) {
	const maxWidth = binning.MaxRange - 1
	if qe-qs <= maxWidth {
		return qs, qe
	}
	excess := qe - qs - maxWidth
	give := min(excess, qe-end)
	qe -= give
	qs += excess - give
	return qs, qe
}

// rank annotates features with their distance and sorts them, keeping store
// order among equal distances.
func rank(feats []*feature.Feature, start, end uint64) []Hit {
	hits := make([]Hit, len(feats))
	for i, f := range feats {
		hits[i] = Hit{Feature: f, Dist: Distance(f, start, end)}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Dist < hits[j].Dist
	})
	return hits
}

// truncate keeps the k closest hits plus every hit tied with the k-th.
// With fewer than k hits, all are kept.
func truncate(hits []Hit, k int) []Hit {
	if k >= len(hits) {
		return hits
	}
	ndist := hits[k-1].Dist
	for k < len(hits) && hits[k].Dist == ndist {
		k++
	}
	return hits[:k]
}
