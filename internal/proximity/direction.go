package proximity

import (
	"context"
	"fmt"
	"strings"

	"github.com/inodb/vibe-nearest/internal/feature"
	"github.com/inodb/vibe-nearest/internal/metrics"
)

// Direction restricts which side of the query a k-nearest window grows.
type Direction int8

const (
	DirectionNone Direction = iota
	DirectionUpstream
	DirectionDownstream
)

// ParseDirection accepts "", "none", "up", "upstream", "down" and "downstream".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return DirectionNone, nil
	case "up", "upstream":
		return DirectionUpstream, nil
	case "down", "downstream":
		return DirectionDownstream, nil
	}
	return DirectionNone, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

func (d Direction) valid() bool {
	return d >= DirectionNone && d <= DirectionDownstream
}

// reverse swaps upstream and downstream.
func (d Direction) reverse() Direction {
	switch d {
	case DirectionUpstream:
		return DirectionDownstream
	case DirectionDownstream:
		return DirectionUpstream
	}
	return d
}

func (d Direction) String() string {
	switch d {
	case DirectionNone:
		return "none"
	case DirectionUpstream:
		return "upstream"
	case DirectionDownstream:
		return "downstream"
	}
	return fmt.Sprintf("Direction(%d)", int8(d))
}

// Query is the subject of a directional search. Strand decides what
// upstream means; StrandUnknown is treated as plus.
type Query struct {
	Chrom      string
	Start, End uint64
	Strand     feature.Strand
}

// QueryFor builds a query from a feature.
func QueryFor(f *feature.Feature) Query {
	return Query{Chrom: f.Chrom, Start: f.Start, End: f.End, Strand: f.Strand}
}

// Upstream returns the k nearest features upstream of q, relative to its
// strand: before q.Start on the plus strand, after q.End on the minus strand.
func (s *Searcher) Upstream(ctx context.Context, q Query, k int) ([]Hit, error) {
	metrics.SearchesTotal.WithLabelValues("upstream").Inc()
	return s.directional(ctx, q, k, DirectionUpstream)
}

// Downstream returns the k nearest features downstream of q, relative to its
// strand: after q.End on the plus strand, before q.Start on the minus strand.
func (s *Searcher) Downstream(ctx context.Context, q Query, k int) ([]Hit, error) {
	metrics.SearchesTotal.WithLabelValues("downstream").Inc()
	return s.directional(ctx, q, k, DirectionDownstream)
}

func (s *Searcher) directional(ctx context.Context, q Query, k int, dir Direction) ([]Hit, error) {
	grow := dir
	if q.Strand == feature.StrandMinus {
		grow = dir.reverse()
	}

	hits, err := s.kNearest(ctx, q.Chrom, q.Start, q.End, k, grow)
	if err != nil {
		return nil, err
	}

	// The window overshoots: features overlapping the query or bleeding
	// past it on the other side are dropped here.
	kept := hits[:0]
	for _, h := range hits {
		if (grow == DirectionUpstream && h.Start < q.Start) ||
			(grow == DirectionDownstream && h.End > q.End) {
			kept = append(kept, h)
		}
	}
	return kept, nil
}
