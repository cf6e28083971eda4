package proximity

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
)

// Op selects the search a Request runs.
type Op int8

const (
	OpOverlap Op = iota
	OpNearest
	OpUpstream
	OpDownstream
)

// ParseOp converts a command name to an Op.
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(s) {
	case "overlap":
		return OpOverlap, nil
	case "nearest", "knearest":
		return OpNearest, nil
	case "upstream", "up":
		return OpUpstream, nil
	case "downstream", "down":
		return OpDownstream, nil
	}
	return OpOverlap, fmt.Errorf("unknown search operation %q", s)
}

func (o Op) String() string {
	switch o {
	case OpOverlap:
		return "overlap"
	case OpNearest:
		return "nearest"
	case OpUpstream:
		return "upstream"
	case OpDownstream:
		return "downstream"
	}
	return fmt.Sprintf("Op(%d)", int8(o))
}

// Request describes a single search.
type Request struct {
	Op        Op
	Query     Query
	K         int       // ignored by OpOverlap
	Direction Direction // OpNearest only
}

// Do runs a request. Overlap results are returned as hits with their
// distance, which is always 0.
func (s *Searcher) Do(ctx context.Context, r Request) ([]Hit, error) {
	q := r.Query
	switch r.Op {
	case OpOverlap:
		feats, err := s.Overlap(ctx, q.Chrom, q.Start, q.End)
		if err != nil {
			return nil, err
		}
		return rank(feats, q.Start, q.End), nil
	case OpNearest:
		return s.KNearest(ctx, q.Chrom, q.Start, q.End, r.K, r.Direction)
	case OpUpstream:
		return s.Upstream(ctx, q, r.K)
	case OpDownstream:
		return s.Downstream(ctx, q, r.K)
	}
	return nil, fmt.Errorf("unknown search operation %d", r.Op)
}

// WorkItem holds a request ready for searching.
type WorkItem struct {
	Seq     int
	Request Request
	Extra   any // caller-specific data (e.g. the input region string)
}

// WorkResult holds the search output for a single request.
type WorkResult struct {
	Seq     int
	Request Request
	Hits    []Hit
	Err     error
	Extra   any
}

// ParallelSearch runs work items using a pool of workers.
// Results are sent to the returned channel in arrival order (not sequence order).
// Use OrderedCollect to consume results in sequence-number order.
// If workers is 0, runtime.NumCPU() is used.
func (s *Searcher) ParallelSearch(ctx context.Context, items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range items {
				hits, err := s.Do(ctx, item.Request)
				results <- WorkResult{
					Seq:     item.Seq,
					Request: item.Request,
					Hits:    hits,
					Err:     err,
					Extra:   item.Extra,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
