package proximity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-nearest/internal/feature"
)

func TestParseDirection(t *testing.T) {
	for in, want := range map[string]Direction{
		"":           DirectionNone,
		"none":       DirectionNone,
		"up":         DirectionUpstream,
		"Upstream":   DirectionUpstream,
		"down":       DirectionDownstream,
		"downstream": DirectionDownstream,
	} {
		got, err := ParseDirection(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDirection("sideways")
	assert.ErrorIs(t, err, ErrInvalidDirection)

	assert.Equal(t, "upstream", DirectionUpstream.String())
	assert.Equal(t, DirectionDownstream, DirectionUpstream.reverse())
	assert.Equal(t, DirectionNone, DirectionNone.reverse())
}

func directionalStore() *sliceStore {
	return newSliceStore(
		feat("left", 100, 200),
		feat("overlap", 550, 560),
		feat("right", 900, 1000),
	)
}

func TestUpstream_PlusStrand(t *testing.T) {
	s := NewSearcher(directionalStore())

	q := Query{Chrom: "chr1", Start: 500, End: 600, Strand: feature.StrandPlus}
	hits, err := s.Upstream(context.Background(), q, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"left"}, names(hits), "overlapping feature is filtered out")
}

func TestUpstream_OverlapSatisfiesK(t *testing.T) {
	// The overlapping feature fills k before any growth, then fails the
	// directional filter.
	s := NewSearcher(directionalStore())

	q := Query{Chrom: "chr1", Start: 500, End: 600}
	hits, err := s.Upstream(context.Background(), q, 1)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestDownstream_PlusStrand(t *testing.T) {
	s := NewSearcher(directionalStore())

	q := Query{Chrom: "chr1", Start: 500, End: 600, Strand: feature.StrandPlus}
	hits, err := s.Downstream(context.Background(), q, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"right"}, names(hits))
}

func TestUpstream_MinusStrandSwapsGrowth(t *testing.T) {
	minusStore := newSliceStore(feat("left", 100, 200), feat("right", 900, 1000))
	plusStore := newSliceStore(feat("left", 100, 200), feat("right", 900, 1000))

	minus := &feature.Feature{Chrom: "chr1", Start: 500, End: 600, Strand: feature.StrandMinus}
	plus := &feature.Feature{Chrom: "chr1", Start: 500, End: 600, Strand: feature.StrandPlus}

	up, err := NewSearcher(minusStore).Upstream(context.Background(), QueryFor(minus), 1)
	require.NoError(t, err)
	down, err := NewSearcher(plusStore).Downstream(context.Background(), QueryFor(plus), 1)
	require.NoError(t, err)

	assert.Equal(t, plusStore.windows, minusStore.windows, "same window growth")
	assert.Equal(t, [][2]uint64{{500, 600}, {500, 950}}, minusStore.windows)

	assert.Equal(t, []string{"right"}, names(up))
	assert.Equal(t, []string{"right"}, names(down))
	for _, h := range up {
		assert.Greater(t, h.End, minus.End)
	}
}

func TestDownstream_MinusStrand(t *testing.T) {
	store := newSliceStore(feat("left", 100, 200), feat("right", 900, 1000))
	s := NewSearcher(store)

	q := Query{Chrom: "chr1", Start: 500, End: 600, Strand: feature.StrandMinus}
	hits, err := s.Downstream(context.Background(), q, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"left"}, names(hits))
	for _, w := range store.windows {
		assert.Equal(t, uint64(600), w[1], "minus-strand downstream grows toward the start")
	}
}

func TestUpstream_StartOfChromosome(t *testing.T) {
	store := newSliceStore(feat("a", 0, 5), feat("down", 700, 800))
	s := NewSearcher(store)

	hits, err := s.Upstream(context.Background(), Query{Chrom: "chr1", Start: 0, End: 10}, 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Len(t, store.windows, 1, "no growth past position 0")

	store = newSliceStore(feat("a", 100, 200), feat("b", 300, 400), feat("down", 700, 800))
	s = NewSearcher(store)
	hits, err = s.Upstream(context.Background(), Query{Chrom: "chr1", Start: 500, End: 600}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, names(hits), "fewer than k upstream features")
}
