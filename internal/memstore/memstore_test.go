package memstore

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/vibe-nearest/internal/binning"
	"github.com/inodb/vibe-nearest/internal/feature"
	"github.com/inodb/vibe-nearest/internal/proximity"
)

func feat(chrom, name string, start, end uint64) *feature.Feature {
	return &feature.Feature{Chrom: chrom, Name: name, Start: start, End: end}
}

func featureNames(feats []*feature.Feature) []string {
	out := make([]string, len(feats))
	for i, f := range feats {
		out[i] = f.Name
	}
	return out
}

func TestStore_Empty(t *testing.T) {
	s := New()
	feats, err := s.Fetch(context.Background(), "chr1", nil, 0, 100)
	require.NoError(t, err)
	assert.Empty(t, feats)
	assert.Equal(t, 0, s.Len())
}

func TestStore_FetchInclusiveBoundaries(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(
		feat("chr1", "touching", 10, 20),
		feat("chr1", "short", 10, 19),
		feat("chr1", "after", 30, 40),
		feat("chr1", "beyond", 31, 40),
		feat("chr2", "other", 20, 30),
	))
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, []string{"chr1", "chr2"}, s.Chromosomes())

	feats, err := s.Fetch(context.Background(), "chr1", nil, 20, 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"touching", "after"}, featureNames(feats))
}

func TestStore_ZeroLengthFeature(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(feat("chr1", "insertion", 100, 100)))

	feats, err := s.Fetch(context.Background(), "chr1", nil, 100, 100)
	require.NoError(t, err)
	assert.Len(t, feats, 1)

	feats, err = s.Fetch(context.Background(), "chr1", nil, 101, 200)
	require.NoError(t, err)
	assert.Empty(t, feats)
}

func TestStore_BinFilter(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(feat("chr1", "a", 100, 200)))

	bins, err := binning.QueryBins(100, 200)
	require.NoError(t, err)
	feats, err := s.Fetch(context.Background(), "chr1", bins, 100, 200)
	require.NoError(t, err)
	assert.Len(t, feats, 1)

	// a set without the feature's bin prunes it
	feats, err = s.Fetch(context.Background(), "chr1", binning.NewBinSet(binning.GenomeBin), 100, 200)
	require.NoError(t, err)
	assert.Empty(t, feats)
}

func TestStore_UnbinnedFeatureAlwaysPasses(t *testing.T) {
	s := New()
	// straddles the first 512Mb cell
	require.NoError(t, s.Add(feat("chr1", "wide", binning.MaxRange-10, binning.MaxRange+10)))

	feats, err := s.Fetch(context.Background(), "chr1", binning.NewBinSet(binning.GenomeBin), binning.MaxRange, binning.MaxRange+1)
	require.NoError(t, err)
	assert.Len(t, feats, 1)
}

func TestStore_AddInvalid(t *testing.T) {
	s := New()
	err := s.Add(feat("chr1", "bad", 20, 10))
	assert.ErrorIs(t, err, binning.ErrInvalidInterval)

	err = s.Add(feat("chr1", "huge", 0, binning.MaxCoord+1))
	assert.ErrorIs(t, err, binning.ErrUnsupportedRange)
}

func TestStore_ContextCanceled(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Fetch(ctx, "chr1", nil, 0, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_MatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	var all []*feature.Feature
	for i := 0; i < 500; i++ {
		start := uint64(rng.Int63n(2_000_000))
		f := feat("chr1", fmt.Sprintf("f%d", i), start, start+uint64(rng.Int63n(300_000)))
		all = append(all, f)
	}
	s := New()
	require.NoError(t, s.Add(all...))

	for i := 0; i < 200; i++ {
		start := uint64(rng.Int63n(2_200_000))
		end := start + uint64(rng.Int63n(50_000))

		var want []string
		for _, f := range all {
			if f.Overlaps(start, end) {
				want = append(want, f.Name)
			}
		}

		bins, err := binning.QueryBins(start, end)
		require.NoError(t, err)
		got, err := s.Fetch(context.Background(), "chr1", bins, start, end)
		require.NoError(t, err)
		assert.ElementsMatch(t, want, featureNames(got), "query [%d,%d)", start, end)
	}
}

func TestStore_ChromSize(t *testing.T) {
	s := New()
	_, ok := s.ChromSize("chr1")
	assert.False(t, ok)

	s.SetChromSize("chr1", 248956422)
	n, ok := s.ChromSize("chr1")
	assert.True(t, ok)
	assert.Equal(t, uint64(248956422), n)
}

func TestStore_ConcurrentSearches(t *testing.T) {
	s := New()
	for i := uint64(0); i < 100; i++ {
		require.NoError(t, s.Add(feat("chr1", fmt.Sprintf("f%d", i), i*1000, i*1000+100)))
	}
	searcher := proximity.NewSearcher(s)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			start := uint64(i*5000 + 400)
			hits, err := searcher.KNearest(context.Background(), "chr1", start, start+10, 1, proximity.DirectionNone)
			assert.NoError(t, err)
			assert.NotEmpty(t, hits)
		}(i)
	}
	wg.Wait()
}

func TestSearcher_TieScenarios(t *testing.T) {
	ctx := context.Background()

	s := New()
	require.NoError(t, s.Add(
		feat("chr1", "left5", 900, 995),
		feat("chr1", "right5", 1105, 1200),
		feat("chr1", "right7", 1107, 1150),
		feat("chr1", "left10", 800, 990),
	))
	hits, err := proximity.NewSearcher(s).KNearest(ctx, "chr1", 1000, 1100, 2, proximity.DirectionNone)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	s = New()
	require.NoError(t, s.Add(
		feat("chr1", "left3", 900, 997),
		feat("chr1", "left5", 900, 995),
		feat("chr1", "right5", 1105, 1200),
		feat("chr1", "right9", 1109, 1150),
	))
	hits, err = proximity.NewSearcher(s).KNearest(ctx, "chr1", 1000, 1100, 2, proximity.DirectionNone)
	require.NoError(t, err)
	assert.Len(t, hits, 3)
}

func TestSearcher_StopsAtKnownChromEnd(t *testing.T) {
	s := New()
	require.NoError(t, s.Add(feat("chr1", "a", 100, 200)))
	s.SetChromSize("chr1", 5000)

	hits, err := proximity.NewSearcher(s).Downstream(context.Background(),
		proximity.Query{Chrom: "chr1", Start: 1000, End: 1100, Strand: feature.StrandPlus}, 1)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
