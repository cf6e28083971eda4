package proximity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiStore_ConcatenatesInStoreOrder(t *testing.T) {
	genes := newSliceStore(feat("gene", 100, 200))
	snps := newSliceStore(feat("snp1", 150, 151), feat("snp2", 180, 181))
	m := NewMultiStore(genes, snps)

	feats, err := m.Fetch(context.Background(), "chr1", nil, 100, 200)
	require.NoError(t, err)
	require.Len(t, feats, 3)
	assert.Equal(t, "gene", feats[0].Name)
	assert.Equal(t, "snp1", feats[1].Name)
	assert.Equal(t, "snp2", feats[2].Name)
}

func TestMultiStore_Error(t *testing.T) {
	ok := newSliceStore(feat("gene", 100, 200))
	bad := newSliceStore()
	bad.err = errors.New("table missing")
	m := NewMultiStore(ok, bad)
	m.SetLimit(1)

	_, err := m.Fetch(context.Background(), "chr1", nil, 100, 200)
	assert.ErrorIs(t, err, bad.err)

	s := NewSearcher(m)
	_, err = s.KNearest(context.Background(), "chr1", 100, 200, 1, DirectionNone)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}

func TestMultiStore_ChromSize(t *testing.T) {
	m := NewMultiStore(
		newSliceStore(),
		&sizedStore{sliceStore: newSliceStore(), sizes: map[string]uint64{"chr1": 1000}},
		&sizedStore{sliceStore: newSliceStore(), sizes: map[string]uint64{"chr1": 3000}},
	)

	n, ok := m.ChromSize("chr1")
	assert.True(t, ok)
	assert.Equal(t, uint64(3000), n)

	_, ok = m.ChromSize("chrX")
	assert.False(t, ok)
}

func TestMultiStore_NearestAcrossStores(t *testing.T) {
	m := NewMultiStore(
		newSliceStore(feat("gene", 100, 200)),
		newSliceStore(feat("snp", 650, 651)),
	)
	s := NewSearcher(m)

	hits, err := s.KNearest(context.Background(), "chr1", 500, 600, 1, DirectionNone)
	require.NoError(t, err)
	assert.Equal(t, []string{"snp"}, names(hits))
}
