package feature

import (
	"errors"
	"testing"

	"github.com/inodb/vibe-nearest/internal/binning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStrand(t *testing.T) {
	assert.Equal(t, StrandPlus, ParseStrand("+"))
	assert.Equal(t, StrandPlus, ParseStrand("1"))
	assert.Equal(t, StrandMinus, ParseStrand("-"))
	assert.Equal(t, StrandMinus, ParseStrand("-1"))
	assert.Equal(t, StrandUnknown, ParseStrand("."))
	assert.Equal(t, StrandUnknown, ParseStrand(""))

	assert.Equal(t, "+", StrandPlus.String())
	assert.Equal(t, "-", StrandMinus.String())
	assert.Equal(t, ".", StrandUnknown.String())
}

func TestFeature_Overlaps(t *testing.T) {
	f := &Feature{Chrom: "chr1", Start: 10, End: 20}

	assert.True(t, f.Overlaps(20, 30), "end boundary is inclusive")
	assert.True(t, f.Overlaps(0, 10), "start boundary is inclusive")
	assert.True(t, f.Overlaps(12, 15))
	assert.False(t, f.Overlaps(21, 30))

	g := &Feature{Chrom: "chr1", Start: 10, End: 19}
	assert.False(t, g.Overlaps(20, 30))
}

func TestFeature_Validate(t *testing.T) {
	require.NoError(t, (&Feature{Start: 5, End: 5}).Validate())

	err := (&Feature{Start: 6, End: 5}).Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, binning.ErrInvalidInterval))
}

func TestFeature_Attrs(t *testing.T) {
	f := &Feature{}
	assert.Equal(t, "", f.Attr("name2"))
	f.SetAttr("name2", "KRAS")
	assert.Equal(t, "KRAS", f.Attr("name2"))
}

func TestParseRegion(t *testing.T) {
	tests := []struct {
		in     string
		chrom  string
		start  uint64
		end    uint64
		strand Strand
	}{
		{"chr1:100-200", "chr1", 100, 200, StrandUnknown},
		{"chr12:25,205,246-25,250,936:-", "chr12", 25205246, 25250936, StrandMinus},
		{"X:0-0:+", "X", 0, 0, StrandPlus},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := ParseRegion(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.chrom, f.Chrom)
			assert.Equal(t, tt.start, f.Start)
			assert.Equal(t, tt.end, f.End)
			assert.Equal(t, tt.strand, f.Strand)
		})
	}
}

func TestParseRegion_Invalid(t *testing.T) {
	for _, in := range []string{"", "chr1", "chr1:100", "chr1:a-200", ":1-2", "chr1:1-2:+:x"} {
		_, err := ParseRegion(in)
		assert.Error(t, err, in)
	}

	_, err := ParseRegion("chr1:200-100")
	require.Error(t, err)
	assert.ErrorIs(t, err, binning.ErrInvalidInterval)
}
