package binning

import (
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// BinSet is an unordered set of bin IDs backed by a roaring bitmap.
type BinSet struct {
	bm *roaring.Bitmap
}

// NewBinSet creates a set holding ids.
func NewBinSet(ids ...BinID) *BinSet {
	bm := roaring.New()
	for _, id := range ids {
		bm.Add(uint32(id))
	}
	return &BinSet{bm: bm}
}

// Contains reports whether id is in the set.
func (s *BinSet) Contains(id BinID) bool {
	return s.bm.Contains(uint32(id))
}

// Len returns the number of bins.
func (s *BinSet) Len() int {
	return int(s.bm.GetCardinality())
}

// Intersects reports whether the two sets share a bin.
func (s *BinSet) Intersects(other *BinSet) bool {
	return s.bm.Intersects(other.bm)
}

// IDs returns the bins in ascending order.
func (s *BinSet) IDs() []BinID {
	raw := s.bm.ToArray()
	ids := make([]BinID, len(raw))
	for i, v := range raw {
		ids[i] = BinID(v)
	}
	return ids
}

// Clone returns an independent copy.
func (s *BinSet) Clone() *BinSet {
	return &BinSet{bm: s.bm.Clone()}
}

// String renders the set as a comma-separated list, e.g. "1,9,73,585".
func (s *BinSet) String() string {
	var b strings.Builder
	it := s.bm.Iterator()
	for it.HasNext() {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(it.Next()), 10))
	}
	return b.String()
}
