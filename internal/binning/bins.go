// Package binning implements the UCSC hierarchical binning scheme used to
// index genomic intervals. Bins are fixed cells at five resolutions, from
// 128kb up to 512Mb, plus the genome-wide bin 1 included in every set.
package binning

import (
	"errors"
	"fmt"
)

const (
	firstShift = 17 // finest bin is 2^17 = 128kb
	nextShift  = 3  // each coarser level is 8x wider

	// MaxRange is the widest interval the standard bin offsets can index.
	MaxRange uint64 = 1 << 29

	// MaxCoord bounds coordinates so that every bin ID fits a uint32.
	MaxCoord uint64 = 1 << 48

	// GenomeBin is included in every bin set.
	GenomeBin BinID = 1
)

// offsets are applied finest level first; start and end cells shift right by
// nextShift after each one.
var offsets = [...]uint64{585, 73, 9, 1, 0}

var (
	// ErrUnsupportedRange is returned for intervals of MaxRange bases or more.
	// Wider ranges need an extra offset level that is not implemented.
	ErrUnsupportedRange = errors.New("unsupported range")

	// ErrInvalidInterval is returned when start > end.
	ErrInvalidInterval = errors.New("invalid interval")
)

// RangeError reports the interval that could not be binned.
type RangeError struct {
	Start, End uint64
	Err        error
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("range %d-%d: %v", e.Start, e.End, e.Err)
}

func (e *RangeError) Unwrap() error { return e.Err }

// BinID identifies a bin. It carries no meaning beyond equality.
type BinID uint32

// CheckRange validates an interval for binning.
func CheckRange(start, end uint64) error {
	switch {
	case start > end:
		return &RangeError{Start: start, End: end, Err: ErrInvalidInterval}
	case end-start >= MaxRange, end > MaxCoord:
		return &RangeError{Start: start, End: end, Err: ErrUnsupportedRange}
	}
	return nil
}

// BinsForRange returns every bin that may hold a feature overlapping
// [start, end). The result always contains GenomeBin.
func BinsForRange(start, end uint64) (*BinSet, error) {
	if err := CheckRange(start, end); err != nil {
		return nil, err
	}
	s, e := cells(start, end)
	return binsForCells(s, e), nil
}

// QueryBins returns the bins for the one-base-padded extent [start-1, end+1).
// Stores that key features with Assign and filter with an inclusive overlap
// test need the padding: a feature starting exactly at end (or ending exactly
// at start) may sit in the neighbouring finest cell.
func QueryBins(start, end uint64) (*BinSet, error) {
	if err := CheckRange(start, end); err != nil {
		return nil, err
	}
	if start > 0 {
		start--
	}
	s, e := cells(start, end+1)
	return binsForCells(s, e), nil
}

// Assign returns the finest bin whose cell fully contains [start, end). This
// is the key UCSC tables store in their bin column.
func Assign(start, end uint64) (BinID, error) {
	if err := CheckRange(start, end); err != nil {
		return 0, err
	}
	s, e := cells(start, end)
	for _, off := range offsets {
		if s == e {
			return BinID(off + s), nil
		}
		s >>= nextShift
		e >>= nextShift
	}
	return 0, &RangeError{Start: start, End: end, Err: ErrUnsupportedRange}
}

// cells returns the finest-level cells holding the first and last base of
// [start, end). An empty interval maps to the cell holding start.
func cells(start, end uint64) (s, e uint64) {
	s = start >> firstShift
	e = s
	if end > start {
		e = (end - 1) >> firstShift
	}
	return s, e
}

func binsForCells(s, e uint64) *BinSet {
	set := NewBinSet(GenomeBin)
	for _, off := range offsets {
		set.bm.AddRange(off+s, off+e+1)
		s >>= nextShift
		e >>= nextShift
	}
	return set
}
