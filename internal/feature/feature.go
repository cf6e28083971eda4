// Package feature defines genomic features: half-open intervals on a
// chromosome with an optional strand and free-form attributes.
package feature

import (
	"fmt"

	"github.com/inodb/vibe-nearest/internal/binning"
)

// Strand is the transcriptional direction of a feature.
type Strand int8

const (
	StrandUnknown Strand = 0
	StrandPlus    Strand = 1
	StrandMinus   Strand = -1
)

// ParseStrand converts "+", "-" or "." (and "1"/"-1") to a Strand.
// Anything unrecognized is StrandUnknown.
func ParseStrand(s string) Strand {
	switch s {
	case "+", "1", "+1":
		return StrandPlus
	case "-", "-1":
		return StrandMinus
	}
	return StrandUnknown
}

// String returns "+", "-" or ".".
func (s Strand) String() string {
	switch s {
	case StrandPlus:
		return "+"
	case StrandMinus:
		return "-"
	}
	return "."
}

// Feature is an interval on a chromosome.
type Feature struct {
	Chrom  string // Chromosome name (e.g. chr1)
	Start  uint64 // 0-based, inclusive
	End    uint64 // exclusive
	Strand Strand
	Name   string            // Optional feature name
	Attrs  map[string]string // Store-specific columns
}

// Len returns the number of bases covered by the feature.
func (f *Feature) Len() uint64 {
	return f.End - f.Start
}

// IsReverseStrand returns true if the feature is on the minus strand.
func (f *Feature) IsReverseStrand() bool {
	return f.Strand == StrandMinus
}

// Overlaps reports whether the feature passes the lenient overlap test against
// [start, end): both boundaries are inclusive, so a feature ending exactly at
// start or beginning exactly at end is kept.
func (f *Feature) Overlaps(start, end uint64) bool {
	return f.Start <= end && f.End >= start
}

// Validate checks that Start <= End.
func (f *Feature) Validate() error {
	if f.Start > f.End {
		return &binning.RangeError{Start: f.Start, End: f.End, Err: binning.ErrInvalidInterval}
	}
	return nil
}

// Attr returns an attribute value, or "" if unset.
func (f *Feature) Attr(key string) string {
	if f.Attrs == nil {
		return ""
	}
	return f.Attrs[key]
}

// SetAttr sets an attribute value.
func (f *Feature) SetAttr(key, value string) {
	if f.Attrs == nil {
		f.Attrs = make(map[string]string)
	}
	f.Attrs[key] = value
}

// String formats the feature as chrom:start-end(strand).
func (f *Feature) String() string {
	return fmt.Sprintf("%s:%d-%d(%s)", f.Chrom, f.Start, f.End, f.Strand)
}
