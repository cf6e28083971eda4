package feature

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseRegion parses a region string of the form chrom:start-end with an
// optional trailing :strand (e.g. "chr1:1000-2000:-"). Commas in numbers are
// ignored. Coordinates are 0-based half-open.
func ParseRegion(s string) (*Feature, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 || parts[0] == "" {
		return nil, fmt.Errorf("invalid region %q: expected chrom:start-end[:strand]", s)
	}

	startStr, endStr, ok := strings.Cut(parts[1], "-")
	if !ok {
		return nil, fmt.Errorf("invalid region %q: missing '-'", s)
	}

	start, err := parseCoord(startStr)
	if err != nil {
		return nil, fmt.Errorf("invalid region start %q: %w", startStr, err)
	}
	end, err := parseCoord(endStr)
	if err != nil {
		return nil, fmt.Errorf("invalid region end %q: %w", endStr, err)
	}

	f := &Feature{Chrom: parts[0], Start: start, End: end}
	if len(parts) == 3 {
		f.Strand = ParseStrand(parts[2])
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func parseCoord(s string) (uint64, error) {
	return strconv.ParseUint(strings.ReplaceAll(s, ",", ""), 10, 64)
}
