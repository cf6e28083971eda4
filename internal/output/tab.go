// Package output provides search result formatters.
package output

import (
	"bufio"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/inodb/vibe-nearest/internal/proximity"
)

// HitWriter writes search results.
type HitWriter interface {
	WriteHeader() error
	Write(query string, h proximity.Hit) error
	Flush() error
}

// TabWriter writes hits in tab-delimited format.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Query",
			"Chrom",
			"Start",
			"End",
			"Name",
			"Strand",
			"Distance",
			"Attributes",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single hit for the named query.
func (tw *TabWriter) Write(query string, h proximity.Hit) error {
	name := h.Name
	if name == "" {
		name = "-"
	}

	values := []string{
		query,
		h.Chrom,
		strconv.FormatUint(h.Start, 10),
		strconv.FormatUint(h.End, 10),
		name,
		h.Strand.String(),
		strconv.FormatUint(h.Dist, 10),
		formatAttrs(h.Attrs),
	}

	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// formatAttrs renders attributes as key=value pairs sorted by key, or "-".
func formatAttrs(attrs map[string]string) string {
	if len(attrs) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(attrs[k])
	}
	return b.String()
}
