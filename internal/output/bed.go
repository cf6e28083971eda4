package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/inodb/vibe-nearest/internal/proximity"
)

// BEDWriter writes hits as BED6 lines, with the distance in the score
// column. The query is not written.
type BEDWriter struct {
	w *bufio.Writer
}

// NewBEDWriter creates a new BED writer.
func NewBEDWriter(w io.Writer) *BEDWriter {
	return &BEDWriter{w: bufio.NewWriter(w)}
}

// WriteHeader is a no-op; BED has no header line.
func (bw *BEDWriter) WriteHeader() error { return nil }

func (bw *BEDWriter) Write(_ string, h proximity.Hit) error {
	name := h.Name
	if name == "" {
		name = "."
	}
	_, err := fmt.Fprintf(bw.w, "%s\t%d\t%d\t%s\t%d\t%s\n",
		h.Chrom, h.Start, h.End, name, h.Dist, h.Strand)
	return err
}

// Flush flushes any buffered data to the underlying writer.
func (bw *BEDWriter) Flush() error {
	return bw.w.Flush()
}

// NewWriter returns the writer for a format name: "tab" or "bed".
func NewWriter(format string, w io.Writer) (HitWriter, error) {
	switch format {
	case "tab", "":
		return NewTabWriter(w), nil
	case "bed":
		return NewBEDWriter(w), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}
