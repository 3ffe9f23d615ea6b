package document

import "fmt"

// Footnote is one resolved footnote in traversal order.
type Footnote struct {
	Index int
	ID    string // empty for inline footnotes
	Text  string
}

// Document is the assembled intermediate representation handed to the emitter.
type Document struct {
	Blocks []Block

	// Footnotes in traversal order. Reference sites in block text are
	// replaced by markers (see FootnoteMarker).
	Footnotes []Footnote
	// FootnotesAtEnd selects the moved-to-end placement mode.
	FootnotesAtEnd bool

	Warnings []Warning
}

// footnote markers embedded in block text by the assembler; NUL delimiters
// cannot occur in source text after preprocessing.
const (
	fnMarkerPrefix = "\x00fn:"
	fnMarkerSuffix = "\x00"
)

// FootnoteMarker returns the in-text marker for footnote n.
func FootnoteMarker(n int) string {
	return fmt.Sprintf("%s%d%s", fnMarkerPrefix, n, fnMarkerSuffix)
}
