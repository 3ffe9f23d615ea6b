// Package document defines the intermediate representation produced by the
// parser and consumed by the emitter, plus the document-level transforms
// (footnote placement, heading numbering, TOC filtering) applied between
// the two.
package document

import "fmt"

// BlockKind discriminates Block variants.
type BlockKind int

const (
	KindHeading BlockKind = iota
	KindParagraph
	KindList
	KindTable
	KindCode
	KindContainer
	KindFootnoteDef
	KindImage
	KindRule
	KindRaw
)

// Block is one element of the ordered document sequence.
type Block interface {
	Kind() BlockKind
}

// Heading is an ATX heading. Number and InTOC are filled by the assembler.
type Heading struct {
	Level  int
	Text   string
	Number string // hierarchical label like "2.1.3", empty when numbering is off
	InTOC  bool
}

func (*Heading) Kind() BlockKind { return KindHeading }

// Paragraph is a run of inline text.
type Paragraph struct {
	Text string
}

func (*Paragraph) Kind() BlockKind { return KindParagraph }

// List is an ordered or unordered list. Items may nest.
type List struct {
	Ordered bool
	Items   []ListItem
}

func (*List) Kind() BlockKind { return KindList }

// ListItem is one list entry with an optional sublist.
type ListItem struct {
	Text string
	Sub  *List
}

// Alignment of one table column.
type Alignment int

const (
	AlignDefault Alignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Table is a pipe table with an optional caption.
type Table struct {
	Header  []string
	Align   []Alignment
	Rows    [][]string
	Caption string
}

func (*Table) Kind() BlockKind { return KindTable }

// CodeBlock is a fenced code block, executable when Props.Execute is set.
// Line is the 1-based source line of the opening fence.
type CodeBlock struct {
	Language string
	Source   string
	Props    Props
	Line     int

	CacheKey string // derived by the directive processor
	Output   Output
}

func (*CodeBlock) Kind() BlockKind { return KindCode }

// Container styles beyond the severity alerts.
const (
	ContainerQuote  = "quote"
	ContainerBox    = "box"
	ContainerCenter = "center"
	ContainerRight  = "right"
)

// AlertStyles are the recognized severity-tagged container keywords.
var AlertStyles = map[string]bool{
	"note":      true,
	"tip":       true,
	"warning":   true,
	"caution":   true,
	"important": true,
}

// Container is an alert, box, alignment, or quote region holding nested blocks.
type Container struct {
	Style    string
	Children []Block
}

func (*Container) Kind() BlockKind { return KindContainer }

// FootnoteDef is a reference-style footnote definition. The assembler
// resolves these into Footnotes and removes them from the block stream.
type FootnoteDef struct {
	ID   string
	Text string
}

func (*FootnoteDef) Kind() BlockKind { return KindFootnoteDef }

// Image is a block-level image reference.
type Image struct {
	Alt   string
	Path  string
	Title string

	Resolved string // build-dir relative path, set by the asset resolver
	Missing  bool   // asset absent, render a placeholder
}

func (*Image) Kind() BlockKind { return KindImage }

// Rule is a horizontal rule.
type Rule struct{}

func (*Rule) Kind() BlockKind { return KindRule }

// Raw is passthrough typesetting markup emitted verbatim.
type Raw struct {
	Text string
}

func (*Raw) Kind() BlockKind { return KindRaw }

// Warning is a non-fatal diagnostic carried alongside the document.
type Warning struct {
	Line    int // 0 when not tied to a source line
	Message string
}

func (w Warning) String() string {
	if w.Line > 0 {
		return fmt.Sprintf("line %d: %s", w.Line, w.Message)
	}
	return w.Message
}
