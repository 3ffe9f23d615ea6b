package document

import (
	"fmt"
	"regexp"
	"strings"
)

// Options control the document-level transforms.
type Options struct {
	// MoveFootnotesToEnd migrates footnote content to the end of the
	// document, renumbering in traversal order.
	MoveFootnotesToEnd bool
	// NumberHeadings assigns hierarchical counters to headings.
	NumberHeadings bool
	// TOCDepth is the deepest heading level included in the table of
	// contents (1-6).
	TOCDepth int
}

// footnoteSite matches an inline footnote ^[content] or a reference site
// [^id] in block text. Definitions are extracted by the parser and never
// appear inline.
var footnoteSite = regexp.MustCompile(`\^\[([^\]]+)\]|\[\^([^\]]+)\]`)

// assembler threads the traversal state (footnote numbering, heading
// counters) through one walk of the block sequence.
type assembler struct {
	opts     Options
	defs     map[string]string
	notes    []Footnote
	counters [6]int
	warnings []Warning
}

// Assemble merges parsed blocks into a Document, applying footnote
// resolution and placement, heading numbering, and TOC depth filtering.
// Block order mirrors source order except for footnote repositioning.
func Assemble(blocks []Block, opts Options) *Document {
	a := &assembler{opts: opts, defs: map[string]string{}}

	// First pass: collect reference-style definitions so a site can
	// precede or follow its definition.
	kept := make([]Block, 0, len(blocks))
	for _, b := range blocks {
		if def, ok := b.(*FootnoteDef); ok {
			if _, dup := a.defs[def.ID]; dup {
				a.warn(0, fmt.Sprintf("duplicate footnote definition [^%s]", def.ID))
				continue
			}
			a.defs[def.ID] = def.Text
			continue
		}
		kept = append(kept, b)
	}

	a.walk(kept)

	return &Document{
		Blocks:         kept,
		Footnotes:      a.notes,
		FootnotesAtEnd: opts.MoveFootnotesToEnd,
		Warnings:       a.warnings,
	}
}

func (a *assembler) warn(line int, msg string) {
	a.warnings = append(a.warnings, Warning{Line: line, Message: msg})
}

// walk visits blocks in document order, resolving footnote sites and
// numbering headings.
func (a *assembler) walk(blocks []Block) {
	for _, b := range blocks {
		switch v := b.(type) {
		case *Heading:
			a.numberHeading(v)
			v.Text = a.resolveFootnotes(v.Text)
		case *Paragraph:
			v.Text = a.resolveFootnotes(v.Text)
		case *List:
			a.walkList(v)
		case *Table:
			for i := range v.Header {
				v.Header[i] = a.resolveFootnotes(v.Header[i])
			}
			for _, row := range v.Rows {
				for i := range row {
					row[i] = a.resolveFootnotes(row[i])
				}
			}
			v.Caption = a.resolveFootnotes(v.Caption)
		case *Container:
			a.walk(v.Children)
		}
	}
}

func (a *assembler) walkList(l *List) {
	for i := range l.Items {
		l.Items[i].Text = a.resolveFootnotes(l.Items[i].Text)
		if l.Items[i].Sub != nil {
			a.walkList(l.Items[i].Sub)
		}
	}
}

// resolveFootnotes replaces each footnote site with a numbered marker and
// records the note content in traversal order. Unresolved references stay
// literal and produce a warning.
func (a *assembler) resolveFootnotes(text string) string {
	return footnoteSite.ReplaceAllStringFunc(text, func(m string) string {
		sub := footnoteSite.FindStringSubmatch(m)
		if sub[1] != "" {
			// inline ^[content]
			n := len(a.notes) + 1
			a.notes = append(a.notes, Footnote{Index: n, Text: sub[1]})
			return FootnoteMarker(n)
		}
		id := sub[2]
		content, ok := a.defs[id]
		if !ok {
			a.warn(0, fmt.Sprintf("undefined footnote reference [^%s]", id))
			return m
		}
		n := len(a.notes) + 1
		a.notes = append(a.notes, Footnote{Index: n, ID: id, Text: content})
		return FootnoteMarker(n)
	})
}

// numberHeading assigns the hierarchical counter label and TOC membership.
// Counters deeper than the current level reset whenever a shallower
// heading appears.
func (a *assembler) numberHeading(h *Heading) {
	depth := a.opts.TOCDepth
	if depth <= 0 {
		depth = 6
	}
	h.InTOC = h.Level <= depth

	if !a.opts.NumberHeadings {
		return
	}

	a.counters[h.Level-1]++
	for i := h.Level; i < len(a.counters); i++ {
		a.counters[i] = 0
	}

	parts := make([]string, h.Level)
	for i := 0; i < h.Level; i++ {
		parts[i] = fmt.Sprintf("%d", a.counters[i])
	}
	h.Number = strings.Join(parts, ".")
}
