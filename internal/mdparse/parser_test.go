package mdparse

import (
	"errors"
	"strings"
	"testing"

	"github.com/mdtex/go-md2tex/internal/document"
)

func mustParse(t *testing.T, src string) []document.Block {
	t.Helper()
	blocks, _, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return blocks
}

func TestParse_BasicBlocks(t *testing.T) {
	t.Parallel()

	src := `# Title

Intro paragraph
spanning two lines.

## Section

- one
- two
  - nested

1. first
2. second

---

![diagram](figs/arch.png "Architecture")
`

	blocks := mustParse(t, src)

	wantKinds := []document.BlockKind{
		document.KindHeading,
		document.KindParagraph,
		document.KindHeading,
		document.KindList,
		document.KindList,
		document.KindRule,
		document.KindImage,
	}
	if len(blocks) != len(wantKinds) {
		t.Fatalf("blocks = %d, want %d: %#v", len(blocks), len(wantKinds), blocks)
	}
	for i, k := range wantKinds {
		if blocks[i].Kind() != k {
			t.Errorf("block %d kind = %v, want %v", i, blocks[i].Kind(), k)
		}
	}

	h := blocks[0].(*document.Heading)
	if h.Level != 1 || h.Text != "Title" {
		t.Errorf("heading = %+v", h)
	}

	p := blocks[1].(*document.Paragraph)
	if p.Text != "Intro paragraph spanning two lines." {
		t.Errorf("paragraph = %q", p.Text)
	}

	ul := blocks[3].(*document.List)
	if ul.Ordered || len(ul.Items) != 2 {
		t.Fatalf("unordered list = %+v", ul)
	}
	if ul.Items[1].Sub == nil || ul.Items[1].Sub.Items[0].Text != "nested" {
		t.Errorf("nested item = %+v", ul.Items[1].Sub)
	}

	ol := blocks[4].(*document.List)
	if !ol.Ordered || len(ol.Items) != 2 {
		t.Errorf("ordered list = %+v", ol)
	}

	img := blocks[6].(*document.Image)
	if img.Path != "figs/arch.png" || img.Alt != "diagram" || img.Title != "Architecture" {
		t.Errorf("image = %+v", img)
	}
}

func TestParse_Containers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		src      string
		wantKind string
		warns    bool
	}{
		{
			name:     "alert",
			src:      "::: warning\nCareful.\n:::\n",
			wantKind: "warning",
		},
		{
			name:     "box",
			src:      "::: box\nFramed.\n:::\n",
			wantKind: document.ContainerBox,
		},
		{
			name:     "alignment",
			src:      "::: center\nMiddle.\n:::\n",
			wantKind: document.ContainerCenter,
		},
		{
			name:     "bare fence defaults to box",
			src:      ":::\nPlain.\n:::\n",
			wantKind: document.ContainerBox,
		},
		{
			name:     "unknown kind degrades to quote",
			src:      "::: shiny\nStill here.\n:::\n",
			wantKind: document.ContainerQuote,
			warns:    true,
		},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			blocks, warns, err := Parse(tt.src)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			c, ok := blocks[0].(*document.Container)
			if !ok {
				t.Fatalf("block = %T, want *Container", blocks[0])
			}
			if c.Style != tt.wantKind {
				t.Errorf("kind = %q, want %q", c.Style, tt.wantKind)
			}
			if len(c.Children) != 1 {
				t.Errorf("children = %d, want 1", len(c.Children))
			}
			if tt.warns && len(warns) == 0 {
				t.Error("expected warnings")
			}
		})
	}
}

func TestParse_NestedContainerAndBlockquote(t *testing.T) {
	t.Parallel()

	src := `:::: note
Outer text.

> Quoted inside the alert.

::: box
Inner box.
:::
::::
`
	blocks := mustParse(t, src)

	outer := blocks[0].(*document.Container)
	if outer.Style != "note" {
		t.Fatalf("outer kind = %q", outer.Style)
	}
	if len(outer.Children) != 3 {
		t.Fatalf("outer children = %d, want 3", len(outer.Children))
	}
	if q := outer.Children[1].(*document.Container); q.Style != document.ContainerQuote {
		t.Errorf("middle child kind = %q, want quote", q.Style)
	}
	if b := outer.Children[2].(*document.Container); b.Style != document.ContainerBox {
		t.Errorf("inner kind = %q, want box", b.Style)
	}
}

func TestParse_ContainerInBlockquote(t *testing.T) {
	t.Parallel()

	src := "> ::: tip\n> Inside.\n> :::\n"
	blocks := mustParse(t, src)

	q := blocks[0].(*document.Container)
	if q.Style != document.ContainerQuote {
		t.Fatalf("outer kind = %q", q.Style)
	}
	tip := q.Children[0].(*document.Container)
	if tip.Style != "tip" {
		t.Errorf("inner kind = %q, want tip", tip.Style)
	}
}

func TestParse_SameLengthNestedContainers(t *testing.T) {
	t.Parallel()

	src := "::: note\n::: box\ndeep\n:::\ntail\n:::\n"
	blocks := mustParse(t, src)

	note := blocks[0].(*document.Container)
	if note.Style != "note" || len(note.Children) != 2 {
		t.Fatalf("outer = %+v", note)
	}
	if box := note.Children[0].(*document.Container); box.Style != document.ContainerBox {
		t.Errorf("inner kind = %q", box.Style)
	}
}

func TestParse_UnterminatedContainerFails(t *testing.T) {
	t.Parallel()

	_, _, err := Parse("::: note\nno closing fence\n")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if perr.Line != 1 {
		t.Errorf("error line = %d, want 1", perr.Line)
	}
}

func TestParse_CodeBlocks(t *testing.T) {
	t.Parallel()

	src := "```python {.execute .show-code .highlightlines=2,4-6}\nprint(21*2)\n```\n"
	blocks := mustParse(t, src)

	cb := blocks[0].(*document.CodeBlock)
	if cb.Language != "python" {
		t.Errorf("language = %q", cb.Language)
	}
	if cb.Source != "print(21*2)" {
		t.Errorf("source = %q", cb.Source)
	}
	if !cb.Props.Execute || !cb.Props.ShowCode {
		t.Errorf("props = %+v", cb.Props)
	}
	if want := []int{2, 4, 5, 6}; len(cb.Props.HighlightLines) != len(want) {
		t.Errorf("highlight lines = %v, want %v", cb.Props.HighlightLines, want)
	}
	if cb.Line != 1 {
		t.Errorf("line = %d, want 1", cb.Line)
	}
}

func TestParse_CodeBlockPreservesExactSource(t *testing.T) {
	t.Parallel()

	body := "  indented\n\n# comment\n\ttabbed"
	blocks := mustParse(t, "```\n"+body+"\n```\n")

	cb := blocks[0].(*document.CodeBlock)
	if cb.Source != body {
		t.Errorf("source = %q, want %q", cb.Source, body)
	}
}

func TestParse_UnterminatedFenceFails(t *testing.T) {
	t.Parallel()

	_, _, err := Parse("text\n\n```python\nprint(1)\n")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
	if perr.Line != 3 {
		t.Errorf("error line = %d, want 3", perr.Line)
	}
}

func TestParse_UnterminatedFenceInBlockquoteFails(t *testing.T) {
	t.Parallel()

	_, _, err := Parse("> ```python\n> print(1)\nrest\n")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ParseError", err)
	}
}

func TestParse_Tables(t *testing.T) {
	t.Parallel()

	src := `| Name | Score | Grade |
|:-----|:-----:|------:|
| Ada  | 95    | A     |
| Bob  | 80    |
Caption: Results
`
	blocks, warns, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tbl := blocks[0].(*document.Table)
	if len(tbl.Header) != 3 {
		t.Fatalf("header = %v", tbl.Header)
	}
	if tbl.Align[0] != document.AlignLeft || tbl.Align[1] != document.AlignCenter || tbl.Align[2] != document.AlignRight {
		t.Errorf("align = %v", tbl.Align)
	}
	if tbl.Caption != "Results" {
		t.Errorf("caption = %q", tbl.Caption)
	}
	// Short row padded, not dropped.
	if len(tbl.Rows[1]) != 3 || tbl.Rows[1][2] != "" {
		t.Errorf("padded row = %v", tbl.Rows[1])
	}
	if len(warns) == 0 {
		t.Error("expected ragged-row warning")
	}
}

func TestParse_TableLongRowFoldsIntoLastColumn(t *testing.T) {
	t.Parallel()

	src := "| A | B |\n|---|---|\n| 1 | 2 | 3 | 4 |\n"
	blocks, warns, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	tbl := blocks[0].(*document.Table)
	if len(tbl.Rows[0]) != 2 {
		t.Fatalf("row = %v", tbl.Rows[0])
	}
	if tbl.Rows[0][1] != "2 3 4" {
		t.Errorf("folded cell = %q, want %q", tbl.Rows[0][1], "2 3 4")
	}
	if len(warns) == 0 {
		t.Error("expected warning, cells must never be silently dropped")
	}
}

func TestParse_FootnoteDefinitions(t *testing.T) {
	t.Parallel()

	src := "Text with a note[^a].\n\n[^a]: The content\n  continues here.\n"
	blocks := mustParse(t, src)

	var def *document.FootnoteDef
	for _, b := range blocks {
		if d, ok := b.(*document.FootnoteDef); ok {
			def = d
		}
	}
	if def == nil {
		t.Fatal("no footnote definition parsed")
	}
	if def.ID != "a" || def.Text != "The content continues here." {
		t.Errorf("def = %+v", def)
	}
}

func TestParse_RawPassthrough(t *testing.T) {
	t.Parallel()

	blocks := mustParse(t, "\\newpage\n\\vspace{1em}\n\nAfter.\n")

	raw := blocks[0].(*document.Raw)
	if !strings.Contains(raw.Text, "\\newpage") || !strings.Contains(raw.Text, "\\vspace{1em}") {
		t.Errorf("raw = %q", raw.Text)
	}
	if blocks[1].Kind() != document.KindParagraph {
		t.Errorf("second block = %v", blocks[1].Kind())
	}
}

func TestParse_OrderMirrorsSource(t *testing.T) {
	t.Parallel()

	src := "# A\n\npara\n\n```sh\nls\n```\n\n# B\n"
	blocks := mustParse(t, src)

	want := []document.BlockKind{
		document.KindHeading, document.KindParagraph, document.KindCode, document.KindHeading,
	}
	for i, k := range want {
		if blocks[i].Kind() != k {
			t.Errorf("block %d kind = %v, want %v", i, blocks[i].Kind(), k)
		}
	}
}
