package texemit

import (
	"strings"
	"testing"

	"github.com/mdtex/go-md2tex/internal/document"
)

func emitBody(t *testing.T, doc *document.Document) string {
	t.Helper()
	return NewEmitter(doc, nil).Body(doc)
}

func TestEscape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"50% of $10", `50\% of \$10`},
		{"a & b # c", `a \& b \# c`},
		{"snake_case", `snake\_case`},
		{`C:\path{x}`, `C:\textbackslash{}path\{x\}`},
		{"plain text", "plain text"},
	}

	for _, tt := range tests {

		tt := tt
		if got := Escape(tt.in); got != tt.want {
			t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestInlineSpans(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "bold", in: "a **b** c", want: `a \textbf{b} c`},
		{name: "italic", in: "a *b* c", want: `a \textit{b} c`},
		{name: "bold italic", in: "***b***", want: `\textbf{\textit{b}}`},
		{name: "inline code", in: "run `rm -rf`", want: `run \texttt{rm -rf}`},
		{name: "code protects specials", in: "`a_b`", want: `\texttt{a\_b}`},
		{name: "kbd", in: "press [[Ctrl+Alt+Del]]", want: `press \mdkbd{Ctrl+Alt+Del}`},
		{name: "highlight", in: "==important==", want: `\hl{important}`},
		{name: "small caps", in: "^^nasa^^", want: `\textsc{nasa}`},
		{name: "underline", in: "__u__", want: `\underline{u}`},
		{name: "superscript", in: "x^2^", want: `x\textsuperscript{2}`},
		{name: "subscript", in: "H~2~O", want: `H\textsubscript{2}O`},
		{name: "link", in: "[Go](https://go.dev)", want: `\href{https://go.dev}{Go}`},
		{name: "nested bold in highlight", in: "==a **b**==", want: `\hl{a \textbf{b}}`},
		{name: "unclosed marker stays literal", in: "2 * 3", want: `2 * 3`},
		{name: "plain escaped", in: "100% done", want: `100\% done`},
	}

	r := &inlineRenderer{}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := r.render(tt.in); got != tt.want {
				t.Errorf("render(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestInlineFootnoteMarker(t *testing.T) {
	t.Parallel()

	r := &inlineRenderer{footnotes: map[int]document.Footnote{
		1: {Index: 1, Text: "the note"},
	}}
	got := r.render("text" + document.FootnoteMarker(1) + " more")
	want := `text\footnote{the note} more`
	if got != want {
		t.Errorf("render() = %q, want %q", got, want)
	}
}

func TestHeadingEmission(t *testing.T) {
	t.Parallel()

	doc := &document.Document{Blocks: []document.Block{
		&document.Heading{Level: 1, Text: "Intro", Number: "1", InTOC: true},
		&document.Heading{Level: 4, Text: "Deep", InTOC: false},
	}}
	body := emitBody(t, doc)

	if !strings.Contains(body, `\section*{1 Intro}`) {
		t.Errorf("missing numbered section:\n%s", body)
	}
	if !strings.Contains(body, `\addcontentsline{toc}{section}{1 Intro}`) {
		t.Errorf("missing TOC entry:\n%s", body)
	}
	if !strings.Contains(body, `\paragraph*{Deep}`) {
		t.Errorf("missing level-4 heading:\n%s", body)
	}
	if strings.Contains(body, `\addcontentsline{toc}{paragraph}`) {
		t.Error("heading beyond TOC depth added to contents")
	}
}

func TestExecutedBlockHidesCodeShowsOutput(t *testing.T) {
	t.Parallel()

	doc := &document.Document{Blocks: []document.Block{
		&document.CodeBlock{
			Language: "python",
			Source:   "print(21*2)",
			Props:    document.Props{Execute: true},
			Output:   document.Output{State: document.Executed, Text: "42\n"},
		},
	}}
	body := emitBody(t, doc)

	if strings.Contains(body, "minted") {
		t.Errorf("code pane rendered for default-hidden executable block:\n%s", body)
	}
	if !strings.Contains(body, "42") {
		t.Errorf("output missing:\n%s", body)
	}
	if !strings.Contains(body, `\begin{verbatim}`) {
		t.Errorf("output not in verbatim pane:\n%s", body)
	}
}

func TestExecutedBlockShowCodeWithHighlight(t *testing.T) {
	t.Parallel()

	doc := &document.Document{Blocks: []document.Block{
		&document.CodeBlock{
			Language: "python",
			Source:   "a\nb\nc",
			Props: document.Props{
				Execute:        true,
				ShowCode:       true,
				HighlightLines: []int{2, 4, 5, 6},
			},
			Output: document.Output{State: document.Executed, Text: "done"},
		},
	}}
	body := emitBody(t, doc)

	if !strings.Contains(body, `\begin{minted}[highlightlines={2,4,5,6}]{python}`) {
		t.Errorf("minted pane wrong:\n%s", body)
	}
}

func TestStaticCodeBlockAlwaysShown(t *testing.T) {
	t.Parallel()

	doc := &document.Document{Blocks: []document.Block{
		&document.CodeBlock{Language: "go", Source: "package main"},
	}}
	body := emitBody(t, doc)

	if !strings.Contains(body, `\begin{minted}{go}`) {
		t.Errorf("static code pane missing:\n%s", body)
	}
	if strings.Contains(body, "verbatim") {
		t.Error("static block rendered an output pane")
	}
}

func TestFailedBlockRendersAnnotation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		failure   document.FailureKind
		wantTitle string
	}{
		{name: "exec", failure: document.FailureExec, wantTitle: "Execution failed"},
		{name: "timeout", failure: document.FailureTimeout, wantTitle: "Execution timed out"},
		{name: "language", failure: document.FailureLanguage, wantTitle: "Unsupported language"},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := &document.Document{Blocks: []document.Block{
				&document.CodeBlock{
					Language: "python",
					Source:   "boom",
					Props:    document.Props{Execute: true},
					Output: document.Output{
						State:   document.Failed,
						Failure: tt.failure,
						Text:    "Traceback",
					},
				},
			}}
			body := emitBody(t, doc)

			if !strings.Contains(body, tt.wantTitle) {
				t.Errorf("annotation title missing:\n%s", body)
			}
			if !strings.Contains(body, "Traceback") {
				t.Errorf("captured output missing:\n%s", body)
			}
		})
	}
}

func TestTableFit(t *testing.T) {
	t.Parallel()

	narrow := &document.Table{
		Header: []string{"A", "B"},
		Align:  []document.Alignment{document.AlignLeft, document.AlignRight},
		Rows:   [][]string{{"1", "2"}},
	}
	wide := &document.Table{
		Header: []string{strings.Repeat("x", 60), strings.Repeat("y", 60)},
		Align:  []document.Alignment{document.AlignDefault, document.AlignDefault},
		Rows:   [][]string{{"1", "2"}},
	}

	narrowBody := emitBody(t, &document.Document{Blocks: []document.Block{narrow}})
	if strings.Contains(narrowBody, "adjustbox") {
		t.Error("narrow table wrapped in adjustbox")
	}
	if !strings.Contains(narrowBody, `\begin{tabular}{lr}`) {
		t.Errorf("column spec wrong:\n%s", narrowBody)
	}

	wideBody := emitBody(t, &document.Document{Blocks: []document.Block{wide}})
	if !strings.Contains(wideBody, `\begin{adjustbox}{max width=\textwidth}`) {
		t.Errorf("wide table not wrapped:\n%s", wideBody)
	}
	// Scaled, never truncated: all content still present.
	if !strings.Contains(wideBody, strings.Repeat("x", 60)) {
		t.Error("wide table content truncated")
	}
}

func TestTableCaption(t *testing.T) {
	t.Parallel()

	doc := &document.Document{Blocks: []document.Block{
		&document.Table{
			Header:  []string{"A"},
			Align:   []document.Alignment{document.AlignLeft},
			Rows:    [][]string{{"1"}},
			Caption: "Results",
		},
	}}
	body := emitBody(t, doc)
	if !strings.Contains(body, `\small\textit{Results}`) {
		t.Errorf("caption missing:\n%s", body)
	}
}

func TestContainerEnvironments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind string
		want string
	}{
		{kind: "note", want: `\begin{mdalert}{Note}`},
		{kind: "warning", want: `\begin{mdalert}{Warning}`},
		{kind: document.ContainerBox, want: `\begin{mdbox}`},
		{kind: document.ContainerCenter, want: `\begin{center}`},
		{kind: document.ContainerRight, want: `\begin{flushright}`},
		{kind: document.ContainerQuote, want: `\begin{mdquote}`},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.kind, func(t *testing.T) {
			t.Parallel()

			doc := &document.Document{Blocks: []document.Block{
				&document.Container{Style: tt.kind, Children: []document.Block{
					&document.Paragraph{Text: "inner"},
				}},
			}}
			body := emitBody(t, doc)
			if !strings.Contains(body, tt.want) {
				t.Errorf("container %q body:\n%s", tt.kind, body)
			}
			if !strings.Contains(body, "inner") {
				t.Error("children not rendered")
			}
		})
	}
}

func TestImageEmission(t *testing.T) {
	t.Parallel()

	doc := &document.Document{Blocks: []document.Block{
		&document.Image{Alt: "plot", Resolved: "images/plot.png", Title: "A plot"},
		&document.Image{Alt: "gone", Path: "gone.png", Missing: true},
	}}
	body := emitBody(t, doc)

	if !strings.Contains(body, `\adjincludegraphics[max width=\textwidth,max height=0.8\textheight]{images/plot.png}`) {
		t.Errorf("graphics include missing:\n%s", body)
	}
	if !strings.Contains(body, `\small\textit{A plot}`) {
		t.Errorf("image caption missing:\n%s", body)
	}
	if !strings.Contains(body, `\fbox{Missing image: gone.png}`) {
		t.Errorf("missing-image placeholder absent:\n%s", body)
	}
}

func TestRawPassthrough(t *testing.T) {
	t.Parallel()

	doc := &document.Document{Blocks: []document.Block{
		&document.Raw{Text: `\newpage`},
	}}
	if body := emitBody(t, doc); !strings.Contains(body, `\newpage`) {
		t.Errorf("raw line lost:\n%s", body)
	}
}

func TestListNesting(t *testing.T) {
	t.Parallel()

	doc := &document.Document{Blocks: []document.Block{
		&document.List{Ordered: true, Items: []document.ListItem{
			{Text: "first", Sub: &document.List{Items: []document.ListItem{{Text: "inner"}}}},
			{Text: "second"},
		}},
	}}
	body := emitBody(t, doc)

	for _, want := range []string{`\begin{enumerate}`, `\begin{itemize}`, `\item first`, `\item inner`} {
		if !strings.Contains(body, want) {
			t.Errorf("missing %q in:\n%s", want, body)
		}
	}
}

func TestDeterministicReEmission(t *testing.T) {
	t.Parallel()

	doc := &document.Document{Blocks: []document.Block{
		&document.Heading{Level: 1, Text: "T", Number: "1", InTOC: true},
		&document.Paragraph{Text: "Some **bold** text with `code`."},
		&document.List{Items: []document.ListItem{{Text: "a"}, {Text: "b"}}},
	}}

	first := emitBody(t, doc)
	second := emitBody(t, doc)
	if first != second {
		t.Error("re-emission of an unchanged document differs")
	}
}
