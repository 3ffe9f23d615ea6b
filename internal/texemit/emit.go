package texemit

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/mdtex/go-md2tex/internal/document"
)

// sectionCommands maps heading level to the LaTeX sectioning command.
var sectionCommands = [...]string{
	1: "section",
	2: "subsection",
	3: "subsubsection",
	4: "paragraph",
	5: "subparagraph",
	6: "subparagraph",
}

// imageArtifactExts are artifact extensions included as graphics; anything
// else is listed by name under the output pane.
var imageArtifactExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".pdf":  true,
	".svg":  true,
}

// Emitter writes the document body as LaTeX. Construct with NewEmitter and
// call Body once per document.
type Emitter struct {
	inline *inlineRenderer
	buf    strings.Builder
}

// NewEmitter creates an Emitter for doc. resolveImage maps source image
// references inside paragraphs to build-relative paths and may be nil.
func NewEmitter(doc *document.Document, resolveImage func(string) (string, bool)) *Emitter {
	footnotes := make(map[int]document.Footnote, len(doc.Footnotes))
	for _, fn := range doc.Footnotes {
		footnotes[fn.Index] = fn
	}
	return &Emitter{
		inline: &inlineRenderer{footnotes: footnotes, resolveImage: resolveImage},
	}
}

// Body renders the document blocks. The result is the content side of the
// build tree; the template shell wraps it.
func (e *Emitter) Body(doc *document.Document) string {
	e.buf.Reset()
	e.blocks(doc.Blocks)
	return e.buf.String()
}

func (e *Emitter) blocks(blocks []document.Block) {
	for _, b := range blocks {
		switch blk := b.(type) {
		case *document.Heading:
			e.heading(blk)
		case *document.Paragraph:
			e.line(e.inline.render(blk.Text))
			e.line("")
		case *document.List:
			e.list(blk)
			e.line("")
		case *document.Table:
			e.table(blk)
			e.line("")
		case *document.CodeBlock:
			e.codeBlock(blk)
		case *document.Container:
			e.container(blk)
		case *document.Image:
			e.image(blk)
		case *document.Rule:
			e.line(`\noindent\rule{\textwidth}{0.4pt}`)
			e.line("")
		case *document.Raw:
			e.line(blk.Text)
		case *document.FootnoteDef:
			// Consumed by the assembler; nothing to render.
		}
	}
}

func (e *Emitter) line(s string) {
	e.buf.WriteString(s)
	e.buf.WriteByte('\n')
}

// heading emits a starred sectioning command. Numbering and TOC membership
// were decided during assembly, so the TOC entry is added explicitly.
func (e *Emitter) heading(h *document.Heading) {
	level := h.Level
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	cmd := sectionCommands[level]

	title := e.inline.render(h.Text)
	if h.Number != "" {
		title = h.Number + " " + title
	}
	e.line(fmt.Sprintf(`\%s*{%s}`, cmd, title))
	if h.InTOC {
		e.line(fmt.Sprintf(`\addcontentsline{toc}{%s}{%s}`, cmd, title))
	}
	e.line("")
}

func (e *Emitter) list(l *document.List) {
	env := "itemize"
	if l.Ordered {
		env = "enumerate"
	}
	e.line(`\begin{` + env + `}`)
	for _, item := range l.Items {
		e.line(`\item ` + e.inline.render(item.Text))
		if item.Sub != nil {
			e.list(item.Sub)
		}
	}
	e.line(`\end{` + env + `}`)
}

func columnSpec(aligns []document.Alignment) string {
	var spec strings.Builder
	for _, a := range aligns {
		switch a {
		case document.AlignCenter:
			spec.WriteByte('c')
		case document.AlignRight:
			spec.WriteByte('r')
		default:
			spec.WriteByte('l')
		}
	}
	return spec.String()
}

func (e *Emitter) table(t *document.Table) {
	fit := tableNeedsFit(t)

	e.line(`\begin{center}`)
	if fit {
		e.line(`\begin{adjustbox}{max width=\textwidth}`)
	}
	e.line(`\begin{tabular}{` + columnSpec(t.Align) + `}`)
	e.line(`\toprule`)
	e.tableRow(t.Header)
	e.line(`\midrule`)
	for _, row := range t.Rows {
		e.tableRow(row)
	}
	e.line(`\bottomrule`)
	e.line(`\end{tabular}`)
	if fit {
		e.line(`\end{adjustbox}`)
	}
	if t.Caption != "" {
		e.line("")
		e.line(`\small\textit{` + e.inline.render(t.Caption) + `}`)
	}
	e.line(`\end{center}`)
}

func (e *Emitter) tableRow(cells []string) {
	rendered := make([]string, len(cells))
	for i, cell := range cells {
		rendered[i] = e.inline.render(cell)
	}
	e.line(strings.Join(rendered, " & ") + ` \\`)
}

func (e *Emitter) codeBlock(cb *document.CodeBlock) {
	showCode := true
	if cb.Props.Execute {
		showCode = cb.Props.CodePaneVisible()
	}
	if showCode {
		e.codePane(cb)
	}
	if !cb.Props.Execute {
		e.line("")
		return
	}

	switch cb.Output.State {
	case document.Executed:
		if cb.Props.OutputPaneVisible() {
			e.outputPane(&cb.Output)
		}
	case document.Failed:
		// Failures always surface, they are the block's content now.
		e.failurePane(cb)
	}
	e.line("")
}

func (e *Emitter) codePane(cb *document.CodeBlock) {
	lang := cb.Language
	if lang == "" {
		lang = "text"
	}
	opts := ""
	if len(cb.Props.HighlightLines) > 0 {
		specs := make([]string, len(cb.Props.HighlightLines))
		for i, n := range cb.Props.HighlightLines {
			specs[i] = strconv.Itoa(n)
		}
		opts = fmt.Sprintf("[highlightlines={%s}]", strings.Join(specs, ","))
	}
	e.line(fmt.Sprintf(`\begin{minted}%s{%s}`, opts, lang))
	e.line(strings.TrimRight(cb.Source, "\n"))
	e.line(`\end{minted}`)
}

func (e *Emitter) outputPane(out *document.Output) {
	if text := strings.TrimRight(out.Text, "\n"); text != "" {
		e.verbatim(text)
	}
	for _, artifact := range out.Artifacts {
		if imageArtifactExts[strings.ToLower(path.Ext(artifact))] {
			e.line(`\begin{center}`)
			e.line(fmt.Sprintf(`\adjincludegraphics[max width=\textwidth,max height=0.8\textheight]{%s}`, artifact))
			e.line(`\end{center}`)
		} else {
			e.line(`\texttt{` + Escape(path.Base(artifact)) + `}`)
		}
	}
}

func (e *Emitter) failurePane(cb *document.CodeBlock) {
	e.line(`\begin{mdalert}{` + Escape(failureTitle(cb.Output.Failure)) + `}`)
	if cb.Output.Message != "" {
		e.line(Escape(cb.Output.Message))
		e.line("")
	}
	if text := strings.TrimRight(cb.Output.Text, "\n"); text != "" {
		e.verbatim(text)
	}
	e.line(`\end{mdalert}`)
}

func failureTitle(kind document.FailureKind) string {
	switch kind {
	case document.FailureTimeout:
		return "Execution timed out"
	case document.FailureLanguage:
		return "Unsupported language"
	default:
		return "Execution failed"
	}
}

// verbatim emits raw text in a verbatim environment. An embedded
// \end{verbatim} would terminate the environment early, so it is broken up.
func (e *Emitter) verbatim(text string) {
	text = strings.ReplaceAll(text, `\end{verbatim}`, `\end {verbatim}`)
	e.line(`\begin{verbatim}`)
	e.line(text)
	e.line(`\end{verbatim}`)
}

func (e *Emitter) container(c *document.Container) {
	open, closing := containerEnv(c.Style)
	e.line(open)
	e.blocks(c.Children)
	e.line(closing)
	e.line("")
}

func containerEnv(kind string) (string, string) {
	switch kind {
	case document.ContainerBox:
		return `\begin{mdbox}`, `\end{mdbox}`
	case document.ContainerCenter:
		return `\begin{center}`, `\end{center}`
	case document.ContainerRight:
		return `\begin{flushright}`, `\end{flushright}`
	case document.ContainerQuote:
		return `\begin{mdquote}`, `\end{mdquote}`
	}
	if document.AlertStyles[kind] {
		title := strings.ToUpper(kind[:1]) + kind[1:]
		return `\begin{mdalert}{` + title + `}`, `\end{mdalert}`
	}
	return `\begin{mdquote}`, `\end{mdquote}`
}

func (e *Emitter) image(img *document.Image) {
	if img.Missing {
		e.line(`\fbox{Missing image: ` + Escape(img.Path) + `}`)
		e.line("")
		return
	}
	e.line(`\begin{center}`)
	e.line(fmt.Sprintf(`\adjincludegraphics[max width=\textwidth,max height=0.8\textheight]{%s}`, img.Resolved))
	if img.Title != "" {
		e.line(`\small\textit{` + e.inline.render(img.Title) + `}`)
	}
	e.line(`\end{center}`)
	e.line("")
}
