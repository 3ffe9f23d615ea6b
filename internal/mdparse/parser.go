// Package mdparse tokenizes the extended markdown dialect into the ordered
// block sequence defined by the document package. The dialect adds, on top
// of baseline markdown: severity-tagged alert containers and generic
// box/alignment containers (`::: kind` fences), fenced code blocks with a
// curly-brace property list, table caption lines, footnote definitions,
// and raw typesetting passthrough lines.
package mdparse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mdtex/go-md2tex/internal/document"
)

// ParseError is a structural failure that aborts conversion: the
// downstream representation would be invalid.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Msg)
}

// Compiled block-level patterns.
var (
	containerFence = regexp.MustCompile(`^(:{3,})\s*([A-Za-z][A-Za-z-]*)?\s*$`)
	codeFence      = regexp.MustCompile("^(`{3,})\\s*([A-Za-z0-9_+.-]*)\\s*(\\{[^}]*\\})?\\s*$")
	headingLine    = regexp.MustCompile(`^(#{1,6})\s+(.*?)\s*#*\s*$`)
	ruleLine       = regexp.MustCompile(`^(\s*)(-{3,}|\*{3,}|_{3,})\s*$`)
	imageLine      = regexp.MustCompile(`^!\[([^\]]*)\]\(([^)]+)\)\s*$`)
	footnoteDef    = regexp.MustCompile(`^\[\^([^\]]+)\]:\s*(.*)$`)
	listItemLine   = regexp.MustCompile(`^(\s*)([-*+]|\d+[.)])\s+(.*)$`)
	captionLine    = regexp.MustCompile(`^Caption:\s*(.*)$`)
	tableSepCell   = regexp.MustCompile(`^:?-{3,}:?$`)
	rawTeXLine     = regexp.MustCompile(`^\\[A-Za-z@]`)
)

// Parse tokenizes preprocessed source into an ordered block sequence.
// Non-structural problems (unknown container kinds, ragged tables,
// unknown flags) are returned as warnings; an unterminated fence is a
// *ParseError.
func Parse(content string) ([]document.Block, []document.Warning, error) {
	p := &parser{lines: strings.Split(content, "\n"), offset: 1}
	blocks, err := p.parseBlocks()
	if err != nil {
		return nil, nil, err
	}
	return blocks, p.warnings, nil
}

type parser struct {
	lines    []string
	i        int
	offset   int // 1-based source line of lines[0]
	warnings []document.Warning
}

// lineNo reports the source line of lines[i].
func (p *parser) lineNo() int { return p.offset + p.i }

func (p *parser) warn(line int, msg string) {
	p.warnings = append(p.warnings, document.Warning{Line: line, Message: msg})
}

func (p *parser) parseBlocks() ([]document.Block, error) {
	var blocks []document.Block

	for p.i < len(p.lines) {
		line := p.lines[p.i]

		switch {
		case strings.TrimSpace(line) == "":
			p.i++

		case containerFence.MatchString(line):
			b, err := p.parseContainer()
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, b)

		case strings.HasPrefix(line, ">"):
			b, err := p.parseBlockquote()
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, b)

		case codeFence.MatchString(line):
			b, err := p.parseCodeBlock()
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, b)

		case headingLine.MatchString(line):
			m := headingLine.FindStringSubmatch(line)
			blocks = append(blocks, &document.Heading{Level: len(m[1]), Text: m[2]})
			p.i++

		case ruleLine.MatchString(line):
			blocks = append(blocks, &document.Rule{})
			p.i++

		case imageLine.MatchString(line):
			blocks = append(blocks, p.parseImage())

		case footnoteDef.MatchString(line):
			blocks = append(blocks, p.parseFootnoteDef())

		case listItemLine.MatchString(line):
			blocks = append(blocks, p.parseList())

		case strings.HasPrefix(line, "|"):
			blocks = append(blocks, p.parseTable())

		case rawTeXLine.MatchString(line):
			blocks = append(blocks, p.parseRaw())

		default:
			blocks = append(blocks, p.parseParagraph())
		}
	}

	return blocks, nil
}

// parseContainer reads a `::: kind` region closed by a bare fence of the
// same colon count. Containers of the same length may nest; depth is
// tracked by matched fences, not single-line matching.
func (p *parser) parseContainer() (document.Block, error) {
	openLine := p.lineNo()
	m := containerFence.FindStringSubmatch(p.lines[p.i])
	fence := m[1]
	kind := strings.ToLower(m[2])
	p.i++

	start := p.i
	depth := 1
	inCode := false
	for ; p.i < len(p.lines); p.i++ {
		line := p.lines[p.i]
		if strings.HasPrefix(line, "```") {
			inCode = !inCode
		}
		if inCode {
			continue
		}
		fm := containerFence.FindStringSubmatch(line)
		if fm == nil || len(fm[1]) != len(fence) {
			continue
		}
		if fm[2] != "" {
			depth++
			continue
		}
		depth--
		if depth == 0 {
			break
		}
	}
	if depth != 0 {
		return nil, &ParseError{Line: openLine, Msg: fmt.Sprintf("unterminated container %q", fence+kind)}
	}

	inner := &parser{lines: p.lines[start:p.i], offset: p.offset + start}
	children, err := inner.parseBlocks()
	if err != nil {
		return nil, err
	}
	p.warnings = append(p.warnings, inner.warnings...)
	p.i++ // consume closing fence

	switch {
	case kind == "":
		kind = document.ContainerBox
	case document.AlertStyles[kind]:
		// severity alert, keep as-is
	case kind == document.ContainerBox, kind == document.ContainerCenter, kind == document.ContainerRight:
		// generic container, keep as-is
	default:
		p.warn(openLine, fmt.Sprintf("unknown container kind %q, rendering as quote", kind))
		kind = document.ContainerQuote
	}

	return &document.Container{Style: kind, Children: children}, nil
}

// parseBlockquote strips the `>` prefix from consecutive quoted lines and
// parses the inner text recursively, so containers nest inside quotes.
// Structural failures inside a quote abort the parse like anywhere else.
func (p *parser) parseBlockquote() (document.Block, error) {
	start := p.i
	var inner []string
	for p.i < len(p.lines) && strings.HasPrefix(p.lines[p.i], ">") {
		line := strings.TrimPrefix(p.lines[p.i], ">")
		line = strings.TrimPrefix(line, " ")
		inner = append(inner, line)
		p.i++
	}

	sub := &parser{lines: inner, offset: p.offset + start}
	children, err := sub.parseBlocks()
	if err != nil {
		return nil, err
	}
	p.warnings = append(p.warnings, sub.warnings...)

	return &document.Container{Style: document.ContainerQuote, Children: children}, nil
}

// parseCodeBlock reads a fenced code block with optional language tag and
// property list. The closing fence needs at least the opening backtick
// count. An unterminated fence is a parse failure.
func (p *parser) parseCodeBlock() (document.Block, error) {
	openLine := p.lineNo()
	m := codeFence.FindStringSubmatch(p.lines[p.i])
	fence, lang, propList := m[1], m[2], m[3]
	p.i++

	closing := regexp.MustCompile("^`{" + fmt.Sprint(len(fence)) + ",}\\s*$")
	var body []string
	closed := false
	for ; p.i < len(p.lines); p.i++ {
		if closing.MatchString(p.lines[p.i]) {
			closed = true
			p.i++
			break
		}
		body = append(body, p.lines[p.i])
	}
	if !closed {
		return nil, &ParseError{Line: openLine, Msg: "unterminated code fence"}
	}

	var props document.Props
	if propList != "" {
		var warns []document.Warning
		props, warns = ParseProps(propList, openLine)
		p.warnings = append(p.warnings, warns...)
	}

	return &document.CodeBlock{
		Language: strings.ToLower(lang),
		Source:   strings.Join(body, "\n"),
		Props:    props,
		Line:     openLine,
	}, nil
}

func (p *parser) parseImage() document.Block {
	m := imageLine.FindStringSubmatch(p.lines[p.i])
	p.i++

	path := strings.TrimSpace(m[2])
	title := ""
	// Split an optional quoted title: ![alt](path "title")
	if idx := strings.IndexAny(path, " \t"); idx != -1 {
		rest := strings.TrimSpace(path[idx:])
		path = path[:idx]
		rest = strings.Trim(rest, `"'`)
		title = rest
	}
	path = strings.Trim(path, "<>")

	return &document.Image{Alt: m[1], Path: path, Title: title}
}

// parseFootnoteDef reads `[^id]: content`, with indented continuation
// lines folded into the content until a blank line.
func (p *parser) parseFootnoteDef() document.Block {
	m := footnoteDef.FindStringSubmatch(p.lines[p.i])
	p.i++

	parts := []string{strings.TrimSpace(m[2])}
	for p.i < len(p.lines) {
		line := p.lines[p.i]
		if strings.TrimSpace(line) == "" || !strings.HasPrefix(line, " ") {
			break
		}
		parts = append(parts, strings.TrimSpace(line))
		p.i++
	}

	return &document.FootnoteDef{ID: m[1], Text: strings.Join(parts, " ")}
}

// parseList collects consecutive list lines and builds nesting from
// indentation (two spaces per level). Unmarked indented lines continue
// the previous item.
func (p *parser) parseList() document.Block {
	type flatItem struct {
		depth   int
		ordered bool
		text    string
	}
	var flat []flatItem

	for p.i < len(p.lines) {
		line := p.lines[p.i]
		if m := listItemLine.FindStringSubmatch(line); m != nil {
			marker := m[2]
			flat = append(flat, flatItem{
				depth:   len(m[1]) / 2,
				ordered: marker != "-" && marker != "*" && marker != "+",
				text:    m[3],
			})
			p.i++
			continue
		}
		// continuation line: indented non-blank text
		if len(flat) > 0 && strings.TrimSpace(line) != "" && strings.HasPrefix(line, "  ") && !isBlockStart(line) {
			flat[len(flat)-1].text += " " + strings.TrimSpace(line)
			p.i++
			continue
		}
		break
	}

	// Build the nested structure with a stack of open lists per depth.
	// Depth 0 is the root; a jump of more than one level clamps to one.
	root := &document.List{Ordered: flat[0].ordered}
	stack := []*document.List{root}
	for _, it := range flat {
		depth := it.depth
		if depth >= len(stack) {
			parent := stack[len(stack)-1]
			if len(parent.Items) == 0 {
				parent.Items = append(parent.Items, document.ListItem{})
			}
			sub := &document.List{Ordered: it.ordered}
			parent.Items[len(parent.Items)-1].Sub = sub
			stack = append(stack, sub)
		} else if depth < len(stack)-1 {
			stack = stack[:depth+1]
		}
		cur := stack[len(stack)-1]
		cur.Items = append(cur.Items, document.ListItem{Text: it.text})
	}

	return root
}

// parseTable reads consecutive pipe rows, an optional alignment separator
// after the header, and an optional `Caption:` line after the table.
// Ragged rows are normalized to the header width: short rows are padded
// with empty cells, extra cells fold into the last column. Both warn.
func (p *parser) parseTable() document.Block {
	startLine := p.lineNo()
	var rows [][]string
	var align []document.Alignment

	for p.i < len(p.lines) && strings.HasPrefix(strings.TrimSpace(p.lines[p.i]), "|") {
		cells := splitTableRow(p.lines[p.i])
		if len(rows) == 1 && align == nil && isSeparatorRow(cells) {
			align = parseAlignments(cells)
			p.i++
			continue
		}
		rows = append(rows, cells)
		p.i++
	}

	t := &document.Table{}
	if len(rows) > 0 {
		t.Header = rows[0]
		t.Rows = rows[1:]
	}
	if align == nil {
		align = make([]document.Alignment, len(t.Header))
	}
	t.Align = align

	width := len(t.Header)
	for ri, row := range t.Rows {
		switch {
		case len(row) < width:
			p.warn(startLine, fmt.Sprintf("table row %d has %d cells, padded to %d", ri+1, len(row), width))
			for len(t.Rows[ri]) < width {
				t.Rows[ri] = append(t.Rows[ri], "")
			}
		case len(row) > width:
			p.warn(startLine, fmt.Sprintf("table row %d has %d cells, folded into %d columns", ri+1, len(row), width))
			folded := append([]string{}, row[:width-1]...)
			folded = append(folded, strings.Join(row[width-1:], " "))
			t.Rows[ri] = folded
		}
	}

	// Optional caption directly after the table.
	if p.i < len(p.lines) {
		if m := captionLine.FindStringSubmatch(p.lines[p.i]); m != nil {
			t.Caption = strings.TrimSpace(m[1])
			p.i++
		}
	}

	return t
}

func splitTableRow(line string) []string {
	line = strings.TrimSpace(line)
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	parts := strings.Split(line, "|")
	cells := make([]string, len(parts))
	for i, c := range parts {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

func isSeparatorRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, c := range cells {
		if !tableSepCell.MatchString(c) {
			return false
		}
	}
	return true
}

func parseAlignments(cells []string) []document.Alignment {
	align := make([]document.Alignment, len(cells))
	for i, c := range cells {
		left := strings.HasPrefix(c, ":")
		right := strings.HasSuffix(c, ":")
		switch {
		case left && right:
			align[i] = document.AlignCenter
		case right:
			align[i] = document.AlignRight
		case left:
			align[i] = document.AlignLeft
		}
	}
	return align
}

// parseRaw accumulates consecutive passthrough lines starting with a
// typesetting command.
func (p *parser) parseRaw() document.Block {
	var lines []string
	for p.i < len(p.lines) && rawTeXLine.MatchString(p.lines[p.i]) {
		lines = append(lines, p.lines[p.i])
		p.i++
	}
	return &document.Raw{Text: strings.Join(lines, "\n")}
}

// parseParagraph accumulates text lines until a blank line or the start
// of another block form.
func (p *parser) parseParagraph() document.Block {
	var lines []string
	for p.i < len(p.lines) {
		line := p.lines[p.i]
		if strings.TrimSpace(line) == "" || isBlockStart(line) {
			break
		}
		lines = append(lines, strings.TrimSpace(line))
		p.i++
	}
	return &document.Paragraph{Text: strings.Join(lines, " ")}
}

// isBlockStart reports whether line begins a non-paragraph block.
func isBlockStart(line string) bool {
	return containerFence.MatchString(line) ||
		codeFence.MatchString(line) ||
		headingLine.MatchString(line) ||
		ruleLine.MatchString(line) ||
		imageLine.MatchString(line) ||
		footnoteDef.MatchString(line) ||
		listItemLine.MatchString(line) ||
		rawTeXLine.MatchString(line) ||
		strings.HasPrefix(line, ">") ||
		strings.HasPrefix(line, "|")
}
