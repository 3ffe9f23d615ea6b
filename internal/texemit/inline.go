package texemit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mdtex/go-md2tex/internal/document"
)

// inlineRenderer converts inline markdown spans to LaTeX. It scans the text
// once, escaping plain runs and recursing into span bodies, so inserted
// commands are never re-escaped.
type inlineRenderer struct {
	footnotes map[int]document.Footnote
	// resolveImage maps a source image reference to a build-relative path.
	// Nil means inline images render as their alt text.
	resolveImage func(ref string) (string, bool)
}

func (r *inlineRenderer) render(s string) string {
	var out strings.Builder
	var plain strings.Builder
	flush := func() {
		out.WriteString(Escape(plain.String()))
		plain.Reset()
	}

	i := 0
	for i < len(s) {
		if repl, next, ok := r.span(s, i); ok {
			flush()
			out.WriteString(repl)
			i = next
			continue
		}
		plain.WriteByte(s[i])
		i++
	}
	flush()
	return out.String()
}

// span tries to consume a span starting at i. It returns the rendered LaTeX
// and the index after the span, or ok=false when no span starts here.
func (r *inlineRenderer) span(s string, i int) (string, int, bool) {
	rest := s[i:]
	switch {
	case strings.HasPrefix(rest, "\x00fn:"):
		return r.footnoteAt(s, i)
	case rest[0] == '`':
		return r.codeAt(s, i)
	case strings.HasPrefix(rest, "!["):
		return r.imageAt(s, i)
	case strings.HasPrefix(rest, "[["):
		return r.delimited(s, i, "[[", "]]", func(body string) string {
			return `\mdkbd{` + Escape(body) + `}`
		})
	case rest[0] == '[':
		return r.linkAt(s, i)
	case strings.HasPrefix(rest, "***"):
		return r.delimited(s, i, "***", "***", func(body string) string {
			return `\textbf{\textit{` + r.render(body) + `}}`
		})
	case strings.HasPrefix(rest, "**"):
		return r.delimited(s, i, "**", "**", func(body string) string {
			return `\textbf{` + r.render(body) + `}`
		})
	case rest[0] == '*':
		return r.delimited(s, i, "*", "*", func(body string) string {
			return `\textit{` + r.render(body) + `}`
		})
	case strings.HasPrefix(rest, "=="):
		return r.delimited(s, i, "==", "==", func(body string) string {
			return `\hl{` + r.render(body) + `}`
		})
	case strings.HasPrefix(rest, "^^"):
		return r.delimited(s, i, "^^", "^^", func(body string) string {
			return `\textsc{` + r.render(body) + `}`
		})
	case rest[0] == '^':
		return r.delimited(s, i, "^", "^", func(body string) string {
			return `\textsuperscript{` + r.render(body) + `}`
		})
	case strings.HasPrefix(rest, "__"):
		return r.delimited(s, i, "__", "__", func(body string) string {
			return `\underline{` + r.render(body) + `}`
		})
	case rest[0] == '~':
		return r.delimited(s, i, "~", "~", func(body string) string {
			return `\textsubscript{` + r.render(body) + `}`
		})
	}
	return "", 0, false
}

// delimited consumes open…close and renders the body. A missing closer or
// an empty body leaves the text literal.
func (r *inlineRenderer) delimited(s string, i int, open, closing string, render func(string) string) (string, int, bool) {
	start := i + len(open)
	end := strings.Index(s[start:], closing)
	if end <= 0 {
		return "", 0, false
	}
	body := s[start : start+end]
	return render(body), start + end + len(closing), true
}

func (r *inlineRenderer) codeAt(s string, i int) (string, int, bool) {
	return r.delimited(s, i, "`", "`", func(body string) string {
		return `\texttt{` + Escape(body) + `}`
	})
}

func (r *inlineRenderer) footnoteAt(s string, i int) (string, int, bool) {
	start := i + len("\x00fn:")
	end := strings.IndexByte(s[start:], '\x00')
	if end < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(s[start : start+end])
	if err != nil {
		return "", 0, false
	}
	fn, ok := r.footnotes[n]
	if !ok {
		return "", start + end + 1, true
	}
	return `\footnote{` + r.render(fn.Text) + `}`, start + end + 1, true
}

func (r *inlineRenderer) imageAt(s string, i int) (string, int, bool) {
	alt, dest, next, ok := parseLinkParts(s, i+1)
	if !ok {
		return "", 0, false
	}
	ref, _ := splitDestTitle(dest)
	if r.resolveImage != nil {
		if rel, found := r.resolveImage(ref); found {
			return fmt.Sprintf(`\adjincludegraphics[max width=\textwidth]{%s}`, rel), next, true
		}
	}
	return `\fbox{` + Escape(alt) + `}`, next, true
}

func (r *inlineRenderer) linkAt(s string, i int) (string, int, bool) {
	text, dest, next, ok := parseLinkParts(s, i)
	if !ok {
		return "", 0, false
	}
	url, _ := splitDestTitle(dest)
	return fmt.Sprintf(`\href{%s}{%s}`, escapeURL(url), r.render(text)), next, true
}

// parseLinkParts consumes "[text](dest)" starting at the bracket.
func parseLinkParts(s string, i int) (text, dest string, next int, ok bool) {
	bracket := strings.Index(s[i:], "](")
	if bracket < 0 {
		return "", "", 0, false
	}
	text = s[i+1 : i+bracket]
	destStart := i + bracket + 2
	end := strings.IndexByte(s[destStart:], ')')
	if end < 0 {
		return "", "", 0, false
	}
	return text, s[destStart : destStart+end], destStart + end + 1, true
}

// splitDestTitle separates an optional quoted title from a destination.
func splitDestTitle(dest string) (string, string) {
	dest = strings.TrimSpace(dest)
	if i := strings.IndexByte(dest, ' '); i >= 0 {
		return dest[:i], strings.Trim(strings.TrimSpace(dest[i+1:]), `"'`)
	}
	return dest, ""
}

// escapeURL protects the characters hyperref treats specially in \href.
func escapeURL(u string) string {
	return strings.NewReplacer(`%`, `\%`, `#`, `\#`).Replace(u)
}
