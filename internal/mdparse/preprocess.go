package mdparse

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mdtex/go-md2tex/internal/document"
)

// Precompiled preprocessing patterns.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Compress runs of blank lines to max 2
	multipleBlankLines = regexp.MustCompile(`\n{3,}`)

	// Variable substitution token {{name}}
	variableToken = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_.-]*)\s*\}\}`)
)

// Preprocess normalizes source text and substitutes variable bindings.
// Substitution runs before parsing so variable markers can never be
// misread as dialect syntax. The whole pass is idempotent: substituted
// values are not scanned again, undefined names pass through unchanged.
func Preprocess(content string, vars map[string]string) (string, []document.Warning) {
	content = NormalizeLineEndings(content)
	content = stripNULs(content)

	var warnings []document.Warning
	content = variableToken.ReplaceAllStringFunc(content, func(m string) string {
		name := variableToken.FindStringSubmatch(m)[1]
		val, ok := vars[name]
		if !ok {
			warnings = append(warnings, document.Warning{
				Message: fmt.Sprintf("undefined variable {{%s}}, left as-is", name),
			})
			return m
		}
		return val
	})

	content = CompressBlankLines(content)
	return content, warnings
}

// NormalizeLineEndings converts \r\n and \r to \n.
func NormalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// CompressBlankLines limits consecutive blank lines to 2 maximum.
func CompressBlankLines(content string) string {
	return multipleBlankLines.ReplaceAllString(content, "\n\n")
}

// stripNULs removes NUL bytes; the assembler reserves them for internal
// footnote markers.
func stripNULs(content string) string {
	return strings.ReplaceAll(content, "\x00", "")
}
