package runner

import (
	"strings"

	"github.com/alecthomas/chroma/v2/lexers"
)

// adapter describes how one language is invoked. Adding a language means
// adding an adapter here, not editing dispatch logic.
type adapter struct {
	// ext is the source file extension written into the scratch dir.
	ext string
	// argv builds the interpreter invocation for the source file.
	argv func(srcFile string) []string
}

// adapters is keyed by canonical language name (see Canonical).
var adapters = map[string]adapter{
	"python": {
		ext:  "py",
		argv: func(src string) []string { return []string{"python3", src} },
	},
	"bash": {
		ext:  "sh",
		argv: func(src string) []string { return []string{"bash", src} },
	},
	"javascript": {
		ext:  "js",
		argv: func(src string) []string { return []string{"node", src} },
	},
	"ruby": {
		ext:  "rb",
		argv: func(src string) []string { return []string{"ruby", src} },
	},
	"perl": {
		ext:  "pl",
		argv: func(src string) []string { return []string{"perl", src} },
	},
}

// extraAliases covers identifiers the lexer registry does not know.
var extraAliases = map[string]string{
	"node":   "javascript",
	"nodejs": "javascript",
	"shell":  "bash",
}

// Canonical resolves a language identifier through the chroma lexer
// registry so the common aliases (py, python3, sh, zsh, js) land on one
// canonical name and one cache key.
func Canonical(language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return ""
	}
	if alias, ok := extraAliases[language]; ok {
		return alias
	}
	if lex := lexers.Get(language); lex != nil {
		return strings.ToLower(lex.Config().Name)
	}
	return language
}

// Supported reports whether an execution adapter exists for the
// (possibly aliased) language identifier.
func Supported(language string) bool {
	_, ok := adapters[Canonical(language)]
	return ok
}
