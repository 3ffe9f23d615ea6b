// Package assets resolves document assets for a build: the LaTeX template
// shell, images referenced from markdown, and artifacts produced by executed
// code blocks. Everything it copies lands inside the build directory so the
// typesetting compiler never reaches outside it.
package assets

import (
	"embed"
	"errors"
	"fmt"
	"os"
)

//go:embed templates/default.tex
var templates embed.FS

// ErrTemplateNotFound reports that a custom template path does not exist.
var ErrTemplateNotFound = errors.New("template not found")

// DefaultTemplate returns the built-in LaTeX template shell.
func DefaultTemplate() string {
	content, err := templates.ReadFile("templates/default.tex")
	if err != nil {
		// The file is embedded at compile time; this cannot fail at runtime.
		panic(fmt.Sprintf("embedded template missing: %v", err))
	}
	return string(content)
}

// LoadTemplate returns the template content for path. An empty path selects
// the embedded default. A custom path takes precedence over the default,
// matching how user-supplied assets override built-ins elsewhere.
func LoadTemplate(path string) (string, error) {
	if path == "" {
		return DefaultTemplate(), nil
	}
	content, err := os.ReadFile(path) // #nosec G304 -- path is user configuration
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
	}
	return string(content), nil
}
