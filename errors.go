package md2tex

import "errors"

// Sentinel errors for library operations.
var (
	ErrSourceNotFound = errors.New("markdown source file not found")
	ErrEmptyMarkdown  = errors.New("markdown content cannot be empty")
	ErrNotMarkdown    = errors.New("source file must have a .md extension")
)
