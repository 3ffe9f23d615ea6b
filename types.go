package md2tex

// Input describes one conversion run.
type Input struct {
	// SourcePath is the markdown file to convert. Required.
	SourcePath string

	// MetadataPath overrides the companion metadata file. Defaults to
	// <basename>.yaml next to the source; a default file is created there
	// when none exists.
	MetadataPath string

	// OutputPath overrides where the PDF lands. Defaults to
	// <basename>.pdf next to the source.
	OutputPath string

	// TemplatePath selects a custom template shell. Empty uses the
	// embedded default.
	TemplatePath string

	// SkipCompile stops after emitting the build tree, leaving the PDF
	// step to the caller. Useful for debugging emitted LaTeX.
	SkipCompile bool
}

// Result reports what a conversion produced.
type Result struct {
	// PDFPath is the finished document, empty when SkipCompile was set.
	PDFPath string

	// BuildDir is the build tree used for this run.
	BuildDir string

	// BodyFile is the emitted LaTeX body inside BuildDir.
	BodyFile string

	// MetadataCreated reports that a default metadata file was written
	// because none existed.
	MetadataCreated bool

	// Warnings are non-fatal diagnostics gathered across all stages, in
	// the order they were produced.
	Warnings []string
}
