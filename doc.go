// Package md2tex converts extended-markdown documents into a LaTeX build
// tree and, through lualatex, a finished PDF.
//
// # Quick Start
//
// Create a service and convert a markdown file:
//
//	svc, err := md2tex.NewService()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := svc.Convert(ctx, md2tex.Input{
//	    SourcePath: "report.md",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("wrote", result.PDFPath)
//
// The build tree (template, generated body, copied images, execution
// artifacts, cache) is left in a _build_<basename> directory next to the
// source for inspection and incremental rebuilds.
//
// # Conversion Pipeline
//
//  1. Metadata loading (YAML/JSON companion file, created when missing)
//  2. Preprocessing (line normalization, {{variable}} substitution)
//  3. Parsing the dialect into the intermediate block representation
//  4. Resolving .execute code blocks (subprocess runner + on-disk cache)
//  5. Asset resolution (images, diagrams, execution artifacts)
//  6. Assembly (footnote placement, heading numbering, TOC depth)
//  7. LaTeX emission and template injection
//  8. Two lualatex passes producing the PDF
//
// # Dialect
//
// Beyond baseline markdown the parser understands ::: containers (note,
// tip, warning, caution, important, box, center, right), [[Key]] keyboard
// spans, ==highlight==, ^^small caps^^, __underline__, ^super^ and ~sub~
// scripts, inline ^[footnotes] and reference [^id] footnotes, pipe tables
// with Caption: lines, and fenced code blocks carrying a property list
// such as {.execute .show-code .highlightlines=2,4-6}.
//
// # Configuration
//
// Use functional options to customize the service:
//
//	svc, err := md2tex.NewService(
//	    md2tex.WithExecTimeout(time.Minute),
//	    md2tex.WithNoCache(),
//	)
//
// Execution failures, timeouts and unsupported languages never abort a
// build; they render as annotations in place of the block's output.
package md2tex
