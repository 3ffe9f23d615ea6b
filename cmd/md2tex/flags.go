package main

import (
	"fmt"
	"time"

	flag "github.com/spf13/pflag"
)

// cliFlags holds all parsed command-line flags.
type cliFlags struct {
	output      string
	metadata    string
	template    string
	timeout     time.Duration
	noCache     bool
	skipCompile bool
	diagrams    bool
	verbose     bool
	quiet       bool
	version     bool
}

// parseFlags parses args (excluding the program name) and returns the flags
// plus positional arguments.
func parseFlags(args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("md2tex", flag.ContinueOnError)
	f := &cliFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output PDF path (default <basename>.pdf next to the source)")
	fs.StringVar(&f.metadata, "metadata", "", "metadata file path (default <basename>.yaml next to the source)")
	fs.StringVar(&f.template, "template", "", "custom template shell (default embedded)")
	fs.DurationVar(&f.timeout, "timeout", 30*time.Second, "wall-clock budget per executed code block")
	fs.BoolVar(&f.noCache, "no-cache", false, "re-run every executable block, bypassing the cache")
	fs.BoolVar(&f.skipCompile, "skip-compile", false, "emit the build tree but skip the PDF compile")
	fs.BoolVar(&f.diagrams, "diagrams", false, "render mermaid fences through mmdc")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "log each pipeline stage to stderr")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "suppress warnings")
	fs.BoolVar(&f.version, "version", false, "print version and exit")

	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: md2tex [flags] <file.md>\n\nFlags:\n%s", fs.FlagUsages())
	}

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
