// Command md2tex converts an extended-markdown file into a PDF through a
// LaTeX build tree, executing annotated code blocks along the way.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/mdtex/go-md2tex"
	"github.com/mdtex/go-md2tex/internal/diagram"
	"github.com/mdtex/go-md2tex/internal/texcompile"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	flags, args, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// maxprocs.Set only fails on an invalid GOMAXPROCS env value, in which
	// case runtime defaults apply and the program continues.
	if flags.verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, a ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", a...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	if err := run(flags, args, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		var ce *texcompile.CompileError
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, "compiler log:", ce.LogPath)
		}
		os.Exit(1)
	}
}

func run(flags *cliFlags, args []string, stderr *os.File) error {
	if flags.version {
		fmt.Fprintln(stderr, "md2tex", Version)
		return nil
	}
	if len(args) != 1 {
		return errors.New("expected exactly one markdown file (see --help)")
	}

	logf := func(format string, a ...interface{}) {
		if flags.verbose {
			fmt.Fprintf(stderr, format+"\n", a...)
		}
	}

	opts := []md2tex.Option{
		md2tex.WithExecTimeout(flags.timeout),
	}
	if flags.noCache {
		opts = append(opts, md2tex.WithNoCache())
	}
	if flags.diagrams {
		opts = append(opts, md2tex.WithDiagramRenderer(diagram.NewMermaidCLI(&diagram.ExecRunner{})))
	}

	svc, err := md2tex.NewService(opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logf("converting %s", args[0])
	result, err := svc.Convert(ctx, md2tex.Input{
		SourcePath:   args[0],
		MetadataPath: flags.metadata,
		OutputPath:   flags.output,
		TemplatePath: flags.template,
		SkipCompile:  flags.skipCompile,
	})
	if err != nil {
		return err
	}

	if result.MetadataCreated {
		logf("created default metadata next to the source")
	}
	if !flags.quiet {
		for _, w := range result.Warnings {
			fmt.Fprintln(stderr, "warning:", w)
		}
	}
	logf("build tree: %s", result.BuildDir)
	if result.PDFPath != "" {
		fmt.Fprintln(stderr, "wrote", result.PDFPath)
	}
	return nil
}
