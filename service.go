package md2tex

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mdtex/go-md2tex/internal/assets"
	"github.com/mdtex/go-md2tex/internal/config"
	"github.com/mdtex/go-md2tex/internal/diagram"
	"github.com/mdtex/go-md2tex/internal/directive"
	"github.com/mdtex/go-md2tex/internal/document"
	"github.com/mdtex/go-md2tex/internal/execcache"
	"github.com/mdtex/go-md2tex/internal/fileutil"
	"github.com/mdtex/go-md2tex/internal/mdparse"
	"github.com/mdtex/go-md2tex/internal/runner"
	"github.com/mdtex/go-md2tex/internal/texcompile"
	"github.com/mdtex/go-md2tex/internal/texemit"
)

// Compiler produces the final PDF from a prepared build directory.
type Compiler interface {
	Compile(buildDir, outputPath string) error
}

// Compile-time interface implementation checks.
var (
	_ runner.Runner    = (*runner.Subprocess)(nil)
	_ Compiler         = (*texcompile.Compiler)(nil)
	_ diagram.Renderer = (*diagram.MermaidCLI)(nil)
)

// Service orchestrates the markdown-to-PDF conversion pipeline.
// Create with NewService and use Convert for each document.
type Service struct {
	cfg      serviceConfig
	runner   runner.Runner
	compiler Compiler
	diagrams diagram.Renderer
}

type serviceConfig struct {
	execTimeout time.Duration
	noCache     bool
}

// Option customizes a Service.
type Option func(*Service)

// WithExecTimeout sets the wall-clock budget for each executed code block.
func WithExecTimeout(d time.Duration) Option {
	return func(s *Service) { s.cfg.execTimeout = d }
}

// WithNoCache makes every run bypass the persisted execution cache, as if
// each executable block carried .no-cache.
func WithNoCache() Option {
	return func(s *Service) { s.cfg.noCache = true }
}

// WithRunner replaces the subprocess runner, for tests or sandboxing.
func WithRunner(r runner.Runner) Option {
	return func(s *Service) { s.runner = r }
}

// WithCompiler replaces the typesetting compiler.
func WithCompiler(c Compiler) Option {
	return func(s *Service) { s.compiler = c }
}

// WithDiagramRenderer enables rendering of mermaid code fences into images.
// Without one they stay on the page as static code.
func WithDiagramRenderer(r diagram.Renderer) Option {
	return func(s *Service) { s.diagrams = r }
}

// NewService creates a Service with default collaborators: a real
// subprocess runner and a lualatex compiler.
func NewService(opts ...Option) (*Service, error) {
	s := &Service{
		cfg: serviceConfig{execTimeout: runner.DefaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.runner == nil {
		s.runner = runner.New(runner.WithTimeout(s.cfg.execTimeout))
	}
	if s.compiler == nil {
		s.compiler = texcompile.NewCompiler()
	}
	return s, nil
}

// Convert runs the full pipeline for one markdown file.
// Block-local failures (execution errors, timeouts, missing images) become
// warnings on the Result; only structural problems return an error.
func (s *Service) Convert(ctx context.Context, input Input) (*Result, error) {
	paths, err := resolvePaths(input)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(paths.source) // #nosec G304 -- user-provided source path
	if err != nil {
		return nil, fmt.Errorf("reading source: %w", err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return nil, ErrEmptyMarkdown
	}

	meta, created, err := config.LoadOrCreate(paths.metadata)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(paths.buildDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating build directory: %w", err)
	}

	result := &Result{
		BuildDir:        paths.buildDir,
		BodyFile:        paths.bodyFile,
		MetadataCreated: created,
	}
	collect := func(warns []document.Warning) {
		for _, w := range warns {
			result.Warnings = append(result.Warnings, w.String())
		}
	}

	content, warns := mdparse.Preprocess(string(raw), meta.Variables)
	collect(warns)

	blocks, warns, err := mdparse.Parse(content)
	collect(warns)
	if err != nil {
		return nil, err
	}

	if s.cfg.noCache {
		disableCache(blocks)
	}

	store, err := execcache.Open(paths.buildDir)
	if err != nil {
		return nil, err
	}
	collect(directive.NewProcessor(s.runner, store).ResolveAll(ctx, blocks))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blocks = s.renderDiagrams(blocks, paths.buildDir, collect)

	resolver := assets.NewResolver(filepath.Dir(paths.source), paths.buildDir)
	collect(resolver.CopyImages(content))
	collect(resolver.ResolveBlocks(blocks))

	doc := document.Assemble(blocks, document.Options{
		MoveFootnotesToEnd: meta.MoveFootnotesToEnd,
		NumberHeadings:     meta.NumberHeadings,
		TOCDepth:           meta.TOCDepth,
	})
	collect(doc.Warnings)

	body := texemit.NewEmitter(doc, resolver.Resolve).Body(doc)
	if meta.TitleTemplate == config.TitleBanner {
		body = texemit.TitleBanner(meta) + "\n" + body
	}
	if err := os.WriteFile(filepath.Join(paths.buildDir, paths.bodyFile), []byte(body), 0o644); err != nil {
		return nil, fmt.Errorf("writing body: %w", err)
	}

	template, err := assets.LoadTemplate(input.TemplatePath)
	if err != nil {
		return nil, err
	}
	shell := texemit.InjectTemplate(template, meta, paths.bodyFile)
	if err := os.WriteFile(filepath.Join(paths.buildDir, texcompile.TemplateFile), []byte(shell), 0o644); err != nil {
		return nil, fmt.Errorf("writing template: %w", err)
	}

	if input.SkipCompile {
		return result, nil
	}

	if err := s.compiler.Compile(paths.buildDir, paths.output); err != nil {
		return nil, err
	}
	result.PDFPath = paths.output
	return result, nil
}

// buildPaths are the resolved locations for one run.
type buildPaths struct {
	source   string
	metadata string
	output   string
	buildDir string
	bodyFile string
}

func resolvePaths(input Input) (*buildPaths, error) {
	if input.SourcePath == "" {
		return nil, fmt.Errorf("%w: empty path", ErrSourceNotFound)
	}
	if !strings.EqualFold(filepath.Ext(input.SourcePath), ".md") {
		return nil, fmt.Errorf("%w: %s", ErrNotMarkdown, input.SourcePath)
	}
	if !fileutil.FileExists(input.SourcePath) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, input.SourcePath)
	}

	dir := filepath.Dir(input.SourcePath)
	base := strings.TrimSuffix(filepath.Base(input.SourcePath), filepath.Ext(input.SourcePath))

	p := &buildPaths{
		source:   input.SourcePath,
		metadata: input.MetadataPath,
		output:   input.OutputPath,
		buildDir: filepath.Join(dir, "_build_"+base),
		bodyFile: base + ".tex",
	}
	if p.metadata == "" {
		p.metadata = filepath.Join(dir, base+".yaml")
	}
	if p.output == "" {
		p.output = filepath.Join(dir, base+".pdf")
	}
	return p, nil
}

// disableCache marks every executable block .no-cache, recursively.
func disableCache(blocks []document.Block) {
	for _, b := range blocks {
		switch blk := b.(type) {
		case *document.CodeBlock:
			blk.Props.NoCache = true
		case *document.Container:
			disableCache(blk.Children)
		}
	}
}

// renderDiagrams replaces mermaid code fences with image blocks when a
// diagram renderer is configured. A failed render leaves the source on the
// page as static code with a warning.
func (s *Service) renderDiagrams(blocks []document.Block, buildDir string, collect func([]document.Warning)) []document.Block {
	if s.diagrams == nil {
		return blocks
	}
	n := 0
	var walk func(blocks []document.Block) []document.Block
	walk = func(blocks []document.Block) []document.Block {
		for i, b := range blocks {
			switch blk := b.(type) {
			case *document.Container:
				blk.Children = walk(blk.Children)
			case *document.CodeBlock:
				if blk.Props.Execute || !strings.EqualFold(blk.Language, "mermaid") {
					continue
				}
				n++
				rel := filepath.ToSlash(filepath.Join("diagrams", fmt.Sprintf("diagram-%d.png", n)))
				out := filepath.Join(buildDir, filepath.FromSlash(rel))
				if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
					collect([]document.Warning{{Line: blk.Line, Message: fmt.Sprintf("diagram: %v", err)}})
					continue
				}
				if err := s.diagrams.Render(blk.Source, out); err != nil {
					collect([]document.Warning{{Line: blk.Line, Message: err.Error()}})
					continue
				}
				blocks[i] = &document.Image{Alt: "diagram", Path: rel, Resolved: rel}
			}
		}
		return blocks
	}
	return walk(blocks)
}
