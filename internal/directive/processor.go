// Package directive resolves `.execute`-tagged code blocks into outputs,
// combining the persisted cache with the subprocess runner. Blocks run
// strictly in document order; block-local failures become inline
// annotations and never abort the build.
package directive

import (
	"context"
	"errors"
	"fmt"

	"github.com/mdtex/go-md2tex/internal/document"
	"github.com/mdtex/go-md2tex/internal/execcache"
	"github.com/mdtex/go-md2tex/internal/runner"
)

// Processor resolves executable blocks for one conversion run.
type Processor struct {
	runner runner.Runner
	store  *execcache.Store

	// memo holds the per-run result for each key. A result produced for
	// a key is immutable for the rest of the run, so textually identical
	// blocks trigger at most one subprocess invocation per run.
	memo map[string]document.Output

	warnings []document.Warning
}

// NewProcessor creates a Processor over the given runner and store.
func NewProcessor(r runner.Runner, store *execcache.Store) *Processor {
	return &Processor{
		runner: r,
		store:  store,
		memo:   map[string]document.Output{},
	}
}

// ResolveAll processes every executable code block in document order,
// descending into containers. It mutates the blocks in place, attaching
// cache keys and outputs, and returns accumulated warnings.
func (p *Processor) ResolveAll(ctx context.Context, blocks []document.Block) []document.Warning {
	p.walk(ctx, blocks)
	return p.warnings
}

func (p *Processor) walk(ctx context.Context, blocks []document.Block) {
	for _, b := range blocks {
		switch v := b.(type) {
		case *document.CodeBlock:
			p.resolve(ctx, v)
		case *document.Container:
			p.walk(ctx, v.Children)
		}
	}
}

func (p *Processor) warn(line int, msg string) {
	p.warnings = append(p.warnings, document.Warning{Line: line, Message: msg})
}

func (p *Processor) resolve(ctx context.Context, cb *document.CodeBlock) {
	if !cb.Props.Execute {
		cb.Output = document.Output{State: document.NotExecuted}
		return
	}

	lang := runner.Canonical(cb.Language)
	key := execcache.Key(lang, cb.Source)
	cb.CacheKey = key

	// Run-local reuse: identical blocks share one execution per run,
	// regardless of their visibility flags. A no-cache block is not
	// satisfied by a memoized persisted-cache hit; it forces the fresh
	// execution and its result replaces the memo entry.
	if out, ok := p.memo[key]; ok && (!out.FromCache || cb.Props.CacheEnabled()) {
		cb.Output = out
		return
	}

	// Persisted cache. An explicit no-cache flag bypasses the lookup and
	// forces a fresh execution whose result replaces the stored entry.
	if cb.Props.CacheEnabled() {
		if entry, ok := p.store.Get(key); ok && entry.ExitCode == 0 {
			out := document.Output{
				State:     document.Executed,
				Text:      entry.Text,
				ExitCode:  entry.ExitCode,
				Artifacts: p.store.ArtifactPaths(entry),
				FromCache: true,
			}
			p.memo[key] = out
			cb.Output = out
			return
		}
	}

	out := p.execute(ctx, cb, lang, key)
	p.memo[key] = out
	cb.Output = out
}

// execute dispatches to the subprocess runner and classifies the outcome.
func (p *Processor) execute(ctx context.Context, cb *document.CodeBlock, lang, key string) document.Output {
	inv, err := p.runner.Run(ctx, cb.Language, cb.Source)
	if inv != nil {
		defer inv.Cleanup()
	}

	switch {
	case errors.Is(err, runner.ErrUnsupportedLanguage):
		p.warn(cb.Line, fmt.Sprintf("code block language %q is not executable", cb.Language))
		return document.Output{
			State:   document.Failed,
			Failure: document.FailureLanguage,
			Message: fmt.Sprintf("unsupported language %q", cb.Language),
		}

	case errors.Is(err, runner.ErrTimeout):
		p.warn(cb.Line, fmt.Sprintf("code block timed out: %v", err))
		out := document.Output{
			State:   document.Failed,
			Failure: document.FailureTimeout,
			Message: err.Error(),
		}
		if inv != nil {
			out.Text = inv.Output
		}
		return out

	case err != nil:
		p.warn(cb.Line, fmt.Sprintf("code block failed: %v", err))
		return document.Output{
			State:   document.Failed,
			Failure: document.FailureExec,
			Message: err.Error(),
		}

	case inv.ExitCode != 0:
		p.warn(cb.Line, fmt.Sprintf("code block exited with status %d", inv.ExitCode))
		return document.Output{
			State:    document.Failed,
			Failure:  document.FailureExec,
			Message:  fmt.Sprintf("exited with status %d", inv.ExitCode),
			Text:     inv.Output,
			ExitCode: inv.ExitCode,
		}
	}

	out := document.Output{
		State:    document.Executed,
		Text:     inv.Output,
		ExitCode: 0,
	}

	// Persist and let the stored copies back the output, so artifact
	// paths stay valid after the scratch dir is removed.
	entry, putErr := p.store.Put(key, inv.Output, 0, inv.Artifacts)
	if putErr != nil {
		p.warn(cb.Line, fmt.Sprintf("caching execution result failed: %v", putErr))
		return out
	}
	out.Artifacts = p.store.ArtifactPaths(entry)
	return out
}
