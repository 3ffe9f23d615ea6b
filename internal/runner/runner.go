// Package runner executes foreign-language snippets in isolated
// subprocesses. Each invocation gets an exclusive scratch directory, a
// hard wall-clock timeout with process-tree termination, and artifact
// capture: any file the snippet writes into its scratch directory is
// reported back.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/mdtex/go-md2tex/internal/process"
)

// Sentinel errors for snippet execution.
var (
	ErrUnsupportedLanguage = errors.New("unsupported execution language")
	ErrTimeout             = errors.New("execution timed out")
)

// DefaultTimeout is the wall-clock budget per snippet.
const DefaultTimeout = 30 * time.Second

// waitDelay bounds how long Wait blocks on lingering pipe readers after
// the process tree has been killed.
const waitDelay = 2 * time.Second

// Invocation is the outcome of one subprocess run.
type Invocation struct {
	// Output is the captured stdout+stderr in arrival order. Partial
	// output is preserved on timeout and failure.
	Output   string
	ExitCode int
	// Artifacts are absolute paths of files the snippet wrote into its
	// scratch directory. Valid until Cleanup is called.
	Artifacts []string
	// TimedOut marks a wall-clock kill, distinct from a non-zero exit.
	TimedOut bool

	scratch string
}

// Cleanup removes the invocation's scratch directory. Call it after
// artifacts have been copied out.
func (inv *Invocation) Cleanup() {
	if inv != nil && inv.scratch != "" {
		_ = os.RemoveAll(inv.scratch)
	}
}

// Runner abstracts snippet execution so the directive processor can be
// tested without real subprocesses.
type Runner interface {
	Run(ctx context.Context, language, source string) (*Invocation, error)
}

// Subprocess runs snippets via os/exec, one process tree per block.
// Blocks never share interpreter state: even two identical snippets in
// the same language get separate processes.
type Subprocess struct {
	timeout time.Duration
}

// Option configures a Subprocess runner.
type Option func(*Subprocess)

// WithTimeout sets the per-snippet wall-clock budget.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("runner: WithTimeout duration must be positive")
	}
	return func(s *Subprocess) { s.timeout = d }
}

// New creates a Subprocess runner with the default timeout.
func New(opts ...Option) *Subprocess {
	s := &Subprocess{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes source in its own scratch directory and captures combined
// output plus generated artifacts. On timeout the whole process tree is
// killed and the returned invocation has TimedOut set alongside
// ErrTimeout; partial output is preserved. A non-zero exit is not an
// error here: the caller decides how to annotate it.
func (s *Subprocess) Run(ctx context.Context, language, source string) (*Invocation, error) {
	lang, ok := adapters[Canonical(language)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}

	scratch, err := os.MkdirTemp("", "md2tex-exec-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}

	srcFile := filepath.Join(scratch, "snippet."+lang.ext)
	if err := os.WriteFile(srcFile, []byte(source), 0o600); err != nil {
		_ = os.RemoveAll(scratch)
		return nil, fmt.Errorf("writing snippet: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	argv := lang.argv(srcFile)
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...) // #nosec G204 -- argv comes from the fixed adapter table
	cmd.Dir = scratch
	cmd.Env = append(os.Environ(),
		"TZ=UTC",
		"LC_ALL=C.UTF-8",
		"LANG=C.UTF-8",
		"MPLBACKEND=Agg", // headless plot saving
	)

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	process.Setpgid(cmd)
	cmd.Cancel = func() error {
		if cmd.Process != nil {
			process.KillTree(cmd.Process.Pid)
		}
		return cmd.Process.Kill()
	}
	cmd.WaitDelay = waitDelay

	runErr := cmd.Run()

	inv := &Invocation{
		Output:  output.String(),
		scratch: scratch,
	}
	if cmd.ProcessState != nil {
		inv.ExitCode = cmd.ProcessState.ExitCode()
	}
	inv.Artifacts = collectArtifacts(scratch, srcFile)

	if runCtx.Err() == context.DeadlineExceeded {
		inv.TimedOut = true
		return inv, fmt.Errorf("%w after %s", ErrTimeout, s.timeout)
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			// Non-zero exit: reported through ExitCode, not an error.
			return inv, nil
		}
		// Interpreter missing, permission problems, and the like.
		inv.Cleanup()
		return nil, fmt.Errorf("starting %s: %w", argv[0], runErr)
	}

	return inv, nil
}

// collectArtifacts lists files written into the scratch directory,
// excluding the snippet source itself.
func collectArtifacts(scratch, srcFile string) []string {
	var artifacts []string
	_ = filepath.WalkDir(scratch, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path == srcFile {
			return nil
		}
		artifacts = append(artifacts, path)
		return nil
	})
	return artifacts
}
