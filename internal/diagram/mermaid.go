// Package diagram renders diagram sources into image artifacts through an
// external renderer.
package diagram

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"

	"github.com/mdtex/go-md2tex/internal/fileutil"
)

// ErrRenderFailed reports a renderer invocation failure.
var ErrRenderFailed = errors.New("diagram rendering failed")

// Renderer turns diagram source text into an image file at outPath.
type Renderer interface {
	Render(source, outPath string) error
}

// CommandRunner abstracts command execution to enable testing without the
// renderer binary installed.
type CommandRunner interface {
	Run(name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

func (r *ExecRunner) Run(name string, args ...string) (string, string, error) {
	cmd := exec.Command(name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// MermaidCLI renders mermaid sources by invoking the mmdc CLI.
type MermaidCLI struct {
	Runner  CommandRunner
	Command string
}

// NewMermaidCLI creates a MermaidCLI with a real command runner.
func NewMermaidCLI(runner CommandRunner) *MermaidCLI {
	return &MermaidCLI{Runner: runner, Command: "mmdc"}
}

// Render writes the diagram source to a temp file and renders it to outPath.
// The output format follows outPath's extension.
func (m *MermaidCLI) Render(source, outPath string) error {
	if source == "" {
		return fmt.Errorf("%w: empty diagram source", ErrRenderFailed)
	}

	path, cleanup, err := fileutil.WriteTempFile(source, "mmd")
	if err != nil {
		return err
	}
	defer cleanup()

	if _, stderr, err := m.Runner.Run(m.Command, "-i", path, "-o", outPath); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrRenderFailed, stderr, err)
	}
	if !fileutil.FileExists(outPath) {
		return fmt.Errorf("%w: no output produced", ErrRenderFailed)
	}
	return nil
}
