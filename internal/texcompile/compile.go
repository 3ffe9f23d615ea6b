// Package texcompile drives the external typesetting compiler over a
// prepared build directory and places the finished PDF next to the source.
package texcompile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/mdtex/go-md2tex/internal/fileutil"
)

// TemplateFile is the compiler entry point inside the build directory.
const TemplateFile = "template.tex"

// ErrCompilerNotFound reports that the compiler binary is not installed.
var ErrCompilerNotFound = errors.New("typesetting compiler not found")

// CommandRunner abstracts command execution to enable testing without a
// TeX installation. Commands run with dir as the working directory.
type CommandRunner interface {
	Run(dir, name string, args ...string) (stdout string, stderr string, err error)
}

// ExecRunner implements CommandRunner using os/exec.
type ExecRunner struct{}

func (r *ExecRunner) Run(dir, name string, args ...string) (string, string, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// CompileError reports a failed compiler run. LogPath points at the
// compiler's log file inside the build directory for inspection.
type CompileError struct {
	Pass    int
	LogPath string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("typesetting pass %d failed (see %s): %v", e.Pass, e.LogPath, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// Compiler invokes lualatex over a build directory. Two passes are run so
// the table of contents and cross references settle.
type Compiler struct {
	Runner  CommandRunner
	Command string
	Passes  int
}

// NewCompiler creates a Compiler with a real command runner.
func NewCompiler() *Compiler {
	return &Compiler{
		Runner:  &ExecRunner{},
		Command: "lualatex",
		Passes:  2,
	}
}

// Compile runs the compiler inside buildDir and moves the resulting PDF to
// outputPath. The build directory is left intact for inspection.
func (c *Compiler) Compile(buildDir, outputPath string) error {
	args := []string{
		"--shell-escape",
		"-synctex=1",
		"-interaction=nonstopmode",
		"-file-line-error",
		TemplateFile,
	}
	logPath := filepath.Join(buildDir, "template.log")

	for pass := 1; pass <= c.Passes; pass++ {
		if _, _, err := c.Runner.Run(buildDir, c.Command, args...); err != nil {
			if errors.Is(err, exec.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrCompilerNotFound, c.Command)
			}
			return &CompileError{Pass: pass, LogPath: logPath, Err: err}
		}
	}

	pdf := filepath.Join(buildDir, "template.pdf")
	if !fileutil.FileExists(pdf) {
		return &CompileError{Pass: c.Passes, LogPath: logPath, Err: errors.New("no PDF produced")}
	}
	return movePDF(pdf, outputPath)
}

// movePDF renames the PDF into place, falling back to copy+remove when the
// destination is on another filesystem.
func movePDF(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := fileutil.CopyFile(src, dst); err != nil {
		return fmt.Errorf("moving PDF: %w", err)
	}
	return os.Remove(src)
}
