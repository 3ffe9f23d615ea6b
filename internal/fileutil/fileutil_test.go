package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteTempFile(t *testing.T) {
	t.Parallel()

	path, cleanup, err := WriteTempFile("hello", "md")
	if err != nil {
		t.Fatalf("WriteTempFile() error = %v", err)
	}
	defer cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading temp file: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q, want %q", data, "hello")
	}
	if filepath.Ext(path) != ".md" {
		t.Errorf("extension = %q, want .md", filepath.Ext(path))
	}

	cleanup()
	if FileExists(path) {
		t.Error("file still exists after cleanup")
	}
}

func TestValidateExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		extension string
		wantErr   error
	}{
		{name: "valid", extension: "tex", wantErr: nil},
		{name: "empty", extension: "", wantErr: ErrExtensionEmpty},
		{name: "forward slash", extension: "a/b", wantErr: ErrExtensionPathTraversal},
		{name: "backslash", extension: `a\b`, wantErr: ErrExtensionPathTraversal},
		{name: "null byte", extension: "a\x00b", wantErr: ErrExtensionPathTraversal},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateExtension(tt.extension)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateExtension(%q) = %v, want %v", tt.extension, err, tt.wantErr)
			}
		})
	}
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if !FileExists(file) {
		t.Error("FileExists(file) = false")
	}
	if FileExists(dir) {
		t.Error("FileExists(dir) = true")
	}
	if FileExists(filepath.Join(dir, "missing")) {
		t.Error("FileExists(missing) = true")
	}
}

func TestCopyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "src.png")
	if err := os.WriteFile(src, []byte("image"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Destination parents do not exist yet.
	dst := filepath.Join(dir, "build", "images", "src.png")
	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile() error = %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "image" {
		t.Errorf("copied content = %q", data)
	}
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		s    string
		want bool
	}{
		{"https://example.com/a.png", true},
		{"http://example.com", true},
		{"data:image/png;base64,AAAA", true},
		{"images/plot.png", false},
		{"plot.png", false},
	}

	for _, tt := range tests {

		tt := tt
		if got := IsURL(tt.s); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}
