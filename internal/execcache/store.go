package execcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mdtex/go-md2tex/internal/fileutil"
)

// ErrInvalidKey is returned for keys that are not lowercase hex.
var ErrInvalidKey = errors.New("execcache: invalid cache key")

// Entry is one persisted execution result.
type Entry struct {
	Key       string    `json:"key"`
	Text      string    `json:"text"` // combined stdout+stderr
	ExitCode  int       `json:"exitCode"`
	Artifacts []string  `json:"artifacts"` // file names under the entry's artifact dir
	CreatedAt time.Time `json:"createdAt"`
}

// Store is a single-writer, single-run result store scoped to one build
// directory. There is no eviction beyond deleting the build directory.
type Store struct {
	root string
}

// Open creates (or reuses) the cache layout under buildDir.
func Open(buildDir string) (*Store, error) {
	root := filepath.Join(buildDir, ".execcache")
	for _, dir := range []string{filepath.Join(root, "entries"), filepath.Join(root, "artifacts")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("execcache: creating %s: %w", dir, err)
		}
	}
	return &Store{root: root}, nil
}

func (s *Store) entryPath(key string) string {
	return filepath.Join(s.root, "entries", key+".json")
}

// ArtifactDir returns the directory holding the artifacts of key.
func (s *Store) ArtifactDir(key string) string {
	return filepath.Join(s.root, "artifacts", key)
}

// ArtifactPaths resolves an entry's artifact names to absolute paths.
func (s *Store) ArtifactPaths(e *Entry) []string {
	paths := make([]string, len(e.Artifacts))
	for i, name := range e.Artifacts {
		paths[i] = filepath.Join(s.ArtifactDir(e.Key), name)
	}
	return paths
}

// Get returns the entry for key, or (nil, false) on a miss. An entry whose
// backing artifact file is missing on disk counts as a miss, forcing
// re-execution.
func (s *Store) Get(key string) (*Entry, bool) {
	data, err := os.ReadFile(s.entryPath(key)) // #nosec G304 -- path derived from a hex hash
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupt entry: treat as a miss, it will be rewritten.
		return nil, false
	}

	for _, p := range s.ArtifactPaths(&entry) {
		if !fileutil.FileExists(p) {
			return nil, false
		}
	}

	return &entry, true
}

// Put persists a successful execution result. Artifact files are copied
// into the store; artifactFiles holds their current (scratch) locations.
// The entry file is written atomically so an interrupted run never leaves
// a half-written entry behind.
func (s *Store) Put(key, text string, exitCode int, artifactFiles []string) (*Entry, error) {
	if !isHexKey(key) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	entry := &Entry{
		Key:       key,
		Text:      text,
		ExitCode:  exitCode,
		CreatedAt: time.Now().UTC(),
	}

	if len(artifactFiles) > 0 {
		dir := s.ArtifactDir(key)
		if err := os.RemoveAll(dir); err != nil {
			return nil, fmt.Errorf("execcache: clearing artifact dir: %w", err)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("execcache: creating artifact dir: %w", err)
		}
		for _, src := range artifactFiles {
			name := filepath.Base(src)
			if err := fileutil.CopyFile(src, filepath.Join(dir, name)); err != nil {
				return nil, fmt.Errorf("execcache: storing artifact: %w", err)
			}
			entry.Artifacts = append(entry.Artifacts, name)
		}
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("execcache: marshaling entry: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Join(s.root, "entries"), ".entry-*")
	if err != nil {
		return nil, fmt.Errorf("execcache: creating temp entry: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("execcache: writing entry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("execcache: closing entry: %w", err)
	}
	if err := os.Rename(tmpPath, s.entryPath(key)); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("execcache: renaming entry: %w", err)
	}

	return entry, nil
}

func isHexKey(key string) bool {
	if len(key) == 0 {
		return false
	}
	for _, c := range key {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
