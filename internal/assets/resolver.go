package assets

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mdtex/go-md2tex/internal/document"
	"github.com/mdtex/go-md2tex/internal/fileutil"
)

// imageExts lists file extensions treated as images when scanning reference
// definitions, which otherwise look like arbitrary links.
var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".pdf":  true,
	".svg":  true,
	".eps":  true,
	".bmp":  true,
	".webp": true,
}

var (
	inlineImagePattern = regexp.MustCompile(`!\[[^\]]*\]\(([^)]+)\)`)
	htmlImagePattern   = regexp.MustCompile(`(?i)<img[^>]*?src=["']([^"']+)["']`)
	refImagePattern    = regexp.MustCompile(`(?m)^\s*\[[^\]]+\]:\s*(\S+)`)
)

// FindImages extracts local image path candidates from markdown content.
// It recognizes inline images, HTML img tags and reference definitions.
// URLs, data URIs and fragment links are excluded; reference targets are
// kept only when their extension looks like an image.
func FindImages(content string) []string {
	seen := make(map[string]bool)
	var refs []string
	add := func(raw string) {
		raw = cleanImageRef(raw)
		if raw == "" || fileutil.IsURL(raw) || strings.HasPrefix(raw, "#") {
			return
		}
		if !seen[raw] {
			seen[raw] = true
			refs = append(refs, raw)
		}
	}

	for _, m := range inlineImagePattern.FindAllStringSubmatch(content, -1) {
		add(m[1])
	}
	for _, m := range htmlImagePattern.FindAllStringSubmatch(content, -1) {
		add(m[1])
	}
	for _, m := range refImagePattern.FindAllStringSubmatch(content, -1) {
		target := cleanImageRef(m[1])
		if imageExts[strings.ToLower(filepath.Ext(target))] {
			add(target)
		}
	}
	return refs
}

// cleanImageRef strips angle brackets, quotes and a trailing title from a
// markdown image destination.
func cleanImageRef(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "<") && strings.HasSuffix(raw, ">") {
		raw = raw[1 : len(raw)-1]
	}
	if len(raw) >= 2 {
		if (raw[0] == '"' && raw[len(raw)-1] == '"') || (raw[0] == '\'' && raw[len(raw)-1] == '\'') {
			return raw[1 : len(raw)-1]
		}
	}
	if i := strings.IndexByte(raw, ' '); i >= 0 {
		raw = raw[:i]
	}
	return raw
}

// Resolver copies images and execution artifacts into the build directory
// and answers where a given reference ended up. Copies are deduplicated so
// a file referenced many times is copied once.
type Resolver struct {
	sourceDir string
	buildDir  string
	copied    map[string]string // source ref -> build-relative path
}

// NewResolver creates a Resolver for a markdown file living in sourceDir
// that is being built into buildDir.
func NewResolver(sourceDir, buildDir string) *Resolver {
	return &Resolver{
		sourceDir: sourceDir,
		buildDir:  buildDir,
		copied:    make(map[string]string),
	}
}

// Resolve copies the image referenced by ref into the build directory and
// returns its build-relative path. The layout relative to the source dir
// is preserved; files outside the source dir are flattened to their base
// name. It returns false for URLs, missing files and copy failures.
func (r *Resolver) Resolve(ref string) (string, bool) {
	ref = cleanImageRef(ref)
	if ref == "" || fileutil.IsURL(ref) || strings.HasPrefix(ref, "#") {
		return "", false
	}
	if rel, ok := r.copied[ref]; ok {
		return rel, ok
	}

	src := ref
	if !filepath.IsAbs(src) {
		src = filepath.Join(r.sourceDir, ref)
	}
	if !fileutil.FileExists(src) {
		return "", false
	}

	rel, err := filepath.Rel(r.sourceDir, src)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(src)
	}
	if err := fileutil.CopyFile(src, filepath.Join(r.buildDir, rel)); err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	r.copied[ref] = rel
	return rel, true
}

// CopyImages resolves every image reference found in content, returning a
// warning for each reference that could not be copied. The build continues
// past missing images; the emitter renders a placeholder for them.
func (r *Resolver) CopyImages(content string) []document.Warning {
	var warnings []document.Warning
	for _, ref := range FindImages(content) {
		if _, ok := r.Resolve(ref); !ok {
			warnings = append(warnings, document.Warning{
				Message: fmt.Sprintf("image not found: %s", ref),
			})
		}
	}
	return warnings
}

// ResolveBlocks walks the block tree, resolving image blocks against the
// build directory and relocating execution artifacts under artifacts/<key>/
// so the emitted document can reference them with stable relative paths.
func (r *Resolver) ResolveBlocks(blocks []document.Block) []document.Warning {
	var warnings []document.Warning
	for _, b := range blocks {
		switch blk := b.(type) {
		case *document.Image:
			if blk.Resolved != "" {
				continue
			}
			rel, ok := r.Resolve(blk.Path)
			if !ok {
				blk.Missing = true
				warnings = append(warnings, document.Warning{
					Message: fmt.Sprintf("image not found: %s", blk.Path),
				})
				continue
			}
			blk.Resolved = rel
		case *document.CodeBlock:
			warnings = append(warnings, r.relocateArtifacts(blk)...)
		case *document.Container:
			warnings = append(warnings, r.ResolveBlocks(blk.Children)...)
		}
	}
	return warnings
}

// relocateArtifacts copies a code block's artifacts from the cache store
// into the build tree and rewrites the output to build-relative paths.
func (r *Resolver) relocateArtifacts(cb *document.CodeBlock) []document.Warning {
	if len(cb.Output.Artifacts) == 0 || cb.CacheKey == "" {
		return nil
	}
	var warnings []document.Warning
	rewritten := make([]string, 0, len(cb.Output.Artifacts))
	for _, src := range cb.Output.Artifacts {
		rel := filepath.ToSlash(filepath.Join("artifacts", cb.CacheKey, filepath.Base(src)))
		if err := fileutil.CopyFile(src, filepath.Join(r.buildDir, filepath.FromSlash(rel))); err != nil {
			warnings = append(warnings, document.Warning{
				Line:    cb.Line,
				Message: fmt.Sprintf("artifact copy failed: %v", err),
			})
			continue
		}
		rewritten = append(rewritten, rel)
	}
	cb.Output.Artifacts = rewritten
	return warnings
}
