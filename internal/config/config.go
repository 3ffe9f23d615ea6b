// Package config loads the companion metadata file that accompanies a
// markdown source: title fields, author list, feature toggles, variable
// bindings, the title-template selector, and TOC depth.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mdtex/go-md2tex/internal/yamlutil"
)

// Sentinel errors for metadata operations.
var (
	ErrMetaNotFound = errors.New("metadata file not found")
	ErrMetaParse    = errors.New("failed to parse metadata")
)

// Title template modes. Selected via the "titleTemplate" metadata field.
const (
	TitleDisabled = "disabled" // no title rendering
	TitleCover    = "cover"    // full cover page
	TitleBanner   = "banner"   // header banner above the body
	TitleSeparate = "separate" // separate title page before the body
)

// TOC depth bounds.
const (
	MinTOCDepth     = 1
	MaxTOCDepth     = 6
	DefaultTOCDepth = 3
)

// Author is one entry of the submitted-by list.
type Author struct {
	Name string `yaml:"name"`
	Roll string `yaml:"roll"`
}

// Meta holds all document metadata.
type Meta struct {
	Title       string   `yaml:"title"`
	Subtitle    string   `yaml:"subtitle"`
	SubmittedTo string   `yaml:"submittedto"`
	SubmittedBy []Author `yaml:"submittedby"`
	Date        string   `yaml:"date"`
	University  string   `yaml:"university"`
	Department  string   `yaml:"department"`

	TitleTemplate string `yaml:"titleTemplate"`
	TOCDepth      int    `yaml:"tocDepth"`

	EnableTitlePage       bool `yaml:"enableTitlePage"`
	EnableContentPage     bool `yaml:"enableContentPage"`
	EnableLastPageCredits bool `yaml:"enableLastPageCredits"`
	EnableThatsAllPage    bool `yaml:"enableThatsAllPage"`
	MoveFootnotesToEnd    bool `yaml:"moveFootnotesToEnd"`
	NumberHeadings        bool `yaml:"numberHeadings"`

	Variables map[string]string `yaml:"variables"`
}

// DefaultMeta returns metadata with conservative defaults and today's date.
func DefaultMeta() *Meta {
	return &Meta{
		Title:             "Untitled Document",
		Date:              time.Now().Format("January 2, 2006"),
		TitleTemplate:     TitleCover,
		TOCDepth:          DefaultTOCDepth,
		EnableTitlePage:   true,
		EnableContentPage: true,
	}
}

// Validate checks template mode and TOC depth.
func (m *Meta) Validate() error {
	switch strings.ToLower(m.TitleTemplate) {
	case "", TitleDisabled, TitleCover, TitleBanner, TitleSeparate:
		// valid
	default:
		return fmt.Errorf("titleTemplate: invalid value %q (must be %s, %s, %s, or %s)",
			m.TitleTemplate, TitleDisabled, TitleCover, TitleBanner, TitleSeparate)
	}

	if m.TOCDepth != 0 && (m.TOCDepth < MinTOCDepth || m.TOCDepth > MaxTOCDepth) {
		return fmt.Errorf("tocDepth: must be between %d and %d, got %d", MinTOCDepth, MaxTOCDepth, m.TOCDepth)
	}

	return nil
}

// Normalize fills zero values with defaults after loading.
func (m *Meta) Normalize() {
	if m.TitleTemplate == "" {
		if m.EnableTitlePage {
			m.TitleTemplate = TitleCover
		} else {
			m.TitleTemplate = TitleDisabled
		}
	}
	m.TitleTemplate = strings.ToLower(m.TitleTemplate)
	if m.TOCDepth == 0 {
		m.TOCDepth = DefaultTOCDepth
	}
	if m.Date == "" {
		m.Date = time.Now().Format("January 2, 2006")
	}
	if m.Variables == nil {
		m.Variables = map[string]string{}
	}
}

// Load reads metadata from path. The file may be YAML or JSON. Unknown
// fields are a parse error.
func Load(path string) (*Meta, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- metadata path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMetaNotFound, path)
		}
		return nil, fmt.Errorf("reading metadata: %w", err)
	}

	var meta Meta
	if err := yamlutil.UnmarshalStrict(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetaParse, err)
	}

	if err := meta.Validate(); err != nil {
		return nil, err
	}
	meta.Normalize()
	return &meta, nil
}

// LoadOrCreate loads metadata from path, writing a default file there first
// when none exists so the user has something to edit.
func LoadOrCreate(path string) (*Meta, bool, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		meta := DefaultMeta()
		data, err := yamlutil.Marshal(meta)
		if err != nil {
			return nil, false, err
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, false, fmt.Errorf("writing default metadata: %w", err)
		}
		meta.Normalize()
		return meta, true, nil
	}

	meta, err := Load(path)
	if err != nil {
		return nil, false, err
	}
	return meta, false, nil
}
