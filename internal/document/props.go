package document

// Props is the closed, typed property set of a fenced code block, parsed
// once at the boundary from the curly-brace flag list.
type Props struct {
	Execute    bool
	ShowCode   bool
	HideCode   bool
	ShowOutput bool
	HideOutput bool
	Cache      bool
	NoCache    bool

	// HighlightLines holds expanded 1-based line numbers from a
	// highlightlines=2,4-6 spec, empty when absent.
	HighlightLines []int
}

// CodePaneVisible resolves the show-code axis. Default for executable
// blocks is hidden; an explicit show-code wins over the default, an
// explicit hide-code wins over show-code.
func (p Props) CodePaneVisible() bool {
	if p.HideCode {
		return false
	}
	return p.ShowCode
}

// OutputPaneVisible resolves the show-output axis. Default is shown.
func (p Props) OutputPaneVisible() bool {
	if p.HideOutput {
		return false
	}
	return true
}

// CacheEnabled reports whether the persisted cache may satisfy this block.
// Caching is the default; no-cache wins over cache.
func (p Props) CacheEnabled() bool {
	return !p.NoCache
}
