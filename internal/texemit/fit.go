package texemit

import "github.com/mdtex/go-md2tex/internal/document"

// maxNaturalTableWidth is the widest character budget a table may occupy
// before it gets a scale-to-fit wrapper. Roughly the column capacity of the
// text block at the body font size.
const maxNaturalTableWidth = 90

// tableNeedsFit reports whether a table's natural width likely exceeds the
// text width. Oversized tables are scaled down, never truncated.
func tableNeedsFit(t *document.Table) bool {
	return tableWidth(t) > maxNaturalTableWidth
}

// tableWidth estimates the natural width in characters: the widest cell of
// each column plus inter-column padding.
func tableWidth(t *document.Table) int {
	cols := len(t.Header)
	widths := make([]int, cols)
	measure := func(row []string) {
		for i, cell := range row {
			if i < cols && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	measure(t.Header)
	for _, row := range t.Rows {
		measure(row)
	}

	total := 0
	for _, w := range widths {
		total += w
	}
	// Three characters of padding per column boundary.
	return total + 3*(cols+1)
}
