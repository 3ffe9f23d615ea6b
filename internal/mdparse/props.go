package mdparse

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mdtex/go-md2tex/internal/document"
)

// ParseProps parses the curly-brace property list following a fence's
// language tag, e.g. `{.execute .show-code .highlightlines=2,4-6}`.
// Flags may appear in any order; unrecognized flags are warnings, not
// errors. line is the source line for diagnostics.
func ParseProps(list string, line int) (document.Props, []document.Warning) {
	var props document.Props
	var warnings []document.Warning

	list = strings.TrimSpace(list)
	list = strings.TrimPrefix(list, "{")
	list = strings.TrimSuffix(list, "}")

	for _, field := range strings.Fields(list) {
		flag, value, hasValue := strings.Cut(field, "=")
		flag = strings.TrimPrefix(flag, ".")

		switch flag {
		case "execute":
			props.Execute = true
		case "show-code":
			props.ShowCode = true
		case "hide-code":
			props.HideCode = true
		case "show-output":
			props.ShowOutput = true
		case "hide-output":
			props.HideOutput = true
		case "cache":
			props.Cache = true
		case "no-cache":
			props.NoCache = true
		case "highlightlines":
			if !hasValue {
				warnings = append(warnings, document.Warning{Line: line,
					Message: "highlightlines requires a value like 2,4-6"})
				continue
			}
			lines, err := ParseLineSpec(value)
			if err != nil {
				warnings = append(warnings, document.Warning{Line: line,
					Message: fmt.Sprintf("invalid highlightlines spec %q: %v", value, err)})
				continue
			}
			props.HighlightLines = lines
		default:
			warnings = append(warnings, document.Warning{Line: line,
				Message: fmt.Sprintf("unknown code block flag %q ignored", field)})
		}
	}

	return props, warnings
}

// ParseLineSpec expands a comma/range line specification like "2,4-6"
// into sorted unique 1-based line numbers.
func ParseLineSpec(spec string) ([]int, error) {
	seen := map[int]bool{}

	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(part, "-")
		start, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || start < 1 {
			return nil, fmt.Errorf("bad line number %q", part)
		}

		end := start
		if isRange {
			end, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || end < start {
				return nil, fmt.Errorf("bad range %q", part)
			}
		}

		for n := start; n <= end; n++ {
			seen[n] = true
		}
	}

	if len(seen) == 0 {
		return nil, fmt.Errorf("empty spec")
	}

	lines := make([]int, 0, len(seen))
	for n := range seen {
		lines = append(lines, n)
	}
	sort.Ints(lines)
	return lines, nil
}
