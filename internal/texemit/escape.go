// Package texemit turns the assembled intermediate representation into
// LaTeX source: block mapping, inline span rendering, escaping, width
// fitting, and template placeholder injection.
package texemit

import "strings"

var escaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	`{`, `\{`,
	`}`, `\}`,
	`$`, `\$`,
	`&`, `\&`,
	`#`, `\#`,
	`%`, `\%`,
	`_`, `\_`,
	`~`, `\textasciitilde{}`,
	`^`, `\textasciicircum{}`,
)

// Escape makes plain text safe for LaTeX text mode.
func Escape(s string) string {
	return escaper.Replace(s)
}
