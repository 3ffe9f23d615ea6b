package texemit

import (
	"strings"

	"github.com/mdtex/go-md2tex/internal/config"
)

// InjectTemplate fills the template shell's placeholders from metadata.
// inputFile is the name of the emitted body file inside the build directory.
func InjectTemplate(template string, meta *config.Meta, inputFile string) string {
	titlePage := false
	switch meta.TitleTemplate {
	case config.TitleCover, config.TitleSeparate:
		titlePage = true
	}

	replacements := map[string]string{
		"@@TITLE@@":                    Escape(meta.Title),
		"@@SUBTITLE@@":                 Escape(meta.Subtitle),
		"@@SUBMITTEDTO@@":              Escape(meta.SubmittedTo),
		"@@AUTHORS@@":                  authorsBlock(meta.SubmittedBy),
		"@@DATE@@":                     Escape(meta.Date),
		"@@UNIVERSITY@@":               Escape(meta.University),
		"@@DEPARTMENT@@":               Escape(meta.Department),
		"@@INPUT_FILE@@":               inputFile,
		"@@ENABLE_TITLE_PAGE@@":        toggle("enabletitlepage", titlePage),
		"@@ENABLE_CONTENT_PAGE@@":      toggle("enablecontentpage", meta.EnableContentPage),
		"@@ENABLE_LAST_PAGE_CREDITS@@": toggle("enablelastpagecredits", meta.EnableLastPageCredits),
		"@@ENABLE_FOOTNOTES_AT_END@@":  toggle("enablefootnotesatend", meta.MoveFootnotesToEnd),
		"@@ENABLE_THATS_ALL_PAGE@@":    toggle("enablethatsall", meta.EnableThatsAllPage),
	}

	for placeholder, value := range replacements {
		template = strings.ReplaceAll(template, placeholder, value)
	}
	return template
}

func toggle(name string, on bool) string {
	if on {
		return `\` + name + `true`
	}
	return `\` + name + `false`
}

// authorsBlock renders the submitted-by list as tabular rows.
func authorsBlock(authors []config.Author) string {
	var lines []string
	for i, a := range authors {
		if i > 0 {
			lines = append(lines, `\noalign{\vspace{0.3cm}}`)
		}
		lines = append(lines, `Name: & `+Escape(a.Name)+` \\`)
		lines = append(lines, `Reg\#: & `+Escape(a.Roll)+` \\`)
	}
	return strings.Join(lines, "\n")
}

// TitleBanner renders the compact banner-mode title that leads the body
// when the title template is "banner" instead of a full page.
func TitleBanner(meta *config.Meta) string {
	var b strings.Builder
	b.WriteString("\\begin{center}\n")
	b.WriteString(`{\LARGE\bfseries ` + Escape(meta.Title) + `\par}` + "\n")
	if meta.Subtitle != "" {
		b.WriteString(`{\large ` + Escape(meta.Subtitle) + `\par}` + "\n")
	}
	if meta.Date != "" {
		b.WriteString(`{\small ` + Escape(meta.Date) + `\par}` + "\n")
	}
	b.WriteString("\\end{center}\n")
	b.WriteString(`\noindent\rule{\textwidth}{0.4pt}` + "\n")
	return b.String()
}
