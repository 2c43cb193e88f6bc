package wiki

import (
	"fmt"
	"strings"
)

// Section headings of the generated indexes.
const (
	FilesHeading    = "Files"
	SubpagesHeading = "Subpages"
)

// labelEscaper encodes the characters that would end a link early.
var labelEscaper = strings.NewReplacer("[", "&#91;", "]", "&#93;", "|", "&#124;")

// PageLink renders an internal wikitext link to target labelled with label.
func PageLink(target, label string) string {
	if label == "" || label == target {
		return "[[" + target + "]]"
	}
	return fmt.Sprintf("[[%s|%s]]", target, labelEscaper.Replace(label))
}

// FileLink renders a link to an uploaded file's description page.
// The leading colon keeps images from being embedded inline.
func FileLink(name string) string {
	return fmt.Sprintf("[[:File:%s|%s]]", name, labelEscaper.Replace(name))
}

// FilesIndex renders the generated "Files" section for a page: one link per
// attachment in source order. A page without files yields "".
func FilesIndex(files []File) string {
	if len(files) == 0 {
		return ""
	}
	items := make([]string, len(files))
	for i, f := range files {
		items[i] = "* " + FileLink(f.Name())
	}
	return section(FilesHeading, items)
}

// SubpagesIndex renders the generated "Subpages" section for a page: one link
// per child in source order. target maps a child to the title it is written
// under. A page without children yields "".
func SubpagesIndex(children []Page, target func(Page) string) string {
	if len(children) == 0 {
		return ""
	}
	items := make([]string, len(children))
	for i, c := range children {
		items[i] = "* " + PageLink(target(c), c.Title())
	}
	return section(SubpagesHeading, items)
}

func section(heading string, items []string) string {
	var b strings.Builder
	b.WriteString("\n\n===")
	b.WriteString(heading)
	b.WriteString("===\n\n")
	b.WriteString(strings.Join(items, "\n"))
	return b.String()
}
