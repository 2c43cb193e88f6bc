package markup

import (
	"fmt"
	"html"
	"net/url"
	"path"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/helixml/mt2mw/domain/wiki"
)

// attachmentMarker appears in the path of every MindTouch attachment URL.
const attachmentMarker = "/@api/deki/files/"

// Attributes the converter's own before hooks add to the document.
var converterAttrs = []string{"data-index", "data-converter-list-prefix"}

func (c *Converter) rules() []md.Rule {
	return []md.Rule{
		{Filter: []string{"h1", "h2", "h3", "h4", "h5", "h6"}, Replacement: heading},
		{Filter: []string{"strong", "b"}, Replacement: quoted("'''", "strong", "b")},
		{Filter: []string{"i", "em"}, Replacement: quoted("''", "i", "em")},
		{Filter: []string{"ul", "ol"}, Replacement: list},
		{Filter: []string{"li"}, Replacement: listItem},
		{Filter: []string{"a"}, Replacement: c.link},
		{Filter: []string{"img"}, Replacement: c.image},
		{Filter: []string{"pre"}, Replacement: preformatted},
		{Filter: []string{"code", "kbd", "samp", "tt"}, Replacement: inlineCode},
		{Filter: []string{"table"}, Replacement: keepHTML},
		{Filter: []string{"blockquote"}, Replacement: blockquote},
		{Filter: []string{"hr"}, Replacement: func(string, *goquery.Selection, *md.Options) *string {
			return md.String("\n\n----\n\n")
		}},
		{Filter: []string{"br"}, Replacement: func(string, *goquery.Selection, *md.Options) *string {
			return md.String("<br />")
		}},
	}
}

func heading(content string, selec *goquery.Selection, _ *md.Options) *string {
	content = strings.TrimSpace(strings.NewReplacer("\n", " ", "\r", " ").Replace(content))
	if content == "" {
		return md.String("")
	}
	level := int(goquery.NodeName(selec)[1] - '0')
	marks := strings.Repeat("=", level)
	return md.String(fmt.Sprintf("\n\n%s %s %s\n\n", marks, content, marks))
}

func quoted(delimiter string, tags ...string) func(string, *goquery.Selection, *md.Options) *string {
	return func(content string, selec *goquery.Selection, _ *md.Options) *string {
		parent := selec.Parent()
		for _, tag := range tags {
			if parent.Is(tag) {
				return &content
			}
		}
		trimmed := strings.TrimSpace(content)
		if trimmed == "" {
			return &trimmed
		}
		lines := strings.Split(trimmed, "\n")
		for i, line := range lines {
			if strings.TrimSpace(line) != "" {
				lines[i] = delimiter + line + delimiter
			}
		}
		return md.String(md.AddSpaceIfNessesary(selec, strings.Join(lines, "\n")))
	}
}

func list(content string, selec *goquery.Selection, _ *md.Options) *string {
	if selec.ParentsFiltered("li").Length() > 0 {
		return md.String("\n" + strings.Trim(content, "\n"))
	}
	return md.String("\n\n" + strings.Trim(content, "\n") + "\n\n")
}

// listItem prefixes an item with one marker per enclosing list, outermost
// first: "*" for unordered and "#" for ordered lists.
func listItem(content string, selec *goquery.Selection, _ *md.Options) *string {
	content = strings.TrimSpace(content)
	if content == "" {
		return md.String("")
	}
	var markers []byte
	selec.ParentsFiltered("ul, ol").Each(func(_ int, s *goquery.Selection) {
		marker := byte('*')
		if s.Is("ol") {
			marker = '#'
		}
		markers = append([]byte{marker}, markers...)
	})
	if len(markers) == 0 {
		markers = []byte{'*'}
	}
	return md.String(string(markers) + " " + content + "\n")
}

func (c *Converter) link(content string, selec *goquery.Selection, _ *md.Options) *string {
	href := strings.TrimSpace(selec.AttrOr("href", ""))
	text := strings.TrimSpace(content)
	if href == "" || href == "#" {
		return &content
	}

	if strings.HasPrefix(href, "#") {
		return md.String(wiki.PageLink(href, text))
	}

	u, err := url.Parse(href)
	if err != nil {
		return &content
	}

	if name, ok := c.attachmentName(u); ok {
		if text == "" {
			text = name
		}
		return md.String(fmt.Sprintf("[[Media:%s|%s]]", name, text))
	}

	if c.isSourcePage(u) {
		title := wiki.SanitizeTitle(strings.Trim(u.Path, "/"))
		if title == "" {
			return &content
		}
		if u.Fragment != "" {
			title += "#" + u.Fragment
		}
		return md.String(wiki.PageLink(title, text))
	}

	if text == "" || text == href {
		return md.String(href)
	}
	return md.String(fmt.Sprintf("[%s %s]", href, text))
}

func (c *Converter) image(_ string, selec *goquery.Selection, _ *md.Options) *string {
	src := strings.TrimSpace(selec.AttrOr("src", ""))
	if src == "" {
		return md.String("")
	}
	alt := strings.TrimSpace(strings.ReplaceAll(selec.AttrOr("alt", ""), "\n", " "))

	u, err := url.Parse(src)
	if err == nil {
		if name, ok := c.attachmentName(u); ok {
			if alt == "" || alt == name {
				return md.String("[[File:" + name + "]]")
			}
			return md.String(fmt.Sprintf("[[File:%s|%s]]", name, alt))
		}
	}
	return md.String(src)
}

// attachmentName returns the filename of a source attachment URL. MindTouch
// writes them as /@api/deki/files/{id}/={filename}.
func (c *Converter) attachmentName(u *url.URL) (string, bool) {
	if !c.isSourceHost(u) || !strings.Contains(u.Path, attachmentMarker) {
		return "", false
	}
	name := strings.TrimPrefix(path.Base(u.Path), "=")
	if name == "" || name == "." || name == "/" {
		return "", false
	}
	return name, true
}

func (c *Converter) isSourcePage(u *url.URL) bool {
	return c.isSourceHost(u) && !strings.HasPrefix(u.Path, "/@api/") && (u.Scheme == "" || u.Scheme == "http" || u.Scheme == "https")
}

func (c *Converter) isSourceHost(u *url.URL) bool {
	return u.Host == "" || strings.EqualFold(u.Host, c.sourceHost)
}

func preformatted(_ string, selec *goquery.Selection, _ *md.Options) *string {
	text := strings.Trim(selec.Text(), "\n")
	return md.String("\n\n<pre>" + html.EscapeString(text) + "</pre>\n\n")
}

func inlineCode(content string, selec *goquery.Selection, _ *md.Options) *string {
	if selec.ParentsFiltered("pre").Length() > 0 {
		return &content
	}
	return md.String("<code>" + html.EscapeString(selec.Text()) + "</code>")
}

func blockquote(content string, _ *goquery.Selection, _ *md.Options) *string {
	return md.String("\n\n<blockquote>" + strings.TrimSpace(content) + "</blockquote>\n\n")
}

// keepHTML passes the element through as HTML, which MediaWiki renders as is.
func keepHTML(_ string, selec *goquery.Selection, _ *md.Options) *string {
	clone := selec.Clone()
	for _, attr := range converterAttrs {
		clone.Find("[" + attr + "]").RemoveAttr(attr)
	}
	out, err := goquery.OuterHtml(clone)
	if err != nil {
		return nil
	}
	return md.String("\n\n" + out + "\n\n")
}
