package mindtouch

import (
	"strings"

	"github.com/helixml/mt2mw/domain/wiki"
)

// Response shapes of the @api/deki endpoints (private).

type pagesXML struct {
	Page *pageXML `xml:"page"`
}

type pageXML struct {
	ID       string    `xml:"id,attr"`
	Title    string    `xml:"title"`
	Path     string    `xml:"path"`
	Subpages []pageXML `xml:"subpages>page"`
}

type filesXML struct {
	Files []fileXML `xml:"file"`
}

type fileXML struct {
	Filename    string      `xml:"filename"`
	Description string      `xml:"description"`
	Contents    contentsRef `xml:"contents"`
}

type contentsRef struct {
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr"`
	Size int64  `xml:"size,attr"`
}

type contentsXML struct {
	Bodies []string `xml:"body"`
}

// bodyUnescaper undoes the second layer of entity escaping MindTouch applies
// to page bodies. XML decoding removes the first.
var bodyUnescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")

func (c contentsXML) body() string {
	if len(c.Bodies) == 0 {
		return ""
	}
	return bodyUnescaper.Replace(strings.TrimSpace(c.Bodies[0]))
}

func (f fileXML) toDomain() wiki.File {
	return wiki.NewFile(strings.TrimSpace(f.Filename), f.Contents.Href).
		WithMIMEType(f.Contents.Type).
		WithSize(f.Contents.Size).
		WithDescription(strings.TrimSpace(f.Description))
}
