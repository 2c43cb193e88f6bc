// Package markup converts MindTouch page bodies into MediaWiki wikitext.
package markup

import (
	"fmt"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

// Converter turns HTML bodies into wikitext. Links and images that point at
// the source wiki become internal links and file embeds.
type Converter struct {
	converter  *md.Converter
	sourceHost string
}

// NewConverter creates a Converter for bodies fetched from sourceURL.
func NewConverter(sourceURL string) *Converter {
	host := ""
	if u, err := url.Parse(sourceURL); err == nil {
		host = u.Host
	}

	c := &Converter{sourceHost: host}
	c.converter = md.NewConverter("", true, &md.Options{EscapeMode: "disabled"})
	c.converter.AddRules(c.rules()...)
	return c
}

// Convert converts one HTML body. An empty body yields "".
func (c *Converter) Convert(body string) (string, error) {
	if strings.TrimSpace(body) == "" {
		return "", nil
	}
	cleaned, err := clean(body)
	if err != nil {
		return "", fmt.Errorf("parse body: %w", err)
	}
	text, err := c.converter.ConvertString(cleaned)
	if err != nil {
		return "", fmt.Errorf("convert body: %w", err)
	}
	return text, nil
}
