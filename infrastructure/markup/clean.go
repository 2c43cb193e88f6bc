package markup

import (
	"strings"

	"golang.org/x/net/html"
)

// droppedTags never carry page content.
var droppedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"object":   true,
	"embed":    true,
	"form":     true,
	"input":    true,
	"button":   true,
}

// droppedClasses mark MindTouch editor chrome embedded in stored bodies.
var droppedClasses = map[string]bool{
	"mt-toc":          true,
	"mt-comments":     true,
	"mt-edit-section": true,
	"mt-page-toolbar": true,
	"editIcon":        true,
}

// clean parses body and removes elements that are not page content.
// The returned HTML is the inner content of the parsed body.
func clean(body string) (string, error) {
	doc, err := html.Parse(strings.NewReader(body))
	if err != nil {
		return "", err
	}

	var toRemove []*html.Node
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.CommentNode || (n.Type == html.ElementNode && isChrome(n)) {
			toRemove = append(toRemove, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(doc)
	for _, n := range toRemove {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}

	root := findBody(doc)
	if root == nil {
		root = doc
	}
	var sb strings.Builder
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func isChrome(n *html.Node) bool {
	if droppedTags[n.Data] {
		return true
	}
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, class := range strings.Fields(a.Val) {
			if droppedClasses[class] {
				return true
			}
		}
	}
	return false
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findBody(c); found != nil {
			return found
		}
	}
	return nil
}
