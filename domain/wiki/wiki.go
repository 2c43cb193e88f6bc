// Package wiki models the source wiki as an immutable page tree.
package wiki

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Tree is a fully materialized source wiki rooted at its homepage.
// It is built once per run before any writes happen.
type Tree struct {
	root Page
}

// NewTree creates a Tree from its root page.
func NewTree(root Page) Tree {
	return Tree{root: root}
}

// Root returns the homepage.
func (t Tree) Root() Page { return t.root }

// Walk visits every page in pre-order: a page first, then each child subtree
// in source order. Depth is 0 for the root. Returning false from fn stops the
// walk.
func (t Tree) Walk(fn func(page Page, depth int) bool) {
	walk(t.root, 0, fn)
}

// Size returns the number of pages in the tree.
func (t Tree) Size() int {
	n := 0
	t.Walk(func(Page, int) bool {
		n++
		return true
	})
	return n
}

// FileCount returns the number of attachments across all pages.
func (t Tree) FileCount() int {
	n := 0
	t.Walk(func(p Page, _ int) bool {
		n += len(p.files)
		return true
	})
	return n
}

// PageByPath finds the first page in pre-order with the given path.
func (t Tree) PageByPath(path string) (Page, bool) {
	var found Page
	ok := false
	t.Walk(func(p Page, _ int) bool {
		if p.path == path {
			found = p
			ok = true
			return false
		}
		return true
	})
	return found, ok
}

// YAML serializes the tree for inspection.
func (t Tree) YAML() ([]byte, error) {
	data, err := yaml.Marshal(pageToYAML(t.root))
	if err != nil {
		return nil, fmt.Errorf("marshal tree: %w", err)
	}
	return data, nil
}

// ParseTree deserializes a tree produced by YAML.
func ParseTree(data []byte) (Tree, error) {
	var root pageYAML
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Tree{}, fmt.Errorf("unmarshal tree: %w", err)
	}
	return NewTree(pageFromYAML(root)), nil
}

func walk(p Page, depth int, fn func(Page, int) bool) bool {
	if !fn(p, depth) {
		return false
	}
	for _, child := range p.children {
		if !walk(child, depth+1, fn) {
			return false
		}
	}
	return true
}

// YAML serialization types (private).

type pageYAML struct {
	ID       string     `yaml:"id"`
	Title    string     `yaml:"title"`
	Path     string     `yaml:"path"`
	Files    []fileYAML `yaml:"files,omitempty"`
	Children []pageYAML `yaml:"children,omitempty"`
}

type fileYAML struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	MIMEType    string `yaml:"mime_type,omitempty"`
	Size        int64  `yaml:"size,omitempty"`
	Description string `yaml:"description,omitempty"`
}

func pageToYAML(p Page) pageYAML {
	out := pageYAML{ID: p.id, Title: p.title, Path: p.path}
	for _, f := range p.files {
		out.Files = append(out.Files, fileYAML{
			Name:        f.name,
			URL:         f.url,
			MIMEType:    f.mimeType,
			Size:        f.size,
			Description: f.description,
		})
	}
	for _, c := range p.children {
		out.Children = append(out.Children, pageToYAML(c))
	}
	return out
}

func pageFromYAML(d pageYAML) Page {
	files := make([]File, len(d.Files))
	for i, f := range d.Files {
		files[i] = NewFile(f.Name, f.URL).
			WithMIMEType(f.MIMEType).
			WithSize(f.Size).
			WithDescription(f.Description)
	}
	children := make([]Page, len(d.Children))
	for i, c := range d.Children {
		children[i] = pageFromYAML(c)
	}
	return NewPage(d.ID, d.Title, d.Path, files, children)
}
