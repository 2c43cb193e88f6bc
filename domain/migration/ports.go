// Package migration defines the vocabulary of a wiki migration run: file
// ingest outcomes, progress events, the run summary, the error taxonomy and
// the collaborators the publisher depends on.
package migration

import (
	"context"

	"github.com/helixml/mt2mw/domain/wiki"
)

// TreeSource retrieves the source wiki.
type TreeSource interface {
	// FetchTree builds the whole page tree. An error means no usable tree.
	FetchTree(ctx context.Context) (wiki.Tree, error)
	// FetchBody retrieves the HTML body of one page. It may be called repeatedly.
	FetchBody(ctx context.Context, page wiki.Page) (string, error)
}

// PageWriter writes wikitext to a target page, replacing any existing text.
type PageWriter interface {
	Edit(ctx context.Context, title, text string) error
}

// FileIngester transfers one attachment to the target.
type FileIngester interface {
	Ingest(ctx context.Context, page wiki.Page, file wiki.File) Outcome
}

// Converter turns a source HTML body into target wikitext.
type Converter interface {
	Convert(html string) (string, error)
}
