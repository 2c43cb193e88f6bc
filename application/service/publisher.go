package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/helixml/mt2mw/domain/migration"
	"github.com/helixml/mt2mw/domain/wiki"
)

// Publisher writes a fetched source tree to the target wiki, one page at a
// time in pre-order. Failures are recorded per file and per page and never
// stop the walk.
type Publisher struct {
	source    migration.TreeSource
	writer    migration.PageWriter
	ingester  migration.FileIngester
	converter migration.Converter
	options   migration.PublishOptions
	reporter  migration.Reporter
	logger    *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithReporter sets the reporter receiving every event.
func WithReporter(r migration.Reporter) PublisherOption {
	return func(p *Publisher) {
		p.reporter = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.logger = l
	}
}

// NewPublisher creates a Publisher. The ingester is only used when
// options.CopyFiles is set.
func NewPublisher(
	source migration.TreeSource,
	writer migration.PageWriter,
	ingester migration.FileIngester,
	converter migration.Converter,
	options migration.PublishOptions,
	opts ...PublisherOption,
) *Publisher {
	p := &Publisher{
		source:    source,
		writer:    writer,
		ingester:  ingester,
		converter: converter,
		options:   options,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish walks tree in pre-order and returns the merged summary of every
// subtree. A failed page does not stop its children from being published.
// Cancelling ctx stops the walk before the next page.
func (p *Publisher) Publish(ctx context.Context, tree wiki.Tree) migration.Summary {
	return p.publishSubtree(ctx, tree.Root(), 0)
}

func (p *Publisher) publishSubtree(ctx context.Context, page wiki.Page, depth int) migration.Summary {
	summary := p.publishPage(ctx, page, depth)
	for _, child := range page.Children() {
		if ctx.Err() != nil {
			break
		}
		summary = summary.Merge(p.publishSubtree(ctx, child, depth+1))
	}
	return summary
}

func (p *Publisher) publishPage(ctx context.Context, page wiki.Page, depth int) migration.Summary {
	s := migration.Summary{PagesVisited: 1}
	p.logger.DebugContext(ctx, "publishing page",
		slog.String("page", page.Title()),
		slog.String("path", page.Path()),
		slog.Int("depth", depth),
	)

	if p.options.Skips(page.Path()) {
		return p.emit(ctx, s, migration.NewEvent(migration.EventPageSkipped, page.Title()).
			WithDetail("path matches a skip pattern"))
	}

	if p.options.CopyFiles && p.ingester != nil && page.HasFiles() {
		s.NodesWithFiles++
		for _, file := range page.Files() {
			outcome := p.ingester.Ingest(ctx, page, file)
			s = p.emit(ctx, s, migration.FileEvent(page.Title(), file.Name(), outcome))
		}
	}

	if !p.options.CopyPages {
		return s
	}

	if title := wiki.SanitizeTitle(page.Title()); title != page.Title() {
		s = p.emit(ctx, s, migration.NewEvent(migration.EventTitleSanitized, page.Title()).WithTarget(title))
	}
	original := p.options.SourceTitle(page)
	target := wiki.SanitizeTitle(original)
	if target != original && original != page.Title() {
		s = p.emit(ctx, s, migration.NewEvent(migration.EventTitleSanitized, original).WithTarget(target))
	}
	if target == "" {
		return p.emit(ctx, s, migration.NewEvent(migration.EventPageFailed, page.Title()).
			WithErr(&migration.WriteError{Title: original, Err: errEmptyTitle}))
	}

	text, s := p.pageText(ctx, page, s)
	if err := p.writer.Edit(ctx, target, text); err != nil {
		return p.emit(ctx, s, migration.NewEvent(migration.EventPageFailed, page.Title()).
			WithTarget(target).
			WithErr(&migration.WriteError{Title: target, Err: err}))
	}
	return p.emit(ctx, s, migration.NewEvent(migration.EventPageWritten, page.Title()).WithTarget(target))
}

// pageText builds the converted body followed by the generated indexes.
func (p *Publisher) pageText(ctx context.Context, page wiki.Page, s migration.Summary) (string, migration.Summary) {
	body, err := p.source.FetchBody(ctx, page)
	if err != nil {
		s = p.emit(ctx, s, migration.NewEvent(migration.EventBodyFetchFailed, page.Title()).WithErr(err))
		body = ""
	}

	text := body
	if body != "" && p.converter != nil {
		converted, err := p.converter.Convert(body)
		if err != nil {
			s = p.emit(ctx, s, migration.NewEvent(migration.EventConvertFailed, page.Title()).WithErr(err))
		} else {
			text = converted
		}
	}

	if p.options.ShowFiles {
		text += wiki.FilesIndex(page.Files())
	}
	if p.options.ShowSubpages {
		text += wiki.SubpagesIndex(page.Children(), p.options.TargetTitle)
	}
	return strings.TrimLeft(text, "\n"), s
}

// PublishMainPageMarker points the target's homepage setting at root. It is
// a no-op when pages are not copied.
func (p *Publisher) PublishMainPageMarker(ctx context.Context, root wiki.Page) migration.Summary {
	if !p.options.CopyPages {
		return migration.Summary{}
	}
	title := p.options.MainPageTarget()
	value := strings.ReplaceAll(p.options.TargetTitle(root), " ", "_")

	if err := p.writer.Edit(ctx, title, value); err != nil {
		return p.emit(ctx, migration.Summary{}, migration.NewEvent(migration.EventMainPageFailed, root.Title()).
			WithTarget(title).
			WithErr(&migration.WriteError{Title: title, Err: err}))
	}
	return p.emit(ctx, migration.Summary{}, migration.NewEvent(migration.EventMainPageSet, root.Title()).
		WithTarget(title).
		WithDetail(value))
}

func (p *Publisher) emit(ctx context.Context, s migration.Summary, event migration.Event) migration.Summary {
	if p.reporter != nil {
		if err := p.reporter.OnEvent(ctx, event); err != nil {
			p.logger.ErrorContext(ctx, "failed to report event",
				slog.String("event", event.Kind().String()),
				slog.String("error", err.Error()),
			)
		}
	}
	return s.Record(event)
}
