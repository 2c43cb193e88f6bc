package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/helixml/mt2mw/domain/migration"
	"github.com/helixml/mt2mw/domain/wiki"
)

// Migration runs fetch then publish: the whole source tree is fetched
// before the first write.
type Migration struct {
	source    migration.TreeSource
	publisher *Publisher
	dumpPath  string
	logger    *slog.Logger
}

// NewMigration creates a Migration. When dumpPath is set the fetched tree is
// written there as YAML before publishing.
func NewMigration(source migration.TreeSource, publisher *Publisher, dumpPath string, logger *slog.Logger) *Migration {
	if logger == nil {
		logger = slog.Default()
	}
	return &Migration{
		source:    source,
		publisher: publisher,
		dumpPath:  dumpPath,
		logger:    logger,
	}
}

// Run performs one migration. Only an unusable source tree is returned as an
// error (a *migration.FatalError); page and file failures are counted in
// the summary. A cancelled ctx ends the walk early and returns ctx.Err().
func (m *Migration) Run(ctx context.Context) (migration.Summary, error) {
	tree, err := m.source.FetchTree(ctx)
	if err != nil {
		return migration.Summary{}, migration.NewFatalError(migration.StageSourceTree, err)
	}
	m.logger.InfoContext(ctx, "fetched source tree",
		slog.String("root", tree.Root().Title()),
		slog.Int("pages", tree.Size()),
		slog.Int("files", tree.FileCount()),
	)

	if m.dumpPath != "" {
		if err := dumpTree(tree, m.dumpPath); err != nil {
			m.logger.WarnContext(ctx, "failed to dump source tree", slog.String("error", err.Error()))
		} else {
			m.logger.InfoContext(ctx, "dumped source tree", slog.String("path", m.dumpPath))
		}
	}

	summary := m.publisher.Publish(ctx, tree)
	if err := ctx.Err(); err != nil {
		return summary, err
	}
	summary = summary.Merge(m.publisher.PublishMainPageMarker(ctx, tree.Root()))
	return summary, nil
}

func dumpTree(tree wiki.Tree, path string) error {
	data, err := tree.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
