package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/mt2mw/domain/migration"
	"github.com/helixml/mt2mw/domain/wiki"
)

func TestMigration_Run(t *testing.T) {
	h := newHarness(homeTree())
	dump := filepath.Join(t.TempDir(), "tree.yaml")
	m := NewMigration(h.source, h.publisher(migration.DefaultPublishOptions(), nil), dump, quietLogger())

	summary, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"Home", "Home/Alpha", "Home/Alpha/Gamma", "Home/Beta", "MediaWiki:Mainpage"}, h.writer.titles())
	assert.Equal(t, "Home", h.writer.edits[4].Text)
	assert.True(t, summary.MainPageSet)

	data, err := os.ReadFile(dump)
	require.NoError(t, err)
	dumped, err := wiki.ParseTree(data)
	require.NoError(t, err)
	assert.Equal(t, 4, dumped.Size())
}

func TestMigration_SourceFailureIsFatal(t *testing.T) {
	h := newHarness(wiki.Tree{})
	h.source.treeErr = errors.New("connection refused")
	m := NewMigration(h.source, h.publisher(migration.DefaultPublishOptions(), nil), "", quietLogger())

	_, err := m.Run(context.Background())

	require.Error(t, err)
	assert.True(t, migration.IsFatal(err))
	var fatal *migration.FatalError
	require.ErrorAs(t, err, &fatal)
	assert.Equal(t, migration.StageSourceTree, fatal.Stage)
	assert.Empty(t, h.writer.edits, "no writes after a fatal fetch failure")
}
