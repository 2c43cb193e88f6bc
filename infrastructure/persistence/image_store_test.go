package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/mt2mw/domain/media"
	"github.com/helixml/mt2mw/infrastructure/persistence"
	"github.com/helixml/mt2mw/internal/database"
	"github.com/helixml/mt2mw/internal/testdb"
)

func logoRecord() media.Record {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	return media.NewRecord("logo.png", 1234, "image/png", "phoiac9h4m842xq45sp7s6u21eteeq1", ts).
		WithDimensions(media.Dimensions{Width: 64, Height: 48, Bits: 8}).
		WithDescription("the logo").
		WithUploader(0, "Migrator")
}

func TestImageStore_InsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewImageStore(testdb.New(t), "")

	require.NoError(t, store.Insert(ctx, logoRecord()))

	got, err := store.Get(ctx, "logo.png")
	require.NoError(t, err)
	assert.Equal(t, int64(1234), got.Size())
	assert.Equal(t, media.Dimensions{Width: 64, Height: 48, Bits: 8}, got.Dimensions())
	assert.Equal(t, media.TypeBitmap, got.MediaType())
	assert.Equal(t, "image", got.MajorMIME())
	assert.Equal(t, "png", got.MinorMIME())
	assert.Equal(t, "the logo", got.Description())
	assert.Equal(t, int64(0), got.UserID())
	assert.Equal(t, "Migrator", got.UserText())
	assert.Equal(t, "phoiac9h4m842xq45sp7s6u21eteeq1", got.SHA1())
	assert.True(t, got.Timestamp().Equal(time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)))
}

func TestImageStore_Exists(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewImageStore(testdb.New(t), "")

	ok, err := store.Exists(ctx, "logo.png")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Insert(ctx, logoRecord()))

	ok, err = store.Exists(ctx, "logo.png")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "LOGO.png")
	require.NoError(t, err)
	assert.False(t, ok, "lookup is by exact name")
}

func TestImageStore_InsertDuplicateFails(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewImageStore(testdb.New(t), "")
	require.NoError(t, store.Insert(ctx, logoRecord()))

	err := store.Insert(ctx, logoRecord())

	assert.Error(t, err)
	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestImageStore_CustomTable(t *testing.T) {
	ctx := context.Background()
	db := testdb.WithTable(t, "wiki_image")
	store := persistence.NewImageStore(db, "wiki_image")

	require.NoError(t, store.Insert(ctx, logoRecord()))

	var n int64
	require.NoError(t, db.Session(ctx).Raw("SELECT COUNT(*) FROM wiki_image WHERE img_name = ?", "logo.png").Scan(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestImageStore_UserIDStoredAsNullWhenAnonymous(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	store := persistence.NewImageStore(db, "")
	require.NoError(t, store.Insert(ctx, logoRecord()))

	var nulls int64
	require.NoError(t, db.Session(ctx).Raw("SELECT COUNT(*) FROM image WHERE img_user IS NULL").Scan(&nulls).Error)
	assert.Equal(t, int64(1), nulls)
}

func TestImageStore_GetMissing(t *testing.T) {
	store := persistence.NewImageStore(testdb.New(t), "")

	_, err := store.Get(context.Background(), "missing.png")

	assert.ErrorIs(t, err, database.ErrNotFound)
}
