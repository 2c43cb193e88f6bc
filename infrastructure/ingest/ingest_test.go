package ingest_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/mt2mw/domain/media"
	"github.com/helixml/mt2mw/domain/migration"
	"github.com/helixml/mt2mw/domain/wiki"
	"github.com/helixml/mt2mw/infrastructure/ingest"
	"github.com/helixml/mt2mw/infrastructure/mediawiki"
	"github.com/helixml/mt2mw/infrastructure/persistence"
	"github.com/helixml/mt2mw/internal/testdb"
	"github.com/helixml/mt2mw/internal/wikitest"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestLayout_Path(t *testing.T) {
	layout := ingest.NewLayout("/srv/images")

	got, err := layout.Path("logo.png")
	require.NoError(t, err)

	// md5("logo.png") = 1bb87d41d15fe27b500a4bfcde01bb0e
	assert.Equal(t, filepath.Join("/srv/images", "1", "1b", "logo.png"), got)

	for _, bad := range []string{"", ".", "..", "a/b.png", `a\b.png`} {
		_, err := layout.Path(bad)
		assert.ErrorIs(t, err, ingest.ErrInvalidFilename, bad)
	}
}

type fakeUploader struct {
	calls []string
	err   error
}

func (f *fakeUploader) UploadFromURL(_ context.Context, filename, _, _ string) error {
	f.calls = append(f.calls, filename)
	return f.err
}

type sleepRecorder struct {
	waits []time.Duration
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.waits = append(s.waits, d)
	return nil
}

func TestRemoteUpload_Outcomes(t *testing.T) {
	page := wiki.NewPage("1", "Home", "Home", nil, nil)
	file := wiki.NewFile("logo.png", "http://source/logo.png")

	tests := []struct {
		name string
		err  error
		want migration.OutcomeKind
	}{
		{"uploaded", nil, migration.OutcomeUploaded},
		{"duplicate", errors.Join(errors.New("exists"), migration.ErrDuplicate), migration.OutcomeSkipped},
		{"failed", errors.New("boom"), migration.OutcomeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploader := &fakeUploader{err: tt.err}
			sleeper := &sleepRecorder{}
			backend := ingest.NewRemoteUpload(uploader, time.Second, nil, ingest.WithSleeper(sleeper.sleep))

			outcome := backend.Ingest(context.Background(), page, file)

			assert.Equal(t, tt.want, outcome.Kind())
			assert.Equal(t, []string{"logo.png"}, uploader.calls)
			assert.Equal(t, []time.Duration{time.Second}, sleeper.waits, "one delay before each upload")
		})
	}
}

func TestRemoteUpload_TargetWarnings(t *testing.T) {
	noSleep := ingest.WithSleeper(func(context.Context, time.Duration) error { return nil })
	page := wiki.NewPage("1", "Home", "Home", nil, nil)
	file := wiki.NewFile("logo.png", "http://source/logo.png")

	tests := []struct {
		name    string
		prepare func(*wikitest.MediaWiki)
		want    migration.OutcomeKind
		uploads []wikitest.Upload
	}{
		{
			name:    "same name",
			prepare: func(fake *wikitest.MediaWiki) { fake.SetExisting("logo.png") },
			want:    migration.OutcomeSkipped,
		},
		{
			name:    "same content under another name",
			prepare: func(fake *wikitest.MediaWiki) { fake.SetDuplicateOf("logo.png", "Other_logo.png") },
			want:    migration.OutcomeUploaded,
			uploads: []wikitest.Upload{{Filename: "logo.png", URL: "http://source/logo.png"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			fake := wikitest.NewMediaWiki(t, "admin", "secret")
			tt.prepare(fake)
			client, err := mediawiki.NewClient(fake.URL(), nil, nil)
			require.NoError(t, err)
			require.NoError(t, client.Login(ctx, "admin", "secret"))

			outcome := ingest.NewRemoteUpload(client, time.Second, nil, noSleep).Ingest(ctx, page, file)

			assert.Equal(t, tt.want, outcome.Kind())
			if tt.uploads == nil {
				assert.Empty(t, fake.Uploads())
			} else {
				assert.Equal(t, tt.uploads, fake.Uploads())
			}
		})
	}
}

func TestRemoteUpload_CancelledDuringDelay(t *testing.T) {
	uploader := &fakeUploader{}
	backend := ingest.NewRemoteUpload(uploader, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcome := backend.Ingest(ctx, wiki.Page{}, wiki.NewFile("a.txt", "http://x/a.txt"))

	assert.True(t, outcome.IsFailed())
	assert.ErrorIs(t, outcome.Err(), context.Canceled)
	assert.Empty(t, uploader.calls)
}

func TestSleep_ZeroDelay(t *testing.T) {
	assert.NoError(t, ingest.Sleep(context.Background(), 0))
}

func directFixture(t *testing.T, files ...wikitest.File) (*wikitest.MindTouch, persistence.ImageStore, string) {
	t.Helper()
	source := wikitest.NewMindTouch(t, wikitest.Page{ID: "1", Title: "Home", Files: files})
	return source, persistence.NewImageStore(testdb.New(t), ""), t.TempDir()
}

func TestDirectStorage_StoresFileAndRecord(t *testing.T) {
	ctx := context.Background()
	content := pngBytes(t, 3, 2)
	source, store, root := directFixture(t, wikitest.File{Name: "logo.png", Content: content, Description: "Logo"})
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	backend := ingest.NewDirectStorage(store, nil, ingest.NewLayout(root), nil,
		ingest.WithUploader(0, "Migrator"),
		ingest.WithClock(func() time.Time { return now }),
	)
	file := wiki.NewFile("logo.png", source.FileURL("1", "logo.png")).WithDescription("Logo")

	outcome := backend.Ingest(ctx, wiki.NewPage("1", "Home", "Home", nil, nil), file)
	require.Equal(t, migration.OutcomeUploaded, outcome.Kind(), outcome.String())

	stored, err := os.ReadFile(filepath.Join(root, "1", "1b", "logo.png"))
	require.NoError(t, err)
	assert.Equal(t, content, stored)

	record, err := store.Get(ctx, "logo.png")
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), record.Size())
	assert.Equal(t, media.Dimensions{Width: 3, Height: 2, Bits: 8}, record.Dimensions())
	assert.Equal(t, "image/png", record.MIMEType())
	assert.Equal(t, media.TypeBitmap, record.MediaType())
	assert.Equal(t, "Logo", record.Description())
	assert.Equal(t, "Migrator", record.UserText())
	assert.True(t, now.Equal(record.Timestamp()))

	digest, err := media.DigestReader(bytes.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, digest, record.SHA1())

	entries, err := os.ReadDir(filepath.Join(root, "1", "1b"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestDirectStorage_SecondIngestSkips(t *testing.T) {
	ctx := context.Background()
	source, store, root := directFixture(t, wikitest.File{Name: "notes.txt", Content: []byte("hello")})
	backend := ingest.NewDirectStorage(store, nil, ingest.NewLayout(root), nil)
	page := wiki.NewPage("1", "Home", "Home", nil, nil)
	file := wiki.NewFile("notes.txt", source.FileURL("1", "notes.txt"))

	first := backend.Ingest(ctx, page, file)
	second := backend.Ingest(ctx, page, file)

	assert.Equal(t, migration.OutcomeUploaded, first.Kind())
	assert.Equal(t, migration.OutcomeSkipped, second.Kind())

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	record, err := store.Get(ctx, "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, media.TypeText, record.MediaType())
	assert.Equal(t, media.Dimensions{}, record.Dimensions())
}

func TestDirectStorage_DownloadFailure(t *testing.T) {
	ctx := context.Background()
	source, store, root := directFixture(t)
	backend := ingest.NewDirectStorage(store, nil, ingest.NewLayout(root), nil)

	outcome := backend.Ingest(ctx, wiki.Page{}, wiki.NewFile("gone.png", source.FileURL("1", "gone.png")))

	assert.True(t, outcome.IsFailed())
	exists, err := store.Exists(ctx, "gone.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

type failingInsert struct {
	persistence.ImageStore
}

func (failingInsert) Insert(context.Context, media.Record) error {
	return errors.New("disk full")
}

func TestDirectStorage_InsertFailureRemovesFile(t *testing.T) {
	ctx := context.Background()
	source, store, root := directFixture(t, wikitest.File{Name: "logo.png", Content: []byte("x")})
	backend := ingest.NewDirectStorage(failingInsert{store}, nil, ingest.NewLayout(root), nil)

	outcome := backend.Ingest(ctx, wiki.Page{}, wiki.NewFile("logo.png", source.FileURL("1", "logo.png")))

	assert.True(t, outcome.IsFailed())
	_, err := os.Stat(filepath.Join(root, "1", "1b", "logo.png"))
	assert.True(t, os.IsNotExist(err))
}
