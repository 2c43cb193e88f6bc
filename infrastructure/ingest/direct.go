package ingest

import (
	"context"
	"crypto/sha1"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/helixml/mt2mw/domain/media"
	"github.com/helixml/mt2mw/domain/migration"
	"github.com/helixml/mt2mw/domain/wiki"
)

// RecordStore is the target wiki's file table.
type RecordStore interface {
	Exists(ctx context.Context, name string) (bool, error)
	Insert(ctx context.Context, record media.Record) error
}

// DirectStorage ingests files by writing them into the target's file
// repository on disk and inserting their table rows, bypassing the upload
// API. A file whose name is already in the table is skipped.
type DirectStorage struct {
	store    RecordStore
	http     *http.Client
	layout   Layout
	userID   int64
	userName string
	now      func() time.Time
	logger   *slog.Logger
}

// DirectOption configures a DirectStorage.
type DirectOption func(*DirectStorage)

// WithUploader sets the user recorded as uploader. An id of 0 stores NULL.
func WithUploader(id int64, name string) DirectOption {
	return func(d *DirectStorage) {
		d.userID = id
		d.userName = name
	}
}

// WithClock sets the clock used for upload timestamps.
func WithClock(now func() time.Time) DirectOption {
	return func(d *DirectStorage) {
		d.now = now
	}
}

// NewDirectStorage creates a DirectStorage downloading with httpClient.
func NewDirectStorage(store RecordStore, httpClient *http.Client, layout Layout, logger *slog.Logger, opts ...DirectOption) *DirectStorage {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	d := &DirectStorage{
		store:  store,
		http:   httpClient,
		layout: layout,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Ingest stores file unless a record with its name exists. The row is
// inserted last, in its own transaction; if that fails the copied file is
// removed again.
func (d *DirectStorage) Ingest(ctx context.Context, page wiki.Page, file wiki.File) migration.Outcome {
	exists, err := d.store.Exists(ctx, file.Name())
	if err != nil {
		return migration.Failed(fmt.Errorf("check existing %s: %w", file.Name(), err))
	}
	if exists {
		d.logger.Info("file already in storage",
			slog.String("page", page.Title()),
			slog.String("file", file.Name()),
		)
		return migration.Skipped("already in storage")
	}

	dest, err := d.layout.Path(file.Name())
	if err != nil {
		return migration.Failed(err)
	}

	copied, err := d.download(ctx, file.URL(), dest)
	if err != nil {
		return migration.Failed(fmt.Errorf("download %s: %w", file.Name(), err))
	}

	record := media.NewRecord(
		file.Name(),
		copied.size,
		detectMIME(file.MIMEType(), file.Name(), copied.head),
		copied.sha1,
		d.now(),
	).
		WithDimensions(copied.dims).
		WithDescription(file.Description()).
		WithUploader(d.userID, d.userName)

	if err := d.store.Insert(ctx, record); err != nil {
		if rmErr := os.Remove(dest); rmErr != nil && !os.IsNotExist(rmErr) {
			d.logger.Warn("failed to remove orphaned file",
				slog.String("path", dest),
				slog.String("error", rmErr.Error()),
			)
		}
		return migration.Failed(err)
	}

	d.logger.Debug("stored file",
		slog.String("file", file.Name()),
		slog.String("path", dest),
		slog.Int64("size", copied.size),
	)
	return migration.Uploaded()
}

type copiedFile struct {
	size int64
	sha1 string
	head []byte
	dims media.Dimensions
}

// download copies url to dest through a temporary file in the same
// directory, so dest only ever holds complete content.
func (d *DirectStorage) download(ctx context.Context, url, dest string) (copiedFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return copiedFile{}, fmt.Errorf("create request: %w", err)
	}
	resp, err := d.http.Do(req)
	if err != nil {
		return copiedFile{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return copiedFile{}, fmt.Errorf("HTTP %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return copiedFile{}, fmt.Errorf("create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dest)+".*")
	if err != nil {
		return copiedFile{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmpPath)
		}
	}()

	hasher := sha1.New()
	head := &prefixWriter{limit: sniffLen}
	size, err := io.Copy(io.MultiWriter(tmp, hasher, head), resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return copiedFile{}, fmt.Errorf("copy: %w", err)
	}

	dims, err := probeFile(tmpPath)
	if err != nil {
		return copiedFile{}, err
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return copiedFile{}, fmt.Errorf("rename: %w", err)
	}
	renamed = true

	return copiedFile{
		size: size,
		sha1: media.SHA1Base36(hasher.Sum(nil)),
		head: head.buf,
		dims: dims,
	}, nil
}

func probeFile(path string) (media.Dimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return media.Dimensions{}, fmt.Errorf("open for probing: %w", err)
	}
	defer func() { _ = f.Close() }()
	return probeDimensions(f), nil
}

// prefixWriter keeps the first limit bytes written to it.
type prefixWriter struct {
	buf   []byte
	limit int
}

func (w *prefixWriter) Write(p []byte) (int, error) {
	if room := w.limit - len(w.buf); room > 0 {
		if len(p) < room {
			room = len(p)
		}
		w.buf = append(w.buf, p[:room]...)
	}
	return len(p), nil
}
