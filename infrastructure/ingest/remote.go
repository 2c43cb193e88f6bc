package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/helixml/mt2mw/domain/migration"
	"github.com/helixml/mt2mw/domain/wiki"
)

// Uploader asks the target wiki to fetch a file from a URL.
type Uploader interface {
	UploadFromURL(ctx context.Context, filename, fileURL, comment string) error
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RemoteUpload ingests files through the target's upload API. Every upload
// is preceded by a fixed delay to stay within the target's rate limits.
type RemoteUpload struct {
	uploader Uploader
	delay    time.Duration
	sleep    Sleeper
	logger   *slog.Logger
}

// RemoteOption configures a RemoteUpload.
type RemoteOption func(*RemoteUpload)

// WithSleeper replaces the delay implementation.
func WithSleeper(s Sleeper) RemoteOption {
	return func(r *RemoteUpload) {
		r.sleep = s
	}
}

// NewRemoteUpload creates a RemoteUpload waiting delay before each upload.
func NewRemoteUpload(uploader Uploader, delay time.Duration, logger *slog.Logger, opts ...RemoteOption) *RemoteUpload {
	if logger == nil {
		logger = slog.Default()
	}
	r := &RemoteUpload{
		uploader: uploader,
		delay:    delay,
		sleep:    Sleep,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Ingest uploads file by URL. A target that already stores a file of that name yields
// Skipped; any other error yields Failed.
func (r *RemoteUpload) Ingest(ctx context.Context, page wiki.Page, file wiki.File) migration.Outcome {
	if err := r.sleep(ctx, r.delay); err != nil {
		return migration.Failed(err)
	}

	err := r.uploader.UploadFromURL(ctx, file.Name(), file.URL(), file.Description())
	switch {
	case err == nil:
		return migration.Uploaded()
	case errors.Is(err, migration.ErrDuplicate):
		r.logger.Debug("file already on target",
			slog.String("page", page.Title()),
			slog.String("file", file.Name()),
		)
		return migration.Skipped("already on target")
	default:
		return migration.Failed(err)
	}
}
