package tracking

import (
	"context"
	"log/slog"

	"github.com/helixml/mt2mw/domain/migration"
)

// LoggingReporter writes one human-readable line per event.
type LoggingReporter struct {
	logger *slog.Logger
}

// NewLoggingReporter creates a new LoggingReporter.
func NewLoggingReporter(logger *slog.Logger) *LoggingReporter {
	return &LoggingReporter{
		logger: logger,
	}
}

// OnEvent logs the event.
func (r *LoggingReporter) OnEvent(ctx context.Context, event migration.Event) error {
	attrs := []any{slog.String("page", event.Page())}
	if event.Target() != "" && event.Target() != event.Page() {
		attrs = append(attrs, slog.String("target", event.Target()))
	}
	if event.File() != "" {
		attrs = append(attrs, slog.String("file", event.File()))
	}
	if event.Detail() != "" {
		key := "detail"
		if event.Err() != nil {
			key = "error"
		}
		attrs = append(attrs, slog.String(key, event.Detail()))
	}

	switch event.Kind() {
	case migration.EventPageWritten:
		r.logger.InfoContext(ctx, "wrote page", attrs...)
	case migration.EventPageSkipped:
		r.logger.InfoContext(ctx, "skipped page", attrs...)
	case migration.EventPageFailed:
		r.logger.ErrorContext(ctx, "failed to write page", attrs...)
	case migration.EventTitleSanitized:
		r.logger.WarnContext(ctx, "sanitized title",
			slog.String("original", event.Page()),
			slog.String("sanitized", event.Target()),
		)
	case migration.EventBodyFetchFailed:
		r.logger.WarnContext(ctx, "page body unavailable, writing an empty body", attrs...)
	case migration.EventConvertFailed:
		r.logger.WarnContext(ctx, "conversion failed, writing the raw HTML", attrs...)
	case migration.EventFilesFetchFailed:
		r.logger.WarnContext(ctx, "file listing unavailable, page treated as having no files", attrs...)
	case migration.EventFileUploaded:
		r.logger.InfoContext(ctx, "uploaded file", attrs...)
	case migration.EventFileSkipped:
		r.logger.InfoContext(ctx, "skipped file", attrs...)
	case migration.EventFileFailed:
		r.logger.ErrorContext(ctx, "failed to transfer file", attrs...)
	case migration.EventMainPageSet:
		r.logger.InfoContext(ctx, "set main page", attrs...)
	case migration.EventMainPageFailed:
		r.logger.ErrorContext(ctx, "failed to set main page", attrs...)
	default:
		r.logger.DebugContext(ctx, event.Kind().String(), attrs...)
	}
	return nil
}
