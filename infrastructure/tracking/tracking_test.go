package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixml/mt2mw/domain/migration"
)

func TestTracker_DeliversToAllSubscribers(t *testing.T) {
	tracker := NewTracker(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))

	var got []string
	tracker.Subscribe(migration.ReporterFunc(func(context.Context, migration.Event) error {
		got = append(got, "first")
		return errors.New("broken reporter")
	}))
	tracker.Subscribe(migration.ReporterFunc(func(_ context.Context, e migration.Event) error {
		got = append(got, "second:"+e.Page())
		return nil
	}))

	err := tracker.OnEvent(context.Background(), migration.NewEvent(migration.EventPageWritten, "Home"))

	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second:Home"}, got)
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLoggingReporter_SanitizedTitleNamesBoth(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewLoggingReporter(slog.New(slog.NewJSONHandler(&buf, nil)))

	event := migration.NewEvent(migration.EventTitleSanitized, "C# [draft]").WithTarget("C_ _draft_")
	require.NoError(t, reporter.OnEvent(context.Background(), event))

	lines := logLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "WARN", lines[0]["level"])
	assert.Equal(t, "C# [draft]", lines[0]["original"])
	assert.Equal(t, "C_ _draft_", lines[0]["sanitized"])
}

func TestLoggingReporter_Levels(t *testing.T) {
	tests := []struct {
		event migration.Event
		level string
		msg   string
	}{
		{migration.NewEvent(migration.EventPageWritten, "Home"), "INFO", "wrote page"},
		{migration.NewEvent(migration.EventPageFailed, "Home").WithErr(errors.New("boom")), "ERROR", "failed to write page"},
		{migration.FileEvent("Home", "logo.png", migration.Skipped("already in storage")), "INFO", "skipped file"},
		{migration.FileEvent("Home", "logo.png", migration.Failed(errors.New("boom"))), "ERROR", "failed to transfer file"},
		{migration.NewEvent(migration.EventFilesFetchFailed, "Home"), "WARN", "file listing unavailable, page treated as having no files"},
	}

	for _, tt := range tests {
		t.Run(tt.event.Kind().String(), func(t *testing.T) {
			var buf bytes.Buffer
			reporter := NewLoggingReporter(slog.New(slog.NewJSONHandler(&buf, nil)))

			require.NoError(t, reporter.OnEvent(context.Background(), tt.event))

			lines := logLines(t, &buf)
			require.Len(t, lines, 1)
			assert.Equal(t, tt.level, lines[0]["level"])
			assert.Equal(t, tt.msg, lines[0]["msg"])
			assert.Equal(t, "Home", lines[0]["page"])
		})
	}
}

func TestMetricsReporter_WriteTextfile(t *testing.T) {
	reporter := NewMetricsReporter()
	ctx := context.Background()

	for range 2 {
		require.NoError(t, reporter.OnEvent(ctx, migration.NewEvent(migration.EventPageWritten, "Home")))
	}
	require.NoError(t, reporter.OnEvent(ctx, migration.FileEvent("Home", "a.png", migration.Uploaded())))
	start := time.Unix(1700000000, 0)
	reporter.Finish(start, start.Add(90*time.Second))

	path := filepath.Join(t.TempDir(), "mt2mw.prom")
	require.NoError(t, reporter.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, `mt2mw_events_total{kind="page.written"} 2`)
	assert.Contains(t, text, `mt2mw_events_total{kind="file.uploaded"} 1`)
	assert.Contains(t, text, "mt2mw_run_duration_seconds 90")
}
