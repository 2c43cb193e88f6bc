package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
)

func plainColours(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

func TestTerminalHandler_Format(t *testing.T) {
	plainColours(t)
	var buf bytes.Buffer
	h := newTerminalHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

	ts := time.Date(2026, 1, 15, 10, 30, 45, 123000000, time.UTC)
	r := slog.NewRecord(ts, slog.LevelInfo, "wrote page", 0)
	r.AddAttrs(slog.String("title", "Home/Alpha"), slog.Int("files", 2))

	if err := h.Handle(context.Background(), r); err != nil {
		t.Fatalf("Handle() error: %v", err)
	}

	want := "10:30:45.123 INF wrote page title=Home/Alpha files=2\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTerminalHandler_Levels(t *testing.T) {
	plainColours(t)
	tests := []struct {
		level    slog.Level
		expected string
	}{
		{slog.LevelDebug, "DBG"},
		{slog.LevelInfo, "INF"},
		{slog.LevelWarn, "WRN"},
		{slog.LevelError, "ERR"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			var buf bytes.Buffer
			h := newTerminalHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})

			if err := h.Handle(context.Background(), slog.NewRecord(time.Now(), tt.level, "msg", 0)); err != nil {
				t.Fatalf("Handle() error: %v", err)
			}
			if !strings.Contains(buf.String(), " "+tt.expected+" ") {
				t.Errorf("expected %s in output, got: %s", tt.expected, buf.String())
			}
		})
	}
}

func TestTerminalHandler_ColourCodes(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	var buf bytes.Buffer
	slog.New(newTerminalHandler(&buf, nil)).Error("boom")

	if !strings.Contains(buf.String(), "\x1b[31m") {
		t.Errorf("expected red level code, got: %q", buf.String())
	}
}

func TestTerminalHandler_QuotesValues(t *testing.T) {
	plainColours(t)
	var buf bytes.Buffer
	slog.New(newTerminalHandler(&buf, nil)).Warn("title sanitized", "original", "C# Tips", "empty", "")

	out := buf.String()
	if !strings.Contains(out, `original="C# Tips"`) {
		t.Errorf("expected quoted value, got: %s", out)
	}
	if !strings.Contains(out, `empty=""`) {
		t.Errorf("expected quoted empty value, got: %s", out)
	}
}

func TestTerminalHandler_WithAttrsAndGroup(t *testing.T) {
	plainColours(t)
	var buf bytes.Buffer
	logger := slog.New(newTerminalHandler(&buf, nil)).
		With("run", "abc").
		WithGroup("file")

	logger.Info("uploaded", "name", "logo.png")

	out := buf.String()
	if !strings.Contains(out, "run=abc") {
		t.Errorf("expected handler attr, got: %s", out)
	}
	if !strings.Contains(out, "file.name=logo.png") {
		t.Errorf("expected grouped key, got: %s", out)
	}
}

func TestTerminalHandler_FiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newTerminalHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no output, got: %s", buf.String())
	}
}
