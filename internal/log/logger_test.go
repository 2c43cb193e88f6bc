package log

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/helixml/mt2mw/internal/config"
)

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []config.LogFormat{config.LogFormatPretty, config.LogFormatJSON} {
		cfg := config.NewAppConfigWithOptions(config.WithLogFormat(format))
		logger := NewLogger(cfg)
		if logger == nil || logger.Slog() == nil {
			t.Fatalf("NewLogger(%s) returned nil", format)
		}
		if err := logger.Close(); err != nil {
			t.Errorf("Close() without file: %v", err)
		}
	}
}

func TestNewLogger_WritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mt2mw.log")
	cfg := config.NewAppConfigWithOptions(
		config.WithLogLevel("DEBUG"),
		config.WithLogFile(path),
	)

	logger := NewLogger(cfg)
	logger.Debug("file only check", "page", "Home")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("log file line is not JSON: %v: %s", err, data)
	}
	if record["msg"] != "file only check" || record["page"] != "Home" {
		t.Errorf("unexpected record: %v", record)
	}
}

func TestLogger_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "WARN")

	logger.Debug("debug")
	logger.Info("info")
	logger.Warn("warn")
	logger.Error("error")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Errorf("expected 2 log lines, got %d: %s", len(lines), buf.String())
	}
}

func TestLogger_WithContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	ctx, id := WithRunID(context.Background())
	logger.InfoContext(ctx, "run started")

	var data map[string]any
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if data["correlation_id"] != id {
		t.Errorf("expected correlation_id=%s, got %v", id, data["correlation_id"])
	}
}

func TestWithRunID_Unique(t *testing.T) {
	_, a := WithRunID(context.Background())
	_, b := WithRunID(context.Background())
	if a == "" || a == b {
		t.Errorf("expected distinct run ids, got %q and %q", a, b)
	}
}

func TestCorrelationID_NotSet(t *testing.T) {
	if CorrelationID(context.Background()) != "" {
		t.Errorf("CorrelationID() should be empty when not set")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"DEBUG", "DEBUG"},
		{"debug", "DEBUG"},
		{"INFO", "INFO"},
		{"WARNING", "WARN"},
		{"error", "ERROR"},
		{"unknown", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input).String(); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLogger_SlogContextCarriesCorrelationID(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, config.LogFormatJSON, "INFO")

	ctx := WithCorrelationID(context.Background(), "run-1")
	logger.Slog().WarnContext(ctx, "page failed")

	var data map[string]any
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if data["correlation_id"] != "run-1" {
		t.Errorf("expected correlation_id=run-1, got %v", data["correlation_id"])
	}
}
