package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	dim      = color.New(color.Faint)
	bold     = color.New(color.Bold)
	levelDbg = color.New(color.FgCyan)
	levelInf = color.New(color.FgGreen)
	levelWrn = color.New(color.FgYellow)
	levelErr = color.New(color.FgRed)
)

// TerminalHandler formats log records as coloured terminal output. Colours
// are dropped when stdout is not a terminal or NO_COLOR is set.
//
// Output format:
//
//	15:04:05.000 INF wrote page title=Home/Alpha
type TerminalHandler struct {
	writer io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	groups []string
	mu     *sync.Mutex
}

func newTerminalHandler(w io.Writer, opts *slog.HandlerOptions) *TerminalHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &TerminalHandler{
		writer: w,
		level:  level,
		mu:     &sync.Mutex{},
	}
}

// Enabled reports whether the handler handles records at the given level.
func (h *TerminalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle formats a log record and writes it as one line.
func (h *TerminalHandler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer
	buf.Grow(256)

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	buf.WriteString(dim.Sprint(ts.Format("15:04:05.000")))
	buf.WriteByte(' ')

	style, label := levelStyle(r.Level)
	buf.WriteString(style.Sprint(label))
	buf.WriteByte(' ')
	buf.WriteString(bold.Sprint(r.Message))

	for _, a := range h.attrs {
		appendAttr(&buf, a, h.groups)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&buf, a, h.groups)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.writer.Write(buf.Bytes())
	return err
}

// WithAttrs returns a handler that also writes attrs on every record.
func (h *TerminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(merged, h.attrs)
	clone := *h
	clone.attrs = append(merged, attrs...)
	return &clone
}

// WithGroup returns a handler that prefixes subsequent keys with name.
func (h *TerminalHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append(make([]string, 0, len(h.groups)+1), h.groups...), name)
	return &clone
}

func levelStyle(level slog.Level) (*color.Color, string) {
	switch {
	case level < slog.LevelInfo:
		return levelDbg, "DBG"
	case level < slog.LevelWarn:
		return levelInf, "INF"
	case level < slog.LevelError:
		return levelWrn, "WRN"
	default:
		return levelErr, "ERR"
	}
}

func appendAttr(buf *bytes.Buffer, a slog.Attr, groups []string) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		prefix := groups
		if a.Key != "" {
			prefix = append(append(make([]string, 0, len(groups)+1), groups...), a.Key)
		}
		for _, ga := range a.Value.Group() {
			appendAttr(buf, ga, prefix)
		}
		return
	}

	key := a.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	buf.WriteByte(' ')
	buf.WriteString(dim.Sprint(key + "="))
	buf.WriteString(formatAttrValue(a.Value))
}

func formatAttrValue(v slog.Value) string {
	if v.Kind() == slog.KindString {
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"\\=") {
			return fmt.Sprintf("%q", s)
		}
		return s
	}
	return v.String()
}
