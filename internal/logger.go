package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// GetLoggingHandler initializes a slog.Handler based on the provided logging level and format options.
func GetLoggingHandler(output io.Writer, level string, pretty, json bool) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: ParseLogLevel(level),
	}

	switch {
	case json:
		return slog.NewJSONHandler(output, opts)
	case pretty:
		return NewPrettyHandler(output, opts)
	default:
		return slog.NewTextHandler(output, opts)
	}
}

// ParseLogLevel converts the configured level name, unknown names fall back to info.
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "trace", "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogging initializes the global logger with the given level and format.
// Everything is sent to stderr.
func SetupLogging(level string, pretty, json bool) {
	handler := GetLoggingHandler(os.Stderr, level, pretty, json)

	slog.SetDefault(slog.New(handler))
}

// PrettyHandler is a slog.Handler that writes human-readable single line records,
// similar to the output of the standard log package.
type PrettyHandler struct {
	opts  slog.HandlerOptions
	group string // group prefix, ending with a dot
	attrs string // preformatted attributes

	mu *sync.Mutex
	w  io.Writer
}

// NewPrettyHandler creates a new PrettyHandler.
func NewPrettyHandler(w io.Writer, opts *slog.HandlerOptions) *PrettyHandler {
	h := &PrettyHandler{w: w, mu: &sync.Mutex{}}
	if opts != nil {
		h.opts = *opts
	}

	return h
}

func (h *PrettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

func (h *PrettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.group = h.group + name + "."
	return &clone
}

func (h *PrettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var sb strings.Builder
	for _, a := range attrs {
		h.writeAttr(&sb, h.group, a)
	}
	clone := *h
	clone.attrs = h.attrs + sb.String()
	return &clone
}

func (h *PrettyHandler) Handle(_ context.Context, r slog.Record) error {
	var sb strings.Builder
	if !r.Time.IsZero() {
		sb.WriteString(r.Time.Format("2006/01/02 15:04:05"))
		sb.WriteByte(' ')
	}

	// pad to the length of the longest level name
	sb.WriteString(fmt.Sprintf("%-5s ", r.Level.String()))
	sb.WriteString(r.Message)
	sb.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&sb, h.group, a)
		return true
	})
	sb.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, sb.String())
	return err
}

func (h *PrettyHandler) writeAttr(sb *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() != slog.KindGroup {
		sb.WriteByte(' ')
		sb.WriteString(prefix)
		sb.WriteString(a.Key)
		sb.WriteByte('=')
		sb.WriteString(fmt.Sprintf("%v", a.Value.Any()))
		return
	}
	if a.Key != "" {
		prefix += a.Key + "."
	}
	for _, ga := range a.Value.Group() {
		h.writeAttr(sb, prefix, ga)
	}
}
