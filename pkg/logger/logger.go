package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Supported output encodings.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Options configures a logger built by NewWithOptions.
type Options struct {
	// Output defaults to os.Stdout.
	Output io.Writer

	// Format is FormatJSON (default) or FormatText.
	Format string

	// Level is the minimum level written to Output.
	Level slog.Level

	// Sentry forwards warnings and errors to Sentry when DSN is set.
	Sentry SentryConfig
}

// New creates a JSON-formatted info-level logger with optional context extractors.
func New(extractors ...ContextExtractor) *slog.Logger {
	return NewWithOptions(Options{}, extractors...)
}

// NewWithOptions creates a logger from opts. Context extractors apply to
// every destination, including Sentry.
func NewWithOptions(opts Options, extractors ...ContextExtractor) *slog.Logger {
	handler := newOutputHandler(opts)
	if sh := newSentryHandler(opts.Sentry, handler); sh != nil {
		handler = Fanout(handler, sh)
	}
	return slog.New(WithExtractors(handler, extractors...))
}

func newOutputHandler(opts Options) slog.Handler {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	ho := &slog.HandlerOptions{Level: opts.Level}
	if strings.EqualFold(opts.Format, FormatText) {
		return slog.NewTextHandler(out, ho)
	}
	return slog.NewJSONHandler(out, ho)
}

// ParseLevel converts a level name such as "debug", "info", "warn" or
// "error" to a slog.Level. An empty name is info.
func ParseLevel(name string) (slog.Level, error) {
	if strings.TrimSpace(name) == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", name, err)
	}
	return lvl, nil
}
