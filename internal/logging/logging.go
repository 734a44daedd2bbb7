// Package logging builds the slog logger shared by every pastestack command.
//
// A terminal gets tinter's coloured output; anything else (a pipe, a
// service manager, a log file) gets one JSON object per line.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// Format selects the log output format.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Options describes where and how to log.
type Options struct {
	Format Format
	Level  slog.Level
	// File, when set, receives the log instead of stderr. It is opened
	// for append and created 0600.
	File string
}

// ParseFormat maps a flag value to a Format. Unknown values mean auto.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "tint", "human":
		return FormatText
	case "json":
		return FormatJSON
	}
	return FormatAuto
}

// ParseLevel parses a slog level name, returning fallback for an empty or
// unrecognised value.
func ParseLevel(s string, fallback slog.Level) slog.Level {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return fallback
	}
	return l
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// New returns a logger writing to w.
func New(w io.Writer, format Format, level slog.Level) *slog.Logger {
	if format == FormatText || (format == FormatAuto && IsTTY(w)) {
		return slog.New(tinter.NewHandler(w, &tinter.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Setup installs the default slog logger described by opts. The returned
// closer releases the log file, if any.
func Setup(opts Options) (io.Closer, error) {
	if opts.File == "" {
		slog.SetDefault(New(os.Stderr, opts.Format, opts.Level))
		return nopCloser{}, nil
	}

	f, err := OpenFile(opts.File)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(New(f, opts.Format, opts.Level))
	return f, nil
}

// OpenFile opens path for appending, creating it and its parent directory
// as needed.
func OpenFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("log file: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("log file: %w", err)
	}
	return f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
