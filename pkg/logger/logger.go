package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

type Format string

const (
	JSON Format = "json"
	Text Format = "text"
)

const ServiceKey = "service"

type Logger struct {
	*slog.Logger
}

type Config struct {
	Level     string
	Format    Format
	Output    io.Writer
	AddSource bool
	Service   string
}

func New(cfg Config) *Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     ParseLevel(cfg.Level),
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	switch ParseFormat(string(cfg.Format)) {
	case Text:
		handler = slog.NewTextHandler(out, opts)
	default:
		handler = slog.NewJSONHandler(out, opts)
	}

	if cfg.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String(ServiceKey, cfg.Service)})
	}
	return &Logger{Logger: slog.New(handler)}
}

// Nop discards every record.
func Nop() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

// Component tags every record with the subsystem that produced it.
func (l *Logger) Component(name string) *Logger {
	return l.With("component", name)
}

func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}

// ParseLevel understands slog's level names, including offsets such as
// "debug+2". Anything unparseable falls back to info.
func ParseLevel(level string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func ParseFormat(format string) Format {
	if Format(strings.ToLower(strings.TrimSpace(format))) == Text {
		return Text
	}
	return JSON
}
