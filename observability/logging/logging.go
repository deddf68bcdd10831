package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options controls the structured logger built by Setup.
type Options struct {
	Service string
	Env     string
	Level   slog.Leveler
	// Format selects FormatJSON (default) or the colourised FormatConsole.
	Format string
	// Output defaults to stdout. It is ignored when File is set.
	Output io.Writer
	// File switches output to a size-rotated log file.
	File       string
	MaxSizeMB  int
	MaxBackups int
}

func (o Options) writer() io.Writer {
	if file := strings.TrimSpace(o.File); file != "" {
		size := o.MaxSizeMB
		if size <= 0 {
			size = 100
		}
		return &lumberjack.Logger{
			Filename:   file,
			MaxSize:    size,
			MaxBackups: o.MaxBackups,
			Compress:   true,
		}
	}
	if o.Output != nil {
		return o.Output
	}
	return os.Stdout
}

func replaceAttr(_ []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		return slog.Attr{Key: "timestamp", Value: attr.Value}
	case slog.LevelKey:
		return slog.String("severity", strings.ToUpper(attr.Value.String()))
	case slog.MessageKey:
		return slog.Attr{Key: "message", Value: attr.Value}
	}
	return attr
}

func (o Options) handler(out io.Writer, level slog.Leveler) slog.Handler {
	if strings.EqualFold(strings.TrimSpace(o.Format), FormatConsole) {
		return tint.NewHandler(out, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    o.File != "",
		})
	}
	return slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level, ReplaceAttr: replaceAttr})
}

// Setup installs a slog logger as the process default and bridges the
// standard library logger onto it. Every line carries the service name and,
// when set, the environment.
func Setup(opts Options) *slog.Logger {
	out := opts.writer()
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	handler := opts.handler(out, level)

	attrs := []slog.Attr{slog.String("service", strings.TrimSpace(opts.Service))}
	if env := strings.TrimSpace(opts.Env); env != "" {
		attrs = append(attrs, slog.String("env", env))
	}
	withAttrs := handler.WithAttrs(attrs)

	base := slog.New(withAttrs)
	slog.SetDefault(base)

	stdBridge := slog.NewLogLogger(withAttrs, slog.LevelInfo)
	stdBridge.SetFlags(0)
	log.SetOutput(stdBridge.Writer())
	log.SetFlags(0)
	log.SetPrefix("")

	return base
}
