package mylog

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/habiliai/inbox/config"
	"github.com/jcooky/go-din"
	"github.com/lmittmann/tint"
)

type Logger = slog.Logger

func ToLogLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger. LOG_HANDLER selects "json" for
// machine-readable output, "text" for plain key=value lines and anything else
// for the colourised console handler.
func NewLogger(logLevel string, logHandler string) *Logger {
	return newLogger(os.Stderr, ToLogLevel(logLevel), logHandler)
}

func newLogger(w io.Writer, level slog.Level, logHandler string) *Logger {
	opts := &slog.HandlerOptions{
		AddSource: true,
		Level:     level,
	}

	var handler slog.Handler
	switch logHandler {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = newHandler(level, w)
	}

	return slog.New(handler).With("service", "inbox")
}

func newHandler(level slog.Level, w io.Writer) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		AddSource:  true,
		Level:      level,
		TimeFormat: time.DateTime,
	})
}

func Err(err error) slog.Attr {
	return tint.Err(err)
}

func init() {
	din.RegisterT(func(c *din.Container) (*Logger, error) {
		conf, err := din.GetT[*config.LogConfig](c)
		if err != nil {
			return nil, err
		}

		return NewLogger(conf.LogLevel, conf.LogHandler), nil
	})
}
