package logging

import (
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// Options controls logger construction.
type Options struct {
	JSON    bool
	Debug   bool
	Service string
	Version string
	// UID tags every record with a random per-process id.
	UID bool
}

// New returns a slog.Logger writing to w.
func New(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}

	logger := slog.New(handler)
	if opts.Service != "" {
		logger = logger.With("service", opts.Service)
	}
	if opts.Version != "" {
		logger = logger.With("version", opts.Version)
	}
	if opts.UID {
		logger = logger.With("uid", uuid.NewString())
	}

	return logger
}
