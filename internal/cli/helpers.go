package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/molonc/treealign/internal/logging"
)

// SignalContext wraps a context cancelled on SIGINT/SIGTERM.
type SignalContext struct {
	context.Context
	cancel context.CancelFunc
}

// NewSignalContext returns a context cancelled on interrupt or terminate.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	return &SignalContext{Context: ctx, cancel: cancel}
}

// Cancel releases the signal registration.
func (s *SignalContext) Cancel() {
	s.cancel()
}

func createLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return logging.New(l)
}
