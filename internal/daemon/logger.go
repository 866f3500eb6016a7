package daemon

import (
	"fmt"
	"log/slog"
)

// StandardLogger adapts slog to the Printf/Println-shaped calls the tick
// loop makes, so daemon.go doesn't need to know it's writing structured
// logs underneath.
type StandardLogger struct {
	logger *slog.Logger
}

// NewStandardLogger creates a StandardLogger writing to slog's default
// handler.
func NewStandardLogger() *StandardLogger {
	return &StandardLogger{logger: slog.Default()}
}

// Printf formats its arguments and logs the result at info level.
func (l *StandardLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Println logs its arguments at info level.
func (l *StandardLogger) Println(v ...any) {
	l.logger.Info("log message", "args", v)
}
