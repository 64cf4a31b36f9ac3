// Package logging holds the structured logger shared by the whiteboard packages.
// Nothing is logged until SetLogger installs a real handler.
package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger installs l for every package. Passing nil restores silence.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the active logger. Safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// For returns the active logger tagged with a component name.
func For(component string) *slog.Logger {
	return Logger().With(slog.String("component", component))
}
