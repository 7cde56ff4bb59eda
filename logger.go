package shbake

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler drops every record. Enabled is false, so no attributes are
// ever evaluated.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() { loggerPtr.Store(slog.New(nopHandler{})) }

// SetLogger routes shbake diagnostics to l, including those of the
// registered GPU backend. A nil l silences them again, which is also the
// initial state.
//
// Levels:
//   - Debug: backend choice, partition plan, GPU buffer sizes
//   - Info: GPU adapter opened or shared device adopted
//   - Warn: GPU unavailable, fallback to CPU, failed resource release
//
// For example, to trace backend selection on stderr:
//
//	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
//	shbake.SetLogger(slog.New(h))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
	if b := GPU(); b != nil {
		propagateLogger(b, l)
	}
}

// Logger returns the logger last passed to SetLogger, or a silent one.
// The gpu and source packages log through it.
func Logger() *slog.Logger { return loggerPtr.Load() }

// propagateLogger hands l to b when b accepts one. RegisterGPUBackend calls
// it too, so a backend registered after SetLogger still logs.
func propagateLogger(b GPUBackend, l *slog.Logger) {
	if ls, ok := b.(interface{ SetLogger(*slog.Logger) }); ok {
		ls.SetLogger(l)
	}
}
