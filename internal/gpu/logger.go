//go:build !nogpu

package gpu

import (
	"context"
	"log/slog"
	"sync/atomic"
)

type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }

var pkgLogger atomic.Pointer[slog.Logger]

func init() { pkgLogger.Store(slog.New(discard{})) }

// slogger is the logger for every message in this package. It is replaced
// by Backend.SetLogger, which shbake.SetLogger reaches through propagation.
func slogger() *slog.Logger { return pkgLogger.Load() }

func setLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(discard{})
	}
	pkgLogger.Store(l)
}
