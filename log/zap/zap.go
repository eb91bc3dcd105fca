package zap

import (
	"sort"

	"github.com/unkn0wn-root/cachekit"
	"go.uber.org/zap"
)

var _ cachekit.Logger = ZapLogger{}

type ZapLogger struct{ L *zap.Logger }

// New names the logger "cachekit" so cache records are easy to filter.
func New(l *zap.Logger) ZapLogger { return ZapLogger{L: l.Named("cachekit")} }

func (z ZapLogger) Debug(msg string, f cachekit.Fields) { z.L.Debug(msg, zf(f)...) }
func (z ZapLogger) Info(msg string, f cachekit.Fields)  { z.L.Info(msg, zf(f)...) }
func (z ZapLogger) Warn(msg string, f cachekit.Fields)  { z.L.Warn(msg, zf(f)...) }
func (z ZapLogger) Error(msg string, f cachekit.Fields) { z.L.Error(msg, zf(f)...) }

// zf sorts by key so encoded records keep a stable field order.
func zf(f cachekit.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
