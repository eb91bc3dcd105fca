package zap

import (
	"errors"
	"testing"

	"github.com/unkn0wn-root/cachekit"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerLevelsAndFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	l.Debug("d", nil)
	l.Info("i", cachekit.Fields{"key": "myKey"})
	l.Warn("w", cachekit.Fields{"err": errors.New("boom")})
	l.Error("e", cachekit.Fields{"n": 3})

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}
	wantLevels := []zapcore.Level{zapcore.DebugLevel, zapcore.InfoLevel, zapcore.WarnLevel, zapcore.ErrorLevel}
	for i, e := range entries {
		if e.Level != wantLevels[i] {
			t.Fatalf("entry %d level = %v, want %v", i, e.Level, wantLevels[i])
		}
		if e.LoggerName != "cachekit" {
			t.Fatalf("entry %d logger name = %q", i, e.LoggerName)
		}
	}
	if got := entries[1].ContextMap()["key"]; got != "myKey" {
		t.Fatalf("key field = %v", got)
	}
	if got := entries[2].ContextMap()["err"]; got != "boom" {
		t.Fatalf("err field = %v", got)
	}
}

func TestZapLoggerFieldOrderIsStable(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := New(zap.New(core))

	f := cachekit.Fields{"op": "get", "err": "x", "key": "k", "attempt": 1, "provider": "redis"}
	for i := 0; i < 20; i++ {
		l.Info("m", f)
	}
	want := []string{"attempt", "err", "key", "op", "provider"}
	for i, e := range logs.All() {
		if len(e.Context) != len(want) {
			t.Fatalf("entry %d has %d fields", i, len(e.Context))
		}
		for j, fld := range e.Context {
			if fld.Key != want[j] {
				t.Fatalf("entry %d field %d = %q, want %q", i, j, fld.Key, want[j])
			}
		}
	}
}
