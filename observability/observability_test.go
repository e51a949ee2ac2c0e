package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNopTracer(t *testing.T) {
	tracer := NopTracer()
	ctx := context.Background()
	ctx2, span := tracer.StartSpan(ctx, "test")
	if ctx2 != ctx {
		t.Fatalf("nop tracer should return same context")
	}
	span.SetTag("key", "value")
	span.SetError(nil)
	span.Finish()
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlog(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	l.With(String("export_id", "abc")).Warn("image probe failed",
		Int("photo", 3),
		Error("error", errors.New("bad header")),
		Bool("map", false),
	)
	out := buf.String()
	for _, want := range []string{"level=WARN", "export_id=abc", "photo=3", `error="bad header"`, "map=false"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log line %q missing %q", out, want)
		}
	}
}

func TestZapAdapter(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZap(zap.New(core)).With(String("export_id", "abc"))
	l.Warn("image probe failed",
		Int("photo", 3),
		Int64("bytes", 1024),
		Float64("height", 82.5),
		Error("error", errors.New("bad header")),
		Bool("map", false),
		Duration("elapsed", 2*time.Second),
		Field(field{key: "pages", val: []int{1, 2}}),
	)
	l.Debug("done")

	if logs.Len() != 2 {
		t.Fatalf("entries = %d, want 2", logs.Len())
	}
	e := logs.All()[0]
	if e.Level != zapcore.WarnLevel || e.Message != "image probe failed" {
		t.Fatalf("unexpected entry %+v", e.Entry)
	}
	ctx := e.ContextMap()
	if ctx["export_id"] != "abc" || ctx["photo"] != int64(3) || ctx["bytes"] != int64(1024) {
		t.Fatalf("unexpected context %v", ctx)
	}
	if ctx["height"] != 82.5 || ctx["map"] != false || ctx["error"] != "bad header" {
		t.Fatalf("unexpected context %v", ctx)
	}
	if ctx["elapsed"] != 2*time.Second {
		t.Fatalf("elapsed = %v", ctx["elapsed"])
	}
	if _, ok := ctx["pages"]; !ok {
		t.Fatalf("pages field missing from %v", ctx)
	}
	if logs.FilterMessage("done").Len() != 1 {
		t.Fatalf("debug entry not recorded")
	}
}

func TestZapNil(t *testing.T) {
	NewZap(nil).With(String("k", "v")).Error("discarded")
}

func TestMemoryLogger(t *testing.T) {
	m := NewMemoryLogger()
	child := m.With(String("export_id", "x"))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			child.Info("probe", Int("index", i))
		}(i)
	}
	wg.Wait()
	m.Debug("done")

	entries := m.Entries()
	if len(entries) != 9 {
		t.Fatalf("entries = %d, want 9", len(entries))
	}
	for _, e := range entries[:8] {
		if e.Fields["export_id"] != "x" || e.Level != "info" {
			t.Fatalf("unexpected entry %+v", e)
		}
	}
	if last := entries[8]; last.Message != "done" || len(last.Fields) != 0 {
		t.Fatalf("unexpected last entry %+v", last)
	}
}
