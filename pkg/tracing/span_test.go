package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSpanTree(t *testing.T) {
	ctx, root := Start(context.Background(), "run", "r-1")
	buildCtx, build := StartChild(ctx, "build")
	_, extract := StartChild(buildCtx, "extract")
	extract.SetAttr("documents", 3)
	extract.End()
	build.End()
	_, sync := StartChild(ctx, "sync")
	sync.End()
	root.End()

	if got := len(root.Children()); got != 2 {
		t.Fatalf("expected 2 children, got %d", got)
	}
	if !extract.Ended() || !root.Ended() {
		t.Fatal("ended spans should report Ended")
	}
	if extract.RunID != "r-1" {
		t.Fatalf("run id not inherited: %q", extract.RunID)
	}

	var buf bytes.Buffer
	root.Log(slog.New(slog.NewTextHandler(&buf, nil)))
	out := buf.String()
	if n := strings.Count(out, "phase finished"); n != 4 {
		t.Fatalf("expected 4 log records, got %d:\n%s", n, out)
	}
	if !strings.Contains(out, "phase=extract") || !strings.Contains(out, "documents=3") || !strings.Contains(out, "depth=2") {
		t.Fatalf("extract span missing from log:\n%s", out)
	}
}

func TestStartChildWithoutParent(t *testing.T) {
	ctx, s := StartChild(context.Background(), "orphan")
	if s == nil || FromContext(ctx) != s {
		t.Fatal("detached span should still be usable and stored in ctx")
	}
	if s.Ended() {
		t.Fatal("span should not be ended before End")
	}
	s.End()
}
