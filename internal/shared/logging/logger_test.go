package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"":        slog.LevelInfo,
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"err":     slog.LevelError,
		"trace":   slog.LevelDebug - 2,
		"verbose": slog.LevelInfo,
	}

	for input, expected := range cases {
		if got := ParseLevel(input); got != expected {
			t.Fatalf("ParseLevel(%q) expected %v got %v", input, expected, got)
		}
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, Config{Level: "info", Format: "json"})
	logger.Info("board created", slog.String("boardId", "b1"))

	out := buf.String()
	if !strings.HasPrefix(out, "{") || !strings.Contains(out, `"boardId":"b1"`) {
		t.Fatalf("expected json output, got %s", out)
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Fatal("expected default logger")
	}

	var buf bytes.Buffer
	scoped := New(&buf, Config{}).With(slog.String("requestId", "r-1"))
	ctx := WithLogger(context.Background(), scoped)
	FromContext(ctx).Info("hello")
	if !strings.Contains(buf.String(), "requestId=r-1") {
		t.Fatalf("expected scoped attributes, got %s", buf.String())
	}
}
