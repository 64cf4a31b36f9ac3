package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDefaultLoggerIsSilent(t *testing.T) {
	SetLogger(nil)
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("default logger should be disabled")
	}
}

func TestForTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	defer SetLogger(nil)

	For("layout").Info("placed", "id", "1")
	out := buf.String()
	if !strings.Contains(out, "component=layout") || !strings.Contains(out, "id=1") {
		t.Fatalf("unexpected log output: %s", out)
	}
}
