package engine

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestDisplayTaskLines(t *testing.T) {
	var buf bytes.Buffer
	d := &Display{w: &buf}

	d.Header("development/connection-pool", "Connection pool development")
	d.TaskStart("pool-design", "Design connection pool for payments")
	d.TaskDone("pool-design", "Design connection pool for payments", 0.0123, 2*time.Second)
	d.TaskFailed("pool-validation", bytes.ErrTooLarge)
	d.Summary(4, 0.0123, 10*time.Second)

	out := buf.String()
	for _, want := range []string{
		"development/connection-pool",
		"⏳ pool-design",
		"✅ pool-design",
		"$0.0123",
		"❌ pool-validation",
		"4 artifacts",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestDisplayTruncatesLongNames(t *testing.T) {
	var buf bytes.Buffer
	d := &Display{w: &buf}

	long := strings.Repeat("x", nameColumnWidth+10)
	d.TaskStart(long, "title")
	if !strings.Contains(buf.String(), "…") {
		t.Error("expected long task name to be truncated with ellipsis")
	}
}
