package engine

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleGateApproves(t *testing.T) {
	var out bytes.Buffer
	g := &ConsoleGate{In: strings.NewReader("y\n"), Out: &out}

	bp := Breakpoint{
		Title:    "Review pool design",
		Question: "Proceed with implementation?",
		Context:  map[string]any{"maxSize": 32, "artifacts": 3},
	}
	require.NoError(t, g.Approve(context.Background(), bp))
	assert.Contains(t, out.String(), "Review pool design")
	assert.Contains(t, out.String(), "artifacts: 3")
	assert.Contains(t, out.String(), "maxSize: 32")
}

func TestConsoleGateRejects(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "explicit no", input: "n\n"},
		{name: "empty defaults to no", input: "\n"},
		{name: "garbage", input: "maybe\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &ConsoleGate{In: strings.NewReader(tt.input), Out: &bytes.Buffer{}}
			err := g.Approve(context.Background(), Breakpoint{Title: "x"})
			assert.ErrorIs(t, err, ErrRejected)
		})
	}
}

func TestReviewGateResolveApproved(t *testing.T) {
	g := NewReviewGate()

	done := make(chan error, 1)
	go func() {
		done <- g.Approve(context.Background(), Breakpoint{Title: "Review CA hierarchy"})
	}()

	// Wait for the breakpoint to show up as pending.
	var pending []PendingBreakpoint
	require.Eventually(t, func() bool {
		pending = g.Pending()
		return len(pending) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Review CA hierarchy", pending[0].Breakpoint.Title)

	require.NoError(t, g.Resolve(pending[0].ID, true))
	assert.NoError(t, <-done)
	assert.Empty(t, g.Pending())
}

func TestReviewGateResolveRejected(t *testing.T) {
	g := NewReviewGate()

	done := make(chan error, 1)
	go func() {
		done <- g.Approve(context.Background(), Breakpoint{Title: "x"})
	}()

	require.Eventually(t, func() bool { return len(g.Pending()) == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, g.Resolve(g.Pending()[0].ID, false))
	assert.ErrorIs(t, <-done, ErrRejected)
}

func TestReviewGateContextCancellation(t *testing.T) {
	g := NewReviewGate()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- g.Approve(ctx, Breakpoint{Title: "x"})
	}()

	require.Eventually(t, func() bool { return len(g.Pending()) == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestReviewGateResolveUnknown(t *testing.T) {
	g := NewReviewGate()
	assert.Error(t, g.Resolve("nope", true))
}
