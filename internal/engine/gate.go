package engine

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	vlog "github.com/MaTriXy/babysitter-sub001/internal/log"
)

// ErrRejected is returned when an approver declines a breakpoint.
var ErrRejected = errors.New("breakpoint rejected")

// Gate resolves a breakpoint approval. Approve blocks until the
// external actor decides, or the context is cancelled.
type Gate interface {
	Approve(ctx context.Context, bp Breakpoint) error
}

// AutoGate approves every breakpoint immediately, logging the question.
// It is the default for unattended runs.
type AutoGate struct{}

func (AutoGate) Approve(_ context.Context, bp Breakpoint) error {
	vlog.Info("auto-approving breakpoint", "title", bp.Title, "question", bp.Question)
	return nil
}

// ConsoleGate asks the operator on the terminal.
type ConsoleGate struct {
	In  io.Reader
	Out io.Writer
}

func (g *ConsoleGate) Approve(_ context.Context, bp Breakpoint) error {
	fmt.Fprintf(g.Out, "\n⏸  %s\n", bp.Title)
	fmt.Fprintf(g.Out, "%s\n", bp.Question)
	for _, line := range contextLines(bp.Context) {
		fmt.Fprintf(g.Out, "  %s\n", line)
	}
	fmt.Fprint(g.Out, "Continue? [y/N] ")

	reader := bufio.NewReader(g.In)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("reading approval: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return nil
	default:
		return ErrRejected
	}
}

// contextLines renders a breakpoint context snapshot as sorted
// "key: value" lines.
func contextLines(ctx map[string]any) []string {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, ctx[k]))
	}
	return lines
}

// PendingBreakpoint is a breakpoint awaiting an external decision.
type PendingBreakpoint struct {
	ID         string     `json:"id"`
	Breakpoint Breakpoint `json:"breakpoint"`
}

// ReviewGate parks breakpoints until they are resolved out of band,
// typically through the HTTP review API.
type ReviewGate struct {
	mu      sync.Mutex
	pending map[string]pendingEntry
}

type pendingEntry struct {
	bp   Breakpoint
	done chan bool
}

// NewReviewGate creates an empty review gate.
func NewReviewGate() *ReviewGate {
	return &ReviewGate{pending: make(map[string]pendingEntry)}
}

// Approve registers the breakpoint and blocks until Resolve is called
// for it or the context is cancelled.
func (g *ReviewGate) Approve(ctx context.Context, bp Breakpoint) error {
	id := uuid.New().String()
	entry := pendingEntry{bp: bp, done: make(chan bool, 1)}

	g.mu.Lock()
	g.pending[id] = entry
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.pending, id)
		g.mu.Unlock()
	}()

	vlog.Info("breakpoint awaiting review", "id", id, "title", bp.Title)

	select {
	case approved := <-entry.done:
		if !approved {
			return ErrRejected
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending lists breakpoints awaiting a decision, sorted by ID.
func (g *ReviewGate) Pending() []PendingBreakpoint {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]PendingBreakpoint, 0, len(g.pending))
	for id, entry := range g.pending {
		out = append(out, PendingBreakpoint{ID: id, Breakpoint: entry.bp})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Resolve delivers the decision for a pending breakpoint.
func (g *ReviewGate) Resolve(id string, approved bool) error {
	g.mu.Lock()
	entry, ok := g.pending[id]
	g.mu.Unlock()
	if !ok {
		return fmt.Errorf("no pending breakpoint %q", id)
	}
	entry.done <- approved
	return nil
}
