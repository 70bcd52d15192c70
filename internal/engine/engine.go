// Package engine implements the runtime that process definitions are
// written against: task dispatch with schema validation at the boundary,
// ordered parallel fan-out, and human approval gates.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MaTriXy/babysitter-sub001/internal/cost"
	vlog "github.com/MaTriXy/babysitter-sub001/internal/log"
	"github.com/MaTriXy/babysitter-sub001/internal/run"
	"github.com/MaTriXy/babysitter-sub001/internal/schema"
	"github.com/MaTriXy/babysitter-sub001/internal/task"
)

// Call pairs a task definition with the arguments for one invocation,
// used for parallel fan-out batches.
type Call struct {
	Def  task.Definition
	Args task.Args
}

// Breakpoint is a human-in-the-loop approval gate. The process suspends
// until an external actor resumes it; there is no timeout beyond
// context cancellation.
type Breakpoint struct {
	Title    string         `json:"title"`
	Question string         `json:"question"`
	Context  map[string]any `json:"context,omitempty"`
}

// Ctx is the runtime contract a process runs against. Process
// definitions and the phase runner depend on this interface; tests
// substitute stubs.
type Ctx interface {
	// Now returns the runtime clock, used for duration arithmetic.
	Now() time.Time
	// Log emits a fire-and-forget log record.
	Log(level slog.Level, msg string, args ...any)
	// Task dispatches one task to the agent executor and returns its
	// decoded JSON result. A failed dispatch fails the process; there is
	// no retry here.
	Task(ctx context.Context, def task.Definition, args task.Args) (task.Result, error)
	// Parallel dispatches a batch of independent calls concurrently and
	// returns their results in input order.
	Parallel(ctx context.Context, calls []Call) ([]task.Result, error)
	// Breakpoint suspends the process pending external approval.
	Breakpoint(ctx context.Context, bp Breakpoint) error
}

// Runtime is the production Ctx implementation.
type Runtime struct {
	Dispatcher Dispatcher
	Gate       Gate      // nil means auto-approve
	Recorder   *run.Run  // nil disables task I/O persistence
	Display    *Display  // nil disables terminal output
	Clock      func() time.Time
}

var _ Ctx = (*Runtime)(nil)

// Now returns the runtime clock.
func (rt *Runtime) Now() time.Time {
	if rt.Clock != nil {
		return rt.Clock()
	}
	return time.Now()
}

// Log emits through the shared logger.
func (rt *Runtime) Log(level slog.Level, msg string, args ...any) {
	vlog.Log(level, msg, args...)
}

// Task builds the spec for a fresh effect ID, persists its input,
// dispatches it and validates the result against the declared output
// schema before anything downstream can trust its shape.
func (rt *Runtime) Task(ctx context.Context, def task.Definition, args task.Args) (task.Result, error) {
	effectID := uuid.New().String()
	spec := def.Build(args, task.Context{EffectID: effectID})

	if rt.Display != nil {
		rt.Display.TaskStart(def.Name(), spec.Title)
	}
	if rt.Recorder != nil {
		if err := rt.Recorder.WriteJSON(spec.IO.InputJSONPath, map[string]any{"spec": spec, "args": args}); err != nil {
			vlog.Warn("failed to persist task input", "task", def.Name(), "err", err)
		}
	}

	start := rt.Now()
	res, err := rt.Dispatcher.Dispatch(ctx, spec)
	duration := rt.Now().Sub(start)

	if err == nil && spec.Agent.OutputSchema != nil {
		if verr := schema.Validate(schema.Schema(spec.Agent.OutputSchema), map[string]any(res)); verr != nil {
			err = verr
		}
	}

	if err != nil {
		rt.record(run.TaskRecord{
			EffectID:   effectID,
			Name:       def.Name(),
			Title:      spec.Title,
			Status:     "failed",
			DurationMS: duration.Milliseconds(),
			Error:      err.Error(),
		})
		if rt.Display != nil {
			rt.Display.TaskFailed(def.Name(), err)
		}
		return nil, fmt.Errorf("task %q: %w", def.Name(), err)
	}

	if rt.Recorder != nil {
		if werr := rt.Recorder.WriteJSON(spec.IO.OutputJSONPath, res); werr != nil {
			vlog.Warn("failed to persist task result", "task", def.Name(), "err", werr)
		}
	}

	spent := cost.FromResult(map[string]any(res)).Dollars()
	rt.record(run.TaskRecord{
		EffectID:   effectID,
		Name:       def.Name(),
		Title:      spec.Title,
		Status:     "completed",
		Cost:       spent,
		DurationMS: duration.Milliseconds(),
	})
	if rt.Display != nil {
		rt.Display.TaskDone(def.Name(), spec.Title, spent, duration)
	}
	return res, nil
}

// Parallel runs a batch of calls concurrently. Each branch gets its own
// argument object and result slot; results are merged in input order.
// The first failing branch cancels the rest.
func (rt *Runtime) Parallel(ctx context.Context, calls []Call) ([]task.Result, error) {
	results := make([]task.Result, len(calls))
	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			res, err := rt.Task(gctx, call.Def, call.Args)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Breakpoint suspends until the configured gate resolves the approval.
func (rt *Runtime) Breakpoint(ctx context.Context, bp Breakpoint) error {
	if rt.Display != nil {
		rt.Display.BreakpointWait(bp.Title)
	}
	gate := rt.Gate
	if gate == nil {
		gate = AutoGate{}
	}
	if err := gate.Approve(ctx, bp); err != nil {
		return fmt.Errorf("breakpoint %q: %w", bp.Title, err)
	}
	if rt.Display != nil {
		rt.Display.BreakpointResolved(bp.Title)
	}
	return nil
}

func (rt *Runtime) record(tr run.TaskRecord) {
	if rt.Recorder == nil {
		return
	}
	if err := rt.Recorder.AddTaskRecord(tr); err != nil {
		vlog.Warn("failed to save task record", "task", tr.Name, "err", err)
	}
}
