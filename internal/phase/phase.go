// Package phase implements the phase-sequencing control flow shared by
// every process definition: an ordered list of phases executed
// sequentially or as one-level parallel fan-outs, each result threaded
// under a named key into later phases, artifacts collected append-only,
// with optional human checkpoints between phases.
package phase

import (
	"context"
	"fmt"
	"time"

	"github.com/MaTriXy/babysitter-sub001/internal/engine"
	"github.com/MaTriXy/babysitter-sub001/internal/task"
)

// Values is the accumulated context: each completed sequential phase's
// result stored under its key.
type Values map[string]task.Result

// Phase describes one step of a process. Exactly one of Build or FanOut
// must be set: Build dispatches a single task, FanOut dispatches one
// task per element of a driving collection as a parallel batch.
type Phase struct {
	Key    string
	Build  func(vals Values) (task.Definition, task.Args)
	FanOut func(vals Values) []engine.Call

	// After, when set, suspends the process for human review once the
	// phase completes.
	After *Checkpoint
}

// Checkpoint is a cooperative suspension point. Resumption is owned by
// the external approver; a rejection fails the process.
type Checkpoint struct {
	Title    string
	Question string
	// ContextKeys selects which accumulated values are summarized in the
	// approval request.
	ContextKeys []string
}

// Outcome aggregates everything a process needs after its phases ran.
type Outcome struct {
	Values    Values
	Batches   map[string][]task.Result
	Artifacts []task.Artifact
	Started   time.Time
	Duration  time.Duration
}

// maxCheckpointArtifacts bounds the artifact list included in a
// checkpoint context snapshot.
const maxCheckpointArtifacts = 10

// Runner executes phases against a runtime ctx.
type Runner struct {
	Ctx engine.Ctx
}

// Run executes the phases in order. A failed dispatch or rejected
// checkpoint stops immediately; there is no retry or partial recovery.
func (r *Runner) Run(ctx context.Context, phases []Phase) (*Outcome, error) {
	out := &Outcome{
		Values:  Values{},
		Batches: map[string][]task.Result{},
		Started: r.Ctx.Now(),
	}

	for _, p := range phases {
		if err := r.runPhase(ctx, p, out); err != nil {
			return nil, err
		}
		if p.After != nil {
			if err := r.checkpoint(ctx, p.After, out); err != nil {
				return nil, err
			}
		}
	}

	out.Duration = r.Ctx.Now().Sub(out.Started)
	return out, nil
}

func (r *Runner) runPhase(ctx context.Context, p Phase, out *Outcome) error {
	switch {
	case p.FanOut != nil:
		calls := p.FanOut(out.Values)
		results, err := r.Ctx.Parallel(ctx, calls)
		if err != nil {
			return fmt.Errorf("phase %q: %w", p.Key, err)
		}
		out.Batches[p.Key] = results
		for _, res := range results {
			out.Artifacts = append(out.Artifacts, res.Artifacts()...)
		}
	case p.Build != nil:
		def, args := p.Build(out.Values)
		res, err := r.Ctx.Task(ctx, def, args)
		if err != nil {
			return fmt.Errorf("phase %q: %w", p.Key, err)
		}
		out.Values[p.Key] = res
		out.Artifacts = append(out.Artifacts, res.Artifacts()...)
	default:
		return fmt.Errorf("phase %q: no task builder", p.Key)
	}
	return nil
}

func (r *Runner) checkpoint(ctx context.Context, cp *Checkpoint, out *Outcome) error {
	snapshot := map[string]any{}
	for _, key := range cp.ContextKeys {
		if res, ok := out.Values[key]; ok {
			snapshot[key] = map[string]any(res)
		}
	}
	snapshot["artifactCount"] = len(out.Artifacts)
	snapshot["artifacts"] = artifactPaths(out.Artifacts, maxCheckpointArtifacts)

	return r.Ctx.Breakpoint(ctx, engine.Breakpoint{
		Title:    cp.Title,
		Question: cp.Question,
		Context:  snapshot,
	})
}

func artifactPaths(artifacts []task.Artifact, max int) []string {
	paths := make([]string, 0, min(len(artifacts), max))
	for i, a := range artifacts {
		if i >= max {
			break
		}
		paths = append(paths, a.Path)
	}
	return paths
}
