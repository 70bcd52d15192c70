package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"github.com/MaTriXy/babysitter-sub001/internal/schema"
	"github.com/MaTriXy/babysitter-sub001/internal/task"
)

// Dispatcher hands a built task spec to an agent executor and returns
// its decoded JSON result.
type Dispatcher interface {
	Dispatch(ctx context.Context, spec task.Spec) (task.Result, error)
}

// StubDispatcher resolves every task with the minimal result its output
// schema admits. Used for dry runs and catalog smoke tests; nothing is
// executed.
type StubDispatcher struct{}

func (StubDispatcher) Dispatch(_ context.Context, spec task.Spec) (task.Result, error) {
	v := schema.Synthesize(schema.Schema(spec.Agent.OutputSchema))
	obj, ok := v.(map[string]any)
	if !ok {
		obj = map[string]any{}
	}
	if _, present := obj["artifacts"]; !present {
		obj["artifacts"] = []any{}
	}
	return task.Result(obj), nil
}

// ScriptDispatcher delegates each task to an agent CLI: the full spec
// JSON goes to stdin, the result JSON is read from stdout.
type ScriptDispatcher struct {
	Command string
	Args    []string
	Timeout time.Duration
	WorkDir string
}

// agentEnvelope is the wrapper some agent CLIs print around their
// result (e.g. claude -p --output-format json).
type agentEnvelope struct {
	Result string `json:"result"`
}

func (d *ScriptDispatcher) Dispatch(ctx context.Context, spec task.Spec) (task.Result, error) {
	input, err := json.Marshal(spec)
	if err != nil {
		return nil, fmt.Errorf("encoding task spec: %w", err)
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 300 * time.Second
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmdName := d.Command
	if cmdName == "" {
		cmdName = "claude"
	}
	cmd := exec.CommandContext(execCtx, cmdName, d.Args...)
	cmd.Stdin = bytes.NewReader(input)
	cmd.Dir = d.WorkDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("agent command %q: %w\nstderr: %s", cmdName, err, stderr.String())
	}

	return decodeAgentOutput(stdout.Bytes())
}

// decodeAgentOutput parses agent stdout as a JSON object, unwrapping the
// {"result": "<json>"} envelope when present.
func decodeAgentOutput(out []byte) (task.Result, error) {
	var envelope agentEnvelope
	if err := json.Unmarshal(out, &envelope); err == nil && envelope.Result != "" {
		var inner map[string]any
		if err := json.Unmarshal([]byte(envelope.Result), &inner); err == nil {
			return task.Result(inner), nil
		}
	}

	var obj map[string]any
	if err := json.Unmarshal(out, &obj); err != nil {
		return nil, fmt.Errorf("agent returned malformed JSON: %w", err)
	}
	return task.Result(obj), nil
}
