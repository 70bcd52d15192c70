package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaTriXy/babysitter-sub001/internal/process"
	"github.com/MaTriXy/babysitter-sub001/internal/task"
)

func TestBinaryProtocolFansOutPerLanguage(t *testing.T) {
	ctx := newEchoCtx()
	p, ok := Get(binaryProtocolID)
	require.True(t, ok)

	_, err := p.Run(context.Background(), ctx, process.Inputs{
		"protocolName": "modbus",
		"languages":    []string{"go", "rust", "python"},
	})
	require.NoError(t, err)

	assert.Equal(t, 3, countTasks(ctx.taskNames, "parser-implementation"))
}

func TestBinaryProtocolDefaultsToSingleGoParser(t *testing.T) {
	ctx := newEchoCtx()
	p, _ := Get(binaryProtocolID)

	_, err := p.Run(context.Background(), ctx, process.Inputs{"protocolName": "modbus"})
	require.NoError(t, err)

	assert.Equal(t, 1, countTasks(ctx.taskNames, "parser-implementation"))
}

func TestBinaryProtocolThreadsStatesIntoImplementation(t *testing.T) {
	ctx := newEchoCtx()
	ctx.results["parser-state-machine"] = task.Result{
		"summary":   "state machine ready",
		"states":    []any{"awaiting_header", "reading_payload", "verifying_crc"},
		"artifacts": []any{},
	}
	p, _ := Get(binaryProtocolID)

	_, err := p.Run(context.Background(), ctx, process.Inputs{"protocolName": "modbus"})
	require.NoError(t, err)

	var impl *task.Spec
	for i, name := range ctx.taskNames {
		if name == "parser-implementation" {
			impl = &ctx.specs[i]
		}
	}
	require.NotNil(t, impl)
	assert.Contains(t, impl.Agent.Prompt.Context, "awaiting_header")
	assert.Contains(t, impl.Agent.Prompt.Context, "verifying_crc")

	require.Len(t, ctx.breakpoints, 1)
	assert.Contains(t, ctx.breakpoints[0].Question, "modbus")
}
