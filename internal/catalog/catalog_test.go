package catalog

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MaTriXy/babysitter-sub001/internal/engine"
	"github.com/MaTriXy/babysitter-sub001/internal/process"
	"github.com/MaTriXy/babysitter-sub001/internal/task"
)

// echoCtx is a mock runtime: every task resolves with an empty artifact
// list (or a scripted result), every breakpoint approves. It records the
// specs each dispatch would have built.
type echoCtx struct {
	mu          sync.Mutex
	results     map[string]task.Result
	specs       []task.Spec
	taskNames   []string
	breakpoints []engine.Breakpoint
	clock       time.Time
}

func newEchoCtx() *echoCtx {
	return &echoCtx{
		results: map[string]task.Result{},
		clock:   time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (c *echoCtx) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clock = c.clock.Add(250 * time.Millisecond)
	return c.clock
}

func (c *echoCtx) Log(level slog.Level, msg string, args ...any) {}

func (c *echoCtx) Task(_ context.Context, def task.Definition, args task.Args) (task.Result, error) {
	spec := def.Build(args, task.Context{EffectID: "stub-effect"})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.specs = append(c.specs, spec)
	c.taskNames = append(c.taskNames, def.Name())
	if res, ok := c.results[def.Name()]; ok {
		return res, nil
	}
	return task.Result{"artifacts": []any{}}, nil
}

func (c *echoCtx) Parallel(ctx context.Context, calls []engine.Call) ([]task.Result, error) {
	out := make([]task.Result, len(calls))
	for i, call := range calls {
		res, err := c.Task(ctx, call.Def, call.Args)
		if err != nil {
			return nil, err
		}
		out[i] = res
	}
	return out, nil
}

func (c *echoCtx) Breakpoint(_ context.Context, bp engine.Breakpoint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.breakpoints = append(c.breakpoints, bp)
	return nil
}

// requiredInputs supplies the minimum documented inputs per process.
func requiredInputs(id string) process.Inputs {
	switch id {
	case mobileAnalyticsID:
		return process.Inputs{"appName": "MyApp"}
	case binaryProtocolID:
		return process.Inputs{"protocolName": "modbus"}
	case connectionPoolID:
		return process.Inputs{"projectName": "payments"}
	case certManagementID:
		return process.Inputs{"organization": "acme"}
	case goldenPathsID:
		return process.Inputs{"platformName": "paved-road"}
	case patternCompilerID:
		return process.Inputs{"projectName": "router"}
	}
	return process.Inputs{}
}

func TestCatalogContents(t *testing.T) {
	ids := make([]string, 0)
	for _, p := range All() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{
		"development/binary-protocol-parser",
		"development/connection-pool",
		"development/mobile-analytics-setup",
		"development/pattern-matching-compiler",
		"scaffolding/golden-path-templates",
		"security/certificate-management",
	}, ids)
}

func TestEveryProcessResolvesAgainstMockCtx(t *testing.T) {
	for _, p := range All() {
		t.Run(p.ID, func(t *testing.T) {
			ctx := newEchoCtx()
			res, err := p.Run(context.Background(), ctx, requiredInputs(p.ID))
			require.NoError(t, err)

			assert.True(t, res.Success)
			assert.NotNil(t, res.Artifacts)
			assert.Empty(t, res.Artifacts, "echo stub returns no artifacts")
			assert.Greater(t, res.Duration, int64(0))
			assert.Equal(t, p.ID, res.Metadata.ProcessID)
			assert.False(t, res.Metadata.Timestamp.IsZero())
			assert.NotEmpty(t, ctx.specs, "process must dispatch at least one task")
		})
	}
}

func TestEveryBuiltSpecSatisfiesTaskContract(t *testing.T) {
	for _, p := range All() {
		t.Run(p.ID, func(t *testing.T) {
			ctx := newEchoCtx()
			_, err := p.Run(context.Background(), ctx, requiredInputs(p.ID))
			require.NoError(t, err)

			for _, spec := range ctx.specs {
				assert.Equal(t, "agent", spec.Kind)
				assert.NotEmpty(t, spec.Title)
				assert.NotEmpty(t, spec.Labels, "spec %q must carry labels", spec.Title)
				assert.NotEmpty(t, spec.Agent.Name)
				assert.NotEmpty(t, spec.Agent.Prompt.Role)
				assert.NotEmpty(t, spec.Agent.Prompt.Instructions)
				assert.Equal(t, "tasks/stub-effect/input.json", spec.IO.InputJSONPath)
				assert.Equal(t, "tasks/stub-effect/result.json", spec.IO.OutputJSONPath)
			}
		})
	}
}

func TestProcessDocumentsItsInputs(t *testing.T) {
	for _, p := range All() {
		t.Run(p.ID, func(t *testing.T) {
			assert.NotEmpty(t, p.Title)
			assert.NotEmpty(t, p.Summary)
			require.NotEmpty(t, p.Inputs)
			hasRequired := false
			for _, doc := range p.Inputs {
				assert.NotEmpty(t, doc.Name)
				assert.NotEmpty(t, doc.Type)
				assert.NotEmpty(t, doc.Description)
				if doc.Required {
					hasRequired = true
				}
			}
			assert.True(t, hasRequired, "every process documents at least one required input")
		})
	}
}

func TestTitlesInterpolateSuppliedNames(t *testing.T) {
	ctx := newEchoCtx()
	p, ok := Get(connectionPoolID)
	require.True(t, ok)

	_, err := p.Run(context.Background(), ctx, process.Inputs{"projectName": "payments"})
	require.NoError(t, err)

	for _, spec := range ctx.specs {
		assert.True(t, strings.Contains(spec.Title, "payments"),
			"title %q should interpolate the project name", spec.Title)
	}
}
