package task

import (
	"testing"
)

func testDefinition() Definition {
	return Define("pool-design", func(args Args, tc Context) Spec {
		return Spec{
			Title: "Design connection pool for " + args.String("project"),
			Agent: Agent{
				Name: "pool-designer",
				Prompt: Prompt{
					Role:         "Senior systems engineer",
					Task:         "Design the pool sizing and lifecycle policy",
					Instructions: []string{"Size the pool from the workload profile"},
				},
			},
			Labels: []string{"connection-pool", "design"},
		}
	})
}

func TestBuildFillsIOConvention(t *testing.T) {
	spec := testDefinition().Build(Args{"project": "payments"}, Context{EffectID: "e-123"})

	if spec.IO.InputJSONPath != "tasks/e-123/input.json" {
		t.Errorf("input path = %q, want tasks/e-123/input.json", spec.IO.InputJSONPath)
	}
	if spec.IO.OutputJSONPath != "tasks/e-123/result.json" {
		t.Errorf("output path = %q, want tasks/e-123/result.json", spec.IO.OutputJSONPath)
	}
	if spec.Kind != "agent" {
		t.Errorf("kind = %q, want agent", spec.Kind)
	}
}

func TestBuildInterpolatesTitle(t *testing.T) {
	spec := testDefinition().Build(Args{"project": "payments"}, Context{EffectID: "e-1"})
	if spec.Title != "Design connection pool for payments" {
		t.Errorf("title = %q", spec.Title)
	}
	if len(spec.Labels) == 0 {
		t.Error("labels must be non-empty")
	}
}

func TestBuildIsFreshPerInvocation(t *testing.T) {
	def := testDefinition()
	a := def.Build(Args{"project": "a"}, Context{EffectID: "e-a"})
	b := def.Build(Args{"project": "b"}, Context{EffectID: "e-b"})
	if a.Title == b.Title {
		t.Error("specs must be built fresh per invocation")
	}
	if a.IO == b.IO {
		t.Error("IO paths must follow each invocation's effect ID")
	}
}

func TestArgsStrings(t *testing.T) {
	tests := []struct {
		name string
		args Args
		want int
	}{
		{name: "typed slice", args: Args{"platforms": []string{"ios", "android"}}, want: 2},
		{name: "decoded json", args: Args{"platforms": []any{"ios", "android"}}, want: 2},
		{name: "mixed entries skipped", args: Args{"platforms": []any{"ios", 7}}, want: 1},
		{name: "missing", args: Args{}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.args.Strings("platforms"); len(got) != tt.want {
				t.Errorf("len = %d, want %d", len(got), tt.want)
			}
		})
	}
}

func TestResultArtifacts(t *testing.T) {
	r := Result{
		"artifacts": []any{
			map[string]any{"path": "docs/design.md", "format": "markdown", "label": "design"},
			map[string]any{"format": "markdown"}, // no path, skipped
			"not-an-object",
		},
	}
	got := r.Artifacts()
	if len(got) != 1 {
		t.Fatalf("artifacts = %d, want 1", len(got))
	}
	if got[0].Path != "docs/design.md" || got[0].Label != "design" {
		t.Errorf("unexpected artifact %+v", got[0])
	}

	if arts := (Result{}).Artifacts(); arts != nil {
		t.Errorf("missing field should yield nil, got %v", arts)
	}
}

func TestResultSectionThreading(t *testing.T) {
	r := Result{
		"stateMachine": map[string]any{
			"states": []any{"idle", "header", "payload"},
		},
	}
	states := r.Section("stateMachine").Strings("states")
	if len(states) != 3 || states[1] != "header" {
		t.Errorf("states = %v", states)
	}

	if missing := r.Section("nope").Strings("states"); missing != nil {
		t.Errorf("missing section should be empty, got %v", missing)
	}
}
