// Package task holds the declarative task model: a Spec describes one
// unit of work handed to an external LLM-backed agent, and a Definition
// is the pure builder that produces a Spec per invocation. Nothing in
// this package executes work locally.
package task

import "fmt"

// Args carries the named arguments a phase passes into a task builder.
type Args map[string]any

// String returns the named argument as a string, or empty.
func (a Args) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// Strings returns the named argument as a string slice, accepting both
// []string and decoded-JSON []any shapes.
func (a Args) Strings(key string) []string {
	switch v := a[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, el := range v {
			if s, ok := el.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Context is the invocation-scoped information the runtime hands to a
// builder. EffectID addresses the task's input/result files in the host
// run store.
type Context struct {
	EffectID string
}

// Prompt is the agent-facing prompt of a task.
type Prompt struct {
	Role         string   `json:"role"`
	Task         string   `json:"task"`
	Context      string   `json:"context,omitempty"`
	Instructions []string `json:"instructions"`
	OutputFormat string   `json:"outputFormat,omitempty"`
}

// Agent names the executor and carries its prompt and output contract.
// OutputSchema is a JSON Schema fragment; the runtime validates agent
// results against it at the dispatch boundary.
type Agent struct {
	Name         string         `json:"name"`
	Prompt       Prompt         `json:"prompt"`
	OutputSchema map[string]any `json:"outputSchema,omitempty"`
}

// IO addresses the task's persisted input and result JSON files.
type IO struct {
	InputJSONPath  string `json:"inputJsonPath"`
	OutputJSONPath string `json:"outputJsonPath"`
}

// IOFor returns the conventional file layout for an effect ID.
func IOFor(effectID string) IO {
	return IO{
		InputJSONPath:  fmt.Sprintf("tasks/%s/input.json", effectID),
		OutputJSONPath: fmt.Sprintf("tasks/%s/result.json", effectID),
	}
}

// Spec is a fully built task specification, immutable once constructed.
type Spec struct {
	Kind   string   `json:"kind"`
	Title  string   `json:"title"`
	Agent  Agent    `json:"agent"`
	IO     IO       `json:"io"`
	Labels []string `json:"labels"`
}

// BuilderFunc builds a Spec from phase arguments and the invocation
// context. Builders must be pure: no hidden state, fresh Spec per call.
type BuilderFunc func(args Args, tc Context) Spec

// Definition is a named task factory.
type Definition struct {
	name  string
	build BuilderFunc
}

// Define registers a builder under a name.
func Define(name string, build BuilderFunc) Definition {
	return Definition{name: name, build: build}
}

// Name returns the definition's name.
func (d Definition) Name() string { return d.name }

// Build produces the Spec for one invocation. The agent kind and the
// effect-addressed IO paths are filled in here so builders cannot get
// the convention wrong.
func (d Definition) Build(args Args, tc Context) Spec {
	spec := d.build(args, tc)
	if spec.Kind == "" {
		spec.Kind = "agent"
	}
	spec.IO = IOFor(tc.EffectID)
	return spec
}

// Artifact is a reference to a file an agent claims to have produced.
type Artifact struct {
	Path   string `json:"path"`
	Format string `json:"format,omitempty"`
	Label  string `json:"label,omitempty"`
}

// Result is the decoded JSON an agent returned for a task.
type Result map[string]any

// Artifacts decodes the conventional "artifacts" field. Entries that are
// not objects with a path are skipped; a missing field yields nil.
func (r Result) Artifacts() []Artifact {
	raw, ok := r["artifacts"].([]any)
	if !ok {
		return nil
	}
	out := make([]Artifact, 0, len(raw))
	for _, el := range raw {
		obj, ok := el.(map[string]any)
		if !ok {
			continue
		}
		path, _ := obj["path"].(string)
		if path == "" {
			continue
		}
		format, _ := obj["format"].(string)
		label, _ := obj["label"].(string)
		out = append(out, Artifact{Path: path, Format: format, Label: label})
	}
	return out
}

// String returns a top-level string field, or empty.
func (r Result) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Strings returns a top-level string-array field.
func (r Result) Strings(key string) []string {
	return Args(r).Strings(key)
}

// Section returns a nested object field as a Result, so later phases can
// thread a prior phase's output without re-decoding.
func (r Result) Section(key string) Result {
	obj, _ := r[key].(map[string]any)
	return Result(obj)
}
