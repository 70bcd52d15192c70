// Package catalog contains the process definitions: declarative
// multi-phase engineering workflows whose phases are dispatched to an
// external agent. Nothing here performs the engineering work it
// describes; each phase produces a task spec and threads the agent's
// JSON result into later phases.
package catalog

import (
	"github.com/MaTriXy/babysitter-sub001/internal/phase"
	"github.com/MaTriXy/babysitter-sub001/internal/process"
	"github.com/MaTriXy/babysitter-sub001/internal/task"
)

var registry = process.NewRegistry()

// register panics on duplicate IDs so colliding definitions fail at
// startup instead of silently shadowing each other.
func register(p process.Process) {
	if err := registry.Add(p); err != nil {
		panic(err)
	}
}

// Registry exposes the catalog to the CLI and API layers.
func Registry() *process.Registry { return registry }

// All returns every catalog process sorted by ID.
func All() []process.Process { return registry.All() }

// Get looks up a catalog process by ID.
func Get(id string) (process.Process, bool) { return registry.Get(id) }

// artifactListSchema is the schema fragment for the conventional
// artifacts field every task result carries.
func artifactListSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":     "object",
			"required": []any{"path"},
			"properties": map[string]any{
				"path":   map[string]any{"type": "string"},
				"format": map[string]any{"type": "string"},
				"label":  map[string]any{"type": "string"},
			},
		},
	}
}

// resultSchema builds the standard task output contract: summary and
// artifacts, plus task-specific properties. Extra property names are
// not required unless listed in required.
func resultSchema(extra map[string]any, required ...string) map[string]any {
	props := map[string]any{
		"summary":   map[string]any{"type": "string"},
		"artifacts": artifactListSchema(),
	}
	for k, v := range extra {
		props[k] = v
	}
	req := []any{"summary", "artifacts"}
	for _, r := range required {
		req = append(req, r)
	}
	return map[string]any{
		"type":       "object",
		"required":   req,
		"properties": props,
	}
}

// static is a phase whose task arguments do not depend on earlier
// results.
func static(key string, def task.Definition, args task.Args) phase.Phase {
	return phase.Phase{
		Key: key,
		Build: func(phase.Values) (task.Definition, task.Args) {
			return def, args
		},
	}
}
