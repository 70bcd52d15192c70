// Package process defines the catalog entry model: a Process is a named
// multi-phase workflow definition plus the documented inputs it accepts
// and the aggregate result it returns.
package process

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MaTriXy/babysitter-sub001/internal/engine"
	"github.com/MaTriXy/babysitter-sub001/internal/task"
)

// Inputs is the named configuration a caller passes to a process.
// Defaults are applied at access time, mirroring the documented input
// table of each process.
type Inputs map[string]any

// String returns the named input, or def when absent or not a string.
func (in Inputs) String(key, def string) string {
	if s, ok := in[key].(string); ok && s != "" {
		return s
	}
	return def
}

// Strings returns the named input as a string slice, or def when absent
// or empty. Decoded-JSON []any shapes are accepted.
func (in Inputs) Strings(key string, def []string) []string {
	if got := task.Args(in).Strings(key); len(got) > 0 {
		return got
	}
	return def
}

// Int returns the named input as an int, accepting JSON float64.
func (in Inputs) Int(key string, def int) int {
	switch v := in[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return def
}

// Bool returns the named input as a bool.
func (in Inputs) Bool(key string, def bool) bool {
	if b, ok := in[key].(bool); ok {
		return b
	}
	return def
}

// InputDoc documents one accepted input, the Go rendition of the
// @inputs block each process carries.
type InputDoc struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Default     string `json:"default,omitempty"`
	Required    bool   `json:"required,omitempty"`
	Description string `json:"description"`
}

// Metadata is the static trailer of every process result.
type Metadata struct {
	ProcessID string    `json:"processId"`
	Timestamp time.Time `json:"timestamp"`
	Inputs    Inputs    `json:"inputs,omitempty"`
}

// Result is the aggregate a process returns: the common envelope plus
// per-process output sections merged into the top level when
// serialized.
type Result struct {
	Success   bool            `json:"success"`
	Artifacts []task.Artifact `json:"artifacts"`
	// Duration is elapsed wall-clock time in milliseconds.
	Duration int64    `json:"duration"`
	Metadata Metadata `json:"metadata"`

	// Sections holds process-specific output objects (e.g.
	// "analyticsConfig"), keyed by their serialized field name.
	Sections map[string]any `json:"-"`
}

// MarshalJSON merges Sections into the envelope at the top level.
func (r Result) MarshalJSON() ([]byte, error) {
	type envelope Result // drop method set to avoid recursion
	base, err := json.Marshal(envelope(r))
	if err != nil {
		return nil, err
	}
	if len(r.Sections) == 0 {
		return base, nil
	}

	var merged map[string]any
	if err := json.Unmarshal(base, &merged); err != nil {
		return nil, err
	}
	for k, v := range r.Sections {
		if _, taken := merged[k]; taken {
			return nil, fmt.Errorf("result section %q collides with envelope field", k)
		}
		merged[k] = v
	}
	return json.Marshal(merged)
}

// RunFunc executes a process against a runtime ctx.
type RunFunc func(ctx context.Context, ectx engine.Ctx, in Inputs) (*Result, error)

// Process is one catalog entry.
type Process struct {
	// ID is the catalog path, e.g. "development/mobile-analytics-setup".
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Summary string     `json:"summary"`
	Inputs  []InputDoc `json:"inputs"`
	Run     RunFunc    `json:"-"`
}

// Registry holds catalog entries keyed by ID.
type Registry struct {
	mu    sync.RWMutex
	procs map[string]Process
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{procs: make(map[string]Process)}
}

// Add registers a process; duplicate IDs are rejected so colliding
// definitions fail loudly at startup rather than shadowing each other.
func (r *Registry) Add(p Process) error {
	if p.ID == "" {
		return fmt.Errorf("process has no ID")
	}
	if p.Run == nil {
		return fmt.Errorf("process %q has no run function", p.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.procs[p.ID]; exists {
		return fmt.Errorf("duplicate process ID %q", p.ID)
	}
	r.procs[p.ID] = p
	return nil
}

// Get looks up a process by ID.
func (r *Registry) Get(id string) (Process, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.procs[id]
	return p, ok
}

// All returns every process sorted by ID.
func (r *Registry) All() []Process {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Process, 0, len(r.procs))
	for _, p := range r.procs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
