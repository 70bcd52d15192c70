// Package run persists process run state under .babysitter/runs/.
package run

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

// Run represents a single process invocation on disk.
type Run struct {
	ID  string
	Dir string

	mu   sync.Mutex
	Meta Meta
}

// Meta holds metadata about a run, persisted to meta.json.
type Meta struct {
	StartedAt time.Time      `json:"started_at"`
	ProcessID string         `json:"process_id"`
	Inputs    map[string]any `json:"inputs,omitempty"`
	Branch    string         `json:"branch,omitempty"`
	Commit    string         `json:"commit,omitempty"`
	Status    string         `json:"status"` // "running" | "completed" | "failed"
	Tasks     []TaskRecord   `json:"tasks"`
	TotalCost float64        `json:"total_cost"`
	Error     string         `json:"error,omitempty"`
}

// TaskRecord records the outcome of a single task dispatch.
type TaskRecord struct {
	EffectID   string  `json:"effect_id"`
	Name       string  `json:"name"`
	Title      string  `json:"title"`
	Status     string  `json:"status"` // "completed" | "failed"
	Cost       float64 `json:"cost"`
	DurationMS int64   `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}

// BaseDir is the directory runs are created under.
const BaseDir = ".babysitter"

// New creates a new run directory under .babysitter/runs/.
func New(processID string, inputs map[string]any) (*Run, error) {
	now := time.Now()
	id := fmt.Sprintf("%s-%03d-%s",
		now.Format("20060102-150405"),
		now.UnixMilli()%1000,
		sanitizeSlug(processID),
	)

	baseDir := filepath.Join(BaseDir, "runs")
	dir := filepath.Join(baseDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating run dir: %w", err)
	}

	r := &Run{
		ID:  id,
		Dir: dir,
		Meta: Meta{
			StartedAt: now,
			ProcessID: processID,
			Inputs:    inputs,
			Status:    "running",
		},
	}

	if err := r.SaveMeta(); err != nil {
		return nil, err
	}

	if err := updateLatestLink(baseDir, id); err != nil {
		return nil, err
	}

	return r, nil
}

// Prune removes the oldest run directories beyond keep. Run IDs start
// with a timestamp, so lexical order is chronological.
func Prune(keep int) error {
	if keep <= 0 {
		return nil
	}
	runsDir := filepath.Join(BaseDir, "runs")
	entries, err := os.ReadDir(runsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading runs dir: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() && e.Name() != "latest" {
			ids = append(ids, e.Name())
		}
	}
	if len(ids) <= keep {
		return nil
	}
	sort.Strings(ids)
	for _, id := range ids[:len(ids)-keep] {
		if err := os.RemoveAll(filepath.Join(runsDir, id)); err != nil {
			return fmt.Errorf("pruning run %s: %w", id, err)
		}
	}
	return nil
}

// SaveMeta writes meta.json to the run directory.
func (r *Run) SaveMeta() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveMetaLocked()
}

func (r *Run) saveMetaLocked() error {
	data, err := json.MarshalIndent(r.Meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling meta: %w", err)
	}
	path := filepath.Join(r.Dir, "meta.json")
	return os.WriteFile(path, data, 0644)
}

// SetGitInfo records the git state the run was started from.
func (r *Run) SetGitInfo(branch, commit string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Meta.Branch = branch
	r.Meta.Commit = commit
	return r.saveMetaLocked()
}

// AddTaskRecord appends a task record and updates the total cost.
// Safe for concurrent use by parallel fan-out branches.
func (r *Run) AddTaskRecord(tr TaskRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Meta.Tasks = append(r.Meta.Tasks, tr)
	r.Meta.TotalCost += tr.Cost
	return r.saveMetaLocked()
}

// Complete marks the run as completed.
func (r *Run) Complete() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Meta.Status = "completed"
	return r.saveMetaLocked()
}

// Fail marks the run as failed with an error message.
func (r *Run) Fail(msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Meta.Status = "failed"
	r.Meta.Error = msg
	return r.saveMetaLocked()
}

// WriteJSON marshals v to a file addressed relative to the run directory,
// creating parent directories. Task I/O lands here via the
// tasks/<effectId>/{input,result}.json convention.
func (r *Run) WriteJSON(relPath string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", relPath, err)
	}
	path := filepath.Join(r.Dir, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating task dir: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ReadMeta loads a run's meta.json from a run directory.
func ReadMeta(dir string) (Meta, error) {
	var meta Meta
	data, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil {
		return meta, err
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("decoding meta.json: %w", err)
	}
	return meta, nil
}

// updateLatestLink atomically updates the "latest" symlink.
func updateLatestLink(baseDir, id string) error {
	latestPath := filepath.Join(baseDir, "latest")
	tmpPath := latestPath + ".tmp"

	// Remove any stale tmp link
	os.Remove(tmpPath)

	if err := os.Symlink(id, tmpPath); err != nil {
		return fmt.Errorf("creating temp symlink: %w", err)
	}
	if err := os.Rename(tmpPath, latestPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("updating latest symlink: %w", err)
	}
	return nil
}

var nonAlphanumRe = regexp.MustCompile(`[^a-z0-9]+`)

// sanitizeSlug converts a process ID to a directory-friendly slug.
func sanitizeSlug(s string) string {
	s = strings.ToLower(s)
	s = nonAlphanumRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 40 {
		s = s[:40]
		s = strings.TrimRight(s, "-")
	}
	if s == "" {
		s = "run"
	}
	return s
}
