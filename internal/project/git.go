// Package project inspects the repository a process runs against.
package project

import (
	"fmt"
	"os/exec"
	"strings"
)

// GitInfo holds the git state a run was started from.
type GitInfo struct {
	Branch  string
	Commit  string
	IsDirty bool
}

// CollectGitInfo gathers branch and commit information. Callers should
// treat an error as "not a git repository" and carry on.
func CollectGitInfo() (*GitInfo, error) {
	branch, err := gitOutput("rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("getting git branch: %w", err)
	}

	commit, err := gitOutput("rev-parse", "--short", "HEAD")
	if err != nil {
		return nil, fmt.Errorf("getting git commit: %w", err)
	}

	dirty, err := isDirty()
	if err != nil {
		return nil, err
	}

	return &GitInfo{
		Branch:  branch,
		Commit:  commit,
		IsDirty: dirty,
	}, nil
}

func isDirty() (bool, error) {
	out, err := gitOutput("status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("checking git status: %w", err)
	}
	return strings.TrimSpace(out) != "", nil
}

func gitOutput(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
