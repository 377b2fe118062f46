package memory

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// commitAuthorName and commitAuthorEmail are used for checkpoint commits when
// the store repository has no identity configured.
const (
	commitAuthorName  = "recall"
	commitAuthorEmail = "recall@localhost"
)

// Checkpointer persists store state snapshots with descriptive labels.
type Checkpointer interface {
	// CommitAll stages every change under the store directory and commits it
	// with the given message. It reports whether a commit was actually
	// created; a clean tree is a successful no-op.
	CommitAll(message string) (bool, error)

	// History returns the subjects of the most recent checkpoints, newest
	// first, up to limit.
	History(limit int) ([]string, error)
}

// GitRepo is a Checkpointer backed by the git binary operating on the store
// directory. Every applied decision batch becomes one commit; history is
// append-only and never rewritten.
type GitRepo struct {
	dir string
}

// NewGitRepo opens (initializing if absent) a git repository at dir.
// Returns an error if the git binary is not installed; callers degrade the
// store to in-memory operation in that case.
func NewGitRepo(dir string) (*GitRepo, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, fmt.Errorf("memory: git not available: %w", err)
	}

	r := &GitRepo{dir: dir}

	// Check for dir/.git directly: rev-parse would discover an enclosing
	// repository and silently commit into it.
	if _, err := os.Stat(filepath.Join(dir, ".git")); err != nil {
		if _, err := r.git("init"); err != nil {
			return nil, fmt.Errorf("memory: git init failed: %w", err)
		}
	}

	// Commits fail without an identity; configure a repo-local one if the
	// environment has none.
	if name, err := r.git("config", "user.name"); err != nil || strings.TrimSpace(name) == "" {
		if _, err := r.git("config", "user.name", commitAuthorName); err != nil {
			return nil, fmt.Errorf("memory: git config user.name failed: %w", err)
		}
		if _, err := r.git("config", "user.email", commitAuthorEmail); err != nil {
			return nil, fmt.Errorf("memory: git config user.email failed: %w", err)
		}
	}

	return r, nil
}

// CommitAll stages all changes and commits them with the given message.
// A clean worktree produces no commit and no error.
func (r *GitRepo) CommitAll(message string) (bool, error) {
	if _, err := r.git("add", "-A"); err != nil {
		return false, fmt.Errorf("memory: git add failed: %w", err)
	}

	status, err := r.git("status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("memory: git status failed: %w", err)
	}
	if strings.TrimSpace(status) == "" {
		return false, nil
	}

	if _, err := r.git("commit", "-m", message); err != nil {
		return false, fmt.Errorf("memory: git commit failed: %w", err)
	}
	return true, nil
}

// History returns the subjects of the most recent commits, newest first.
// An empty repository yields an empty history, not an error.
func (r *GitRepo) History(limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}

	// rev-parse fails before the first commit; treat that as empty history.
	if _, err := r.git("rev-parse", "--verify", "HEAD"); err != nil {
		return nil, nil
	}

	out, err := r.git("log", fmt.Sprintf("-%d", limit), "--format=%s")
	if err != nil {
		return nil, fmt.Errorf("memory: git log failed: %w", err)
	}

	var subjects []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line != "" {
			subjects = append(subjects, line)
		}
	}
	return subjects, nil
}

// git runs a git command in the repository directory and returns its stdout.
func (r *GitRepo) git(args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = r.dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w, stderr: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
