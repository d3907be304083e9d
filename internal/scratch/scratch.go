// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scratch manages the process-exclusive directory used to stage
// intermediate PDFs during a merge. The directory lives under the system temp
// root, outside of any synced folder, and is removed with bounded retries.
package scratch

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pdiddy/pdfutil/pkg/types"
)

const (
	// Namespace is the fixed directory under the temp root that holds all
	// scratch areas.
	Namespace = "pdf_utility_temps"

	// areaPrefix precedes the process id in each scratch area name.
	areaPrefix = "temp_pdfs_"

	defaultMaxAttempts = 5
	defaultRetryDelay  = 1 * time.Second
)

// RetryPolicy bounds the delete attempts made when releasing an area.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryPolicy makes 5 attempts spaced 1 second apart.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: defaultMaxAttempts, Delay: defaultRetryDelay}

// Area is a scratch directory exclusively owned by one pipeline run.
type Area struct {
	// Base is the namespace directory the area lives in.
	Base string
	// Path is the area directory itself.
	Path string
	// PID is the process id that makes the area unique.
	PID int
}

// Manager allocates and releases scratch areas.
type Manager struct {
	root   string
	pid    int
	policy RetryPolicy

	// area is the directory handed out by Acquire until it is released.
	area *Area

	// sleep and removeAll are replaced in tests.
	sleep     func(time.Duration)
	removeAll func(string) error
}

// NewManager builds a Manager from cfg. Zero values fall back to os.TempDir()
// and DefaultRetryPolicy.
func NewManager(cfg types.ScratchConfig) *Manager {
	root := strings.TrimSpace(cfg.Root)
	if root == "" {
		root = os.TempDir()
	}
	policy := DefaultRetryPolicy
	if cfg.MaxAttempts > 0 {
		policy.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.RetryDelay > 0 {
		policy.Delay = cfg.RetryDelay
	}
	return &Manager{
		root:      root,
		pid:       os.Getpid(),
		policy:    policy,
		sleep:     time.Sleep,
		removeAll: os.RemoveAll,
	}
}

// Base returns the namespace directory holding all scratch areas.
func (m *Manager) Base() string {
	return filepath.Join(m.root, Namespace)
}

// AreaPath returns the directory this process would use as its area.
func (m *Manager) AreaPath() string {
	return filepath.Join(m.Base(), areaPrefix+strconv.Itoa(m.pid))
}

// Acquire creates the scratch area for this process. Repeated calls return
// the same area. On first use a directory left behind by an earlier process
// with the same pid is emptied, so the run starts with no staged files.
func (m *Manager) Acquire() (*Area, error) {
	if m.area != nil {
		return m.area, nil
	}
	path := m.AreaPath()
	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("clearing stale scratch area %s: %w", path, err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating scratch area %s: %w", path, err)
	}
	m.area = &Area{Base: m.Base(), Path: path, PID: m.pid}
	return m.area, nil
}

// ReleaseResult describes the outcome of releasing an area.
type ReleaseResult struct {
	// Removed is true when the area no longer exists.
	Removed bool
	// Attempts is the number of delete attempts made.
	Attempts int
	// Leftover is the path the operator must remove by hand when all
	// attempts failed.
	Leftover string
	// Err is the last delete error.
	Err error
}

// Release deletes the area recursively. Failed deletes are retried with a
// fixed delay until the policy is exhausted, after which the leftover path is
// reported on w and in the result. A nil area is a no-op.
func (m *Manager) Release(a *Area, w io.Writer) ReleaseResult {
	if a == nil {
		return ReleaseResult{Removed: true}
	}
	if a == m.area {
		m.area = nil
	}

	var result ReleaseResult
	for attempt := 1; attempt <= m.policy.MaxAttempts; attempt++ {
		result.Attempts = attempt
		err := m.removeAll(a.Path)
		if err == nil {
			result.Removed = true
			result.Err = nil
			fmt.Fprintf(w, "cleaned: %s\n", a.Path)
			return result
		}
		result.Err = err

		if attempt == m.policy.MaxAttempts {
			break
		}
		fmt.Fprintf(w, "  cleanup failed (retry %d/%d), waiting %v\n", attempt, m.policy.MaxAttempts, m.policy.Delay)
		m.sleep(m.policy.Delay)
	}

	result.Leftover = a.Path
	fmt.Fprintf(w, "warning: could not remove scratch area after %d attempts: %v\n", result.Attempts, result.Err)
	fmt.Fprintf(w, "warning: please delete this manually: %s\n", a.Path)
	return result
}
