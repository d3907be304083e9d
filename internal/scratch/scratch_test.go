// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scratch

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfutil/pkg/types"
)

// newTestManager returns a manager rooted in a temp dir that records sleeps
// instead of performing them.
func newTestManager(t *testing.T) (*Manager, *[]time.Duration) {
	t.Helper()
	m := NewManager(types.ScratchConfig{Root: t.TempDir()})
	var slept []time.Duration
	m.sleep = func(d time.Duration) { slept = append(slept, d) }
	return m, &slept
}

func TestNewManager_Defaults(t *testing.T) {
	m := NewManager(types.ScratchConfig{})
	assert.Equal(t, os.TempDir(), m.root)
	assert.Equal(t, DefaultRetryPolicy, m.policy)
	assert.Equal(t, 5, m.policy.MaxAttempts)
	assert.Equal(t, time.Second, m.policy.Delay)
}

func TestAcquire(t *testing.T) {
	m, _ := newTestManager(t)

	area, err := m.Acquire()
	require.NoError(t, err)

	want := filepath.Join(m.root, "pdf_utility_temps", "temp_pdfs_"+strconv.Itoa(os.Getpid()))
	assert.Equal(t, want, area.Path)
	assert.Equal(t, os.Getpid(), area.PID)
	assert.DirExists(t, area.Path)

	// A second acquire reuses the existing directory.
	again, err := m.Acquire()
	require.NoError(t, err)
	assert.Equal(t, area.Path, again.Path)
}

func TestAcquire_ClearsStaleArea(t *testing.T) {
	m, _ := newTestManager(t)

	// An earlier process with the same pid left files behind.
	stale := filepath.Join(m.AreaPath(), "leftover.pdf")
	require.NoError(t, os.MkdirAll(m.AreaPath(), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))

	area, err := m.Acquire()
	require.NoError(t, err)
	assert.DirExists(t, area.Path)
	assert.NoFileExists(t, stale)

	// Files staged during this run survive a repeated acquire.
	staged := filepath.Join(area.Path, "page.pdf")
	require.NoError(t, os.WriteFile(staged, []byte("x"), 0o644))
	again, err := m.Acquire()
	require.NoError(t, err)
	assert.Same(t, area, again)
	assert.FileExists(t, staged)
}

func TestRelease_RemovesArea(t *testing.T) {
	m, slept := newTestManager(t)
	area, err := m.Acquire()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(area.Path, "a.pdf"), []byte("x"), 0o644))

	var log bytes.Buffer
	res := m.Release(area, &log)

	assert.True(t, res.Removed)
	assert.Equal(t, 1, res.Attempts)
	assert.Empty(t, res.Leftover)
	assert.NoDirExists(t, area.Path)
	assert.Empty(t, *slept)
	assert.Contains(t, log.String(), "cleaned:")
}

func TestRelease_RetriesThenSucceeds(t *testing.T) {
	m, slept := newTestManager(t)
	area, err := m.Acquire()
	require.NoError(t, err)

	calls := 0
	m.removeAll = func(path string) error {
		calls++
		if calls < 3 {
			return errors.New("file is locked")
		}
		return os.RemoveAll(path)
	}

	var log bytes.Buffer
	res := m.Release(area, &log)

	assert.True(t, res.Removed)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, *slept)
	assert.NoDirExists(t, area.Path)
	assert.Contains(t, log.String(), "retry 1/5")
}

func TestRelease_ExhaustsRetries(t *testing.T) {
	m, slept := newTestManager(t)
	area, err := m.Acquire()
	require.NoError(t, err)

	m.removeAll = func(string) error { return errors.New("permission denied") }

	var log bytes.Buffer
	res := m.Release(area, &log)

	assert.False(t, res.Removed)
	assert.Equal(t, 5, res.Attempts)
	assert.Equal(t, area.Path, res.Leftover)
	assert.EqualError(t, res.Err, "permission denied")
	assert.Len(t, *slept, 4, "no wait after the final attempt")
	assert.Contains(t, log.String(), "please delete this manually: "+area.Path)
}

func TestRelease_NilArea(t *testing.T) {
	m, _ := newTestManager(t)
	res := m.Release(nil, &bytes.Buffer{})
	assert.True(t, res.Removed)
	assert.Zero(t, res.Attempts)
}

func TestRelease_CustomPolicy(t *testing.T) {
	m := NewManager(types.ScratchConfig{Root: t.TempDir(), MaxAttempts: 2, RetryDelay: 10 * time.Millisecond})
	var slept []time.Duration
	m.sleep = func(d time.Duration) { slept = append(slept, d) }
	m.removeAll = func(string) error { return errors.New("busy") }

	area, err := m.Acquire()
	require.NoError(t, err)

	res := m.Release(area, &bytes.Buffer{})
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, []time.Duration{10 * time.Millisecond}, slept)
}

func TestPrune(t *testing.T) {
	m, _ := newTestManager(t)
	own, err := m.Acquire()
	require.NoError(t, err)

	stale := filepath.Join(m.Base(), "temp_pdfs_1")
	fresh := filepath.Join(m.Base(), "temp_pdfs_2")
	other := filepath.Join(m.Base(), "unrelated")
	for _, dir := range []string{stale, fresh, other} {
		require.NoError(t, os.MkdirAll(dir, 0o755))
	}
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(stale, old, old))
	require.NoError(t, os.Chtimes(other, old, old))
	require.NoError(t, os.Chtimes(own.Path, old, old))

	res := m.Prune(24 * time.Hour)

	assert.Equal(t, []string{stale}, res.Removed)
	assert.Empty(t, res.Errors)
	assert.NoDirExists(t, stale)
	assert.DirExists(t, fresh)
	assert.DirExists(t, other)
	assert.DirExists(t, own.Path)
}

func TestPrune_MissingBase(t *testing.T) {
	m, _ := newTestManager(t)
	res := m.Prune(time.Hour)
	assert.Empty(t, res.Removed)
	assert.Empty(t, res.Errors)
}
