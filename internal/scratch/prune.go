// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scratch

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// PruneResult contains the outcome of a stale scratch cleanup.
type PruneResult struct {
	Removed []string
	Errors  []PruneError
}

// PruneError pairs a directory path with its cleanup error.
type PruneError struct {
	Path string
	Err  error
}

// Prune removes scratch areas older than maxAge left behind by interrupted
// runs. The area belonging to the current process is never touched.
func (m *Manager) Prune(maxAge time.Duration) PruneResult {
	var result PruneResult

	entries, err := os.ReadDir(m.Base())
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, PruneError{Path: m.Base(), Err: err})
		}
		return result
	}

	own := m.AreaPath()
	cutoff := time.Now().Add(-maxAge)

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), areaPrefix) {
			continue
		}
		dirPath := filepath.Join(m.Base(), entry.Name())
		if dirPath == own {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, PruneError{Path: dirPath, Err: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := m.removeAll(dirPath); err != nil {
			result.Errors = append(result.Errors, PruneError{Path: dirPath, Err: err})
			continue
		}
		result.Removed = append(result.Removed, dirPath)
	}

	return result
}
