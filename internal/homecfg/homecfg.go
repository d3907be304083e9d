// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package homecfg persists the operator's home folder, the directory the
// CLI starts from when no target directory is given.
package homecfg

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.yaml.in/yaml/v3"
)

// File is the on-disk layout of the home folder file.
type File struct {
	HomeFolder string `yaml:"home_folder"`
}

// DefaultPath returns ~/.config/pdfutil/home.yaml, or home.yaml in the
// working directory when the user config dir is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "home.yaml"
	}
	return filepath.Join(dir, "pdfutil", "home.yaml")
}

// Load returns the saved home folder. A missing or unreadable file, a parse
// error or a saved folder that no longer exists all fall back to the
// current working directory.
func Load(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cwd
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil || f.HomeFolder == "" {
		return cwd
	}
	if info, err := os.Stat(f.HomeFolder); err != nil || !info.IsDir() {
		return cwd
	}
	return f.HomeFolder
}

// Save stores dir as the home folder. dir is made absolute and must be an
// existing directory. The file is replaced atomically under an exclusive
// lock so concurrent invocations never interleave writes.
func Save(path, dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", dir, err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return fmt.Errorf("folder does not exist: %s", abs)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", path, err)
	}
	defer lock.Unlock()

	data, err := yaml.Marshal(&File{HomeFolder: abs})
	if err != nil {
		return fmt.Errorf("encoding home folder: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".home-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", path, closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
