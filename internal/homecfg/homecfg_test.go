// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package homecfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveThenLoad(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "nested", "home.yaml")
	home := t.TempDir()

	require.NoError(t, Save(cfgPath, home))
	assert.Equal(t, home, Load(cfgPath))

	data, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "home_folder:")
}

func TestLoad_FallsBackToWorkingDirectory(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		write   bool
	}{
		{name: "missing file"},
		{name: "malformed yaml", content: "home_folder: [unterminated", write: true},
		{name: "empty value", content: "home_folder: \"\"\n", write: true},
		{name: "folder no longer exists", content: "home_folder: " + filepath.Join(dir, "gone") + "\n", write: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "home.yaml")
			if tt.write {
				require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			}
			assert.Equal(t, cwd, Load(path))
		})
	}
}

func TestSave_RejectsMissingFolder(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "home.yaml")
	err := Save(cfgPath, filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
	assert.NoFileExists(t, cfgPath)
}

func TestSave_Overwrites(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "home.yaml")
	first, second := t.TempDir(), t.TempDir()

	require.NoError(t, Save(cfgPath, first))
	require.NoError(t, Save(cfgPath, second))
	assert.Equal(t, second, Load(cfgPath))
}
