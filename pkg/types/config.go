// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ScratchConfig holds settings for the scratch area used to stage
// intermediate PDFs.
type ScratchConfig struct {
	// Root is the temp root under which the scratch namespace lives
	// (default: os.TempDir()).
	Root string `json:"root" yaml:"root" mapstructure:"root"`

	// MaxAttempts is the number of delete attempts when releasing a
	// scratch area (default 5).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`

	// RetryDelay is the fixed wait between delete attempts (default 1s).
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay" mapstructure:"retry_delay"`
}

// NormalizeConfig holds settings for converting images into PDF pages.
type NormalizeConfig struct {
	// DPI is the raster resolution used to size image pages (default 100).
	DPI float64 `json:"dpi" yaml:"dpi" mapstructure:"dpi"`

	// JPEGQuality is the quality used when re-encoding flattened images
	// (default 95).
	JPEGQuality int `json:"jpeg_quality" yaml:"jpeg_quality" mapstructure:"jpeg_quality"`
}

// ProtectConfig holds settings for password protection.
type ProtectConfig struct {
	// OwnerPassword overrides the owner password of protected PDFs. When
	// empty the user password is used for both roles.
	OwnerPassword string `json:"owner_password,omitempty" yaml:"owner_password,omitempty" mapstructure:"owner_password"`

	// OutputDir is the name of the subdirectory protected copies are written
	// to (default "protected").
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir"`
}

// JournalConfig holds settings for the run history database.
type JournalConfig struct {
	// Path is the sqlite database file. An empty path disables the journal.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// HomeConfig holds settings for the persisted home folder.
type HomeConfig struct {
	// File is the YAML file storing the operator's home folder.
	File string `json:"file" yaml:"file" mapstructure:"file"`
}

// Config groups all settings. It is loaded once at startup and passed down
// as a plain value.
type Config struct {
	Scratch   ScratchConfig   `json:"scratch" yaml:"scratch" mapstructure:"scratch"`
	Normalize NormalizeConfig `json:"normalize" yaml:"normalize" mapstructure:"normalize"`
	Protect   ProtectConfig   `json:"protect" yaml:"protect" mapstructure:"protect"`
	Journal   JournalConfig   `json:"journal" yaml:"journal" mapstructure:"journal"`
	Home      HomeConfig      `json:"home" yaml:"home" mapstructure:"home"`
}
