// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline exposes the two document jobs the CLI runs: merging a
// directory into one PDF and protecting a directory's files with a password.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/pdfutil/internal/collect"
	"github.com/pdiddy/pdfutil/internal/merge"
	"github.com/pdiddy/pdfutil/internal/normalize"
	"github.com/pdiddy/pdfutil/internal/protect"
	"github.com/pdiddy/pdfutil/internal/scratch"
	"github.com/pdiddy/pdfutil/internal/workbook"
	"github.com/pdiddy/pdfutil/pkg/types"
)

var (
	// ErrInvalidTarget is returned when the target directory does not exist.
	ErrInvalidTarget = errors.New("target directory does not exist")

	// ErrEmptyFilename is returned when no output filename is given.
	ErrEmptyFilename = errors.New("output filename cannot be empty")

	// ErrInvalidFilename is returned for output names that are not a plain
	// file name.
	ErrInvalidFilename = errors.New("output filename must not contain a path")
)

// EnsurePDFExtension trims name and appends ".pdf" unless it already ends
// with it, in any case.
func EnsurePDFExtension(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyFilename
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, name)
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		name += ".pdf"
	}
	return name, nil
}

// MergeReport collects everything a merge run did.
type MergeReport struct {
	Target string
	Output string

	Normalize normalize.Result
	Documents []types.SourceDocument
	Merge     merge.Result

	// Cleanup is the scratch release outcome. A leftover here is a warning
	// and never changes the merge outcome.
	Cleanup scratch.ReleaseResult
}

// lazyArea acquires the run's scratch area on first use only.
type lazyArea struct {
	mgr  *scratch.Manager
	area *scratch.Area
}

func (l *lazyArea) Acquire() (*scratch.Area, error) {
	if l.area != nil {
		return l.area, nil
	}
	area, err := l.mgr.Acquire()
	if err != nil {
		return nil, err
	}
	l.area = area
	return area, nil
}

// RunMerge stages the images of targetDir, collects originals and staged
// pages in order and merges them into targetDir/outputFilename. The
// scratch area is released on every path. Terminal outcomes are
// distinguishable with errors.Is: merge.ErrNothingToMerge for an empty batch
// and merge.ErrWriteFailed for a failed commit.
func RunMerge(targetDir, outputFilename string, cfg types.Config, w io.Writer) (report MergeReport, err error) {
	target, err := resolveTarget(targetDir)
	if err != nil {
		return report, err
	}
	name, err := EnsurePDFExtension(outputFilename)
	if err != nil {
		return report, err
	}
	report.Target = target
	report.Output = filepath.Join(target, name)

	fmt.Fprintf(w, "--- Starting merge in %s ---\n", target)

	mgr := scratch.NewManager(cfg.Scratch)
	areas := &lazyArea{mgr: mgr}
	defer func() {
		report.Cleanup = mgr.Release(areas.area, w)
	}()

	report.Normalize, err = normalize.Normalize(target, areas, cfg.Normalize, w)
	if err != nil {
		return report, err
	}

	report.Documents, err = collect.Collect(target, report.Normalize.StagedDir(), collect.Options{Exclude: []string{name}})
	if err != nil {
		return report, err
	}

	var workDir string
	if len(report.Documents) > 1 {
		area, err := areas.Acquire()
		if err != nil {
			return report, err
		}
		workDir = area.Path
	}

	report.Merge, err = merge.NewEngine().Merge(report.Documents, report.Output, workDir, w)
	return report, err
}

// RunProtect writes password-protected copies of the PDFs and workbooks of
// targetDir into its protected subdirectory.
func RunProtect(targetDir, password string, cfg types.Config, w io.Writer) (protect.Result, error) {
	target, err := resolveTarget(targetDir)
	if err != nil {
		return protect.Result{}, err
	}
	fmt.Fprintf(w, "--- Starting password protection in %s ---\n", target)
	return protect.Protect(target, password, cfg.Protect, workbook.Excelize{}, w)
}

func resolveTarget(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrInvalidTarget, abs)
	}
	return abs, nil
}
