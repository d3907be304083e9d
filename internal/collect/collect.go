// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package collect discovers the PDFs that make up a merge and fixes their
// order: originals of the target directory first, then staged image pages,
// each group sorted by path.
package collect

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/pdfutil/pkg/types"
)

// Options tunes discovery.
type Options struct {
	// Exclude lists base names in the target directory to leave out, such
	// as the merge output itself.
	Exclude []string
}

// Collect returns the ordered merge inputs for targetDir. Originals are
// listed first; when stagedDir is non-empty its PDFs follow. Directory
// enumeration order is never relied on. An empty result is not an error.
func Collect(targetDir, stagedDir string, opts Options) ([]types.SourceDocument, error) {
	originals, err := ListPDFs(targetDir, opts.Exclude)
	if err != nil {
		return nil, err
	}

	var staged []string
	if stagedDir != "" {
		staged, err = ListPDFs(stagedDir, nil)
		if err != nil {
			return nil, err
		}
	}

	docs := make([]types.SourceDocument, 0, len(originals)+len(staged))
	for _, p := range append(originals, staged...) {
		docs = append(docs, types.SourceDocument{Path: p, Format: types.FormatPDF, Index: len(docs)})
	}
	return docs, nil
}

// ListPDFs returns the absolute paths of the PDFs directly inside dir,
// sorted lexicographically. Names in exclude are skipped, compared
// case-insensitively.
func ListPDFs(dir string, exclude []string) ([]string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", abs, err)
	}

	skip := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		skip[strings.ToLower(name)] = true
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || skip[strings.ToLower(entry.Name())] {
			continue
		}
		if f, ok := types.FormatOf(entry.Name()); ok && f == types.FormatPDF {
			paths = append(paths, filepath.Join(abs, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
