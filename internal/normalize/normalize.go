// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts raster images into single-page PDFs staged in a
// scratch area, so that a merge only ever deals with one input format.
package normalize

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdiddy/pdfutil/internal/scratch"
	"github.com/pdiddy/pdfutil/pkg/types"
)

const (
	defaultDPI         = 100
	defaultJPEGQuality = 95
)

// Acquirer hands out the scratch area images are staged into. It is only
// called when at least one image exists.
type Acquirer interface {
	Acquire() (*scratch.Area, error)
}

// Page describes one staged single-page PDF.
type Page struct {
	// Source is the image the page was derived from.
	Source string
	// Output is the staged PDF path.
	Output string
	// PixelWidth and PixelHeight are the decoded image dimensions.
	PixelWidth, PixelHeight int
	// Width and Height are the page dimensions in points.
	Width, Height float64
}

// Result holds the outcome of a normalization run.
type Result struct {
	// Area is the scratch area holding staged PDFs. It is nil when the
	// target directory contains no images.
	Area *scratch.Area

	Pages []Page
	Items []types.ItemResult

	Converted int
	Failed    int
}

// Total returns the number of images processed.
func (r Result) Total() int {
	return r.Converted + r.Failed
}

// HasFailures reports whether any image failed conversion.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// StagedDir returns the directory holding staged PDFs, or "" when nothing
// was staged.
func (r Result) StagedDir() string {
	if r.Area == nil {
		return ""
	}
	return r.Area.Path
}

// FindImages lists the images directly inside dir, sorted by path.
// Extensions are matched case-insensitively.
func FindImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if f, ok := types.FormatOf(entry.Name()); ok && f == types.FormatImage {
			images = append(images, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(images)
	return images, nil
}

// Normalize converts every image in targetDir into a single-page PDF inside
// a scratch area obtained from acq. A failing image is reported on w and
// counted; the remaining images are still converted. When targetDir has no
// images no area is acquired and Result.Area is nil.
func Normalize(targetDir string, acq Acquirer, cfg types.NormalizeConfig, w io.Writer) (Result, error) {
	var result Result

	images, err := FindImages(targetDir)
	if err != nil {
		return result, err
	}
	if len(images) == 0 {
		fmt.Fprintln(w, "No image files found for conversion.")
		return result, nil
	}

	area, err := acq.Acquire()
	if err != nil {
		return result, fmt.Errorf("staging images: %w", err)
	}
	result.Area = area

	fmt.Fprintf(w, "Found %d image(s). Converting to temporary PDFs...\n", len(images))

	used := make(map[string]bool, len(images))
	for _, img := range images {
		out := stagedName(img, used)
		page, err := ConvertImage(img, filepath.Join(area.Path, out), cfg)
		if err != nil {
			fmt.Fprintf(w, "  failed:  %s (%v)\n", filepath.Base(img), err)
			result.Items = append(result.Items, types.ItemResult{Path: img, Status: types.ItemFailed, Err: err})
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "  converted: %s -> %s\n", filepath.Base(img), out)
		result.Items = append(result.Items, types.ItemResult{Path: img, Output: page.Output, Status: types.ItemDone})
		result.Pages = append(result.Pages, page)
		result.Converted++
	}

	return result, nil
}

// stagedName returns "<base>.pdf" for img. When two images share a base name
// (scan.jpg and scan.bmp) the later one gets its extension folded into the
// name, and a numeric suffix is added until the name is unused, so no staged
// page overwrites another.
func stagedName(img string, used map[string]bool) string {
	ext := filepath.Ext(img)
	base := strings.TrimSuffix(filepath.Base(img), ext)
	name := base + ".pdf"
	if used[strings.ToLower(name)] {
		stem := base + "_" + strings.ToLower(strings.TrimPrefix(ext, "."))
		name = stem + ".pdf"
		for n := 2; used[strings.ToLower(name)]; n++ {
			name = stem + "_" + strconv.Itoa(n) + ".pdf"
		}
	}
	used[strings.ToLower(name)] = true
	return name
}
