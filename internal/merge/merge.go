// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package merge concatenates ordered PDFs into one compressed document.
// Unreadable inputs are skipped, compression failures leave a page as it
// was, and only the final write can fail the run.
package merge

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/pdfutil/pkg/types"
)

var (
	// ErrNothingToMerge is returned when no input could be merged. No
	// output file is written.
	ErrNothingToMerge = errors.New("nothing to merge")

	// ErrWriteFailed is returned when the merged document could not be
	// assembled or committed to the output path.
	ErrWriteFailed = errors.New("writing merged document failed")
)

// Document is an input that made it into the merged output.
type Document struct {
	Path  string
	Pages int
}

// Result holds the outcome of a merge.
type Result struct {
	// Output is the committed output path; empty when nothing was written.
	Output string
	// Bytes is the size of the committed output.
	Bytes int64

	Merged  []Document
	Items   []types.ItemResult
	Skipped int

	// Pages is the page count of the merged document.
	Pages int
	// Compressed counts pages whose content streams were compressed by
	// this run, AlreadyCompressed pages that needed no work and
	// Uncompressed pages left as is after a compression failure.
	Compressed        int
	AlreadyCompressed int
	Uncompressed      int
}

// Total returns the number of inputs considered.
func (r Result) Total() int {
	return len(r.Merged) + r.Skipped
}

// HasSkipped reports whether any input was skipped.
func (r Result) HasSkipped() bool {
	return r.Skipped > 0
}

// Engine merges PDFs with pdfcpu.
type Engine struct {
	conf *model.Configuration

	// mergeFiles concatenates paths into out; replaced in tests.
	mergeFiles func(paths []string, out string) error
}

// NewEngine returns an Engine using relaxed validation, which accepts the
// minor syntax violations common in scanner and office output.
func NewEngine() *Engine {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	e := &Engine{conf: conf}
	e.mergeFiles = func(paths []string, out string) error {
		return api.MergeCreateFile(paths, out, false, e.conf)
	}
	return e
}

// Merge appends every page of docs, in order, into a single document that is
// compressed page by page and committed to outputPath. Intermediate files are
// created in workDir. Per-document problems are reported on w and counted.
func (e *Engine) Merge(docs []types.SourceDocument, outputPath, workDir string, w io.Writer) (Result, error) {
	var result Result

	if len(docs) == 0 {
		fmt.Fprintln(w, "No PDF files or convertible images found to merge.")
		return result, ErrNothingToMerge
	}

	fmt.Fprintf(w, "\nFound %d document(s) to merge. Processing...\n", len(docs))
	for i, doc := range docs {
		pages, err := e.probe(doc.Path)
		if err != nil {
			fmt.Fprintf(w, "  skipped: [%d/%d] %s (%v)\n", i+1, len(docs), doc.Name(), err)
			result.Items = append(result.Items, types.ItemResult{Path: doc.Path, Status: types.ItemSkipped, Err: err})
			result.Skipped++
			continue
		}
		fmt.Fprintf(w, "  adding:  [%d/%d] %s (%d page(s))\n", i+1, len(docs), doc.Name(), pages)
		result.Items = append(result.Items, types.ItemResult{Path: doc.Path, Status: types.ItemDone})
		result.Merged = append(result.Merged, Document{Path: doc.Path, Pages: pages})
	}

	if len(result.Merged) == 0 {
		fmt.Fprintln(w, "No readable documents left to merge.")
		return result, ErrNothingToMerge
	}

	ctx, err := e.assemble(result.Merged, workDir)
	if err != nil {
		ctx, err = e.reassemble(&result, workDir, err, w)
	}
	if errors.Is(err, ErrNothingToMerge) {
		fmt.Fprintln(w, "No readable documents left to merge.")
		return result, err
	}
	if err != nil {
		fmt.Fprintf(w, "fatal: %v\n", err)
		return result, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	result.Pages = ctx.PageCount

	fmt.Fprintln(w, "\nApplying compression...")
	for pageNr := 1; pageNr <= ctx.PageCount; pageNr++ {
		outcome, err := compressPage(ctx, pageNr)
		if err != nil {
			fmt.Fprintf(w, "  warning: could not compress page %d: %v\n", pageNr, err)
			result.Uncompressed++
			continue
		}
		switch outcome {
		case pageCompressed:
			result.Compressed++
		case pageAlreadyCompressed:
			result.AlreadyCompressed++
		}
	}

	size, err := commit(ctx, outputPath)
	if err != nil {
		fmt.Fprintf(w, "fatal: %v\n", err)
		return result, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	result.Output = outputPath
	result.Bytes = size

	fmt.Fprintf(w, "merged:  %d document(s), %d page(s) -> %s\n", len(result.Merged), result.Pages, outputPath)
	return result, nil
}

// probe opens and validates one input, returning its page count. The file
// is closed on every path.
func (e *Engine) probe(path string) (int, error) {
	ctx, err := e.read(path)
	if err != nil {
		return 0, err
	}
	if ctx.PageCount == 0 {
		return 0, errors.New("document has no pages")
	}
	return ctx.PageCount, nil
}

func (e *Engine) read(path string) (*model.Context, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening: %w", err)
	}
	defer f.Close()

	ctx, err := api.ReadContext(f, e.conf)
	if err != nil {
		return nil, fmt.Errorf("parsing: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, fmt.Errorf("validating: %w", err)
	}
	return ctx, nil
}

// assemble builds the in-memory merged document. A single input is used
// as is; several inputs are concatenated into a partial file in workDir
// which is read back and removed.
func (e *Engine) assemble(docs []Document, workDir string) (*model.Context, error) {
	if len(docs) == 1 {
		return e.read(docs[0].Path)
	}

	paths := make([]string, len(docs))
	for i, d := range docs {
		paths[i] = d.Path
	}

	tmp, err := os.CreateTemp(workDir, "merge-*.partial")
	if err != nil {
		return nil, fmt.Errorf("creating intermediate file: %w", err)
	}
	partial := tmp.Name()
	tmp.Close()
	defer os.Remove(partial)

	if err := e.mergeFiles(paths, partial); err != nil {
		return nil, fmt.Errorf("concatenating pages: %w", err)
	}
	return e.read(partial)
}

// reassemble handles an assembly failure caused by inputs that stopped being
// readable after they were probed. Those inputs are re-probed, moved to the
// skipped set and the rest is assembled again. When every input still
// probes cleanly the original failure is returned.
func (e *Engine) reassemble(result *Result, workDir string, cause error, w io.Writer) (*model.Context, error) {
	kept := result.Merged[:0:0]
	for _, doc := range result.Merged {
		if _, err := e.probe(doc.Path); err != nil {
			fmt.Fprintf(w, "  skipped: %s (%v)\n", filepath.Base(doc.Path), err)
			result.markSkipped(doc.Path, err)
			continue
		}
		kept = append(kept, doc)
	}
	if len(kept) == len(result.Merged) {
		return nil, cause
	}
	result.Merged = kept
	if len(kept) == 0 {
		return nil, ErrNothingToMerge
	}
	return e.assemble(kept, workDir)
}

func (r *Result) markSkipped(path string, err error) {
	for i := range r.Items {
		if r.Items[i].Path == path && r.Items[i].Status == types.ItemDone {
			r.Items[i].Status = types.ItemSkipped
			r.Items[i].Err = err
			break
		}
	}
	r.Skipped++
}

// commit serializes ctx into a temp file beside outputPath and renames it
// into place, so a failed write never leaves a truncated output behind.
func commit(ctx *model.Context, outputPath string) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".merge-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating output file: %w", err)
	}
	tmpPath := tmp.Name()

	writeErr := api.WriteContext(ctx, tmp)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("writing %s: %w", outputPath, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("closing %s: %w", outputPath, closeErr)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("committing %s: %w", outputPath, err)
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return 0, nil
	}
	return info.Size(), nil
}
