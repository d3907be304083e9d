// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package protect writes password-protected copies of the PDFs and
// spreadsheets of a directory into a "protected" subdirectory.
package protect

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/pdfutil/internal/workbook"
	"github.com/pdiddy/pdfutil/pkg/types"
)

const (
	defaultOutputDir = "protected"

	// aesKeyLength selects AES-256 for protected PDFs.
	aesKeyLength = 256
)

// ErrEmptyPassword is returned when no password is supplied.
var ErrEmptyPassword = errors.New("password cannot be empty")

// Result holds the outcome of a protection run.
type Result struct {
	// OutputDir is the directory protected copies were written to.
	OutputDir string

	Items     []types.ItemResult
	Succeeded int
	Total     int
}

// Failed returns the number of files that could not be protected.
func (r Result) Failed() int {
	return r.Total - r.Succeeded
}

// HasFailures reports whether any file failed.
func (r Result) HasFailures() bool {
	return r.Failed() > 0
}

// Candidates lists the PDFs and workbooks directly inside dir, each group
// sorted by path.
func Candidates(dir string) (pdfs, workbooks []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		switch f, _ := types.FormatOf(entry.Name()); f {
		case types.FormatPDF:
			pdfs = append(pdfs, path)
		case types.FormatWorkbook:
			workbooks = append(workbooks, path)
		}
	}
	sort.Strings(pdfs)
	sort.Strings(workbooks)
	return pdfs, workbooks, nil
}

// Protect encrypts every PDF and workbook in targetDir with password and
// writes the copies, under the same names, to the protected subdirectory.
// Workbooks are handed to enc. A file that fails is reported on w and
// counted; the batch continues. Errors are returned only for a missing
// password, an output directory that cannot be created or a target
// directory that cannot be listed.
func Protect(targetDir, password string, cfg types.ProtectConfig, enc workbook.Encrypter, w io.Writer) (Result, error) {
	var result Result

	if password == "" {
		return result, ErrEmptyPassword
	}
	if info, err := os.Stat(targetDir); err != nil || !info.IsDir() {
		return result, fmt.Errorf("target directory %s not found", targetDir)
	}

	dirName := cfg.OutputDir
	if dirName == "" {
		dirName = defaultOutputDir
	}
	outDir := filepath.Join(targetDir, dirName)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return result, fmt.Errorf("creating %s: %w", outDir, err)
	}
	result.OutputDir = outDir

	pdfs, books, err := Candidates(targetDir)
	if err != nil {
		return result, err
	}

	result.Total = len(pdfs) + len(books)
	if result.Total == 0 {
		fmt.Fprintln(w, "No PDF or Excel files found in this folder.")
		return result, nil
	}

	fmt.Fprintf(w, "\nFound %d PDF file(s) and %d Excel file(s).\n", len(pdfs), len(books))
	fmt.Fprintf(w, "Protected files will be saved to: %s\n\n", outDir)

	owner := cfg.OwnerPassword
	if owner == "" {
		owner = password
	}

	for _, in := range pdfs {
		out := filepath.Join(outDir, filepath.Base(in))
		result.record(w, in, out, EncryptPDF(in, out, password, owner))
	}
	for _, in := range books {
		out := filepath.Join(outDir, filepath.Base(in))
		result.record(w, in, out, enc.EncryptWorkbook(in, out, password))
	}

	fmt.Fprintf(w, "\nProtection summary: %d/%d files protected\n", result.Succeeded, result.Total)
	return result, nil
}

func (r *Result) record(w io.Writer, in, out string, err error) {
	if err != nil {
		fmt.Fprintf(w, "  failed:  %s (%v)\n", filepath.Base(in), err)
		r.Items = append(r.Items, types.ItemResult{Path: in, Status: types.ItemFailed, Err: err})
		return
	}
	fmt.Fprintf(w, "  protected: %s\n", filepath.Base(in))
	r.Items = append(r.Items, types.ItemResult{Path: in, Output: out, Status: types.ItemDone})
	r.Succeeded++
}

// EncryptPDF writes an AES-256 encrypted copy of the PDF at inputPath to
// outputPath. The input and output files are closed on every path, and the
// output is committed by rename.
func EncryptPDF(inputPath, outputPath, userPW, ownerPW string) error {
	in, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("opening: %w", err)
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".protect-*.tmp")
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	tmpPath := tmp.Name()

	conf := model.NewAESConfiguration(userPW, ownerPW, aesKeyLength)
	encErr := api.Encrypt(in, tmp, conf)
	closeErr := tmp.Close()
	if encErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("encrypting: %w", encErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing output: %w", closeErr)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("committing %s: %w", outputPath, err)
	}
	return nil
}
