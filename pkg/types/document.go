// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"strings"
)

// Format identifies the kind of source file a pipeline stage operates on.
type Format string

const (
	FormatPDF      Format = "pdf"
	FormatImage    Format = "image"
	FormatWorkbook Format = "workbook"
)

// formatByExt maps lowercase file extensions to formats. Extension matching
// is case-insensitive, so "scan.JPG" is an image just like "scan.jpg".
var formatByExt = map[string]Format{
	".pdf":  FormatPDF,
	".jpg":  FormatImage,
	".jpeg": FormatImage,
	".bmp":  FormatImage,
	".xlsx": FormatWorkbook,
	".xls":  FormatWorkbook,
}

// FormatOf returns the format of path based on its extension, and false when
// the extension is not one the pipeline handles.
func FormatOf(path string) (Format, bool) {
	f, ok := formatByExt[strings.ToLower(filepath.Ext(path))]
	return f, ok
}

// SourceDocument is a file discovered for a pipeline run. It is immutable
// once discovered.
type SourceDocument struct {
	// Path is the absolute filesystem path of the document.
	Path string `json:"path" yaml:"path"`

	// Format is the detected kind of document.
	Format Format `json:"format" yaml:"format"`

	// Index is the position of the document in discovery order.
	Index int `json:"index" yaml:"index"`
}

// Name returns the base filename of the document.
func (d SourceDocument) Name() string {
	return filepath.Base(d.Path)
}

// ItemStatus is the outcome of processing a single item in a batch.
type ItemStatus string

const (
	ItemDone    ItemStatus = "done"
	ItemSkipped ItemStatus = "skipped"
	ItemFailed  ItemStatus = "failed"
)

// ItemResult records what happened to one item of a batch. Per-item errors
// are captured here instead of aborting the batch.
type ItemResult struct {
	// Path is the input file the result refers to.
	Path string `json:"path" yaml:"path"`

	// Output is the artifact written for the item, if any.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`

	// Status is the item outcome.
	Status ItemStatus `json:"status" yaml:"status"`

	// Err is the reason for a skipped or failed item.
	Err error `json:"-" yaml:"-"`
}

// OK reports whether the item completed.
func (r ItemResult) OK() bool {
	return r.Status == ItemDone
}
