// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package testsupport generates PDF, image and workbook fixtures for tests.
package testsupport

import (
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
	"golang.org/x/image/bmp"
)

// PDFSpec describes a generated PDF fixture. Zero fields default to one
// 300x400 pt page with compressed content.
type PDFSpec struct {
	Pages        int
	Width        float64
	Height       float64
	Uncompressed bool
}

// WritePDF writes a PDF with spec.Pages labelled pages to path.
func WritePDF(t testing.TB, path string, spec PDFSpec) {
	t.Helper()

	if spec.Pages <= 0 {
		spec.Pages = 1
	}
	if spec.Width <= 0 {
		spec.Width = 300
	}
	if spec.Height <= 0 {
		spec.Height = 400
	}
	mkdir(t, path)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: spec.Width, Ht: spec.Height},
	})
	pdf.SetCompression(!spec.Uncompressed)
	pdf.SetFont("Helvetica", "", 16)
	for i := 1; i <= spec.Pages; i++ {
		pdf.AddPage()
		pdf.SetXY(20, 40)
		pdf.Cell(0, 20, fmt.Sprintf("%s - page %d", filepath.Base(path), i))
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		t.Fatalf("writing PDF fixture %s: %v", path, err)
	}
}

// WriteJPEG writes a w x h gradient JPEG to path.
func WriteJPEG(t testing.TB, path string, w, h int) {
	t.Helper()
	mkdir(t, path)

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, gradient(w, h), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encoding JPEG fixture %s: %v", path, err)
	}
}

// WriteBMP writes a w x h BMP with a translucent alpha channel to path.
func WriteBMP(t testing.TB, path string, w, h int) {
	t.Helper()
	mkdir(t, path)

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: 0, B: uint8(y), A: 128})
		}
	}
	writeBMP(t, path, img)
}

// WritePalettedBMP writes a w x h 8-bit indexed BMP to path.
func WritePalettedBMP(t testing.TB, path string, w, h int) {
	t.Helper()
	mkdir(t, path)

	img := image.NewPaletted(image.Rect(0, 0, w, h), palette.Plan9)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetColorIndex(x, y, uint8((x+y)%len(palette.Plan9)))
		}
	}
	writeBMP(t, path, img)
}

// WriteCorrupt writes bytes that no decoder accepts to path.
func WriteCorrupt(t testing.TB, path string) {
	t.Helper()
	mkdir(t, path)
	if err := os.WriteFile(path, []byte("%PDF-1.4\nthis is not a document\n"), 0o644); err != nil {
		t.Fatal(err)
	}
}

// WriteWorkbook writes a small xlsx workbook to path.
func WriteWorkbook(t testing.TB, path string) {
	t.Helper()
	mkdir(t, path)

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetCellValue("Sheet1", "A1", "invoice"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetCellValue("Sheet1", "B1", 42); err != nil {
		t.Fatal(err)
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("writing workbook fixture %s: %v", path, err)
	}
}

func gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	return img
}

func writeBMP(t testing.TB, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := bmp.Encode(f, img); err != nil {
		t.Fatalf("encoding BMP fixture %s: %v", path, err)
	}
}

func mkdir(t testing.TB, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
}
