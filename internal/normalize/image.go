// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
	_ "golang.org/x/image/bmp"

	"github.com/pdiddy/pdfutil/pkg/types"
)

// ConvertImage decodes the image at imgPath, flattens it to RGB and writes it
// as a single-page PDF to outPath. The page is sized so the image renders at
// cfg.DPI. The decoded image is dropped before the PDF is assembled.
func ConvertImage(imgPath, outPath string, cfg types.NormalizeConfig) (Page, error) {
	dpi := cfg.DPI
	if dpi <= 0 {
		dpi = defaultDPI
	}
	quality := cfg.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = defaultJPEGQuality
	}

	encoded, px, err := flattenToJPEG(imgPath, quality)
	if err != nil {
		return Page{}, err
	}

	page := Page{
		Source:      imgPath,
		Output:      outPath,
		PixelWidth:  px.Dx(),
		PixelHeight: px.Dy(),
		Width:       float64(px.Dx()) * 72 / dpi,
		Height:      float64(px.Dy()) * 72 / dpi,
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: page.Width, Ht: page.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCompression(true)
	pdf.AddPage()

	name := filepath.Base(imgPath)
	opt := gofpdf.ImageOptions{ImageType: "JPG"}
	pdf.RegisterImageOptionsReader(name, opt, encoded)
	pdf.ImageOptions(name, 0, 0, page.Width, page.Height, false, opt, 0, "")

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		os.Remove(outPath)
		return Page{}, fmt.Errorf("writing %s: %w", filepath.Base(outPath), err)
	}
	return page, nil
}

// flattenToJPEG decodes imgPath and re-encodes it as a 3-channel JPEG.
// Transparent and indexed images are composited onto white first.
func flattenToJPEG(imgPath string, quality int) (*bytes.Buffer, image.Rectangle, error) {
	f, err := os.Open(imgPath)
	if err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("opening image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, image.Rectangle{}, fmt.Errorf("decoding image: %w", err)
	}

	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, bounds, fmt.Errorf("image has no pixels")
	}

	rgb := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgb, rgb.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(rgb, rgb.Bounds(), src, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, rgb, &jpeg.Options{Quality: quality}); err != nil {
		return nil, bounds, fmt.Errorf("encoding page image: %w", err)
	}
	return &buf, rgb.Bounds(), nil
}
