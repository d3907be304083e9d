// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfutil/internal/scratch"
	"github.com/pdiddy/pdfutil/internal/testsupport"
	"github.com/pdiddy/pdfutil/pkg/types"
)

// countingAcquirer hands out a real scratch area and records how often it
// was asked for one.
type countingAcquirer struct {
	mgr   *scratch.Manager
	calls int
}

func newCountingAcquirer(t *testing.T) *countingAcquirer {
	t.Helper()
	return &countingAcquirer{mgr: scratch.NewManager(types.ScratchConfig{Root: t.TempDir()})}
}

func (c *countingAcquirer) Acquire() (*scratch.Area, error) {
	c.calls++
	return c.mgr.Acquire()
}

func TestNormalize_NoImages(t *testing.T) {
	dir := t.TempDir()
	testsupport.WritePDF(t, filepath.Join(dir, "a.pdf"), testsupport.PDFSpec{})

	acq := newCountingAcquirer(t)
	var log bytes.Buffer
	res, err := Normalize(dir, acq, types.NormalizeConfig{}, &log)

	require.NoError(t, err)
	assert.Nil(t, res.Area)
	assert.Empty(t, res.StagedDir())
	assert.Zero(t, res.Total())
	assert.Zero(t, acq.calls, "no scratch area for a directory without images")
	assert.Contains(t, log.String(), "No image files found")
}

func TestNormalize_ConvertsAndSkipsFailures(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteJPEG(t, filepath.Join(dir, "a.jpg"), 40, 20)
	testsupport.WriteJPEG(t, filepath.Join(dir, "B.JPG"), 30, 30)
	testsupport.WriteBMP(t, filepath.Join(dir, "c.bmp"), 16, 16)
	testsupport.WritePalettedBMP(t, filepath.Join(dir, "d.bmp"), 12, 8)
	testsupport.WriteCorrupt(t, filepath.Join(dir, "broken.jpeg"))
	testsupport.WritePDF(t, filepath.Join(dir, "doc.pdf"), testsupport.PDFSpec{})

	acq := newCountingAcquirer(t)
	var log bytes.Buffer
	res, err := Normalize(dir, acq, types.NormalizeConfig{}, &log)
	require.NoError(t, err)

	require.NotNil(t, res.Area)
	assert.Equal(t, 1, acq.calls)
	assert.Equal(t, 4, res.Converted)
	assert.Equal(t, 1, res.Failed)
	assert.True(t, res.HasFailures())
	assert.Equal(t, 5, res.Total())

	var sources []string
	for _, item := range res.Items {
		sources = append(sources, filepath.Base(item.Path))
	}
	assert.Equal(t, []string{"B.JPG", "a.jpg", "broken.jpeg", "c.bmp", "d.bmp"}, sources)

	for _, name := range []string{"B.pdf", "a.pdf", "c.pdf", "d.pdf"} {
		staged := filepath.Join(res.StagedDir(), name)
		require.FileExists(t, staged)
		n, err := api.PageCountFile(staged)
		require.NoError(t, err)
		assert.Equal(t, 1, n, name)
	}
	assert.NoFileExists(t, filepath.Join(res.StagedDir(), "broken.pdf"))
	assert.Contains(t, log.String(), "failed:  broken.jpeg")
	assert.Contains(t, log.String(), "converted: a.jpg -> a.pdf")
}

func TestConvertImage_PageSizeFollowsDPI(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "scan.jpg")
	testsupport.WriteJPEG(t, img, 200, 100)

	out := filepath.Join(dir, "scan.pdf")
	page, err := ConvertImage(img, out, types.NormalizeConfig{})
	require.NoError(t, err)

	assert.Equal(t, 200, page.PixelWidth)
	assert.Equal(t, 100, page.PixelHeight)
	assert.InDelta(t, 144.0, page.Width, 0.001)
	assert.InDelta(t, 72.0, page.Height, 0.001)

	dims, err := api.PageDimsFile(out)
	require.NoError(t, err)
	require.Len(t, dims, 1)
	assert.InDelta(t, 144.0, dims[0].Width, 0.5)
	assert.InDelta(t, 72.0, dims[0].Height, 0.5)
}

func TestConvertImage_Idempotent(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "photo.bmp")
	testsupport.WriteBMP(t, img, 64, 48)

	first := filepath.Join(dir, "run1", "photo.pdf")
	second := filepath.Join(dir, "run2", "photo.pdf")
	for _, out := range []string{first, second} {
		require.NoError(t, os.MkdirAll(filepath.Dir(out), 0o755))
		_, err := ConvertImage(img, out, types.NormalizeConfig{})
		require.NoError(t, err)
	}

	dims1, err := api.PageDimsFile(first)
	require.NoError(t, err)
	dims2, err := api.PageDimsFile(second)
	require.NoError(t, err)

	require.Len(t, dims1, 1)
	assert.Equal(t, dims1, dims2)
}

func TestConvertImage_Failures(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name  string
		setup func() string
	}{
		{
			name:  "missing file",
			setup: func() string { return filepath.Join(dir, "missing.jpg") },
		},
		{
			name: "corrupt data",
			setup: func() string {
				p := filepath.Join(dir, "corrupt.jpg")
				testsupport.WriteCorrupt(t, p)
				return p
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, tt.name+".pdf")
			_, err := ConvertImage(tt.setup(), out, types.NormalizeConfig{})
			assert.Error(t, err)
			assert.NoFileExists(t, out)
		})
	}
}

func TestStagedName(t *testing.T) {
	used := map[string]bool{}
	assert.Equal(t, "scan.pdf", stagedName("/x/scan.bmp", used))
	assert.Equal(t, "scan_jpg.pdf", stagedName("/x/scan.jpg", used))
	assert.Equal(t, "other.pdf", stagedName("/x/other.JPEG", used))

	// Extensions differing only in case still get distinct names.
	used = map[string]bool{}
	assert.Equal(t, "b.pdf", stagedName("/x/b.JPG", used))
	assert.Equal(t, "b_jpg.pdf", stagedName("/x/b.Jpg", used))
	assert.Equal(t, "b_jpg_2.pdf", stagedName("/x/b.jpg", used))
	assert.Equal(t, "b_jpg_3.pdf", stagedName("/y/b.jpg", used))
}

func TestFindImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"z.jpg", "a.JPEG", "m.bmp", "notes.txt", "doc.pdf", "sheet.xlsx"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.jpg"), 0o755))

	images, err := FindImages(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.JPEG"),
		filepath.Join(dir, "m.bmp"),
		filepath.Join(dir, "z.jpg"),
	}, images)
}
