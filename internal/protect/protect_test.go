// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package protect

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/pdfutil/internal/testsupport"
	"github.com/pdiddy/pdfutil/pkg/types"
)

// fakeEncrypter implements workbook.Encrypter, copying inputs and failing
// for the configured paths.
type fakeEncrypter struct {
	fail  map[string]error
	calls []string
}

func (f *fakeEncrypter) EncryptWorkbook(in, out, password string) error {
	f.calls = append(f.calls, filepath.Base(in))
	if err, ok := f.fail[filepath.Base(in)]; ok {
		return err
	}
	data, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	return os.WriteFile(out, data, 0o644)
}

func openWithPassword(t *testing.T, path, pw string) (*model.Context, error) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.UserPW = pw
	conf.OwnerPW = pw
	ctx, err := api.ReadContext(f, conf)
	if err != nil {
		return nil, err
	}
	if err := api.ValidateContext(ctx); err != nil {
		return nil, err
	}
	return ctx, nil
}

func TestEncryptPDF_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "report.pdf")
	out := filepath.Join(dir, "locked.pdf")
	testsupport.WritePDF(t, in, testsupport.PDFSpec{Pages: 3})

	require.NoError(t, EncryptPDF(in, out, "hunter2", "hunter2"))

	_, err := api.ReadContextFile(out)
	assert.Error(t, err, "protected PDF must not open without a password")

	_, err = openWithPassword(t, out, "wrong")
	assert.Error(t, err)

	ctx, err := openWithPassword(t, out, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, 3, ctx.PageCount)
}

func TestEncryptPDF_CorruptInput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "bad.pdf")
	out := filepath.Join(dir, "out.pdf")
	testsupport.WriteCorrupt(t, in)

	assert.Error(t, EncryptPDF(in, out, "pw", "pw"))
	assert.NoFileExists(t, out)

	leftovers, err := filepath.Glob(filepath.Join(dir, ".protect-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestProtect_MixedBatch(t *testing.T) {
	dir := t.TempDir()
	testsupport.WritePDF(t, filepath.Join(dir, "a.pdf"), testsupport.PDFSpec{Pages: 2})
	testsupport.WriteCorrupt(t, filepath.Join(dir, "b.pdf"))
	testsupport.WriteWorkbook(t, filepath.Join(dir, "c.xlsx"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "d.xls"), []byte("biff"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	enc := &fakeEncrypter{fail: map[string]error{"d.xls": errors.New("legacy format")}}
	var log bytes.Buffer
	res, err := Protect(dir, "pw", types.ProtectConfig{}, enc, &log)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 2, res.Failed())
	assert.True(t, res.HasFailures())
	assert.Equal(t, filepath.Join(dir, "protected"), res.OutputDir)
	assert.Equal(t, []string{"c.xlsx", "d.xls"}, enc.calls)

	assert.FileExists(t, filepath.Join(dir, "protected", "a.pdf"))
	assert.FileExists(t, filepath.Join(dir, "protected", "c.xlsx"))
	assert.NoFileExists(t, filepath.Join(dir, "protected", "b.pdf"))
	assert.NoFileExists(t, filepath.Join(dir, "protected", "d.xls"))

	ctx, err := openWithPassword(t, filepath.Join(dir, "protected", "a.pdf"), "pw")
	require.NoError(t, err)
	assert.Equal(t, 2, ctx.PageCount)

	out := log.String()
	assert.Contains(t, out, "failed:  b.pdf")
	assert.Contains(t, out, "Protection summary: 2/4 files protected")
}

func TestProtect_OwnerPassword(t *testing.T) {
	dir := t.TempDir()
	testsupport.WritePDF(t, filepath.Join(dir, "a.pdf"), testsupport.PDFSpec{})

	res, err := Protect(dir, "user-pw", types.ProtectConfig{OwnerPassword: "owner-pw"}, &fakeEncrypter{}, &bytes.Buffer{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Succeeded)

	_, err = openWithPassword(t, filepath.Join(dir, "protected", "a.pdf"), "user-pw")
	assert.NoError(t, err)
}

func TestProtect_NoCandidates(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644))

	var log bytes.Buffer
	res, err := Protect(dir, "pw", types.ProtectConfig{}, &fakeEncrypter{}, &log)
	require.NoError(t, err)

	assert.Zero(t, res.Total)
	assert.False(t, res.HasFailures())
	assert.DirExists(t, filepath.Join(dir, "protected"))
	assert.Contains(t, log.String(), "No PDF or Excel files found")
}

func TestProtect_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Protect(dir, "", types.ProtectConfig{}, &fakeEncrypter{}, &bytes.Buffer{})
	assert.True(t, errors.Is(err, ErrEmptyPassword))

	missing := filepath.Join(dir, "missing")
	_, err = Protect(missing, "pw", types.ProtectConfig{}, &fakeEncrypter{}, &bytes.Buffer{})
	assert.Error(t, err)
	assert.NoDirExists(t, missing)
}

func TestCandidates(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.PDF", "a.pdf", "z.xls", "y.XLSX", "img.jpg"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "protected"), 0o755))

	pdfs, books, err := Candidates(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.pdf"), filepath.Join(dir, "b.PDF")}, pdfs)
	assert.Equal(t, []string{filepath.Join(dir, "y.XLSX"), filepath.Join(dir, "z.xls")}, books)
}
