// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package workbook encrypts spreadsheet files with a password.
package workbook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrLegacyFormat is returned for binary .xls workbooks, which cannot be
// opened for re-encryption.
var ErrLegacyFormat = errors.New("legacy .xls workbooks are not supported")

// Encrypter encrypts a workbook at inputPath into outputPath.
type Encrypter interface {
	EncryptWorkbook(inputPath, outputPath, password string) error
}

// Excelize encrypts OOXML workbooks with ECMA-376 agile encryption.
type Excelize struct{}

// EncryptWorkbook opens the workbook at inputPath and saves an encrypted copy
// at outputPath. The output is written to a temp file first and renamed into
// place.
func (Excelize) EncryptWorkbook(inputPath, outputPath, password string) error {
	if password == "" {
		return errors.New("empty password")
	}
	if strings.EqualFold(filepath.Ext(inputPath), ".xls") {
		return ErrLegacyFormat
	}

	f, err := excelize.OpenFile(inputPath)
	if err != nil {
		return fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".protect-*"+filepath.Ext(outputPath))
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := f.SaveAs(tmpPath, excelize.Options{Password: password}); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("encrypting workbook: %w", err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("committing %s: %w", outputPath, err)
	}
	return nil
}
