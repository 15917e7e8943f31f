package export

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"ssoetl/pkg/models"
)

const sheetName = "SSO Records"

// WriteXLSX builds an XLSX workbook with the same columns as the CSV output
// and returns its bytes.
func WriteXLSX(records []models.FinalRecord, keepRaw bool) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(sheetName); err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}
	index, err := f.GetSheetIndex(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	for col, name := range Header(keepRaw) {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return nil, err
		}
	}

	for i := range records {
		for col, value := range Row(&records[i], keepRaw) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	// Widen the free-text columns; the rest stay at default width.
	_ = f.SetColWidth(sheetName, "B", "C", 28) // permittee, facility
	_ = f.SetColWidth(sheetName, "I", "I", 28) // receiving water
	_ = f.SetColWidth(sheetName, "Q", "R", 40) // cause, file name

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteXLSXFile writes the workbook to path.
func WriteXLSXFile(records []models.FinalRecord, path string, keepRaw bool) error {
	data, err := WriteXLSX(records, keepRaw)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
