package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// WriteExcel writes a table as an .xlsx workbook with a single sheet.
func WriteExcel(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"

	row := 1
	if t.Title != "" {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(sheet, cell, t.Title); err != nil {
			return fmt.Errorf("write title: %w", err)
		}
		row += 2
	}

	if err := writeExcelRow(f, sheet, row, t.Headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}
	row++

	for _, r := range t.Rows {
		if err := writeExcelRow(f, sheet, row, r); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
		row++
	}

	if len(t.Footer) > 0 {
		if err := writeExcelRow(f, sheet, row, t.Footer); err != nil {
			return fmt.Errorf("write footer: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeExcelRow(f *excelize.File, sheet string, row int, values []string) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
