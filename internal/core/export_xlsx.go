package core

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// xlsxSheet is the default sheet of a new workbook.
const xlsxSheet = "Sheet1"

// ExportXLSX writes t to a single-sheet workbook. Numbers and dates are
// stored as typed cells; nulls are left blank.
func ExportXLSX(t *Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for j, name := range t.Names() {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(xlsxSheet, cell, name); err != nil {
			return nil, fmt.Errorf("failed to write header %q: %w", name, err)
		}
	}

	for i := 0; i < t.Len(); i++ {
		for j, col := range t.Columns {
			v := col.Value(i)
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(xlsxSheet, cell, v); err != nil {
				return nil, fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
