package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

type ExcelWriter struct{}

func (w *ExcelWriter) Write(path string, table Table) error {
	file, err := buildWorkbook(table)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := file.SaveAs(path); err != nil {
		return fmt.Errorf("save excel output %s: %w", path, err)
	}
	return nil
}

// WriteExcel renders table as an xlsx workbook to out.
func WriteExcel(out io.Writer, table Table) error {
	file, err := buildWorkbook(table)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.WriteTo(out); err != nil {
		return fmt.Errorf("write excel output: %w", err)
	}
	return nil
}

func buildWorkbook(table Table) (*excelize.File, error) {
	file := excelize.NewFile()
	sheet := file.GetSheetName(0)

	for col, header := range table.Headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, values := range table.Rows {
		row := i + 2
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				_ = file.Close()
				return nil, fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if len(table.Headers) > 0 {
		if err := file.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			_ = file.Close()
			return nil, fmt.Errorf("freeze excel header: %w", err)
		}
	}
	return file, nil
}
