package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelReader renders the first sheet of a workbook as CSV text so
// spreadsheet exports run through the same tokenizer as CSV uploads.
type ExcelReader struct{}

func (r *ExcelReader) Read(path string) (string, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open excel file %s: %w", path, err)
	}
	defer file.Close()

	return firstSheetCSV(file, path)
}

// ReadExcel renders the first sheet of an uploaded workbook as CSV text.
func ReadExcel(r io.Reader, name string) (string, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("open excel upload %s: %w", name, err)
	}
	defer file.Close()

	return firstSheetCSV(file, name)
}

func firstSheetCSV(file *excelize.File, name string) (string, error) {
	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return "", fmt.Errorf("excel file has no sheets: %s", name)
	}

	rows, err := file.GetRows(sheetName)
	if err != nil {
		return "", fmt.Errorf("read rows from sheet %s: %w", sheetName, err)
	}
	return rowsToCSV(rows)
}

// rowsToCSV pads ragged spreadsheet rows to the header width; excelize trims
// trailing empty cells, which would otherwise look like a column mismatch.
func rowsToCSV(rows [][]string) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}

	width := len(rows[0])
	var builder strings.Builder
	writer := csv.NewWriter(&builder)
	for i, row := range rows {
		if i > 0 && isEmptySheetRow(row) {
			continue
		}
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		}
		if err := writer.Write(row); err != nil {
			return "", fmt.Errorf("render sheet row %d: %w", i+1, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush sheet csv: %w", err)
	}
	return builder.String(), nil
}

func isEmptySheetRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
