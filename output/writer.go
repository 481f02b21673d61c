package output

import (
	"fmt"
	"strings"
)

// Table is a header plus rows of already formatted cells.
type Table struct {
	Headers []string
	Rows    [][]string
}

type Writer interface {
	Write(path string, table Table) error
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteTable writes table to path in the given format.
func WriteTable(path, format string, table Table) error {
	writer, err := WriterForFormat(format)
	if err != nil {
		return err
	}
	return writer.Write(path, table)
}

// FormatFromPath infers csv or excel from the file extension; csv otherwise.
func FormatFromPath(path string) string {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xlsx") {
		return "excel"
	}
	return "csv"
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
