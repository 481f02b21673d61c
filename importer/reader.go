package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Reader loads an input file as CSV text.
type Reader interface {
	Read(path string) (string, error)
}

func ReaderForFormat(format string) (Reader, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv":
		return &CSVFileReader{}, nil
	case "excel", "xlsx", "xlsm":
		return &ExcelReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported input format: %s", format)
	}
}

// ReadSource loads path as CSV text. When format is empty it is inferred
// from the file extension.
func ReadSource(path, format string) (string, error) {
	sourceFormat, err := inferFormat(path, format)
	if err != nil {
		return "", err
	}
	reader, err := ReaderForFormat(sourceFormat)
	if err != nil {
		return "", err
	}
	return reader.Read(path)
}

func inferFormat(path string, format string) (string, error) {
	if strings.TrimSpace(format) != "" {
		return format, nil
	}

	extension := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch extension {
	case "csv":
		return "csv", nil
	case "xlsx", "xlsm":
		return "excel", nil
	default:
		return "", fmt.Errorf("unsupported file extension for %s", path)
	}
}

type CSVFileReader struct{}

func (r *CSVFileReader) Read(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read csv file %s: %w", path, err)
	}
	return string(content), nil
}
