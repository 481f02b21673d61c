package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Tokenize splits raw CSV text into a header and data rows. Malformed data
// rows are returned with ParseErr set instead of failing the whole document;
// only a missing or unusable header is an error.
func Tokenize(raw string) (Table, error) {
	raw = strings.TrimPrefix(raw, "\ufeff")
	if strings.TrimSpace(raw) == "" {
		return Table{}, ErrEmptyInput
	}
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	reader := csv.NewReader(strings.NewReader(raw))
	reader.FieldsPerRecord = -1

	headers, err := readHeader(reader)
	if err != nil {
		return Table{}, err
	}

	table := Table{Headers: headers, Rows: make([]Row, 0, 128)}
	rowIndex := 0
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return Table{}, fmt.Errorf("read csv row %d: %w", rowIndex+1, err)
			}
			rowIndex++
			table.Rows = append(table.Rows, Row{
				Index:    rowIndex,
				Raw:      sourceLines(lines, parseErr.StartLine, parseErr.Line),
				ParseErr: fmt.Sprintf("malformed CSV on line %d: %v", parseErr.Line, parseErr.Err),
			})
			continue
		}
		if isBlankRecord(fields) {
			continue
		}

		rowIndex++
		row := Row{Index: rowIndex, Raw: fields}
		if len(fields) != len(headers) {
			row.ParseErr = fmt.Sprintf("row has %d column(s), expected %d", len(fields), len(headers))
			table.Rows = append(table.Rows, row)
			continue
		}

		row.Fields = make(map[string]string, len(headers))
		for i, header := range headers {
			row.Fields[header] = fields[i]
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

func readHeader(reader *csv.Reader) ([]string, error) {
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			return nil, ErrEmptyInput
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
		}
		if isBlankRecord(fields) {
			continue
		}

		headers := make([]string, len(fields))
		seen := make(map[string]struct{}, len(fields))
		for i, field := range fields {
			name := normalizeHeader(field)
			if name == "" {
				return nil, fmt.Errorf("%w: column %d has an empty name", ErrInvalidHeader, i+1)
			}
			if _, exists := seen[name]; exists {
				return nil, fmt.Errorf("%w: duplicate column %q", ErrInvalidHeader, name)
			}
			seen[name] = struct{}{}
			headers[i] = name
		}
		return headers, nil
	}
}

func isBlankRecord(fields []string) bool {
	return len(fields) == 1 && strings.TrimSpace(fields[0]) == ""
}

func sourceLines(lines []string, start, end int) []string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end {
		return nil
	}
	return []string{strings.Join(lines[start-1:end], "\n")}
}
