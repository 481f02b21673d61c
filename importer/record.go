package importer

import (
	"strings"
)

// Row is one tokenized data line. Index is the 1-based position among data
// rows, header excluded, blank lines not counted.
type Row struct {
	Index  int
	Fields map[string]string
	Raw    []string

	// ParseErr is set when the tokenizer could not map the line onto the
	// header; such rows never reach validation.
	ParseErr string
}

// Get returns the raw value of the column with the given header name.
// Header names are matched case-sensitively.
func (r Row) Get(name string) (string, bool) {
	value, ok := r.Fields[name]
	return value, ok
}

// Table is a tokenized CSV document.
type Table struct {
	Headers []string
	Rows    []Row
}

func normalizeHeader(input string) string {
	return strings.TrimSpace(strings.TrimPrefix(input, "\ufeff"))
}
