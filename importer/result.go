package importer

import (
	"fmt"

	"dealerhub/record"
)

// RowError reports one rejected data row.
type RowError struct {
	RowIndex int          `json:"rowIndex"`
	Kind     ErrorKind    `json:"kind"`
	Message  string       `json:"message"`
	RawRow   []string     `json:"rawRow"`
	Fields   []FieldError `json:"fields,omitempty"`
}

// Result is the outcome of one import call.
type Result struct {
	Success       bool        `json:"success"`
	Message       string      `json:"message"`
	Kind          record.Kind `json:"kind"`
	TotalRows     int         `json:"totalRows"`
	ImportedCount int         `json:"importedCount"`
	ErrorCount    int         `json:"errorCount"`
	Errors        []RowError  `json:"errors"`
	ImportedIDs   []string    `json:"importedIds"`
}

// aggregator collects per-row outcomes in row order and renders the final
// Result.
type aggregator struct {
	result Result
}

func newAggregator(kind record.Kind) *aggregator {
	return &aggregator{result: Result{
		Kind:        kind,
		Errors:      []RowError{},
		ImportedIDs: []string{},
	}}
}

func (a *aggregator) countRow() {
	a.result.TotalRows++
}

func (a *aggregator) addError(rowErr RowError) {
	if rowErr.RawRow == nil {
		rowErr.RawRow = []string{}
	}
	a.result.ErrorCount++
	a.result.Errors = append(a.result.Errors, rowErr)
}

func (a *aggregator) committed(ids []string) {
	a.result.ImportedCount = len(ids)
	a.result.ImportedIDs = append(a.result.ImportedIDs, ids...)
}

// fail finalizes the result for a fatal error.
func (a *aggregator) fail(err error) Result {
	a.result.Success = false
	a.result.Message = fmt.Sprintf("Import failed: %v", err)
	return a.result
}

func (a *aggregator) finish() Result {
	r := &a.result
	switch {
	case r.TotalRows == 0:
		r.Success = false
		r.Message = "No data rows found."
	case r.ImportedCount == 0:
		r.Success = false
		r.Message = fmt.Sprintf("No valid rows found: %d error(s) out of %d rows.", r.ErrorCount, r.TotalRows)
	case r.ErrorCount > 0:
		r.Success = false
		r.Message = fmt.Sprintf("Import completed with %d error(s) out of %d rows; %d record(s) imported.", r.ErrorCount, r.TotalRows, r.ImportedCount)
	default:
		r.Success = true
		r.Message = fmt.Sprintf("Import completed: %d record(s) imported.", r.ImportedCount)
	}
	return *r
}
