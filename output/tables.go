package output

import (
	"strconv"
	"strings"
	"time"

	"dealerhub/importer"
	"dealerhub/internal/timeutil"
	"dealerhub/record"
)

// TemplateTable is an empty import template: the schema header row only.
func TemplateTable(schema importer.Schema) Table {
	return Table{Headers: schema.Columns(), Rows: [][]string{}}
}

// ErrorReportTable lists every rejected row of result.
func ErrorReportTable(result importer.Result) Table {
	table := Table{
		Headers: []string{"rowIndex", "kind", "message", "rawRow"},
		Rows:    make([][]string, 0, len(result.Errors)),
	}
	for _, rowErr := range result.Errors {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(rowErr.RowIndex),
			string(rowErr.Kind),
			rowErr.Message,
			strings.Join(rowErr.RawRow, " | "),
		})
	}
	return table
}

// DocumentsTable renders stored documents of one kind. The columns are the
// import columns framed by id and timestamps, and lists are joined with
// delimiter, so an export can be imported again with the same delimiter.
func DocumentsTable(schema importer.Schema, docs []record.Document, delimiter string) Table {
	columns := schema.Columns()
	headers := make([]string, 0, len(columns)+3)
	headers = append(headers, "id")
	headers = append(headers, columns...)
	headers = append(headers, "createdAt", "updatedAt")

	table := Table{Headers: headers, Rows: make([][]string, 0, len(docs))}
	for _, doc := range docs {
		fields := DocumentFields(doc, delimiter)
		row := make([]string, 0, len(headers))
		row = append(row, doc.ID)
		for _, column := range columns {
			row = append(row, fields[column])
		}
		row = append(row, doc.CreatedAt.UTC().Format(time.RFC3339), doc.UpdatedAt.UTC().Format(time.RFC3339))
		table.Rows = append(table.Rows, row)
	}
	return table
}

// DocumentFields flattens a payload into import-column values. Lists are
// joined with delimiter (the default list delimiter when empty) and dates use
// the import layout.
func DocumentFields(doc record.Document, delimiter string) map[string]string {
	if delimiter == "" {
		delimiter = importer.DefaultListDelimiter
	}
	join := func(values []string) string {
		return strings.Join(values, delimiter)
	}

	switch payload := doc.Payload.(type) {
	case record.Dealer:
		initialNote := ""
		if len(payload.Notes) > 0 {
			initialNote = payload.Notes[0].Text
		}
		return map[string]string{
			"name":              payload.Name,
			"contactPerson":     payload.ContactPerson,
			"email":             payload.Email,
			"phone":             payload.Phone,
			"website":           payload.Website,
			"address":           payload.Address,
			"city":              payload.City,
			"postalCode":        payload.PostalCode,
			"country":           payload.Country,
			"prospectionStatus": payload.ProspectionStatus,
			"tractorBrands":     join(payload.TractorBrands),
			"machineTypes":      join(payload.MachineTypes),
			"initialNote":       initialNote,
		}
	case record.Unit:
		return map[string]string{
			"serialNumber":     payload.SerialNumber,
			"model":            payload.Model,
			"brand":            payload.Brand,
			"status":           payload.Status,
			"dealerName":       payload.DealerName,
			"siteName":         payload.SiteName,
			"purchaseDate":     formatDate(payload.PurchaseDate),
			"installationDate": formatDate(payload.InstallationDate),
			"lastServiceDate":  formatDate(payload.LastServiceDate),
			"notes":            payload.Notes,
		}
	case record.Site:
		return map[string]string{
			"name":           payload.Name,
			"operator":       payload.Operator,
			"address":        payload.Address,
			"city":           payload.City,
			"postalCode":     payload.PostalCode,
			"country":        payload.Country,
			"status":         payload.Status,
			"contactEmail":   payload.ContactEmail,
			"website":        payload.Website,
			"feedstockTypes": join(payload.FeedstockTypes),
			"notes":          payload.Notes,
		}
	default:
		return map[string]string{}
	}
}

func formatDate(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(timeutil.DateLayout)
}

func WriteTemplate(path, format string, schema importer.Schema) error {
	return WriteTable(path, format, TemplateTable(schema))
}

func WriteErrorReport(path, format string, result importer.Result) error {
	return WriteTable(path, format, ErrorReportTable(result))
}

func WriteDocuments(path, format string, schema importer.Schema, docs []record.Document, delimiter string) error {
	return WriteTable(path, format, DocumentsTable(schema, docs, delimiter))
}
