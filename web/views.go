package web

import (
	"time"

	"dealerhub/importer"
	"dealerhub/output"
	"dealerhub/record"
)

type FieldView struct {
	Name       string   `json:"name"`
	Required   bool     `json:"required"`
	Kind       string   `json:"kind"`
	EnumValues []string `json:"enumValues,omitempty"`
	Delimiter  string   `json:"delimiter,omitempty"`
}

type SchemaView struct {
	Kind    record.Kind `json:"kind"`
	Version int         `json:"version"`
	Fields  []FieldView `json:"fields"`
}

type RecordView struct {
	ID        string      `json:"id"`
	Kind      record.Kind `json:"kind"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Data      any         `json:"data"`
}

type SummaryView struct {
	Kind          record.Kind `json:"kind"`
	Status        string      `json:"status"`
	Count         int         `json:"count"`
	SharePercent  float64     `json:"sharePercent"`
	FirstImported time.Time   `json:"firstImported"`
	LastImported  time.Time   `json:"lastImported"`
}

// BuildSchemaView describes schema for the upload UI's column hints.
func BuildSchemaView(schema importer.Schema) SchemaView {
	view := SchemaView{Kind: schema.Kind, Version: schema.Version, Fields: make([]FieldView, 0, len(schema.Fields))}
	for _, field := range schema.Fields {
		fieldView := FieldView{
			Name:       field.Name,
			Required:   field.Required,
			Kind:       field.Kind.String(),
			EnumValues: field.EnumValues,
		}
		if field.Kind == importer.FieldList {
			fieldView.Delimiter = field.Delimiter
			if fieldView.Delimiter == "" {
				fieldView.Delimiter = importer.DefaultListDelimiter
			}
		}
		view.Fields = append(view.Fields, fieldView)
	}
	return view
}

func BuildRecordViews(docs []record.Document) []RecordView {
	views := make([]RecordView, 0, len(docs))
	for _, doc := range docs {
		views = append(views, RecordView{
			ID:        doc.ID,
			Kind:      doc.Kind,
			CreatedAt: doc.CreatedAt,
			UpdatedAt: doc.UpdatedAt,
			Data:      doc.Payload,
		})
	}
	return views
}

func BuildSummaryViews(summaries []output.StatusSummary) []SummaryView {
	views := make([]SummaryView, 0, len(summaries))
	for _, summary := range summaries {
		views = append(views, SummaryView{
			Kind:          summary.Kind,
			Status:        summary.Status,
			Count:         summary.Count,
			SharePercent:  summary.Share,
			FirstImported: summary.FirstImported,
			LastImported:  summary.LastImported,
		})
	}
	return views
}
