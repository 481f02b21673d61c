package importer

import (
	"fmt"
	"time"

	"dealerhub/record"
)

// FieldKind selects the validation and transform rule applied to a column.
type FieldKind int

const (
	FieldString FieldKind = iota
	FieldEnum
	FieldEmail
	FieldURL
	FieldList
	FieldDate
	FieldFreeText
)

// DefaultListDelimiter separates values inside a delimited-list column.
const DefaultListDelimiter = ";"

func (k FieldKind) String() string {
	switch k {
	case FieldString:
		return "string"
	case FieldEnum:
		return "enum"
	case FieldEmail:
		return "email"
	case FieldURL:
		return "url"
	case FieldList:
		return "delimitedList"
	case FieldDate:
		return "date"
	case FieldFreeText:
		return "freeText"
	default:
		return "unknown"
	}
}

// FieldRule describes one column of an import schema.
type FieldRule struct {
	Name       string
	Required   bool
	Kind       FieldKind
	EnumValues []string
	Delimiter  string // FieldList only; DefaultListDelimiter when empty
}

func (f FieldRule) delimiter() string {
	if f.Delimiter == "" {
		return DefaultListDelimiter
	}
	return f.Delimiter
}

// Meta is the per-record context handed to a transformer.
type Meta struct {
	ID    string
	Now   time.Time
	NewID func() string
}

// Schema is the static column layout of one entity kind together with the
// functions that turn validated values into a storage payload.
type Schema struct {
	Kind    record.Kind
	Version int
	Fields  []FieldRule

	// build turns a clean set of values into the kind's validated record.
	build func(Values) any
	// stage turns a validated record into its storage-ready payload.
	stage func(validated any, meta Meta) (any, error)
}

// Columns returns the header names in template order.
func (s Schema) Columns() []string {
	columns := make([]string, len(s.Fields))
	for i, field := range s.Fields {
		columns[i] = field.Name
	}
	return columns
}

// WithListDelimiter returns a copy of s whose list columns without an explicit
// delimiter split on delimiter instead of the default.
func (s Schema) WithListDelimiter(delimiter string) Schema {
	if delimiter == "" || delimiter == DefaultListDelimiter {
		return s
	}
	fields := make([]FieldRule, len(s.Fields))
	copy(fields, s.Fields)
	for i := range fields {
		if fields[i].Kind == FieldList && fields[i].Delimiter == "" {
			fields[i].Delimiter = delimiter
		}
	}
	s.Fields = fields
	return s
}

var registry = map[record.Kind]Schema{
	record.KindDealer: dealerSchema,
	record.KindUnit:   unitSchema,
	record.KindSite:   siteSchema,
}

// SchemaFor returns the registered schema of kind.
func SchemaFor(kind record.Kind) (Schema, error) {
	schema, ok := registry[kind]
	if !ok {
		return Schema{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return schema, nil
}

// Schemas returns all registered schemas in record.AllKinds order.
func Schemas() []Schema {
	out := make([]Schema, 0, len(registry))
	for _, kind := range record.AllKinds() {
		if schema, ok := registry[kind]; ok {
			out = append(out, schema)
		}
	}
	return out
}
