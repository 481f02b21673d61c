package importer

import (
	"strings"
	"testing"
	"time"
)

func rowOf(fields map[string]string) Row {
	return Row{Index: 1, Fields: fields}
}

func TestValidate_AccumulatesEveryViolation(t *testing.T) {
	t.Parallel()

	row := rowOf(map[string]string{
		"name":              "",
		"address":           "Main St 1",
		"email":             "not-an-email",
		"website":           "nope",
		"prospectionStatus": "maybe",
	})

	_, violations := Validate(dealerSchema, row)
	if len(violations) != 4 {
		t.Fatalf("expected 4 violations, got %d: %+v", len(violations), violations)
	}

	fields := make([]string, len(violations))
	for i, v := range violations {
		fields[i] = v.Field
	}
	want := []string{"name", "email", "website", "prospectionStatus"}
	for i := range want {
		if fields[i] != want[i] {
			t.Fatalf("expected violations in schema order %v, got %v", want, fields)
		}
	}

	message := joinViolations(violations)
	if strings.Count(message, "; ") != 3 {
		t.Fatalf("expected four messages joined by '; ', got %q", message)
	}
	if !strings.Contains(message, `"name" is required.`) {
		t.Fatalf("missing required message in %q", message)
	}
}

func TestValidate_EnumMessageNamesAcceptedValues(t *testing.T) {
	t.Parallel()

	row := rowOf(map[string]string{"serialNumber": "SN-1", "model": "M1", "status": "broken"})
	_, violations := Validate(unitSchema, row)
	if len(violations) != 1 {
		t.Fatalf("expected 1 violation, got %+v", violations)
	}
	for _, status := range UnitStatuses {
		if !strings.Contains(violations[0].Message, status) {
			t.Fatalf("expected message to name %q, got %q", status, violations[0].Message)
		}
	}
}

func TestValidate_EnumIsCaseSensitive(t *testing.T) {
	t.Parallel()

	row := rowOf(map[string]string{"serialNumber": "SN-1", "model": "M1", "status": "Installed"})
	if _, violations := Validate(unitSchema, row); len(violations) != 1 {
		t.Fatalf("expected exact enum match, got %+v", violations)
	}
}

func TestValidate_OptionalEmptyFieldsAreNotErrors(t *testing.T) {
	t.Parallel()

	row := rowOf(map[string]string{
		"name":    "Acme",
		"address": "Main St 1",
		"email":   "",
		"website": "  ",
	})
	values, violations := Validate(dealerSchema, row)
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %+v", violations)
	}
	if list := values.List("tractorBrands"); list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list for missing column, got %#v", list)
	}
}

func TestValidate_ValidEmailAndURL(t *testing.T) {
	t.Parallel()

	row := rowOf(map[string]string{
		"name":    "Acme",
		"address": "Main St 1",
		"email":   "sales@acme.example",
		"website": "https://acme.example/dealers",
	})
	values, violations := Validate(dealerSchema, row)
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %+v", violations)
	}
	if values.String("email") != "sales@acme.example" {
		t.Fatalf("unexpected email value %q", values.String("email"))
	}
}

func TestValidate_Dates(t *testing.T) {
	t.Parallel()

	row := rowOf(map[string]string{
		"serialNumber":    "SN-1",
		"model":           "M1",
		"status":          "installed",
		"purchaseDate":    "2024-05-15",
		"lastServiceDate": "",
	})
	values, violations := Validate(unitSchema, row)
	if len(violations) != 0 {
		t.Fatalf("expected no violations, got %+v", violations)
	}
	purchase := values.Date("purchaseDate")
	if purchase == nil || !purchase.Equal(time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected purchase date %v", purchase)
	}
	if values.Date("lastServiceDate") != nil || values.Date("installationDate") != nil {
		t.Fatalf("expected absent dates to stay nil")
	}

	row.Fields["installationDate"] = "2024-13-40"
	_, violations = Validate(unitSchema, row)
	if len(violations) != 1 || violations[0].Field != "installationDate" {
		t.Fatalf("expected installationDate violation, got %+v", violations)
	}
	if !strings.Contains(violations[0].Message, "YYYY-MM-DD") {
		t.Fatalf("expected message to name the format, got %q", violations[0].Message)
	}
}

func TestSchema_WithListDelimiter(t *testing.T) {
	t.Parallel()

	schema := dealerSchema.WithListDelimiter("|")
	row := rowOf(map[string]string{"name": "Acme", "address": "Main St 1", "tractorBrands": "john_deere|claas"})
	values, violations := Validate(schema, row)
	if len(violations) != 0 {
		t.Fatalf("unexpected violations: %+v", violations)
	}
	if got := values.List("tractorBrands"); len(got) != 2 {
		t.Fatalf("expected 2 brands with custom delimiter, got %#v", got)
	}
	for _, field := range dealerSchema.Fields {
		if field.Kind == FieldList && field.Delimiter != "" {
			t.Fatalf("expected registered schema to stay untouched")
		}
	}
}

func TestSchemaFor(t *testing.T) {
	t.Parallel()

	for _, schema := range Schemas() {
		got, err := SchemaFor(schema.Kind)
		if err != nil {
			t.Fatalf("schema %s: %v", schema.Kind, err)
		}
		if len(got.Columns()) != len(got.Fields) || got.Version != 1 {
			t.Fatalf("unexpected schema %s: %+v", schema.Kind, got.Columns())
		}
	}
	if _, err := SchemaFor("tractor"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
