package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExcelReader_RendersFirstSheetAsCSV(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "dealers.xlsx")
	file := excelize.NewFile()
	sheet := file.GetSheetName(0)
	rows := [][]any{
		{"name", "address", "tractorBrands"},
		{"Acme, Inc.", "Main St 1", "john_deere;claas"},
		{},
		{"Borg Farm", "Side St 2"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := file.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row %d: %v", i+1, err)
		}
	}
	if err := file.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	_ = file.Close()

	content, err := ReadSource(path, "")
	if err != nil {
		t.Fatalf("read source: %v", err)
	}
	table, err := Tokenize(content)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if len(table.Rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(table.Rows))
	}
	if table.Rows[0].Fields["name"] != "Acme, Inc." {
		t.Fatalf("expected quoted comma to survive, got %q", table.Rows[0].Fields["name"])
	}
	if table.Rows[1].ParseErr != "" || table.Rows[1].Fields["tractorBrands"] != "" {
		t.Fatalf("expected short sheet row to be padded, got %+v", table.Rows[1])
	}
}

func TestReadSource_CSVAndUnknownExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "sites.csv")
	if err := os.WriteFile(csvPath, []byte("name,address\nBiogas Nord,Field Rd 7\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	content, err := ReadSource(csvPath, "")
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if content != "name,address\nBiogas Nord,Field Rd 7\n" {
		t.Fatalf("unexpected content %q", content)
	}

	if _, err := ReadSource(filepath.Join(dir, "sites.txt"), ""); err == nil {
		t.Fatalf("expected error for unknown extension")
	}
	if _, err := ReaderForFormat("json"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
