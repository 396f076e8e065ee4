package sheet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// writeFixture builds an xlsx with banner rows above the header, the shape
// the legacy planning worksheets come in.
func writeFixture(t *testing.T, dir string) string {
	t.Helper()

	f := excelize.NewFile()
	sheet := "Plan1"
	f.NewSheet(sheet)
	f.DeleteSheet("Sheet1")

	rows := [][]interface{}{
		{"Relatório de manutenção"},
		{},
		{"Gerado em", "2025-08-01"},
		{"Status", "OS", "Operação", "Máscara"},
		{"LIB", "6000794541.0", "0010", "Trocar rolamento\ndo mancal"},
		{"LIB", "6000794541.0", "0020", "Alinhar eixo"},
		{"LIB", "", "0030", "sem OS, fora do lote"},
		{"LIB", "6000794542", "0010", "Inspecionar correia"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(dir, "ordens.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("Failed to save fixture: %v", err)
	}
	return path
}

func TestLoadExcelWithHeaderAutodetect(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeFixture(t, tmpDir)

	tbl, err := Load(path, "", -1, "OS", "Máscara", "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	orderCol := tbl.ColumnIndex("OS")
	textCol := tbl.ColumnIndex("Máscara")
	if orderCol != 1 || textCol != 3 {
		t.Fatalf("Column mapping = (%d, %d), want (1, 3)", orderCol, textCol)
	}

	rows := tbl.Select(orderCol, textCol)
	if len(rows) != 3 {
		t.Fatalf("Expected 3 workable rows (empty OS excluded), got %d", len(rows))
	}
	if rows[0].Order != "6000794541" {
		t.Errorf("First order = %q, want coerced digits", rows[0].Order)
	}
	if rows[0].SourceLine != 5 {
		t.Errorf("First source line = %d, want 5", rows[0].SourceLine)
	}

	orders := Orders(rows)
	if len(orders) != 2 || orders[0] != "6000794541" || orders[1] != "6000794542" {
		t.Errorf("Orders = %v, want file-ordered unique IDs", orders)
	}

	forFirst := RowsFor(rows, "6000794541")
	if len(forFirst) != 2 {
		t.Fatalf("Expected 2 rows for first order, got %d", len(forFirst))
	}
	texts := Texts(forFirst)
	if texts[0] != "Trocar rolamento\ndo mancal" || texts[1] != "Alinhar eixo" {
		t.Errorf("Texts out of order or mangled: %q", texts)
	}
}

func TestColumnIndexFolding(t *testing.T) {
	tbl := &Table{Header: []string{"Status", "OS ", "mascara"}}

	if got := tbl.ColumnIndex("os"); got != 1 {
		t.Errorf("ColumnIndex(os) = %d, want 1 (trim + case fold)", got)
	}
	if got := tbl.ColumnIndex("Máscara"); got != 2 {
		t.Errorf("ColumnIndex(Máscara) = %d, want 2 (accent fold)", got)
	}
	if got := tbl.ColumnIndex("Centro"); got != -1 {
		t.Errorf("ColumnIndex(Centro) = %d, want -1", got)
	}
}

func TestDetectHeaderRowNotFound(t *testing.T) {
	rows := [][]string{{"a", "b"}, {"c", "d"}}
	if got := DetectHeaderRow(rows, "OS", "Máscara"); got != -1 {
		t.Errorf("DetectHeaderRow = %d, want -1", got)
	}
}

func TestLoadCSVLatin1(t *testing.T) {
	tmpDir := t.TempDir()

	// pt-BR locale export: semicolon-delimited, Latin-1 encoded header.
	content := "Status;OS;Máscara\nLIB;6000794541.0;Trocar rolamento\nLIB;;vazio\n"
	encoded, _, err := transform.String(charmap.ISO8859_1.NewEncoder(), content)
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(tmpDir, "ordens.csv")
	if err := os.WriteFile(path, []byte(encoded), 0644); err != nil {
		t.Fatal(err)
	}

	tbl, err := Load(path, "", -1, "OS", "Máscara", "latin-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	textCol := tbl.ColumnIndex("Máscara")
	if textCol != 2 {
		t.Fatalf("Accent-bearing header not decoded, column index = %d", textCol)
	}

	rows := tbl.Select(tbl.ColumnIndex("OS"), textCol)
	if len(rows) != 1 {
		t.Fatalf("Expected 1 workable row, got %d", len(rows))
	}
	if rows[0].Order != "6000794541" || rows[0].Text != "Trocar rolamento" {
		t.Errorf("Unexpected row: %+v", rows[0])
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "ordens.ods")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, "", -1, "OS", "Máscara", ""); err == nil {
		t.Fatal("Expected error for unsupported format")
	}
}

func TestExportPreviewCSV(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "preview.csv")

	rows := []Row{
		{Order: "6000794541", Text: "Trocar rolamento", SourceLine: 5},
		{Order: "6000794541", Text: "Alinhar eixo", SourceLine: 6},
	}
	if err := ExportPreviewCSV(path, rows); err != nil {
		t.Fatalf("ExportPreviewCSV failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got := string(content)
	for _, want := range []string{"source_line,os,long_text", "5,6000794541,Trocar rolamento", "6,6000794541,Alinhar eixo"} {
		if !strings.Contains(got, want) {
			t.Errorf("Preview missing %q:\n%s", want, got)
		}
	}
}
