// Package sheet reads the input spreadsheet into a flat in-memory table and
// derives the workable row set: one long-text payload per operations-table
// row, keyed by canonical work-order identifier, in file order.
package sheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// headerScanLimit bounds the header autodetection scan.
const headerScanLimit = 30

// defaultHeaderRow is the fallback when autodetection finds nothing; the
// legacy worksheets this tool grew up with carry three banner rows above the
// header.
const defaultHeaderRow = 3

// Row is one workable spreadsheet line: a canonical work-order identifier
// and the long text destined for the matching operations-table row.
type Row struct {
	Order      string
	Text       string
	SourceLine int // 1-based row number in the source file
}

// Table holds the header and the raw cells below it.
type Table struct {
	Header     []string
	Cells      [][]string
	headerLine int // 0-based index of the header row in the source
}

// Load reads a spreadsheet into a Table. The format is chosen by extension:
// .xlsx/.xlsm through excelize, .csv through encoding/csv with the given
// text encoding. headerRow is the 0-based header position; pass -1 to
// autodetect by scanning for the order and text column names.
func Load(path, sheetName string, headerRow int, orderColumn, textColumn, csvEncoding string) (*Table, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = loadExcel(path, sheetName)
	case ".csv":
		rows, err = loadCSV(path, csvEncoding)
	default:
		return nil, fmt.Errorf("unsupported spreadsheet format: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}

	return build(rows, headerRow, orderColumn, textColumn)
}

func loadExcel(path, sheetName string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheetName == "" {
		sheetName = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}
	return rows, nil
}

func loadCSV(path, encoding string) ([][]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	decoded, err := decodeText(raw, encoding)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(bytes.NewReader(decoded))
	r.Comma = sniffDelimiter(decoded)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse CSV: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

// decodeText converts raw bytes to UTF-8 according to the configured
// encoding name. Exports from Brazilian Excel installs commonly arrive as
// Windows-1252/Latin-1.
func decodeText(raw []byte, encoding string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "", "utf-8", "utf8":
		return raw, nil
	case "latin-1", "latin1", "iso-8859-1":
		decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), raw)
		return decoded, err
	case "windows-1252", "cp1252":
		decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), raw)
		return decoded, err
	default:
		return nil, fmt.Errorf("unsupported csv_encoding: %s", encoding)
	}
}

// sniffDelimiter picks ';' over ',' when the first line favors it; pt-BR
// locales export CSV with semicolons.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func build(rows [][]string, headerRow int, orderColumn, textColumn string) (*Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("spreadsheet is empty")
	}

	if headerRow < 0 {
		headerRow = DetectHeaderRow(rows, orderColumn, textColumn)
		if headerRow < 0 {
			headerRow = defaultHeaderRow
			if headerRow >= len(rows) {
				headerRow = 0
			}
		}
	}
	if headerRow >= len(rows) {
		return nil, fmt.Errorf("header row %d is past the end of the sheet (%d rows)", headerRow, len(rows))
	}

	header := make([]string, len(rows[headerRow]))
	for i, h := range rows[headerRow] {
		header[i] = strings.TrimSpace(h)
	}

	return &Table{
		Header:     header,
		Cells:      rows[headerRow+1:],
		headerLine: headerRow,
	}, nil
}

// DetectHeaderRow scans the first rows for one containing both column names
// (case, space and accent insensitive). Returns -1 when no row qualifies.
func DetectHeaderRow(rows [][]string, orderColumn, textColumn string) int {
	wantOrder := foldCell(orderColumn)
	wantText := foldCell(textColumn)

	limit := len(rows)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}

	for i := 0; i < limit; i++ {
		hasOrder, hasText := false, false
		for _, cell := range rows[i] {
			switch foldCell(cell) {
			case wantOrder:
				hasOrder = true
			case wantText:
				hasText = true
			}
		}
		if hasOrder && hasText {
			return i
		}
	}
	return -1
}

// ColumnIndex finds a column by header name: exact folded match first, then
// substring. Returns -1 when nothing matches.
func (t *Table) ColumnIndex(name string) int {
	want := foldCell(name)
	for i, h := range t.Header {
		if foldCell(h) == want {
			return i
		}
	}
	for i, h := range t.Header {
		if strings.Contains(foldCell(h), want) {
			return i
		}
	}
	return -1
}

// Select builds the workable row set from the order and text columns. Rows
// whose identifier coerces to the empty string are excluded; order is file
// order, which maps 1:1 to the on-screen operations-table order.
func (t *Table) Select(orderCol, textCol int) []Row {
	var out []Row
	for i, cells := range t.Cells {
		order := CoerceOrderID(cellAt(cells, orderCol))
		if order == "" {
			continue
		}
		out = append(out, Row{
			Order:      order,
			Text:       cellAt(cells, textCol),
			SourceLine: t.headerLine + i + 2, // +2: past the header, 1-based
		})
	}
	return out
}

// Orders returns the unique work-order identifiers in file order.
func Orders(rows []Row) []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range rows {
		if !seen[r.Order] {
			seen[r.Order] = true
			out = append(out, r.Order)
		}
	}
	return out
}

// RowsFor returns the rows of one order, preserving file order.
func RowsFor(rows []Row, order string) []Row {
	var out []Row
	for _, r := range rows {
		if r.Order == order {
			out = append(out, r)
		}
	}
	return out
}

// Texts extracts the payload list for the push sequencer.
func Texts(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Text
	}
	return out
}

// ExportPreviewCSV writes the dry-run preview of one order's rows.
func ExportPreviewCSV(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create preview file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"source_line", "os", "long_text"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{fmt.Sprintf("%d", r.SourceLine), r.Order, r.Text}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func cellAt(cells []string, col int) string {
	if col < 0 || col >= len(cells) {
		return ""
	}
	return cells[col]
}

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldCell lowercases, trims and strips accents so "Máscara", "mascara" and
// " MÁSCARA " all compare equal.
func foldCell(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	folded, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return folded
}
