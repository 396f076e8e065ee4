// Package report writes the post-run workbook: what was pushed, where each
// row landed in the table viewport, and whether the order was saved.
package report

import (
	"fmt"
	"time"

	"iw32-longtext/internal/pusher"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet = "Summary"
	rowsSheet    = "Rows"
)

// Write generates the run report workbook at path.
func Write(path string, job pusher.Job, res *pusher.Result) error {
	f := excelize.NewFile()

	styler, err := newStyler(f)
	if err != nil {
		return err
	}

	if err := writeSummary(f, styler, job, res); err != nil {
		return err
	}
	if err := writeRows(f, styler, res); err != nil {
		return err
	}

	// Remove default "Sheet1"
	if idx, err := f.GetSheetIndex("Sheet1"); err == nil && idx != -1 {
		f.DeleteSheet("Sheet1")
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save run report: %w", err)
	}
	return nil
}

type styler struct {
	header int
}

func newStyler(f *excelize.File) (*styler, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, err
	}
	return &styler{header: header}, nil
}

func writeSummary(f *excelize.File, s *styler, job pusher.Job, res *pusher.Result) error {
	f.NewSheet(summarySheet)

	writeRow(f, s, summarySheet, 1, []interface{}{"Field", "Value"}, true)

	saved := "no"
	if res.Saved {
		saved = "yes"
	}
	entries := []struct {
		Key string
		Val interface{}
	}{
		{"Work order", job.Order},
		{"Rows in job", len(job.Texts)},
		{"Rows applied", len(res.Applied)},
		{"Visible rows", job.VisibleRows},
		{"Saved", saved},
		{"Elapsed", res.Elapsed.Round(time.Millisecond).String()},
		{"Run date", time.Now().Format("2006-01-02 15:04:05")},
	}
	for i, e := range entries {
		writeRow(f, s, summarySheet, i+2, []interface{}{e.Key, e.Val}, false)
	}

	f.SetColWidth(summarySheet, "A", "A", 16)
	f.SetColWidth(summarySheet, "B", "B", 24)
	return nil
}

func writeRows(f *excelize.File, s *styler, res *pusher.Result) error {
	f.NewSheet(rowsSheet)

	writeRow(f, s, rowsSheet, 1,
		[]interface{}{"Row", "Scroll Position", "Relative Row", "Text Length", "Applied At"}, true)

	for i, r := range res.Applied {
		writeRow(f, s, rowsSheet, i+2, []interface{}{
			r.Index + 1,
			r.ScrollPos,
			r.RelRow,
			r.TextLen,
			r.AppliedAt.Format("15:04:05"),
		}, false)
	}

	f.SetColWidth(rowsSheet, "A", "E", 16)
	return nil
}

func writeRow(f *excelize.File, s *styler, sheet string, row int, values []interface{}, header bool) {
	for col, val := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			continue
		}
		f.SetCellValue(sheet, cell, val)
		if header {
			f.SetCellStyle(sheet, cell, cell, s.header)
		}
	}
}
