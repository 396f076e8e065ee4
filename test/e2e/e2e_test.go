package e2e

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"iw32-longtext/internal/config"
	"iw32-longtext/internal/pusher"
	"iw32-longtext/internal/report"
	"iw32-longtext/internal/sapgui"
	"iw32-longtext/internal/sheet"

	"github.com/xuri/excelize/v2"
)

// scriptedSession is an in-memory stand-in for a live SAP GUI session.
type scriptedSession struct {
	script []string
}

type scriptedElement struct {
	sess *scriptedSession
	id   string
}

func (s *scriptedSession) FindByID(id string) (sapgui.Element, error) {
	return &scriptedElement{sess: s, id: id}, nil
}
func (s *scriptedSession) Busy() (bool, error) { return false, nil }
func (s *scriptedSession) Close()              {}

func (s *scriptedSession) record(op string) { s.script = append(s.script, op) }

func (e *scriptedElement) SetText(text string) error { e.sess.record("setText " + e.id); return nil }
func (e *scriptedElement) SetCaret(pos int) error    { e.sess.record("setCaret " + e.id); return nil }
func (e *scriptedElement) Press() error              { e.sess.record("press " + e.id); return nil }
func (e *scriptedElement) Select() error             { e.sess.record("select " + e.id); return nil }
func (e *scriptedElement) SendVKey(key int) error    { e.sess.record("sendVKey " + e.id); return nil }
func (e *scriptedElement) ScrollTo(pos int) error {
	e.sess.record(fmt.Sprintf("scroll %s=%d", e.id, pos))
	return nil
}
func (e *scriptedElement) Invoke(member string) error {
	e.sess.record("invoke " + e.id + "." + member)
	return nil
}

// Full pipeline against a scripted session: spreadsheet -> row set -> push
// sequence -> run report.
func TestEndToEndFlow(t *testing.T) {
	tmpDir := t.TempDir()

	// 1. Build an input workbook
	inputPath := filepath.Join(tmpDir, "ordens.xlsx")
	f := excelize.NewFile()
	f.NewSheet("Plan1")
	f.DeleteSheet("Sheet1")
	rows := [][]interface{}{
		{"Status", "OS", "Máscara"},
		{"LIB", "6000794541.0", "texto 1"},
		{"LIB", "6000794541.0", "texto 2"},
		{"LIB", "6000794541.0", "texto 3"},
		{"LIB", "9999999999", "de outra OS"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Plan1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(inputPath); err != nil {
		t.Fatal(err)
	}

	// 2. Configure (defaults, overridden input)
	cfg, err := config.Load(filepath.Join(tmpDir, "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	cfg.Input.File = inputPath
	cfg.SAP.VisibleRows = 2
	cfg.SAP.BusyTimeoutSec = 1
	cfg.SAP.PollIntervalMS = 1
	cfg.Output.Dir = tmpDir

	// 3. Ingest and select the order
	tbl, err := sheet.Load(cfg.Input.File, "", cfg.Input.HeaderRow,
		cfg.Input.OrderColumn, cfg.Input.TextColumn, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	workable := tbl.Select(tbl.ColumnIndex("OS"), tbl.ColumnIndex("Máscara"))
	orders := sheet.Orders(workable)
	if len(orders) != 2 {
		t.Fatalf("Orders = %v, want 2", orders)
	}
	jobRows := sheet.RowsFor(workable, "6000794541")
	if len(jobRows) != 3 {
		t.Fatalf("Rows for order = %d, want 3", len(jobRows))
	}

	// 4. Push against the scripted session
	sess := &scriptedSession{}
	p := pusher.New(sess, cfg.SAP)
	var staged []string
	p.Stage = func(text string) error { staged = append(staged, text); return nil }

	var fractions []float64
	job := pusher.Job{
		Order:       "6000794541",
		Texts:       sheet.Texts(jobRows),
		VisibleRows: cfg.SAP.VisibleRows,
		SaveAfter:   true,
	}
	res, err := p.Run(job, pusher.Callbacks{
		Progress: func(fr float64) { fractions = append(fractions, fr) },
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	wantPairs := []struct{ rel, scroll int }{{0, 0}, {1, 0}, {1, 1}}
	for i, want := range wantPairs {
		if res.Applied[i].RelRow != want.rel || res.Applied[i].ScrollPos != want.scroll {
			t.Errorf("Row %d: (rel, scroll) = (%d, %d), want (%d, %d)",
				i, res.Applied[i].RelRow, res.Applied[i].ScrollPos, want.rel, want.scroll)
		}
	}
	if len(fractions) != 3 || fractions[0] < 0.3 || fractions[0] > 0.4 || fractions[2] != 1.0 {
		t.Errorf("Progress fractions = %v", fractions)
	}
	if len(staged) != 3 || staged[0] != "texto 1" {
		t.Errorf("Staged texts = %v", staged)
	}

	// The row-parameterized button must be addressed by relative position.
	wantButtons := 0
	for _, op := range sess.script {
		if op == "press "+mustRowID(t, cfg, 0) || op == "press "+mustRowID(t, cfg, 1) {
			wantButtons++
		}
	}
	if wantButtons != 3 {
		t.Errorf("Expected 3 long-text button presses at relative slots, script:\n%v", sess.script)
	}

	// 5. Run report
	reportPath := cfg.ReportPath()
	if err := report.Write(reportPath, job, res); err != nil {
		t.Fatalf("Report write failed: %v", err)
	}
	if _, err := os.Stat(reportPath); err != nil {
		t.Errorf("Run report missing: %v", err)
	}
}

func mustRowID(t *testing.T, cfg *config.Config, rel int) string {
	t.Helper()
	tmpl, err := cfg.ElementID(config.ElementLongTextButton)
	if err != nil {
		t.Fatal(err)
	}
	return strings.ReplaceAll(tmpl, "{row}", strconv.Itoa(rel))
}
