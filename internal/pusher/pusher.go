// Package pusher drives the IW32 long-text workflow against one SAP GUI
// session: open the work order, select the operations tab, then row by row
// scroll the table, open the long-text editor, paste from the clipboard,
// apply and navigate back. Strictly linear and synchronous; every
// state-changing interaction is followed by a busy-wait on the session.
package pusher

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"iw32-longtext/internal/clipboard"
	"iw32-longtext/internal/config"
	"iw32-longtext/internal/sapgui"
)

// Job describes one push run. Texts are in spreadsheet order, which maps
// 1:1 to the on-screen operations-table row order.
type Job struct {
	Order       string
	Texts       []string
	VisibleRows int
	SaveAfter   bool
}

// Callbacks are optional hooks for the surrounding interface. Both are
// invoked synchronously from the run loop; Progress receives fractions in
// (0, 1].
type Callbacks struct {
	Progress func(fraction float64)
	Log      func(message string)
}

// AppliedRow records one completed row for the run report.
type AppliedRow struct {
	Index     int // 0-based table row
	ScrollPos int
	RelRow    int
	TextLen   int
	AppliedAt time.Time
}

// Result summarizes a completed run. On error the sequencer returns the rows
// applied so far alongside the error: there is no rollback, rows already
// pushed stay applied in SAP.
type Result struct {
	Applied []AppliedRow
	Saved   bool
	Elapsed time.Duration
}

// Pusher binds a session to the element address map and wait budget.
type Pusher struct {
	session  sapgui.Session
	cfg      config.SAPConfig
	timeout  time.Duration
	interval time.Duration

	// Stage replaces the clipboard staging step; tests inject a recorder
	// here so no real clipboard is touched.
	Stage func(text string) error
}

// New creates a Pusher for an already connected session.
func New(session sapgui.Session, sap config.SAPConfig) *Pusher {
	return &Pusher{
		session:  session,
		cfg:      sap,
		timeout:  time.Duration(sap.BusyTimeoutSec) * time.Second,
		interval: time.Duration(sap.PollIntervalMS) * time.Millisecond,
		Stage:    clipboard.Stage,
	}
}

// Run executes the full workflow for one job. Any failure aborts the run
// immediately and is returned verbatim; there is no retry and no partial
// recovery. The returned Result is valid even on error and reflects the rows
// that were applied before the failure.
func (p *Pusher) Run(job Job, cb Callbacks) (*Result, error) {
	start := time.Now()
	res := &Result{}

	if job.Order == "" {
		return res, fmt.Errorf("work order identifier is empty")
	}
	if job.VisibleRows <= 0 {
		return res, fmt.Errorf("visible rows must be > 0, got %d", job.VisibleRows)
	}

	defer func() { res.Elapsed = time.Since(start) }()

	cb.log("Opening IW32 and loading order %s...", job.Order)
	if err := p.openOrder(job.Order); err != nil {
		return res, err
	}

	if err := p.selectOperationsTab(); err != nil {
		return res, err
	}

	table, err := p.find(config.ElementOperationsTbl)
	if err != nil {
		return res, err
	}

	total := len(job.Texts)
	for i, text := range job.Texts {
		scrollPos, relRow := sapgui.EnsureVisible(i, job.VisibleRows)

		if err := p.applyRow(table, i, scrollPos, relRow, text); err != nil {
			return res, fmt.Errorf("row %d/%d: %w", i+1, total, err)
		}

		res.Applied = append(res.Applied, AppliedRow{
			Index:     i,
			ScrollPos: scrollPos,
			RelRow:    relRow,
			TextLen:   len(text),
			AppliedAt: time.Now(),
		})
		cb.progress(float64(i+1) / float64(total))
		cb.log("Row %d/%d: long text applied.", i+1, total)
	}

	if job.SaveAfter {
		cb.log("Saving the order...")
		if err := p.pressAndWait(config.ElementSaveButton); err != nil {
			return res, err
		}
		res.Saved = true
	}

	return res, nil
}

// openOrder issues the transaction-open command and loads the work order.
func (p *Pusher) openOrder(order string) error {
	wnd, err := p.find(config.ElementMainWindow)
	if err != nil {
		return err
	}
	if err := wnd.Invoke("maximize"); err != nil {
		return fmt.Errorf("maximizing main window: %w", err)
	}

	cmdField, err := p.find(config.ElementCommandField)
	if err != nil {
		return err
	}
	if err := cmdField.SetText(p.cfg.Transaction); err != nil {
		return fmt.Errorf("entering transaction %s: %w", p.cfg.Transaction, err)
	}
	if err := wnd.SendVKey(0); err != nil {
		return err
	}
	if err := p.waitReady(); err != nil {
		return err
	}

	orderField, err := p.find(config.ElementOrderField)
	if err != nil {
		return err
	}
	if err := orderField.SetText(order); err != nil {
		return fmt.Errorf("entering order %s: %w", order, err)
	}
	if err := orderField.SetCaret(len(order)); err != nil {
		return err
	}
	if err := wnd.SendVKey(0); err != nil {
		return err
	}
	return p.waitReady()
}

func (p *Pusher) selectOperationsTab() error {
	tab, err := p.find(config.ElementOperationsTab)
	if err != nil {
		return err
	}
	if err := tab.Select(); err != nil {
		return fmt.Errorf("selecting operations tab: %w", err)
	}
	return p.waitReady()
}

// applyRow pushes one long text: scroll the row into view, open its editor
// through the row-parameterized button, paste from the clipboard, apply the
// document and navigate back to the table.
func (p *Pusher) applyRow(table sapgui.Element, absRow, scrollPos, relRow int, text string) error {
	if err := table.ScrollTo(scrollPos); err != nil {
		return fmt.Errorf("scrolling to position %d: %w", scrollPos, err)
	}

	buttonID, err := p.rowElementID(config.ElementLongTextButton, relRow)
	if err != nil {
		return err
	}
	button, err := p.session.FindByID(buttonID)
	if err != nil {
		return err
	}
	if err := button.Press(); err != nil {
		return fmt.Errorf("opening long-text editor: %w", err)
	}
	if err := p.waitReady(); err != nil {
		return err
	}

	if err := p.Stage(text); err != nil {
		return err
	}
	shell, err := p.find(config.ElementLongTextShell)
	if err != nil {
		return err
	}
	if err := shell.Invoke("setDocum"); err != nil {
		return fmt.Errorf("applying document: %w", err)
	}
	if err := p.waitReady(); err != nil {
		return err
	}

	return p.pressAndWait(config.ElementBackButton)
}

func (p *Pusher) pressAndWait(name string) error {
	el, err := p.find(name)
	if err != nil {
		return err
	}
	if err := el.Press(); err != nil {
		return fmt.Errorf("pressing %s: %w", name, err)
	}
	return p.waitReady()
}

func (p *Pusher) find(name string) (sapgui.Element, error) {
	id, err := p.elementID(name)
	if err != nil {
		return nil, err
	}
	return p.session.FindByID(id)
}

func (p *Pusher) elementID(name string) (string, error) {
	id, ok := p.cfg.Elements[name]
	if !ok || id == "" {
		return "", fmt.Errorf("no element address configured for %q", name)
	}
	return id, nil
}

// rowElementID substitutes the row's viewport-relative position into the
// address template.
func (p *Pusher) rowElementID(name string, relRow int) (string, error) {
	tmpl, err := p.elementID(name)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(tmpl, "{row}", strconv.Itoa(relRow)), nil
}

func (p *Pusher) waitReady() error {
	return sapgui.WaitReady(p.session, p.timeout, p.interval)
}

// Nil-safe callback helpers.

func (cb Callbacks) log(format string, args ...interface{}) {
	if cb.Log != nil {
		cb.Log(fmt.Sprintf(format, args...))
	}
}

func (cb Callbacks) progress(fraction float64) {
	if cb.Progress != nil {
		cb.Progress(fraction)
	}
}
