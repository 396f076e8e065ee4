package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"iw32-longtext/internal/config"
	"iw32-longtext/internal/logger"
	"iw32-longtext/internal/pusher"
	"iw32-longtext/internal/report"
	"iw32-longtext/internal/sapgui"
	"iw32-longtext/internal/sheet"
	"iw32-longtext/internal/ui"
)

const (
	appName    = "IW32 Long Text"
	appVersion = "1.0.0"
	appDesc    = "Pushes spreadsheet long texts into IW32 work orders via SAP GUI Scripting"
)

var (
	configPath  string
	verbose     bool
	showVersion bool
	inputFile   string
	sheetName   string
	orderID     string
	listOrders  bool
	dryRun      bool
	noSave      bool
	assumeYes   bool
)

func init() {
	flag.StringVar(&configPath, "config", "config.yaml", "Path to configuration file")
	flag.StringVar(&configPath, "c", "config.yaml", "Path to configuration file (shorthand)")
	flag.BoolVar(&verbose, "verbose", false, "Enable verbose logging (DEBUG level)")
	flag.BoolVar(&verbose, "v", false, "Enable verbose logging (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.StringVar(&inputFile, "file", "", "Override spreadsheet path from config")
	flag.StringVar(&sheetName, "sheet", "", "Override sheet name from config")
	flag.StringVar(&orderID, "order", "", "Work order to push (required unless the file holds exactly one)")
	flag.BoolVar(&listOrders, "list-orders", false, "List the work orders found in the spreadsheet and exit")
	flag.BoolVar(&dryRun, "dry-run", false, "Preview the rows and export a CSV instead of touching SAP")
	flag.BoolVar(&noSave, "no-save", false, "Do not press save after applying all rows")
	flag.BoolVar(&assumeYes, "yes", false, "Skip the interactive confirmation before the push")
}

func main() {
	// CRITICAL: Ensure "Press Enter to Exit" runs even on panic or error
	defer func() {
		if r := recover(); r != nil {
			fmt.Printf("\n❌ PANIC: %v\n", r)
		}
		waitForEnter()
	}()

	exitCode := run()
	os.Exit(exitCode)
}

func run() int {
	flag.Parse()

	if showVersion {
		fmt.Printf("%s v%s\n%s\n", appName, appVersion, appDesc)
		return 0
	}

	printBanner()

	logger.Info("Loading configuration...")
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("❌ Failed to load configuration: %v\n", err)
		return 1
	}

	if inputFile != "" {
		abs, _ := filepath.Abs(inputFile)
		cfg.Input.File = abs
	}
	if sheetName != "" {
		cfg.Input.Sheet = sheetName
	}
	if noSave {
		cfg.SAP.SaveAfter = false
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("❌ Invalid configuration: %v\n", err)
		return 1
	}

	logPath := filepath.Join(cfg.Output.Dir, "iw32_longtext.log")
	if err := logger.Init(os.Stdout, logPath, verbose); err != nil {
		fmt.Printf("❌ Failed to initialize logger: %v\n", err)
		return 1
	}
	defer logger.Close()

	if err := runWorkflow(cfg); err != nil {
		logger.Error("Run failed: %v", err)
		if errors.Is(err, sapgui.ErrSessionUnavailable) || isTimeout(err) {
			logger.Warn("If SAP has more than one connection or session open, adjust sap.connection_index / sap.session_index.")
		}
		return 1
	}

	return 0
}

func runWorkflow(cfg *config.Config) error {
	// --- Spreadsheet ingestion ---
	logger.Info("Reading spreadsheet [%s]...", cfg.Input.File)
	tbl, err := sheet.Load(cfg.Input.File, cfg.Input.Sheet, cfg.Input.HeaderRow,
		cfg.Input.OrderColumn, cfg.Input.TextColumn, cfg.Input.CSVEncoding)
	if err != nil {
		return err
	}

	orderCol := tbl.ColumnIndex(cfg.Input.OrderColumn)
	if orderCol < 0 {
		return fmt.Errorf("order column %q not found in header %v", cfg.Input.OrderColumn, tbl.Header)
	}
	textCol := tbl.ColumnIndex(cfg.Input.TextColumn)
	if textCol < 0 {
		return fmt.Errorf("text column %q not found in header %v", cfg.Input.TextColumn, tbl.Header)
	}

	rows := tbl.Select(orderCol, textCol)
	if len(rows) == 0 {
		return fmt.Errorf("no rows with a valid work order in the spreadsheet")
	}

	orders := sheet.Orders(rows)
	logger.Info("Found %d workable rows across %d work orders", len(rows), len(orders))

	if listOrders {
		for _, o := range orders {
			fmt.Printf("  %s (%d rows)\n", o, len(sheet.RowsFor(rows, o)))
		}
		return nil
	}

	// --- Order selection ---
	order := orderID
	if order == "" {
		if len(orders) == 1 {
			order = orders[0]
			logger.Info("Single work order in file, selecting %s", order)
		} else {
			return fmt.Errorf("spreadsheet holds %d work orders; pick one with -order (see -list-orders)", len(orders))
		}
	}
	jobRows := sheet.RowsFor(rows, order)
	if len(jobRows) == 0 {
		return fmt.Errorf("work order %s not found in the spreadsheet (see -list-orders)", order)
	}

	if dryRun {
		return previewRun(cfg, order, jobRows)
	}

	// --- Push ---
	// The bridge only exists on Windows; fail fast instead of half-running.
	if !sapgui.Supported() {
		return sapgui.ErrUnsupportedPlatform
	}

	if !assumeYes && !confirmPush(order, len(jobRows)) {
		logger.Info("Aborted by operator.")
		return nil
	}

	logger.Info("Connecting to SAP GUI (connection %d, session %d)...",
		cfg.SAP.ConnectionIndex, cfg.SAP.SessionIndex)
	session, err := connectWithSpinner(cfg)
	if err != nil {
		return err
	}
	defer session.Close()

	job := pusher.Job{
		Order:       order,
		Texts:       sheet.Texts(jobRows),
		VisibleRows: cfg.SAP.VisibleRows,
		SaveAfter:   cfg.SAP.SaveAfter,
	}

	bar := ui.NewRowBar(order, len(job.Texts))
	p := pusher.New(session, cfg.SAP)
	res, runErr := p.Run(job, pusher.Callbacks{
		Progress: func(f float64) { bar.Fraction(f) },
		Log:      func(m string) { logger.Debug("%s", m) },
	})
	bar.Finish()

	if len(res.Applied) > 0 {
		if err := report.Write(cfg.ReportPath(), job, res); err != nil {
			logger.Warn("Failed to write run report: %v", err)
		} else {
			logger.Info("Run report written to [%s]", cfg.ReportPath())
		}
	}

	if runErr != nil {
		// Rows already pushed stay applied in SAP; re-running the same order
		// re-applies them.
		logger.Error("Push aborted after %d/%d rows.", len(res.Applied), len(job.Texts))
		return runErr
	}

	logger.Info("✅ Applied %d long texts to order %s in %s (saved: %v)",
		len(res.Applied), order, res.Elapsed.Round(time.Second), res.Saved)
	return nil
}

func previewRun(cfg *config.Config, order string, jobRows []sheet.Row) error {
	logger.Info("Dry run: %d rows for order %s", len(jobRows), order)
	for i, r := range jobRows {
		scroll, rel := sapgui.EnsureVisible(i, cfg.SAP.VisibleRows)
		first := strings.SplitN(r.Text, "\n", 2)[0]
		if len(first) > 60 {
			first = first[:60] + "..."
		}
		logger.Info("  row %2d (line %d, scroll %d, slot %d): %s", i+1, r.SourceLine, scroll, rel, first)
	}

	previewPath := cfg.PreviewPath(order)
	if err := sheet.ExportPreviewCSV(previewPath, jobRows); err != nil {
		return err
	}
	logger.Info("Preview exported to [%s]", previewPath)
	return nil
}

// connectWithSpinner attaches to the session while a spinner ticks; the
// lookup itself stays a one-shot blocking call.
func connectWithSpinner(cfg *config.Config) (sapgui.Session, error) {
	spinner := ui.NewSpinner("Attaching to SAP GUI session...")
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			default:
				spinner.Tick()
				time.Sleep(100 * time.Millisecond)
			}
		}
	}()

	session, err := sapgui.Connect(cfg.SAP.ConnectionIndex, cfg.SAP.SessionIndex)
	close(done)
	spinner.Stop()
	return session, err
}

func confirmPush(order string, rows int) bool {
	fmt.Println()
	fmt.Printf("About to push %d long texts into work order %s.\n", rows, order)
	fmt.Println("SAP GUI must be open, logged in, and scripting enabled.")
	fmt.Println("Do NOT touch SAP (mouse/keyboard) during the run.")
	fmt.Print("Proceed? [y/N]: ")

	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes" || answer == "s" || answer == "sim"
}

func isTimeout(err error) bool {
	var te *sapgui.TimeoutError
	return errors.As(err, &te)
}

// waitForEnter pauses execution and waits for user to press Enter
// This prevents the console window from closing immediately when double-clicked
func waitForEnter() {
	fmt.Println("\n==========================================")
	fmt.Println("Execution Finished. Press 'Enter' to exit.")
	fmt.Println("==========================================")
	bufio.NewReader(os.Stdin).ReadBytes('\n')
}

func printBanner() {
	banner := `
╔═══════════════════════════════════════════════════════════╗
║                   IW32 LONG TEXT v1.0.0                   ║
║     Spreadsheet → SAP GUI Scripting long-text loader      ║
╚═══════════════════════════════════════════════════════════╝
`
	fmt.Println(banner)
}
