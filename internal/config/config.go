package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Input  InputConfig  `mapstructure:"input"`
	SAP    SAPConfig    `mapstructure:"sap"`
	Output OutputConfig `mapstructure:"output"`
}

// InputConfig holds spreadsheet ingestion settings
type InputConfig struct {
	File        string `mapstructure:"file"`         // Spreadsheet path (.xlsx or .csv)
	Sheet       string `mapstructure:"sheet"`        // Sheet name; empty = first sheet
	HeaderRow   int    `mapstructure:"header_row"`   // 0-based header row; -1 = autodetect
	OrderColumn string `mapstructure:"order_column"` // Work-order column header (e.g. "OS")
	TextColumn  string `mapstructure:"text_column"`  // Long-text column header (e.g. "Máscara")
	CSVEncoding string `mapstructure:"csv_encoding"` // Text encoding for .csv input ("utf-8", "latin-1", "windows-1252")
}

// SAPConfig holds the scripting bridge settings and the element address map
type SAPConfig struct {
	ConnectionIndex int               `mapstructure:"connection_index"` // Index into the scripting engine's connections
	SessionIndex    int               `mapstructure:"session_index"`    // Index into the connection's sessions
	VisibleRows     int               `mapstructure:"visible_rows"`     // Rows rendered by the operations table viewport
	BusyTimeoutSec  int               `mapstructure:"busy_timeout_sec"` // Wait budget per interaction
	PollIntervalMS  int               `mapstructure:"poll_interval_ms"` // Busy flag sampling interval
	SaveAfter       bool              `mapstructure:"save_after"`       // Press save once all rows are applied
	Transaction     string            `mapstructure:"transaction"`      // Transaction-open command
	Elements        map[string]string `mapstructure:"elements"`         // Logical action name -> scripting address template
}

// OutputConfig holds output settings
type OutputConfig struct {
	Dir         string `mapstructure:"dir"`          // Output directory (log, report, preview)
	ReportName  string `mapstructure:"report_name"`  // Run report file name (without extension)
	PreviewName string `mapstructure:"preview_name"` // Dry-run preview CSV name (without extension)
}

// Logical element names the push sequence addresses. Every key must resolve
// in SAP.Elements; ElementLongTextButton is a template with a "{row}"
// placeholder substituted with the row's viewport-relative position.
const (
	ElementMainWindow     = "main_window"
	ElementCommandField   = "command_field"
	ElementOrderField     = "order_field"
	ElementOperationsTab  = "operations_tab"
	ElementOperationsTbl  = "operations_table"
	ElementLongTextButton = "longtext_button"
	ElementLongTextShell  = "longtext_shell"
	ElementBackButton     = "back_button"
	ElementSaveButton     = "save_button"
)

// RequiredElements lists every logical element name the push sequence uses.
var RequiredElements = []string{
	ElementMainWindow,
	ElementCommandField,
	ElementOrderField,
	ElementOperationsTab,
	ElementOperationsTbl,
	ElementLongTextButton,
	ElementLongTextShell,
	ElementBackButton,
	ElementSaveButton,
}

// Load reads the configuration from a file or uses defaults
// If configPath is empty, it looks for "config.yaml" in the current directory
// If the file doesn't exist, it uses sensible defaults
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath == "" {
		configPath = "config.yaml"
	}
	v.SetConfigFile(configPath)

	// Read config file (ignore error if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) || strings.Contains(err.Error(), "no such file") ||
			strings.Contains(err.Error(), "cannot find") {
			fmt.Println("==========================================")
			fmt.Println("Config file not found. Using defaults:")
			fmt.Println("  Input:  ./ordens.xlsx")
			fmt.Println("  Output: ./output")
			fmt.Println("==========================================")
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		fmt.Printf("Loaded config from: %s\n", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.normalizePaths(); err != nil {
		return nil, err
	}

	if err := cfg.EnsureOutputDir(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults configures sensible default values. The element addresses are
// the IW32 scripting paths this tool was written against; a different SAP GUI
// release may need overrides in config.yaml.
func setDefaults(v *viper.Viper) {
	v.SetDefault("input.file", "./ordens.xlsx")
	v.SetDefault("input.sheet", "")
	v.SetDefault("input.header_row", -1)
	v.SetDefault("input.order_column", "OS")
	v.SetDefault("input.text_column", "Máscara")
	v.SetDefault("input.csv_encoding", "utf-8")

	v.SetDefault("sap.connection_index", 0)
	v.SetDefault("sap.session_index", 0)
	v.SetDefault("sap.visible_rows", 15)
	v.SetDefault("sap.busy_timeout_sec", 60)
	v.SetDefault("sap.poll_interval_ms", 100)
	v.SetDefault("sap.save_after", true)
	v.SetDefault("sap.transaction", "/nIW32")
	v.SetDefault("sap.elements", map[string]string{
		ElementMainWindow:   "wnd[0]",
		ElementCommandField: "wnd[0]/tbar[0]/okcd",
		ElementOrderField:   "wnd[0]/usr/ctxtCAUFVD-AUFNR",
		ElementOperationsTab: "wnd[0]/usr/subSUB_ALL:SAPLCOIH:3001/ssubSUB_LEVEL:SAPLCOIH:110 7/" +
			"tabsTS_1100/tabpVGUE",
		ElementOperationsTbl: "wnd[0]/usr/subSUB_ALL:SAPLCOIH:3001/ssubSUB_LEVEL:SAPLCOIH:110 7/" +
			"tabsTS_1100/tabpVGUE/ssubSUB_AUFTRAG:SAPLCOVG:3010/tblSAPLCOVGTCTRL_3010",
		ElementLongTextButton: "wnd[0]/usr/subSUB_ALL:SAPLCOIH:3001/ssubSUB_LEVEL:SAPLCOIH:110 7/" +
			"tabsTS_1100/tabpVGUE/ssubSUB_AUFTRAG:SAPLCOVG:3010/tblSAPLCOVGTCTRL_3010/btnLT ICON-LTOPR[8,{row}]",
		ElementLongTextShell: "wnd[0]/usr/cntlSCMSW_CONTAINER_2102/shellcont/shell",
		ElementBackButton:    "wnd[0]/tbar[0]/btn[3]",
		ElementSaveButton:    "wnd[0]/tbar[0]/btn[11]",
	})

	v.SetDefault("output.dir", "./output")
	v.SetDefault("output.report_name", "iw32-run-report")
	v.SetDefault("output.preview_name", "preview")
}

// normalizePaths converts relative paths to absolute paths
func (c *Config) normalizePaths() error {
	if c.Input.File != "" {
		absInput, err := filepath.Abs(c.Input.File)
		if err != nil {
			return fmt.Errorf("failed to resolve input.file: %w", err)
		}
		c.Input.File = absInput
	}

	absOutput, err := filepath.Abs(c.Output.Dir)
	if err != nil {
		return fmt.Errorf("failed to resolve output.dir: %w", err)
	}
	c.Output.Dir = absOutput

	return nil
}

// EnsureOutputDir creates the output directory if it doesn't exist
func (c *Config) EnsureOutputDir() error {
	if err := os.MkdirAll(c.Output.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// ElementID resolves a logical element name to its scripting address.
func (c *Config) ElementID(name string) (string, error) {
	id, ok := c.SAP.Elements[name]
	if !ok || id == "" {
		return "", fmt.Errorf("sap.elements is missing an address for %q", name)
	}
	return id, nil
}

// BusyTimeout returns the per-interaction wait budget as a duration.
func (c *Config) BusyTimeout() time.Duration {
	return time.Duration(c.SAP.BusyTimeoutSec) * time.Second
}

// PollInterval returns the busy flag sampling interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.SAP.PollIntervalMS) * time.Millisecond
}

// ReportPath returns the full path for the run report workbook.
func (c *Config) ReportPath() string {
	return filepath.Join(c.Output.Dir, c.Output.ReportName+".xlsx")
}

// PreviewPath returns the full path for the dry-run preview CSV of one order.
func (c *Config) PreviewPath(order string) string {
	return filepath.Join(c.Output.Dir, fmt.Sprintf("%s_OS_%s.csv", c.Output.PreviewName, order))
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Input.File == "" {
		return fmt.Errorf("input.file cannot be empty")
	}
	if _, err := os.Stat(c.Input.File); os.IsNotExist(err) {
		return fmt.Errorf("input.file does not exist: %s", c.Input.File)
	}

	if c.SAP.ConnectionIndex < 0 {
		return fmt.Errorf("sap.connection_index must be >= 0")
	}
	if c.SAP.SessionIndex < 0 {
		return fmt.Errorf("sap.session_index must be >= 0")
	}
	if c.SAP.VisibleRows <= 0 {
		return fmt.Errorf("sap.visible_rows must be > 0")
	}
	if c.SAP.BusyTimeoutSec <= 0 {
		return fmt.Errorf("sap.busy_timeout_sec must be > 0")
	}
	if c.SAP.PollIntervalMS <= 0 {
		return fmt.Errorf("sap.poll_interval_ms must be > 0")
	}
	if c.SAP.Transaction == "" {
		return fmt.Errorf("sap.transaction cannot be empty")
	}

	for _, name := range RequiredElements {
		if _, err := c.ElementID(name); err != nil {
			return err
		}
	}
	if !strings.Contains(c.SAP.Elements[ElementLongTextButton], "{row}") {
		return fmt.Errorf("sap.elements.%s must contain a {row} placeholder", ElementLongTextButton)
	}

	if c.Output.ReportName == "" {
		return fmt.Errorf("output.report_name cannot be empty")
	}

	return nil
}

// Print displays the current configuration
func (c *Config) Print() {
	fmt.Println("=== IW32 Long Text Configuration ===")
	fmt.Printf("Input File:       %s\n", c.Input.File)
	fmt.Printf("Sheet:            %s\n", orDefault(c.Input.Sheet, "(first)"))
	fmt.Printf("Header Row:       %d (-1 = autodetect)\n", c.Input.HeaderRow)
	fmt.Printf("Order Column:     %s\n", c.Input.OrderColumn)
	fmt.Printf("Text Column:      %s\n", c.Input.TextColumn)
	fmt.Printf("Connection/Sess:  %d / %d\n", c.SAP.ConnectionIndex, c.SAP.SessionIndex)
	fmt.Printf("Visible Rows:     %d\n", c.SAP.VisibleRows)
	fmt.Printf("Busy Timeout:     %s\n", c.BusyTimeout())
	fmt.Printf("Save After:       %v\n", c.SAP.SaveAfter)
	fmt.Printf("Output Directory: %s\n", c.Output.Dir)
	fmt.Printf("Run Report:       %s\n", c.ReportPath())
	fmt.Println("====================================")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
