package ui

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/schollz/progressbar/v3"
)

// RowBar renders push progress for one order. It is driven by the
// sequencer's fractional progress callback rather than by increments, so it
// tracks exactly what the automation reports.
type RowBar struct {
	bar    *progressbar.ProgressBar
	total  int
	output io.Writer
}

// NewRowBar creates a progress bar sized for total table rows.
func NewRowBar(order string, total int) *RowBar {
	return NewRowBarWithOutput(order, total, os.Stdout)
}

// NewRowBarWithOutput creates a progress bar with custom output
func NewRowBarWithOutput(order string, total int, output io.Writer) *RowBar {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(output),
		progressbar.OptionSetDescription(fmt.Sprintf("[OS %s]", order)),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetPredictTime(true),
	)

	return &RowBar{
		bar:    bar,
		total:  total,
		output: output,
	}
}

// Fraction sets the bar from a 0.0-1.0 progress value.
func (rb *RowBar) Fraction(f float64) error {
	if f < 0 {
		f = 0
	}
	if f > 1 {
		f = 1
	}
	return rb.bar.Set(int(math.Round(f * float64(rb.total))))
}

// Finish completes the progress bar
func (rb *RowBar) Finish() error {
	return rb.bar.Finish()
}

// Clear clears the progress bar from the terminal
func (rb *RowBar) Clear() error {
	return rb.bar.Clear()
}

// Spinner represents a simple spinner for indeterminate progress, used while
// attaching to the SAP GUI session.
type Spinner struct {
	description string
	chars       []rune
	index       int
	output      io.Writer
}

// NewSpinner creates a new spinner with a description
func NewSpinner(description string) *Spinner {
	return &Spinner{
		description: description,
		chars:       []rune{'⠋', '⠙', '⠹', '⠸', '⠼', '⠴', '⠦', '⠧', '⠇', '⠏'},
		index:       0,
		output:      os.Stdout,
	}
}

// Tick advances the spinner
func (s *Spinner) Tick() {
	fmt.Fprintf(s.output, "\r%c %s", s.chars[s.index], s.description)
	s.index = (s.index + 1) % len(s.chars)
}

// Stop stops and clears the spinner
func (s *Spinner) Stop() {
	fmt.Fprintf(s.output, "\r%s\r", "                                                  ")
}
