// Package clipboard stages long-text payloads on the system clipboard for
// the SAP GUI long-text editor to paste from.
package clipboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// ErrUnavailable indicates the system clipboard could not be acquired, e.g.
// because another process is holding it. Not retried; surfaced to the caller.
var ErrUnavailable = errors.New("clipboard unavailable")

// Normalize rewrites every line break to CRLF, the convention the SAP
// long-text editor expects when pasting. Lone CRs and existing CRLFs are
// collapsed first so the result never contains doubled carriage returns.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.ReplaceAll(text, "\n", "\r\n")
}

// Stage replaces the clipboard contents with text, line endings normalized.
// The underlying write opens and closes the clipboard on every call, so a
// failed write never leaves the resource held.
func Stage(text string) error {
	if err := clipboard.WriteAll(Normalize(text)); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
