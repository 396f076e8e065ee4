package sheet

import (
	"math"
	"strconv"
	"strings"
)

// CoerceOrderID turns a raw spreadsheet cell into a canonical work-order
// identifier. Order columns frequently arrive as numeric cells, rendered as
// "6000794541.0" or in scientific notation; those collapse to the plain
// digit string. Empty or missing cells coerce to "" and mark the row as not
// workable.
func CoerceOrderID(cell string) string {
	s := strings.TrimSpace(cell)
	if s == "" {
		return ""
	}

	// Plain digit strings pass through untouched so leading zeros survive.
	if !strings.ContainsAny(s, ".eE") {
		return s
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}

	// Non-numeric content: at most strip a textual ".0" suffix.
	return strings.TrimSuffix(s, ".0")
}
