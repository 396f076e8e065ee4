package sapgui

// EnsureVisible computes the vertical scrollbar position that brings absRow
// into a table viewport showing visibleRows rows, and returns the row's index
// relative to that viewport.
//
// Rows that already fit without scrolling keep the scrollbar at 0. Once the
// viewport has to move, the target row is pinned to the last visible slot, so
// walking the table top to bottom never scrolls backward.
func EnsureVisible(absRow, visibleRows int) (scrollPos, relRow int) {
	if absRow < visibleRows {
		return 0, absRow
	}
	scrollPos = absRow - (visibleRows - 1)
	return scrollPos, absRow - scrollPos
}
