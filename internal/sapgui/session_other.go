//go:build !windows

package sapgui

// Supported reports whether the scripting bridge can run on this platform.
// SAP GUI scripting is reached over COM, so only Windows qualifies; callers
// should check this once at startup and fail fast instead of partially
// executing a run.
func Supported() bool {
	return false
}

// Connect always fails off Windows.
func Connect(connectionIndex, sessionIndex int) (Session, error) {
	return nil, ErrUnsupportedPlatform
}
