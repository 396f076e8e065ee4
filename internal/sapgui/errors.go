package sapgui

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnsupportedPlatform indicates the scripting bridge was invoked on an
// operating system without COM automation support.
var ErrUnsupportedPlatform = errors.New("SAP GUI scripting requires Windows (COM automation)")

// ErrSessionUnavailable indicates no running SAP GUI instance is registered,
// or the requested connection/session index does not exist.
var ErrSessionUnavailable = errors.New("SAP GUI session unavailable")

// TimeoutError is returned when the session busy flag does not clear within
// the wait budget.
type TimeoutError struct {
	Waited time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("SAP stayed busy for more than %s", e.Waited)
}

// ElementNotFoundError wraps a findById lookup that did not resolve.
type ElementNotFoundError struct {
	ID  string
	Err error
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("SAP GUI element not found: %s: %v", e.ID, e.Err)
}

func (e *ElementNotFoundError) Unwrap() error {
	return e.Err
}
