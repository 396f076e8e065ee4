package sapgui

// Element is the small capability set the automation needs from a resolved
// GUI element. Each method maps onto one SAP GUI scripting member; invoking a
// member the element does not have surfaces as an error from the bridge.
type Element interface {
	// SetText assigns the element's Text property (input fields).
	SetText(text string) error
	// SetCaret moves the caret inside an input field.
	SetCaret(pos int) error
	// Press presses a button element.
	Press() error
	// Select activates a tab element.
	Select() error
	// SendVKey sends a virtual key to a window element (0 = Enter).
	SendVKey(key int) error
	// ScrollTo sets the vertical scrollbar position of a table element.
	ScrollTo(pos int) error
	// Invoke calls a parameterless scripting member by name, e.g. "maximize"
	// on a window or "setDocum" on the long-text shell.
	Invoke(member string) error
}

// Session is a handle to one SAP GUI session. Implementations resolve
// elements by their full scripting address and expose the session busy flag.
//
// The session object is obtained through a system-wide registry lookup in the
// Windows implementation; it is passed explicitly everywhere so the sequencer
// can run against a fake during tests.
type Session interface {
	// FindByID resolves an element by its scripting address. A failed lookup
	// is reported as *ElementNotFoundError.
	FindByID(id string) (Element, error)
	// Busy reports whether the session is still processing the last command.
	Busy() (bool, error)
	// Close releases the underlying automation resources. Safe to call once
	// at the end of a run.
	Close()
}
