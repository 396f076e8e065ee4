//go:build windows

package sapgui

import (
	"fmt"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// Supported reports whether the scripting bridge can run on this platform.
func Supported() bool {
	return true
}

// comSession wraps the GuiSession IDispatch obtained from the SAP GUI
// scripting engine. The engine and connection objects are kept alive for the
// whole run and released together in Close.
type comSession struct {
	session *ole.IDispatch
	refs    []*ole.IDispatch
}

type comElement struct {
	disp *ole.IDispatch
}

// Connect attaches to the running SAP GUI instance registered system-wide as
// "SAPGUI", obtains its scripting engine and indexes into the requested
// connection and session. One-shot lookup, no retry: when it fails the
// operator is expected to check that SAP GUI is open and the indices match.
func Connect(connectionIndex, sessionIndex int) (Session, error) {
	// S_FALSE (already initialized on this thread) is fine.
	_ = ole.CoInitialize(0)

	unknown, err := oleutil.GetActiveObject("SAPGUI")
	if err != nil {
		return nil, fmt.Errorf("%w: no running SAP GUI instance registered: %v", ErrSessionUnavailable, err)
	}
	defer unknown.Release()

	sapGuiAuto, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}

	s := &comSession{refs: []*ole.IDispatch{sapGuiAuto}}

	engine, err := s.child(sapGuiAuto, "GetScriptingEngine")
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: scripting engine unavailable (is scripting enabled?): %v", ErrSessionUnavailable, err)
	}

	conn, err := s.children(engine, connectionIndex)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: connection index %d: %v", ErrSessionUnavailable, connectionIndex, err)
	}

	sess, err := s.children(conn, sessionIndex)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("%w: session index %d: %v", ErrSessionUnavailable, sessionIndex, err)
	}

	s.session = sess
	return s, nil
}

// child resolves a dispatch-valued property and tracks it for release.
func (s *comSession) child(parent *ole.IDispatch, member string) (*ole.IDispatch, error) {
	v, err := oleutil.GetProperty(parent, member)
	if err != nil {
		// Some hosts expose GetScriptingEngine as a method.
		v, err = oleutil.CallMethod(parent, member)
		if err != nil {
			return nil, err
		}
	}
	disp := v.ToIDispatch()
	if disp == nil {
		return nil, fmt.Errorf("%s returned no object", member)
	}
	s.refs = append(s.refs, disp)
	return disp, nil
}

// children resolves the indexed Children collection member.
func (s *comSession) children(parent *ole.IDispatch, index int) (*ole.IDispatch, error) {
	v, err := oleutil.CallMethod(parent, "Children", index)
	if err != nil {
		return nil, err
	}
	disp := v.ToIDispatch()
	if disp == nil {
		return nil, fmt.Errorf("Children(%d) returned no object", index)
	}
	s.refs = append(s.refs, disp)
	return disp, nil
}

func (s *comSession) FindByID(id string) (Element, error) {
	v, err := oleutil.CallMethod(s.session, "findById", id)
	if err != nil {
		return nil, &ElementNotFoundError{ID: id, Err: err}
	}
	disp := v.ToIDispatch()
	if disp == nil {
		return nil, &ElementNotFoundError{ID: id, Err: fmt.Errorf("findById returned no object")}
	}
	s.refs = append(s.refs, disp)
	return &comElement{disp: disp}, nil
}

func (s *comSession) Busy() (bool, error) {
	v, err := oleutil.GetProperty(s.session, "Busy")
	if err != nil {
		return false, fmt.Errorf("reading session busy flag: %w", err)
	}
	busy, ok := v.Value().(bool)
	if !ok {
		return false, fmt.Errorf("session busy flag has unexpected type %T", v.Value())
	}
	return busy, nil
}

func (s *comSession) Close() {
	for i := len(s.refs) - 1; i >= 0; i-- {
		s.refs[i].Release()
	}
	s.refs = nil
	s.session = nil
	ole.CoUninitialize()
}

func (e *comElement) SetText(text string) error {
	_, err := oleutil.PutProperty(e.disp, "Text", text)
	return err
}

func (e *comElement) SetCaret(pos int) error {
	_, err := oleutil.PutProperty(e.disp, "CaretPosition", pos)
	return err
}

func (e *comElement) Press() error {
	_, err := oleutil.CallMethod(e.disp, "press")
	return err
}

func (e *comElement) Select() error {
	_, err := oleutil.CallMethod(e.disp, "select")
	return err
}

func (e *comElement) SendVKey(key int) error {
	_, err := oleutil.CallMethod(e.disp, "sendVKey", key)
	return err
}

func (e *comElement) ScrollTo(pos int) error {
	v, err := oleutil.GetProperty(e.disp, "VerticalScrollbar")
	if err != nil {
		return fmt.Errorf("table has no vertical scrollbar: %w", err)
	}
	bar := v.ToIDispatch()
	if bar == nil {
		return fmt.Errorf("table has no vertical scrollbar")
	}
	defer bar.Release()
	_, err = oleutil.PutProperty(bar, "Position", pos)
	return err
}

func (e *comElement) Invoke(member string) error {
	_, err := oleutil.CallMethod(e.disp, member)
	return err
}
