package sapgui

import (
	"errors"
	"testing"
	"time"
)

// busySession counts down a fixed number of busy polls before clearing.
type busySession struct {
	busyPolls int
	sampled   int
	err       error
}

func (s *busySession) FindByID(id string) (Element, error) { return nil, &ElementNotFoundError{ID: id} }

func (s *busySession) Busy() (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.sampled++
	return s.sampled <= s.busyPolls, nil
}

func (s *busySession) Close() {}

func TestWaitReadyClearsAfterPolls(t *testing.T) {
	s := &busySession{busyPolls: 3}
	if err := WaitReady(s, time.Second, time.Millisecond); err != nil {
		t.Fatalf("WaitReady failed: %v", err)
	}
	if s.sampled != 4 {
		t.Errorf("Expected 4 samples (3 busy + 1 clear), got %d", s.sampled)
	}
}

func TestWaitReadyImmediatelyIdle(t *testing.T) {
	s := &busySession{}
	start := time.Now()
	if err := WaitReady(s, time.Second, 50*time.Millisecond); err != nil {
		t.Fatalf("WaitReady failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 20*time.Millisecond {
		t.Errorf("Idle session should return without sleeping, took %s", elapsed)
	}
}

func TestWaitReadyTimeout(t *testing.T) {
	s := &busySession{busyPolls: 1 << 30} // never clears
	timeout := 50 * time.Millisecond

	start := time.Now()
	err := WaitReady(s, timeout, 5*time.Millisecond)
	elapsed := time.Since(start)

	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("Expected *TimeoutError, got %v", err)
	}
	if te.Waited != timeout {
		t.Errorf("TimeoutError.Waited = %s, want %s", te.Waited, timeout)
	}
	// Within the budget plus one polling granularity, and not before it.
	if elapsed < timeout {
		t.Errorf("Timed out too early: %s < %s", elapsed, timeout)
	}
	if elapsed > timeout+100*time.Millisecond {
		t.Errorf("Timed out too late: %s", elapsed)
	}
}

func TestWaitReadyBridgeError(t *testing.T) {
	wantErr := errors.New("RPC server unavailable")
	s := &busySession{err: wantErr}
	if err := WaitReady(s, time.Second, time.Millisecond); !errors.Is(err, wantErr) {
		t.Fatalf("Expected bridge error to propagate, got %v", err)
	}
}
