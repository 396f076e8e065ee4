package sapgui

import "time"

const (
	// DefaultBusyTimeout is the wait budget applied when the caller passes a
	// non-positive timeout.
	DefaultBusyTimeout = 60 * time.Second
	// DefaultPollInterval is the sampling interval for the busy flag.
	DefaultPollInterval = 100 * time.Millisecond
)

// WaitReady blocks until the session reports not-busy, sampling the busy flag
// at the given interval. The GUI applies scripting commands asynchronously
// and accepts new input only once Busy clears, so this must run after every
// state-changing interaction.
//
// Returns *TimeoutError if the flag does not clear within timeout, or the
// bridge error if reading the flag itself fails.
func WaitReady(s Session, timeout, interval time.Duration) error {
	if timeout <= 0 {
		timeout = DefaultBusyTimeout
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	deadline := time.Now().Add(timeout)
	for {
		busy, err := s.Busy()
		if err != nil {
			return err
		}
		if !busy {
			return nil
		}
		if time.Now().After(deadline) {
			return &TimeoutError{Waited: timeout}
		}
		time.Sleep(interval)
	}
}
