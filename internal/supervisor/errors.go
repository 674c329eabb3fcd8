package supervisor

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyStarted is returned when a start is requested while this
	// supervisor already holds a handle to a validator it spawned.
	ErrAlreadyStarted = errors.New("validator was already started")

	// ErrNotRunning is returned when a kill is requested while neither an
	// owned handle nor an external pid is known.
	ErrNotRunning = errors.New("validator is not running and thus cannot be killed")

	// ErrWaitTimeout is returned when a bounded readiness or shutdown wait
	// expires. Waits are unbounded unless WithWaitTimeout is set.
	ErrWaitTimeout = errors.New("timed out waiting for the validator")
)

// AlreadyRunningError is returned when a start is requested while the relay
// reports a validator already running on this machine, owned or not.
type AlreadyRunningError struct {
	Pid int
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("validator already running on this machine with pid %d, please kill it first and then continue", e.Pid)
}

// KillError wraps the underlying failure of a terminate or wait operation.
type KillError struct {
	Err error
}

func (e *KillError) Error() string {
	return fmt.Sprintf("failed to kill validator: %v", e.Err)
}

func (e *KillError) Unwrap() error {
	return e.Err
}
