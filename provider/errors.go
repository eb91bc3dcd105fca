package provider

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected reports that the provider has no usable connection to its
	// store. Returned errors wrap it through *ConnError.
	ErrNotConnected = errors.New("provider: not connected")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("provider: closed")
)

// ConnError is returned when a command is attempted while the provider is not
// connected, or when the command itself failed at the transport level.
// errors.Is(err, ErrNotConnected) holds for every ConnError.
type ConnError struct {
	Provider string
	State    string
	Err      error // last dial/ping/transport error; may be nil
}

func (e *ConnError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: not connected (state=%s)", e.Provider, e.State)
	}
	return fmt.Sprintf("%s: not connected (state=%s): %v", e.Provider, e.State, e.Err)
}

func (e *ConnError) Unwrap() error { return e.Err }

func (e *ConnError) Is(target error) bool { return target == ErrNotConnected }

// CommandError is a failure reported by the store for one command
// (e.g. WRONGTYPE, malformed arguments). Commands are never retried.
type CommandError struct {
	Provider string
	Op       string
	Err      error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Op, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }
