package cachekit

import (
	"errors"
	"fmt"

	pr "github.com/unkn0wn-root/cachekit/provider"
)

var (
	ErrEmptyKey = errors.New("cachekit: empty key")

	// Re-exported provider errors so callers need not import provider.
	ErrNotConnected = pr.ErrNotConnected
	ErrClosed       = pr.ErrClosed
)

// OpError wraps every failure returned by a Cache operation.
type OpError struct {
	Op  string // "get", "set", "delete", "ready"
	Key string // caller's key; empty for ready
	Err error
}

func (e *OpError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("cachekit: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("cachekit: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// IsConnectionError reports whether err was caused by the store being
// unreachable (as opposed to a rejected command).
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrNotConnected)
}

// IsCommandError reports whether the store rejected the command itself.
func IsCommandError(err error) bool {
	var ce *pr.CommandError
	return errors.As(err, &ce)
}
