package logon

import (
	"errors"
	"fmt"
)

// ErrRemoteRejected marks a non-accepting answer from the remote authority.
var ErrRemoteRejected = errors.New("credentials rejected by remote authority")

// Reconciliation operation names, used in error reporting and logs.
const (
	OpLookup      = "lookup"
	OpCreate      = "create"
	OpUpdateFlags = "update-flags"
	OpSetPassword = "set-password"
)

// OpError wraps a failing local account store operation.
type OpError struct {
	Op  string
	Err error
}

func (e *OpError) Error() string {
	return fmt.Sprintf("local account %s failed: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }
