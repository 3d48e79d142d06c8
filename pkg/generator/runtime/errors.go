package runtime

import (
	"fmt"
)

// TransportError is a link level failure. It feeds the reconnect path and
// the error event stream, callers of a read never see it directly.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// RegisterReadError is scoped to a single point inside an otherwise
// successful sweep.
type RegisterReadError struct {
	Register string
	Cause    string
}

func (e *RegisterReadError) Error() string {
	return fmt.Sprintf("register %s: %s", e.Register, e.Cause)
}

// PreconditionError rejects a control command before anything reaches the
// controller. Never retried automatically.
type PreconditionError struct {
	Command string
	Reason  string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Command, e.Reason)
}

// ConfigurationError reports an operation invoked before initialization or
// with unusable parameters.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s", e.Reason)
}
