package tools

import (
	"errors"
	"fmt"
)

var (
	// ErrToolBuild is returned when a catalog cannot be built.
	ErrToolBuild = errors.New("tool catalog build failed")

	// ErrTransport is returned when tool discovery or invocation fails at the
	// transport boundary.
	ErrTransport = errors.New("tool transport failed")

	// ErrNotConnected is returned by transports used before connecting or after closing.
	ErrNotConnected = errors.New("not connected to tool server")
)

// TransportError reports a failed invocation of one tool.
type TransportError struct {
	Tool string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("tool %s: %v", e.Tool, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}
