package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTool is returned when the model calls a tool missing from the catalog.
	ErrUnknownTool = errors.New("unknown tool")

	// ErrUnknownStopReason is returned when a completion stops for an
	// unrecognized reason.
	ErrUnknownStopReason = errors.New("unknown stop reason")

	// ErrCanceled is returned when a middleware cancels the turn.
	ErrCanceled = errors.New("turn canceled by middleware")

	// ErrEmptyInput is returned by Session.Send for blank input.
	ErrEmptyInput = errors.New("empty input")
)

// UnknownStopReasonError carries the provider's raw finish reason.
type UnknownStopReasonError struct {
	Reason string
}

func (e *UnknownStopReasonError) Error() string {
	return fmt.Sprintf("unknown stop reason: %q", e.Reason)
}

func (e *UnknownStopReasonError) Unwrap() error {
	return ErrUnknownStopReason
}
