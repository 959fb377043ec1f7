package chat

import (
	"errors"
	"fmt"
)

var (
	// ErrProvider is returned when a completion provider fails or answers
	// with a malformed response.
	ErrProvider = errors.New("completion provider failed")

	// ErrToolArgument is returned when tool call arguments cannot be decoded.
	ErrToolArgument = errors.New("invalid tool arguments")
)

// ProviderError carries the provider's own diagnostic error.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() []error {
	return []error{ErrProvider, e.Err}
}
