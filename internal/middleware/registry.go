package middleware

import (
	"io"
	"strings"
)

// registry holds globally-registered middleware plugins.
var registry []Middleware

// Register should be called by middleware packages (typically in init) to
// register themselves with the core chain builder.
func Register(m Middleware) {
	registry = append(registry, m)
}

// Registered returns a shallow copy of all registered middleware.
func Registered() []Middleware {
	out := make([]Middleware, len(registry))
	copy(out, registry)
	return out
}

// NewChainFromRegistry builds a chain from all registered middleware except
// the disabled IDs. If a debug writer is provided, it is attached for JSONL
// debug logs. It returns nil when nothing is left to run.
func NewChainFromRegistry(debugWriter io.Writer, disabled []string) *Chain {
	mws := Registered()

	if len(disabled) > 0 {
		disabledSet := make(map[string]struct{}, len(disabled))
		for _, id := range disabled {
			disabledSet[strings.TrimSpace(id)] = struct{}{}
		}

		filtered := make([]Middleware, 0, len(mws))
		for _, mw := range mws {
			if _, ok := disabledSet[mw.ID()]; !ok {
				filtered = append(filtered, mw)
			}
		}
		mws = filtered
	}

	if len(mws) == 0 {
		return nil
	}
	c := NewChain(mws...)
	if debugWriter != nil {
		c.SetDebugWriter(debugWriter)
	}
	return c
}
