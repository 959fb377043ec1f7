package middleware

import (
	"context"

	"mcpchat/internal/chat"
)

type EventName string

const (
	EventBeforeCompletion EventName = "before_completion"
	EventAfterCompletion  EventName = "after_completion"
	EventBeforeToolCall   EventName = "before_tool_call"
	EventAfterToolCall    EventName = "after_tool_call"
)

type Decision struct {
	Cancel bool   // abort the turn
	Reason string // for logs, and the error when Cancel is set
}

// Event describes one step of a turn. Hooks observe it; the request,
// response and tool call must not be modified.
type Event struct {
	Name      EventName
	SessionID string
	Request   *chat.Request  // completion events
	Response  *chat.Response // after_completion
	ToolCall  *chat.ToolCall // tool events
	Result    string         // after_tool_call: serialized tool result
}

type Middleware interface {
	ID() string
	Priority() int
	OnEvent(ctx context.Context, e *Event) (Decision, error)
}

// ConditionalMiddleware is an optional extension that allows a middleware to be
// dynamically enabled/disabled per event.
//
// If a middleware implements this interface and returns false, it will be
// skipped during dispatch (but still recorded in results with a "skipped"
// reason).
type ConditionalMiddleware interface {
	ShouldLoad(ctx context.Context, e *Event) bool
}
