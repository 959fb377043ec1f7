// Package toolaudit logs every tool invocation the model requests and the
// size of what the tool returned.
package toolaudit

import (
	"context"
	"log"
	"strings"
	"unicode/utf8"

	mw "mcpchat/internal/middleware"
)

func init() {
	mw.Register(&Auditor{})
}

// Auditor writes to Logger, or to the standard logger when Logger is nil.
type Auditor struct {
	Logger *log.Logger
}

func (*Auditor) ID() string    { return "tool_audit" }
func (*Auditor) Priority() int { return 10 }

func (a *Auditor) ShouldLoad(_ context.Context, e *mw.Event) bool {
	return e != nil && e.ToolCall != nil
}

func (a *Auditor) OnEvent(_ context.Context, e *mw.Event) (mw.Decision, error) {
	if e == nil || e.ToolCall == nil {
		return mw.Decision{}, nil
	}
	switch e.Name {
	case mw.EventBeforeToolCall:
		a.printf("[tool_audit] session=%s call=%s tool=%s args=%s", e.SessionID, e.ToolCall.ID, e.ToolCall.Name, compact(e.ToolCall.Arguments.Text(), 200))
	case mw.EventAfterToolCall:
		a.printf("[tool_audit] session=%s call=%s tool=%s result_bytes=%d", e.SessionID, e.ToolCall.ID, e.ToolCall.Name, len(e.Result))
	}
	return mw.Decision{}, nil
}

func (a *Auditor) printf(format string, args ...any) {
	if a.Logger != nil {
		a.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// compact flattens s to one line of at most n bytes, cut on a rune boundary.
func compact(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
