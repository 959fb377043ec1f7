package middleware

import (
	"encoding/json"
	"io"
	"math"
	"regexp"
	"time"
	"unicode/utf8"
)

type debugEntry struct {
	Timestamp    string `json:"ts"`
	Session      string `json:"session,omitempty"`
	Event        string `json:"event"`
	MiddlewareID string `json:"middleware"`
	Priority     int    `json:"priority"`
	Skipped      bool   `json:"skipped,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Cancel       bool   `json:"cancel,omitempty"`

	Tool     string `json:"tool,omitempty"`
	Messages int    `json:"messages,omitempty"`
	Finish   string `json:"finish,omitempty"`

	Chars  int `json:"chars"`
	Tokens int `json:"tokens_est"`
}

// tokenish matches "word-like" chunks (including dotted/slashed technical tokens),
// otherwise falls back to single non-space characters.
var tokenish = regexp.MustCompile(`[\pL\pN]+(?:[._/\\-][\pL\pN]+)*|[^\s]`)

// EstimateTokens approximates how many model tokens s costs.
func EstimateTokens(s string) int {
	if s == "" {
		return 0
	}
	// A simple approximation: count token-ish chunks; cap the minimum by a
	// chars/4 heuristic so tiny punctuation-heavy strings don't look too cheap.
	chunks := len(tokenish.FindAllString(s, -1))
	charHeuristic := int(math.Ceil(float64(utf8.RuneCountInString(s)) / 4.0))
	if chunks < charHeuristic {
		return charHeuristic
	}
	return chunks
}

// eventText is the payload an event carries towards or back from the model.
func eventText(e *Event) string {
	if e == nil {
		return ""
	}
	switch e.Name {
	case EventBeforeCompletion:
		if e.Request != nil && len(e.Request.Messages) > 0 {
			return e.Request.Messages[len(e.Request.Messages)-1].Content
		}
	case EventAfterCompletion:
		if e.Response != nil {
			return e.Response.Message.Content
		}
	case EventBeforeToolCall:
		if e.ToolCall != nil {
			return e.ToolCall.Arguments.Text()
		}
	case EventAfterToolCall:
		return e.Result
	}
	return ""
}

func (c *Chain) debugLog(e *Event, id string, priority int, skipped bool, text string, dec Decision) {
	c.debugMu.Lock()
	w := c.debugW
	c.debugMu.Unlock()
	if w == nil || e == nil {
		return
	}

	entry := debugEntry{
		Timestamp:    time.Now().UTC().Format(time.RFC3339Nano),
		Session:      e.SessionID,
		Event:        string(e.Name),
		MiddlewareID: id,
		Priority:     priority,
		Skipped:      skipped,
		Reason:       dec.Reason,
		Cancel:       dec.Cancel,
		Chars:        utf8.RuneCountInString(text),
		Tokens:       EstimateTokens(text),
	}
	if e.ToolCall != nil {
		entry.Tool = e.ToolCall.Name
	}
	if e.Request != nil {
		entry.Messages = len(e.Request.Messages)
	}
	if e.Response != nil {
		entry.Finish = e.Response.FinishReason
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return
	}
	c.debugMu.Lock()
	defer c.debugMu.Unlock()
	_, _ = io.WriteString(w, string(b)+"\n")
}
