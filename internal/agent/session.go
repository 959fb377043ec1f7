package agent

import (
	"context"
	"slices"
	"strings"

	"github.com/google/uuid"

	"mcpchat/internal/chat"
)

type sessionKey struct{}

func sessionID(ctx context.Context) string {
	id, _ := ctx.Value(sessionKey{}).(string)
	return id
}

// Session owns one conversation history. A turn's messages are committed
// only when the whole turn succeeds. A Session is not safe for concurrent use;
// concurrent conversations each need their own Session.
type Session struct {
	id      string
	agent   *Agent
	history []chat.Message
}

func NewSession(a *Agent) *Session {
	return &Session{
		id:    uuid.NewString(),
		agent: a,
	}
}

func (s *Session) ID() string { return s.id }

// Send runs one turn and returns the assistant's answer. On error the
// history is left exactly as it was before the call.
func (s *Session) Send(ctx context.Context, input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrEmptyInput
	}

	ctx = context.WithValue(ctx, sessionKey{}, s.id)
	reply, history, err := s.agent.Run(ctx, input, s.history)
	if err != nil {
		return "", err
	}
	s.history = history
	return reply, nil
}

// History returns a deep copy of the committed messages.
func (s *Session) History() []chat.Message {
	out := make([]chat.Message, len(s.history))
	for i, m := range s.history {
		if m.ToolCalls != nil {
			calls := make([]chat.ToolCall, len(m.ToolCalls))
			for j, c := range m.ToolCalls {
				c.Arguments = slices.Clone(c.Arguments)
				calls[j] = c
			}
			m.ToolCalls = calls
		}
		out[i] = m
	}
	return out
}

// Clear drops the conversation; the next turn starts with a fresh system prompt.
func (s *Session) Clear() {
	s.history = nil
}
