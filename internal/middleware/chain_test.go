package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"mcpchat/internal/chat"
)

type testMW struct {
	id       string
	priority int
	cancel   bool
	seen     *[]string
}

func (m testMW) ID() string    { return m.id }
func (m testMW) Priority() int { return m.priority }
func (m testMW) OnEvent(_ context.Context, _ *Event) (Decision, error) {
	*m.seen = append(*m.seen, m.id)
	return Decision{Cancel: m.cancel}, nil
}

type conditionalTestMW struct {
	testMW
	enabled bool
}

func (m conditionalTestMW) ShouldLoad(_ context.Context, _ *Event) bool { return m.enabled }

func TestChainPriorityAndCancel(t *testing.T) {
	seen := []string{}
	c := NewChain(
		testMW{id: "low", priority: 1, seen: &seen},
		testMW{id: "high", priority: 10, cancel: true, seen: &seen},
		testMW{id: "mid", priority: 5, seen: &seen},
	)

	_, err := c.Dispatch(context.Background(), &Event{Name: EventBeforeCompletion})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 1 || seen[0] != "high" {
		t.Fatalf("expected only high to run (cancel), got %v", seen)
	}
}

func TestChainConditionalMiddlewareSkip(t *testing.T) {
	seen := []string{}
	c := NewChain(
		conditionalTestMW{testMW: testMW{id: "off", priority: 10, seen: &seen}, enabled: false},
		conditionalTestMW{testMW: testMW{id: "on", priority: 5, seen: &seen}, enabled: true},
	)

	results, err := c.Dispatch(context.Background(), &Event{Name: EventBeforeCompletion})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := join(seen); got != "on" {
		t.Fatalf("expected only enabled middleware to run, got %s", got)
	}
	if len(results) != 2 {
		t.Fatalf("expected results for both middlewares, got %d", len(results))
	}
	if results[0].MiddlewareID != "off" || results[0].Decision.Reason == "" {
		t.Fatalf("expected first result to be skipped middleware with a reason, got %+v", results[0])
	}
}

func TestChainStableOrderOnEqualPriority(t *testing.T) {
	seen := []string{}
	c := NewChain(
		testMW{id: "a", priority: 5, seen: &seen},
		testMW{id: "b", priority: 5, seen: &seen},
		testMW{id: "c", priority: 5, seen: &seen},
	)

	_, err := c.Dispatch(context.Background(), &Event{Name: EventBeforeCompletion})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := join(seen); got != "a,b,c" {
		t.Fatalf("expected stable registration order, got %s", got)
	}
}

func join(in []string) string {
	if len(in) == 0 {
		return ""
	}
	out := in[0]
	for i := 1; i < len(in); i++ {
		out += "," + in[i]
	}
	return out
}

func TestChainNilDispatchesNothing(t *testing.T) {
	var c *Chain
	results, err := c.Dispatch(context.Background(), &Event{Name: EventAfterCompletion})
	if err != nil || results != nil {
		t.Fatalf("expected no results and no error, got %v, %v", results, err)
	}
}

type failingMW struct{ testMW }

func (m failingMW) OnEvent(context.Context, *Event) (Decision, error) {
	return Decision{}, errors.New("hook failed")
}

func TestChainStopsOnError(t *testing.T) {
	seen := []string{}
	c := NewChain(
		failingMW{testMW{id: "bad", priority: 10, seen: &seen}},
		testMW{id: "next", priority: 1, seen: &seen},
	)
	if _, err := c.Dispatch(context.Background(), &Event{Name: EventBeforeToolCall}); err == nil {
		t.Fatalf("expected error")
	}
	if len(seen) != 0 {
		t.Fatalf("expected no middleware after the failing one, got %v", seen)
	}
}

func TestCanceled(t *testing.T) {
	results := []DecisionResult{
		{MiddlewareID: "a"},
		{MiddlewareID: "b", Decision: Decision{Cancel: true, Reason: "blocked"}},
	}
	r, ok := Canceled(results)
	if !ok || r.MiddlewareID != "b" {
		t.Fatalf("expected b to cancel, got %+v %v", r, ok)
	}
	if _, ok := Canceled(results[:1]); ok {
		t.Fatalf("expected no cancel")
	}
}

func TestChainDebugLog(t *testing.T) {
	seen := []string{}
	var buf bytes.Buffer
	c := NewChain(testMW{id: "audit", priority: 1, seen: &seen})
	c.SetDebugWriter(&buf)

	call := chat.ToolCall{ID: "c1", Name: "add_row", Arguments: chat.TextArguments(`{"name":"X"}`)}
	_, err := c.Dispatch(context.Background(), &Event{Name: EventBeforeToolCall, SessionID: "s1", ToolCall: &call})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one JSONL entry, got %d", len(lines))
	}
	var entry debugEntry
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid JSONL: %v", err)
	}
	if entry.Session != "s1" || entry.Tool != "add_row" || entry.Event != string(EventBeforeToolCall) {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if entry.Chars != len(`{"name":"X"}`) || entry.Tokens == 0 {
		t.Fatalf("unexpected size estimate: %+v", entry)
	}
}

func TestNewChainFromRegistryFiltersDisabled(t *testing.T) {
	saved := registry
	t.Cleanup(func() { registry = saved })
	seen := []string{}
	registry = nil
	Register(testMW{id: "a", priority: 1, seen: &seen})
	Register(testMW{id: "b", priority: 2, seen: &seen})

	c := NewChainFromRegistry(nil, []string{" a "})
	if c == nil || len(c.List()) != 1 || c.List()[0].ID() != "b" {
		t.Fatalf("expected only b in chain")
	}
	if NewChainFromRegistry(nil, []string{"a", "b"}) != nil {
		t.Fatalf("expected nil chain when everything is disabled")
	}
}
