package tokenbudget

import (
	"context"
	"strings"
	"testing"

	"mcpchat/internal/chat"
	mw "mcpchat/internal/middleware"
)

func request(words int) *mw.Event {
	return &mw.Event{
		Name: mw.EventBeforeCompletion,
		Request: &chat.Request{Messages: []chat.Message{
			chat.SystemMessage("system"),
			chat.UserMessage(strings.Repeat("word ", words)),
		}},
	}
}

func TestBudgetLimiterCancelsLargePrompts(t *testing.T) {
	b := BudgetLimiter{Budget: 50}

	dec, err := b.OnEvent(context.Background(), request(10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dec.Cancel {
		t.Fatalf("expected small prompt to pass, got %+v", dec)
	}

	dec, err = b.OnEvent(context.Background(), request(200))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dec.Cancel || !strings.Contains(dec.Reason, "budget is 50") {
		t.Fatalf("expected cancel with budget reason, got %+v", dec)
	}
}

func TestBudgetLimiterFromEnv(t *testing.T) {
	t.Setenv(EnvBudget, "")
	var b BudgetLimiter
	if b.ShouldLoad(context.Background(), request(1)) {
		t.Fatalf("expected limiter to stay off without a budget")
	}

	t.Setenv(EnvBudget, "5")
	if !b.ShouldLoad(context.Background(), request(1)) {
		t.Fatalf("expected limiter to load with a budget")
	}
	if b.ShouldLoad(context.Background(), &mw.Event{Name: mw.EventAfterToolCall}) {
		t.Fatalf("expected limiter to ignore tool events")
	}
	dec, _ := b.OnEvent(context.Background(), request(100))
	if !dec.Cancel {
		t.Fatalf("expected cancel from env budget")
	}
}
