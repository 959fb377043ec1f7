// Package agent runs the tool-calling conversation loop: one user query in,
// at most one round of tool dispatch, one assistant answer out.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"mcpchat/internal/chat"
	"mcpchat/internal/middleware"
	"mcpchat/internal/prompt"
	"mcpchat/internal/tools"
)

// FunctionPrefix opens an inline textual function call. Models with weak
// structured tool calling support emit it instead of tool calls.
const FunctionPrefix = "<function="

// Agent binds a completion gateway to a tool catalog. An Agent keeps no
// conversation state; see Session.
type Agent struct {
	gateway chat.Gateway
	catalog *tools.Catalog

	model       string
	template    string
	maxTokens   int
	temperature float64

	completionTimeout time.Duration
	toolTimeout       time.Duration

	mws *middleware.Chain
	log *log.Logger
}

func New(gateway chat.Gateway, catalog *tools.Catalog, opts ...Option) *Agent {
	a := &Agent{
		gateway: gateway,
		catalog: catalog,
	}
	defaults(a)
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Agent) Catalog() *tools.Catalog { return a.catalog }

// Run resolves one turn. An empty history starts a conversation with the
// composed system prompt. history is never modified; on success Run returns
// the final answer and the extended history, on failure only the error.
func (a *Agent) Run(ctx context.Context, query string, history []chat.Message) (string, []chat.Message, error) {
	msgs := make([]chat.Message, len(history), len(history)+8)
	copy(msgs, history)

	if len(msgs) == 0 {
		system, err := prompt.Compose(a.template, a.catalog)
		if err != nil {
			return "", nil, err
		}
		msgs = append(msgs, chat.SystemMessage(system))
	}
	msgs = append(msgs, chat.UserMessage(query))

	first, err := a.complete(ctx, chat.Request{
		Model:       a.model,
		Messages:    slices.Clip(msgs),
		Tools:       a.catalog.Schemas(),
		MaxTokens:   a.maxTokens,
		Temperature: chat.Float(a.temperature),
	})
	if err != nil {
		return "", nil, err
	}

	switch {
	case first.FinishReason == chat.FinishToolCalls || strings.HasPrefix(first.Message.Content, FunctionPrefix):
		return a.dispatch(ctx, msgs, first.Message)
	case first.FinishReason == chat.FinishStop:
		msgs = append(msgs, first.Message)
		return first.Message.Content, msgs, nil
	default:
		return "", nil, &UnknownStopReasonError{Reason: first.FinishReason}
	}
}

// dispatch runs the requested tool calls in order, then asks for the final
// answer without offering tools.
func (a *Agent) dispatch(ctx context.Context, msgs []chat.Message, reply chat.Message) (string, []chat.Message, error) {
	if len(reply.ToolCalls) > 0 {
		msgs = append(msgs, reply)
	}
	a.log.Printf("[agent] model requested %d tool calls", len(reply.ToolCalls))

	for _, call := range reply.ToolCalls {
		args, err := chat.DecodeArguments(call.Arguments)
		if err != nil {
			return "", nil, fmt.Errorf("tool %s (call %s): %w", call.Name, call.ID, err)
		}
		tool, ok := a.catalog.Lookup(call.Name)
		if !ok {
			return "", nil, fmt.Errorf("%w: %s", ErrUnknownTool, call.Name)
		}

		content, err := a.invoke(ctx, tool, call, args)
		if err != nil {
			return "", nil, err
		}
		msgs = append(msgs, chat.ToolMessage(call, content))
	}

	second, err := a.complete(ctx, chat.Request{
		Model:    a.model,
		Messages: slices.Clip(msgs),
	})
	if err != nil {
		return "", nil, err
	}
	if n := len(second.Message.ToolCalls); n > 0 {
		a.log.Printf("[agent] ignoring %d tool calls requested after tool results", n)
	}

	// Tool calls of the second completion are never executed, so they are
	// not recorded either.
	final := chat.Message{Role: chat.RoleAssistant, Content: second.Message.Content}
	msgs = append(msgs, final)
	return final.Content, msgs, nil
}

func (a *Agent) invoke(ctx context.Context, tool tools.Tool, call chat.ToolCall, args map[string]any) (string, error) {
	if err := a.hook(ctx, &middleware.Event{Name: middleware.EventBeforeToolCall, ToolCall: &call}); err != nil {
		return "", err
	}

	tctx, cancel := withTimeout(ctx, a.toolTimeout)
	defer cancel()

	start := time.Now()
	result, err := tool.Call(tctx, args)
	if err != nil {
		a.log.Printf("[agent] tool %s failed after %s: %v", tool.Name, time.Since(start).Round(time.Millisecond), err)
		return "", err
	}
	content, err := encodeResult(result)
	if err != nil {
		return "", &tools.TransportError{Tool: tool.Name, Err: err}
	}
	a.log.Printf("[agent] tool %s returned %d bytes in %s", tool.Name, len(content), time.Since(start).Round(time.Millisecond))

	if err := a.hook(ctx, &middleware.Event{Name: middleware.EventAfterToolCall, ToolCall: &call, Result: content}); err != nil {
		return "", err
	}
	return content, nil
}

func (a *Agent) complete(ctx context.Context, req chat.Request) (*chat.Response, error) {
	if err := a.hook(ctx, &middleware.Event{Name: middleware.EventBeforeCompletion, Request: &req}); err != nil {
		return nil, err
	}

	cctx, cancel := withTimeout(ctx, a.completionTimeout)
	defer cancel()

	resp, err := a.gateway.Complete(cctx, req)
	if err != nil {
		if !errors.Is(err, chat.ErrProvider) {
			err = &chat.ProviderError{Provider: "gateway", Err: err}
		}
		return nil, err
	}
	if resp == nil {
		return nil, &chat.ProviderError{Provider: "gateway", Err: errors.New("empty response")}
	}
	a.log.Printf("[agent] completion finished: %s (tools offered: %d)", resp.FinishReason, len(req.Tools))

	if err := a.hook(ctx, &middleware.Event{Name: middleware.EventAfterCompletion, Request: &req, Response: resp}); err != nil {
		return nil, err
	}
	return resp, nil
}

func (a *Agent) hook(ctx context.Context, e *middleware.Event) error {
	if a.mws == nil {
		return nil
	}
	e.SessionID = sessionID(ctx)
	results, err := a.mws.Dispatch(ctx, e)
	if err != nil {
		return fmt.Errorf("middleware: %w", err)
	}
	if r, ok := middleware.Canceled(results); ok {
		reason := strings.TrimSpace(r.Decision.Reason)
		if reason == "" {
			reason = r.MiddlewareID
		}
		return fmt.Errorf("%w: %s", ErrCanceled, reason)
	}
	return nil
}

func encodeResult(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode result: %w", err)
	}
	return string(b), nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
