package llm

import (
	"strings"

	"github.com/tmc/langchaingo/llms"

	"mcpchat/internal/chat"
)

func convertHistory(history []chat.Message) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history))
	for _, m := range history {
		switch m.Role {
		case chat.RoleUser:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, m.Content))
		case chat.RoleAssistant:
			var parts []llms.ContentPart
			if m.Content != "" {
				parts = append(parts, llms.TextPart(m.Content))
			}
			for _, tc := range m.ToolCalls {
				parts = append(parts, llms.ToolCall{
					ID:   tc.ID,
					Type: "function",
					FunctionCall: &llms.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Arguments.Text(),
					},
				})
			}
			// Some backends reject an assistant turn without parts.
			if len(parts) == 0 {
				parts = append(parts, llms.TextPart(" "))
			}
			messages = append(messages, llms.MessageContent{
				Role:  llms.ChatMessageTypeAI,
				Parts: parts,
			})
		case chat.RoleSystem:
			messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, m.Content))
		case chat.RoleTool:
			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: m.ToolCallID,
						Name:       m.Name,
						Content:    m.Content,
					},
				},
			})
		}
	}
	return messages
}

// NormalizeFinishReason maps a provider stop reason onto chat.FinishToolCalls
// or chat.FinishStop. Reasons outside both families are returned unchanged.
//
// Some providers (Gemini, Ollama) report a plain stop even when the choice
// carries structured tool calls, so hasToolCalls promotes stop to tool_calls.
func NormalizeFinishReason(raw string, hasToolCalls bool) string {
	r := strings.ToLower(strings.TrimSpace(raw))
	r = strings.TrimPrefix(r, "finishreason")
	r = strings.TrimPrefix(r, "finish_reason_")

	switch r {
	case "tool_calls", "tool_call", "tool_use", "function_call":
		return chat.FinishToolCalls
	case "", "stop", "end_turn", "stop_sequence", "eos":
		if hasToolCalls {
			return chat.FinishToolCalls
		}
		return chat.FinishStop
	}
	return raw
}
