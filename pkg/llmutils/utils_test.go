package llmutils_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MichaelAnckaert/go-agents/pkg/llms"
	"github.com/MichaelAnckaert/go-agents/pkg/llmutils"
)

func Test_CleanJSON(t *testing.T) {
	llmOutput := "\n```json\n\n{\"city\": \"Paris\", \"country\": \"France\"}\n\n```\n\n"
	clean := llmutils.CleanJSON([]byte(llmOutput))

	expected := "{\"city\": \"Paris\", \"country\": \"France\"}"
	assert.Equal(t, expected, string(clean))

	llmOutput = "Here you go:\n```json\n\n[{\"city\": \"Paris\", \"country\": \"France\"}]\n```\n\n"
	clean = llmutils.CleanJSON([]byte(llmOutput))

	expected = "[{\"city\": \"Paris\", \"country\": \"France\"}]"
	assert.Equal(t, expected, string(clean))
}

func Test_TrimBackticks(t *testing.T) {
	expected := "{\"city\": \"Paris\", \"country\": \"France\"}"

	assert.Equal(t, expected, llmutils.TrimBackticks("\n```json\n\n{\"city\": \"Paris\", \"country\": \"France\"}\n\n```\n\n"))
	// the same
	assert.Equal(t, expected, llmutils.TrimBackticks(expected))
	assert.Equal(t, expected, llmutils.TrimBackticks("\n```\n\n{\"city\": \"Paris\", \"country\": \"France\"}\n\n```\n\n"))
	assert.Equal(t, expected, llmutils.TrimBackticks("\n```{\"city\": \"Paris\", \"country\": \"France\"}\n\n```\n\n"))
}

func Test_BackticksJSON(t *testing.T) {
	json := "{\"city\": \"Paris\", \"country\": \"France\"}"
	wrapped := llmutils.BackticksJSON(json)

	expected := "\n```json\n{\"city\": \"Paris\", \"country\": \"France\"}\n```\n"
	assert.Equal(t, expected, wrapped)
}

func Test_Stringify(t *testing.T) {
	assert.Equal(t, "plain text", llmutils.Stringify("plain text"))

	tc := llms.ToolCall{
		ID:   "call_1",
		Type: "function",
		FunctionCall: &llms.FunctionCall{
			Name:      "get_weather",
			Arguments: `{"city":"Brussels"}`,
		},
	}
	assert.Contains(t, llmutils.Stringify(tc), "get_weather")

	type result struct {
		Answer string `json:"answer"`
	}
	out := llmutils.Stringify(result{Answer: "42"})
	assert.Contains(t, out, "```json")
	assert.Contains(t, out, `"answer": "42"`)
}

func Test_PrintMessages(t *testing.T) {
	msgs := []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "You are a helpful assistant."),
		llms.MessageFromTextParts(llms.RoleHuman, "What is 7+2?"),
		llms.MessageFromToolCalls(llms.RoleAI, llms.ToolCall{
			ID:   "call_1",
			Type: "function",
			FunctionCall: &llms.FunctionCall{
				Name:      "add",
				Arguments: `{"a":7,"b":2}`,
			},
		}),
		llms.MessageFromToolResponse(llms.RoleTool, llms.ToolCallResponse{
			ToolCallID: "call_1",
			Name:       "add",
			Content:    "9",
		}),
	}

	var sb strings.Builder
	llmutils.PrintMessages(&sb, msgs)
	out := sb.String()

	assert.Contains(t, out, "SYSTEM: You are a helpful assistant.")
	assert.Contains(t, out, "HUMAN: What is 7+2?")
	assert.Contains(t, out, "ToolCall ID=call_1")
	assert.Contains(t, out, "ToolCallResponse ID=call_1, Name=add, Content=9")

	assert.Equal(t, "What is 7+2?", llmutils.FindLastUserQuestion(msgs))
	assert.Greater(t, llmutils.CountMessagesContentSize(msgs), uint64(0))
}

func Test_CountTokens(t *testing.T) {
	resp := &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				Content: "hello",
				GenerationInfo: map[string]any{
					"InputTokens":  int64(10),
					"OutputTokens": int64(5),
					"TotalTokens":  int64(15),
				},
			},
		},
	}
	in, out, total := llmutils.CountTokens(resp)
	assert.Equal(t, int64(10), in)
	assert.Equal(t, int64(5), out)
	assert.Equal(t, int64(15), total)
}

func Test_EnsureEndsWithNewline(t *testing.T) {
	assert.Equal(t, "", llmutils.EnsureEndsWithNewline("   "))
	assert.Equal(t, "hello\n", llmutils.EnsureEndsWithNewline("  hello  "))
}
