package prompts

import (
	"strings"

	"github.com/MichaelAnckaert/go-agents/pkg/llms"
	"github.com/MichaelAnckaert/go-agents/pkg/llmutils"
)

// ChatPromptValue is a prompt value that is a list of chat messages.
type ChatPromptValue []llms.Message

// String returns the chat message slice as a buffer string.
func (v ChatPromptValue) String() string {
	var buf strings.Builder
	llmutils.PrintMessages(&buf, v)
	return buf.String()
}

// Messages returns the ChatMessage slice.
func (v ChatPromptValue) Messages() []llms.Message {
	return v
}

// MessageFormatter renders one chat message from template input.
type MessageFormatter interface {
	FormatMessage(values map[string]any) (llms.Message, error)
}

type messageTemplate struct {
	role   llms.Role
	prompt *PromptTemplate
}

func (m messageTemplate) FormatMessage(values map[string]any) (llms.Message, error) {
	text, err := m.prompt.Format(values)
	if err != nil {
		return llms.Message{}, err
	}
	return llms.MessageFromTextParts(m.role, text), nil
}

// NewSystemMessagePromptTemplate returns a formatter producing a system message.
func NewSystemMessagePromptTemplate(text string, inputVariables []string) MessageFormatter {
	return messageTemplate{
		role:   llms.RoleSystem,
		prompt: NewPromptTemplate(text, inputVariables),
	}
}

// NewHumanMessagePromptTemplate returns a formatter producing a human message.
func NewHumanMessagePromptTemplate(text string, inputVariables []string) MessageFormatter {
	return messageTemplate{
		role:   llms.RoleHuman,
		prompt: NewPromptTemplate(text, inputVariables),
	}
}

// ChatPromptTemplate formats a sequence of chat messages.
type ChatPromptTemplate struct {
	Messages []MessageFormatter
}

func NewChatPromptTemplate(messages []MessageFormatter) *ChatPromptTemplate {
	return &ChatPromptTemplate{Messages: messages}
}

// FormatPrompt renders all message templates with the same input.
func (t *ChatPromptTemplate) FormatPrompt(values map[string]any) (ChatPromptValue, error) {
	result := make(ChatPromptValue, 0, len(t.Messages))
	for _, formatter := range t.Messages {
		msg, err := formatter.FormatMessage(values)
		if err != nil {
			return nil, err
		}
		result = append(result, msg)
	}
	return result, nil
}
