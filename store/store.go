// Package store keeps conversation transcripts. The message log is
// append only, messages are returned in the order they were added.
package store

import (
	"context"

	"github.com/MichaelAnckaert/go-agents/pkg/llms"
)

// MessageStore persists the messages of chat conversations, keyed by
// chat ID.
type MessageStore interface {
	// Messages returns the conversation in insertion order.
	Messages(ctx context.Context, chatID string) ([]llms.Message, error)
	// Add appends messages to the conversation.
	Add(ctx context.Context, chatID string, msgs ...llms.Message) error
	// SetSystem sets the system prompt of the conversation. An existing
	// system message is replaced in place, otherwise the prompt is
	// prepended so it stays ahead of the conversation.
	SetSystem(ctx context.Context, chatID string, content string) error
	// Reset drops the conversation.
	Reset(ctx context.Context, chatID string) error
}
