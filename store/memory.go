package store

import (
	"context"
	"sync"

	"github.com/MichaelAnckaert/go-agents/pkg/llms"
)

type inMemory struct {
	mu      sync.RWMutex
	storage map[string][]llms.Message
}

// NewMemoryStore returns a message store backed by process memory.
func NewMemoryStore() MessageStore {
	return &inMemory{}
}

func (m *inMemory) Messages(_ context.Context, chatID string) ([]llms.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.storage == nil {
		return nil, nil
	}
	msgs := m.storage[chatID]
	if msgs == nil {
		return nil, nil
	}
	// callers must not observe later appends
	return append([]llms.Message{}, msgs...), nil
}

func (m *inMemory) Add(_ context.Context, chatID string, msgs ...llms.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		// create on first use
		m.storage = make(map[string][]llms.Message)
	}
	m.storage[chatID] = append(m.storage[chatID], msgs...)
	return nil
}

func (m *inMemory) SetSystem(_ context.Context, chatID string, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		m.storage = make(map[string][]llms.Message)
	}

	sys := llms.MessageFromTextParts(llms.RoleSystem, content)
	msgs := m.storage[chatID]
	for i, msg := range msgs {
		if msg.Role == llms.RoleSystem {
			msgs[i] = sys
			return nil
		}
	}
	m.storage[chatID] = append([]llms.Message{sys}, msgs...)
	return nil
}

func (m *inMemory) Reset(_ context.Context, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage != nil {
		delete(m.storage, chatID)
	}
	return nil
}
