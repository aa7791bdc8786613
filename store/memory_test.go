package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelAnckaert/go-agents/pkg/llms"
	"github.com/MichaelAnckaert/go-agents/store"
)

func Test_MemoryStore_Order(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	msgs, err := s.Messages(ctx, "chat1")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	require.NoError(t, s.Add(ctx, "chat1", llms.MessageFromTextParts(llms.RoleHuman, "first")))
	require.NoError(t, s.Add(ctx, "chat1",
		llms.MessageFromTextParts(llms.RoleAI, "second"),
		llms.MessageFromTextParts(llms.RoleHuman, "third"),
	))

	msgs, err = s.Messages(ctx, "chat1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, "first", msgs[0].GetContent())
	assert.Equal(t, "second", msgs[1].GetContent())
	assert.Equal(t, "third", msgs[2].GetContent())

	// conversations are isolated by chat ID
	other, err := s.Messages(ctx, "chat2")
	require.NoError(t, err)
	assert.Empty(t, other)

	// the returned slice is a snapshot
	require.NoError(t, s.Add(ctx, "chat1", llms.MessageFromTextParts(llms.RoleAI, "fourth")))
	assert.Len(t, msgs, 3)
}

func Test_MemoryStore_SetSystem(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	require.NoError(t, s.Add(ctx, "chat1", llms.MessageFromTextParts(llms.RoleHuman, "hello")))

	// no system message yet, the prompt is prepended
	require.NoError(t, s.SetSystem(ctx, "chat1", "You are terse."))
	msgs, err := s.Messages(ctx, "chat1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, llms.RoleSystem, msgs[0].Role)
	assert.Equal(t, "You are terse.", msgs[0].GetContent())
	assert.Equal(t, "hello", msgs[1].GetContent())

	// an existing system message is replaced in place
	require.NoError(t, s.SetSystem(ctx, "chat1", "You are verbose."))
	msgs, err = s.Messages(ctx, "chat1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "You are verbose.", msgs[0].GetContent())
}

func Test_MemoryStore_Reset(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	require.NoError(t, s.Add(ctx, "chat1", llms.MessageFromTextParts(llms.RoleHuman, "hello")))
	require.NoError(t, s.Reset(ctx, "chat1"))

	msgs, err := s.Messages(ctx, "chat1")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}
