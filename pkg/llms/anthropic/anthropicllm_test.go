package anthropic_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelAnckaert/go-agents/pkg/llms"
	"github.com/MichaelAnckaert/go-agents/pkg/llms/anthropic"
)

func Test_ProcessMessages(t *testing.T) {
	msgs, system, err := anthropic.ProcessMessages([]llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "Answer tersely."),
		llms.MessageFromTextParts(llms.RoleHuman, "hello"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Answer tersely.", system)
	assert.Len(t, msgs, 1)
}

func Test_ProcessMessages_UnexpectedRole(t *testing.T) {
	_, _, err := anthropic.ProcessMessages([]llms.Message{
		llms.MessageFromTextParts("critic", "not a supported role"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, anthropic.ErrUnsupportedMessageType)
	assert.ErrorIs(t, err, llms.ErrUnexpectedRole)
}
