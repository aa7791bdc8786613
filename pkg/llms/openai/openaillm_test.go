package openai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelAnckaert/go-agents/pkg/llms"
	"github.com/MichaelAnckaert/go-agents/pkg/llms/openai"
)

func Test_ProcessMessages(t *testing.T) {
	out, err := openai.ProcessMessages([]llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "Answer tersely."),
		llms.MessageFromTextParts(llms.RoleHuman, "hello"),
	})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func Test_ProcessMessages_UnexpectedRole(t *testing.T) {
	_, err := openai.ProcessMessages([]llms.Message{
		llms.MessageFromTextParts("critic", "not a supported role"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, openai.ErrUnsupportedMessageType)
	assert.ErrorIs(t, err, llms.ErrUnexpectedRole)
}
