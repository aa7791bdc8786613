package callbacks_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MichaelAnckaert/go-agents/agents"
	"github.com/MichaelAnckaert/go-agents/callbacks"
	"github.com/MichaelAnckaert/go-agents/mocks/mockllms"
	"github.com/MichaelAnckaert/go-agents/pkg/llms"
	"github.com/MichaelAnckaert/go-agents/schema"
	"github.com/MichaelAnckaert/go-agents/tools"
)

func newEchoTool(t *testing.T) tools.ITool {
	t.Helper()
	desc, err := schema.NewDescriptor("echo", "Echo the input back.", []schema.ParameterSpec{
		{Name: "text", Type: schema.TypeString, Description: "Text to echo", Required: true},
	})
	require.NoError(t, err)

	tool, err := tools.NewFunc(desc, func(_ context.Context, args map[string]any) (any, error) {
		return args["text"], nil
	})
	require.NoError(t, err)
	return tool
}

func Test_Scratchpad(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetName().Return("test-model").AnyTimes()
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	gomock.InOrder(
		mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&llms.ContentResponse{
				Choices: []*llms.ContentChoice{
					{
						ToolCalls: []llms.ToolCall{
							{ID: "call_1", Type: "function", FunctionCall: &llms.FunctionCall{Name: "echo", Arguments: `{"text": "hi"}`}},
						},
					},
				},
			}, nil),
		mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&llms.ContentResponse{
				Choices: []*llms.ContentChoice{
					{
						Content: "hi",
						GenerationInfo: map[string]any{
							"InputTokens":  int64(10),
							"OutputTokens": int64(2),
							"TotalTokens":  int64(12),
						},
					},
				},
			}, nil),
	)

	pad := callbacks.NewScratchpad(callbacks.ModeVerbose)
	agent := agents.New(mockLLM, agents.WithCallback(pad)).WithName("echoer")
	require.NoError(t, agent.AddTool(newEchoTool(t)))

	ctx := pad.StartRun(context.Background())
	res, err := agent.Run(ctx, "Say hi.")
	require.NoError(t, err)
	assert.Equal(t, agents.StateDone, res.State)

	stats, transcript := pad.EndRun(ctx)
	require.NotNil(t, stats)
	assert.Equal(t, uint32(1), stats.AgentRuns)
	assert.Equal(t, uint32(1), stats.AgentRunsDone)
	assert.Equal(t, uint32(0), stats.AgentRunsFailed)
	assert.Equal(t, uint32(2), stats.LLMCalls)
	assert.Equal(t, uint32(1), stats.ToolCalls)
	assert.Equal(t, uint32(1), stats.ToolCallsDone)
	assert.Equal(t, uint64(10), stats.LLMInputTokens)
	assert.Equal(t, uint64(2), stats.LLMOutputTokens)
	assert.Equal(t, uint64(12), stats.LLMTotalTokens)

	out := string(transcript)
	assert.Contains(t, out, "*** Run Started ***")
	assert.Contains(t, out, "echoer *** Agent Start ***")
	assert.Contains(t, out, "echo *** Tool Start ***")
	assert.Contains(t, out, "*** Run Ended.")
}

func Test_Scratchpad_NoRun(t *testing.T) {
	pad := callbacks.NewScratchpad(callbacks.ModeDefault)

	// events without a run context are dropped
	pad.OnToolStart(context.Background(), nil, "")
	stats, transcript := pad.EndRun(context.Background())
	assert.Nil(t, stats)
	assert.Nil(t, transcript)
}

func Test_Fanout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLLM := mockllms.NewMockModel(ctrl)
	mockLLM.EXPECT().GetName().Return("test-model").AnyTimes()
	mockLLM.EXPECT().GetProviderType().Return(llms.ProviderOpenAI).AnyTimes()
	mockLLM.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: "ok"}},
		}, nil)

	var first, second bytes.Buffer
	fanout := callbacks.NewFanout(agents.NewPrinterCallback(&first))
	fanout.Add(agents.NewPrinterCallback(&second))

	agent := agents.New(mockLLM, agents.WithCallback(fanout)).WithName("fan")
	res, err := agent.Run(context.Background(), "ping")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Answer)

	for _, out := range []string{first.String(), second.String()} {
		assert.Contains(t, out, "Agent Start: fan")
		assert.Contains(t, out, "Agent End: fan, state: done")
	}
}
