package llmfactory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MichaelAnckaert/go-agents/pkg/llmfactory"
	"github.com/MichaelAnckaert/go-agents/pkg/llms"
)

type fakeLLM struct {
	provider string
	model    string
}

func (f *fakeLLM) GetName() string                    { return f.model }
func (f *fakeLLM) GetProviderType() llms.ProviderType { return llms.ProviderOpenAI }
func (f *fakeLLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	return &llms.ContentResponse{}, nil
}

func Test_Factory(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "fakekey")
	t.Setenv("OPENROUTER_API_KEY", "fakekey")
	t.Setenv("ANTHROPIC_API_KEY", "fakekey")

	cfg, err := llmfactory.LoadConfig("testdata/llm.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Providers)
	assert.Equal(t, "fakekey", cfg.Providers[0].Token)

	llmfactory.NewLLM = func(cfg *llmfactory.ProviderConfig, preferredModels ...string) (llms.Model, error) {
		return &fakeLLM{provider: cfg.Name, model: cfg.FindModel(preferredModels...)}, nil
	}
	defer func() {
		llmfactory.NewLLM = llmfactory.CreateLLM
	}()

	f := llmfactory.New(cfg)
	model, err := f.DefaultModel()
	require.NoError(t, err)
	require.NotNil(t, model)
	fm := model.(*fakeLLM)
	assert.Equal(t, "gpt-4o", fm.model)
	assert.Equal(t, "OPENAI", fm.provider)

	// Test ModelByName with single model
	model, err = f.ModelByName("gpt-4o-mini")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o-mini", fm.model)
	assert.Equal(t, "OPENAI", fm.provider)

	// Test ModelByName with multiple preferred models
	model, err = f.ModelByName("gpt-5-unknown", "qwen/qwen3-coder")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "qwen/qwen3-coder", fm.model)
	assert.Equal(t, "OPENROUTER", fm.provider)

	// Test ModelByName with non-existent models (should fallback to default)
	model, err = f.ModelByName("non-existent-model")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o", fm.model)
	assert.Equal(t, "OPENAI", fm.provider)

	model, err = f.ModelByType("ANTHROPIC")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "claude-sonnet-4-20250514", fm.model)
	assert.Equal(t, "ANTHROPIC", fm.provider)

	// Test AgentModel with a configured agent
	model, err = f.AgentModel("researcher")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "claude-sonnet-4-20250514", fm.model)
	assert.Equal(t, "ANTHROPIC", fm.provider)

	// Test AgentModel fallback to default mapping
	model, err = f.AgentModel("unknown_agent")
	require.NoError(t, err)
	fm = model.(*fakeLLM)
	assert.Equal(t, "gpt-4o", fm.model)
	assert.Equal(t, "OPENAI", fm.provider)
}

func Test_LoadConfig_TOML(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "fakekey")

	cfg, err := llmfactory.LoadConfig("testdata/llm.toml")
	require.NoError(t, err)
	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, "ANTHROPIC", cfg.Providers[0].Name)
	assert.Equal(t, "fakekey", cfg.Providers[0].Token)
	assert.Equal(t, "ANTHROPIC", cfg.DefaultProvider)
	assert.Equal(t, []string{"claude-sonnet-4-20250514"}, cfg.AgentModels["default"])
}

func Test_LoadConfig_Empty(t *testing.T) {
	cfg, err := llmfactory.LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Providers)

	_, err = llmfactory.LoadConfig("testdata/missing.yaml")
	require.Error(t, err)
}

func Test_CreateLLM(t *testing.T) {
	cfg := &llmfactory.ProviderConfig{
		Name:         "X",
		Provider:     "UNSUPPORTED",
		DefaultModel: "m",
	}
	_, err := llmfactory.CreateLLM(cfg)
	require.EqualError(t, err, "unsupported provider type: UNSUPPORTED")

	cfg = &llmfactory.ProviderConfig{
		Name:         "OPENAI",
		Provider:     "OPENAI",
		Token:        "fakekey",
		DefaultModel: "gpt-4o",
	}
	model, err := llmfactory.CreateLLM(cfg)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", model.GetName())
	assert.Equal(t, llms.ProviderOpenAI, model.GetProviderType())
}
