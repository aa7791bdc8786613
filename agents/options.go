package agents

import (
	"github.com/MichaelAnckaert/go-agents/pkg/llms"
	"github.com/MichaelAnckaert/go-agents/pkg/prompts"
	"github.com/MichaelAnckaert/go-agents/store"
)

// DefaultMaxIterations is the number of reasoning rounds an agent may run
// before its run is aborted.
const DefaultMaxIterations = 10

// Option is a function that can be used to modify the behavior of the Agent Config.
type Option func(*Config)

type Config struct {
	// Model is the model to use in an LLM call.
	Model    string
	modelSet bool

	// MaxTokens is the maximum number of tokens to generate to use in an LLM call.
	MaxTokens    int
	maxTokensSet bool

	// Temperature is the temperature for sampling to use in an LLM call, between 0 and 1.
	Temperature    float64
	temperatureSet bool

	// TopP is the cumulative probability for top-p sampling in an LLM call.
	TopP    float64
	toppSet bool

	// Seed is a seed for deterministic sampling in an LLM call.
	Seed    int
	seedSet bool

	// StopWords is a list of words to stop on to use in an LLM call.
	StopWords    []string
	stopWordsSet bool

	// ToolChoice is the choice of tool to use, it can either be "none", "auto"
	// (the default behavior), or a specific tool as described in the ToolChoice type.
	ToolChoice    any
	toolChoiceSet bool

	// CallbackHandler receives agent and tool lifecycle events.
	CallbackHandler Callback

	//
	// Below are the options for the Agent, not related to LLM call
	//

	// MaxIterations is the maximum number of reasoning rounds per run.
	MaxIterations int

	// SystemPrompt is set as the system message of the conversation.
	SystemPrompt string

	// SystemPromptTemplate, when set, is rendered with PromptInput and
	// takes precedence over SystemPrompt.
	SystemPromptTemplate *prompts.PromptTemplate

	// PromptInput holds the variables for SystemPromptTemplate.
	PromptInput map[string]any

	// Store keeps the conversation history between runs.
	Store store.MessageStore

	// ChatID identifies the conversation in the Store.
	ChatID string
}

func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		MaxIterations: DefaultMaxIterations,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Apply returns a copy of the config with per-call options applied.
func (c *Config) Apply(opts ...Option) *Config {
	cfg := *c
	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithModel is an option that allows to specify the model name.
func WithModel(model string) Option {
	return func(o *Config) {
		o.Model = model
		o.modelSet = true
	}
}

// WithMaxTokens is an option that allows to specify the maximum number of tokens to generate.
func WithMaxTokens(maxTokens int) Option {
	return func(o *Config) {
		o.MaxTokens = maxTokens
		o.maxTokensSet = true
	}
}

// WithTemperature is an option that allows to specify the temperature for sampling.
func WithTemperature(temperature float64) Option {
	return func(o *Config) {
		o.Temperature = temperature
		o.temperatureSet = true
	}
}

// WithTopP is an option that allows to specify the cumulative probability for top-p sampling.
func WithTopP(topP float64) Option {
	return func(o *Config) {
		o.TopP = topP
		o.toppSet = true
	}
}

// WithSeed is an option that allows to specify the seed for deterministic sampling.
func WithSeed(seed int) Option {
	return func(o *Config) {
		o.Seed = seed
		o.seedSet = true
	}
}

// WithStopWords is an option that allows to specify the stop words.
func WithStopWords(stopWords []string) Option {
	return func(o *Config) {
		o.StopWords = stopWords
		o.stopWordsSet = true
	}
}

// WithToolChoice is an option that allows to specify the tool choice.
func WithToolChoice(choice any) Option {
	return func(o *Config) {
		o.ToolChoice = choice
		o.toolChoiceSet = true
	}
}

// WithCallback is an option that allows to specify the callback handler.
func WithCallback(cb Callback) Option {
	return func(o *Config) {
		o.CallbackHandler = cb
	}
}

// WithMaxIterations is an option that allows to specify the maximum number of
// reasoning rounds per run.
func WithMaxIterations(n int) Option {
	return func(o *Config) {
		o.MaxIterations = n
	}
}

// WithSystemPrompt is an option that allows to specify the system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(o *Config) {
		o.SystemPrompt = prompt
	}
}

// WithSystemPromptTemplate is an option that allows to specify a template
// for the system prompt, rendered with the prompt input on each run.
func WithSystemPromptTemplate(tmpl *prompts.PromptTemplate) Option {
	return func(o *Config) {
		o.SystemPromptTemplate = tmpl
	}
}

// WithPromptInput is an option that allows to specify the template variables.
func WithPromptInput(input map[string]any) Option {
	return func(o *Config) {
		o.PromptInput = input
	}
}

// WithStore is an option that allows to specify the message store.
func WithStore(st store.MessageStore) Option {
	return func(o *Config) {
		o.Store = st
	}
}

// WithChatID is an option that allows to specify the conversation ID.
func WithChatID(chatID string) Option {
	return func(o *Config) {
		o.ChatID = chatID
	}
}

// GetCallOptions converts the config to a list of llms.CallOption.
func (c *Config) GetCallOptions() []llms.CallOption {
	var callOptions []llms.CallOption
	if c.modelSet {
		callOptions = append(callOptions, llms.WithModel(c.Model))
	}
	if c.maxTokensSet {
		callOptions = append(callOptions, llms.WithMaxTokens(c.MaxTokens))
	}
	if c.temperatureSet {
		callOptions = append(callOptions, llms.WithTemperature(c.Temperature))
	}
	if c.toppSet {
		callOptions = append(callOptions, llms.WithTopP(c.TopP))
	}
	if c.seedSet {
		callOptions = append(callOptions, llms.WithSeed(c.Seed))
	}
	if c.stopWordsSet {
		callOptions = append(callOptions, llms.WithStopWords(c.StopWords))
	}
	if c.toolChoiceSet {
		callOptions = append(callOptions, llms.WithToolChoice(c.ToolChoice))
	}
	return callOptions
}
