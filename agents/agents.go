// Package agents implements a tool-calling agent that runs a reasoning loop
// against an LLM: the model is called with the conversation history and the
// registered tool definitions, emitted tool calls are executed in order, and
// their results are fed back until the model returns a final answer or the
// iteration budget is exhausted.
package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/MichaelAnckaert/go-agents/chatmodel"
	"github.com/MichaelAnckaert/go-agents/pkg/llms"
	"github.com/MichaelAnckaert/go-agents/pkg/llmutils"
	"github.com/MichaelAnckaert/go-agents/pkg/metricskey"
	"github.com/MichaelAnckaert/go-agents/store"
	"github.com/MichaelAnckaert/go-agents/tools"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/MichaelAnckaert/go-agents", "agents")

// State describes the phase of an agent run.
type State string

const (
	// StateReasoning means the agent is waiting for the model to reply.
	StateReasoning State = "reasoning"
	// StateActing means the agent is executing tool calls emitted by the model.
	StateActing State = "acting"
	// StateDone means the run finished with a final answer.
	StateDone State = "done"
	// StateAborted means the run stopped without a final answer,
	// because the iteration budget ran out.
	StateAborted State = "aborted"
)

// AbortedAnswer is the answer of a run that ran out of iterations.
const AbortedAnswer = "maximum iterations reached without a final answer"

// Result is the outcome of a single agent run.
type Result struct {
	// State is the terminal state of the run, StateDone or StateAborted.
	State State
	// Answer is the final text answer, or AbortedAnswer.
	Answer string
	// Iterations is the number of completed tool-calling rounds.
	Iterations int
	// ChatID identifies the conversation in the store.
	ChatID string
	// Messages is the conversation history at the end of the run.
	Messages []llms.Message
}

// Agent runs the reasoning loop for a single LLM with a set of tools.
type Agent struct {
	llm      llms.Model
	registry *tools.Registry
	cfg      *Config

	name        string
	description string
}

// New returns an agent backed by the given model.
// The default store is in-memory with a random chat ID per run.
func New(llm llms.Model, opts ...Option) *Agent {
	cfg := NewConfig(opts...)
	if cfg.Store == nil {
		cfg.Store = store.NewMemoryStore()
	}
	registry, _ := tools.NewRegistry()
	return &Agent{
		llm:      llm,
		registry: registry,
		cfg:      cfg,
		name:     "agent",
	}
}

// WithName sets the agent name used in logs and metrics.
func (a *Agent) WithName(name string) *Agent {
	a.name = name
	return a
}

// WithDescription sets the agent description.
func (a *Agent) WithDescription(description string) *Agent {
	a.description = description
	return a
}

func (a *Agent) Name() string {
	return a.name
}

func (a *Agent) Description() string {
	return a.description
}

// Registry returns the agent's tool registry.
func (a *Agent) Registry() *tools.Registry {
	return a.registry
}

// AddTool registers a tool with the agent.
// Registering a second tool with the same name is an error.
func (a *Agent) AddTool(list ...tools.ITool) error {
	for _, t := range list {
		if err := a.registry.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// Run sends the input to the model and drives the reasoning loop until the
// model produces a final answer, the iteration budget runs out, or the context
// is canceled. A run that exhausts its budget returns a Result in StateAborted,
// not an error.
func (a *Agent) Run(ctx context.Context, input string, opts ...Option) (*Result, error) {
	started := time.Now()
	defer metricskey.PerfAgentRun.MeasureSince(started, a.name)

	cfg := a.cfg.Apply(opts...)
	cb := cfg.CallbackHandler
	if cb != nil {
		cb.OnAgentStart(ctx, a, input)
	}

	res, err := a.run(ctx, cfg, input)
	if err != nil {
		metricskey.StatsAgentRunsFailed.IncrCounter(1, a.name)
		logger.ContextKV(ctx, xlog.ERROR,
			"agent", a.name,
			"err", err.Error(),
		)
		if cb != nil {
			cb.OnAgentError(ctx, a, input, err)
		}
		return nil, err
	}

	if res.State == StateAborted {
		metricskey.StatsAgentRunsAborted.IncrCounter(1, a.name)
	} else {
		metricskey.StatsAgentRunsSucceeded.IncrCounter(1, a.name)
	}
	if cb != nil {
		cb.OnAgentEnd(ctx, a, input, res)
	}
	return res, nil
}

func (a *Agent) run(ctx context.Context, cfg *Config, input string) (*Result, error) {
	st := cfg.Store
	// chat ID precedence: explicit option, then the conversation context,
	// then a fresh ID for a one-shot run
	chatID := values.StringsCoalesce(cfg.ChatID, chatmodel.GetChatID(ctx), chatmodel.NewChatID())

	systemPrompt := cfg.SystemPrompt
	if cfg.SystemPromptTemplate != nil {
		var err error
		systemPrompt, err = cfg.SystemPromptTemplate.Format(cfg.PromptInput)
		if err != nil {
			return nil, errors.WithMessage(err, "failed to render system prompt")
		}
	}
	if systemPrompt != "" {
		if err := st.SetSystem(ctx, chatID, systemPrompt); err != nil {
			return nil, errors.WithMessage(err, "failed to set system prompt")
		}
	}
	if input != "" {
		err := st.Add(ctx, chatID, llms.MessageFromTextParts(llms.RoleHuman, input))
		if err != nil {
			return nil, errors.WithMessage(err, "failed to store input")
		}
	}

	callOpts := cfg.GetCallOptions()
	llmTools := a.registry.LLMTools()
	if len(llmTools) > 0 {
		if !a.llm.GetProviderType().Supports(llms.CapabilityFunctionCalling) {
			return nil, errors.Newf("provider %q does not support tool calling", a.llm.GetProviderType())
		}
		callOpts = append(callOpts, llms.WithTools(llmTools))
	}

	cb := cfg.CallbackHandler
	var toolCallbacks []tools.Callback
	if cb != nil {
		toolCallbacks = append(toolCallbacks, cb)
	}

	modelName := a.llm.GetName()
	res := &Result{
		State:  StateReasoning,
		ChatID: chatID,
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}
		if res.Iterations >= cfg.MaxIterations {
			logger.ContextKV(ctx, xlog.WARNING,
				"agent", a.name,
				"status", "max_iterations_reached",
				"iterations", res.Iterations,
			)
			res.State = StateAborted
			res.Answer = AbortedAnswer
			return a.finish(ctx, st, res)
		}

		res.State = StateReasoning
		messages, err := st.Messages(ctx, chatID)
		if err != nil {
			return nil, errors.WithMessage(err, "failed to load messages")
		}

		if cb != nil {
			cb.OnAgentLLMCallStart(ctx, a, a.llm, messages)
		}
		metricskey.StatsLLMMessagesSent.IncrCounter(float64(len(messages)), a.name, modelName)

		llmStarted := time.Now()
		resp, err := a.llm.GenerateContent(ctx, messages, callOpts...)
		metricskey.PerfLLMCall.MeasureSince(llmStarted, a.name, modelName)
		if err != nil {
			return nil, errors.WithMessage(err, "failed to generate content")
		}
		if cb != nil {
			cb.OnAgentLLMCallEnd(ctx, a, a.llm, resp)
		}
		a.countTokens(resp, modelName)

		if len(resp.Choices) == 0 {
			return nil, errors.New("empty response from model")
		}

		content, toolCalls := flattenChoices(resp)
		if err := st.Add(ctx, chatID, assistantMessage(content, toolCalls)); err != nil {
			return nil, errors.WithMessage(err, "failed to store reply")
		}

		if len(toolCalls) == 0 {
			res.State = StateDone
			res.Answer = content
			return a.finish(ctx, st, res)
		}

		// Acting phase: tool calls run one at a time, in the order the
		// model emitted them.
		res.State = StateActing
		for _, tc := range toolCalls {
			tr := a.registry.Invoke(ctx, tc, toolCallbacks...)
			err := st.Add(ctx, chatID, llms.MessageFromToolResponse(llms.RoleTool, tr))
			if err != nil {
				return nil, errors.WithMessage(err, "failed to store tool response")
			}
		}
		res.Iterations++
	}
}

func (a *Agent) finish(ctx context.Context, st store.MessageStore, res *Result) (*Result, error) {
	messages, err := st.Messages(ctx, res.ChatID)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to load messages")
	}
	res.Messages = messages
	return res, nil
}

func (a *Agent) countTokens(resp *llms.ContentResponse, modelName string) {
	in, out, total := llmutils.CountTokens(resp)
	if in > 0 {
		metricskey.StatsLLMInputTokens.IncrCounter(float64(in), a.name, modelName)
	}
	if out > 0 {
		metricskey.StatsLLMOutputTokens.IncrCounter(float64(out), a.name, modelName)
	}
	if total > 0 {
		metricskey.StatsLLMTotalTokens.IncrCounter(float64(total), a.name, modelName)
	}
}

// flattenChoices merges the response choices into a single text answer and an
// ordered list of tool calls. Some providers return text and tool use as
// separate choices of the same reply. Tool calls missing an ID get a
// synthesized one so their results can still be matched up.
func flattenChoices(resp *llms.ContentResponse) (string, []llms.ToolCall) {
	var content string
	var toolCalls []llms.ToolCall
	for _, choice := range resp.Choices {
		if content == "" && choice.Content != "" {
			content = choice.Content
		}
		toolCalls = append(toolCalls, choice.ToolCalls...)
	}
	for i := range toolCalls {
		if toolCalls[i].ID == "" && toolCalls[i].FunctionCall != nil {
			toolCalls[i].ID = fmt.Sprintf("%s_%d", toolCalls[i].FunctionCall.Name, i)
		}
	}
	return content, toolCalls
}

func assistantMessage(content string, toolCalls []llms.ToolCall) llms.Message {
	var parts []llms.ContentPart
	if content != "" {
		parts = append(parts, llms.TextPart(content))
	}
	for _, tc := range toolCalls {
		parts = append(parts, tc)
	}
	return llms.MessageFromParts(llms.RoleAI, parts...)
}
