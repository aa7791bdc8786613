// Package callbacks provides composite callback handlers for agent runs.
package callbacks

import (
	"context"

	"github.com/MichaelAnckaert/go-agents/agents"
	"github.com/MichaelAnckaert/go-agents/pkg/llms"
	"github.com/MichaelAnckaert/go-agents/tools"
)

// ensure that the callbacks implement the correct interfaces
var (
	_ agents.Callback = (*Fanout)(nil)
	_ tools.Callback  = (*Fanout)(nil)
	_ agents.Callback = (*Scratchpad)(nil)
	_ tools.Callback  = (*Scratchpad)(nil)
)

// Mode defines the mode for callback printing
type Mode int

const (
	// ModeDefault is the default mode for callback printing
	ModeDefault Mode = iota
	// ModeVerbose is the verbose mode for callback printing
	ModeVerbose
)

// Fanout is a callback handler that forwards the events to multiple callbacks.
type Fanout struct {
	callbacks []agents.Callback
}

func NewFanout(callbacks ...agents.Callback) *Fanout {
	return &Fanout{callbacks: callbacks}
}

func (l *Fanout) Add(callback agents.Callback) {
	l.callbacks = append(l.callbacks, callback)
}

func (l *Fanout) OnAgentStart(ctx context.Context, agent *agents.Agent, input string) {
	for _, callback := range l.callbacks {
		callback.OnAgentStart(ctx, agent, input)
	}
}

func (l *Fanout) OnAgentLLMCallStart(ctx context.Context, agent *agents.Agent, llm llms.Model, messages []llms.Message) {
	for _, callback := range l.callbacks {
		callback.OnAgentLLMCallStart(ctx, agent, llm, messages)
	}
}

func (l *Fanout) OnAgentLLMCallEnd(ctx context.Context, agent *agents.Agent, llm llms.Model, resp *llms.ContentResponse) {
	for _, callback := range l.callbacks {
		callback.OnAgentLLMCallEnd(ctx, agent, llm, resp)
	}
}

func (l *Fanout) OnAgentEnd(ctx context.Context, agent *agents.Agent, input string, result *agents.Result) {
	for _, callback := range l.callbacks {
		callback.OnAgentEnd(ctx, agent, input, result)
	}
}

func (l *Fanout) OnAgentError(ctx context.Context, agent *agents.Agent, input string, err error) {
	for _, callback := range l.callbacks {
		callback.OnAgentError(ctx, agent, input, err)
	}
}

func (l *Fanout) OnToolStart(ctx context.Context, tool tools.ITool, input string) {
	for _, callback := range l.callbacks {
		callback.OnToolStart(ctx, tool, input)
	}
}

func (l *Fanout) OnToolEnd(ctx context.Context, tool tools.ITool, input string, output string) {
	for _, callback := range l.callbacks {
		callback.OnToolEnd(ctx, tool, input, output)
	}
}

func (l *Fanout) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
	for _, callback := range l.callbacks {
		callback.OnToolError(ctx, tool, input, err)
	}
}
