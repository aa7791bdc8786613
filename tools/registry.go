package tools

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"

	"github.com/MichaelAnckaert/go-agents/pkg/llms"
	"github.com/MichaelAnckaert/go-agents/pkg/llmutils"
	"github.com/MichaelAnckaert/go-agents/pkg/metricskey"
)

var logger = xlog.NewPackageLogger("github.com/MichaelAnckaert/go-agents", "tools")

var (
	// ErrDuplicateTool is returned when a tool name is already registered.
	ErrDuplicateTool = errors.New("tool already registered")
	// ErrUnknownTool is returned when a tool name is not registered.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrToolArgument marks errors caused by arguments that do not match
	// the tool's declared schema.
	ErrToolArgument = errors.New("invalid tool arguments")
)

// Registry holds the tools available to an agent. Tools are advertised
// to the model in registration order and invoked by name.
type Registry struct {
	mu    sync.RWMutex
	names []string
	tools map[string]ITool
}

// NewRegistry creates a registry with the given tools.
func NewRegistry(list ...ITool) (*Registry, error) {
	r := &Registry{
		tools: map[string]ITool{},
	}
	for _, t := range list {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a tool. Registering a name twice is a programming
// error, the first registration wins and ErrDuplicateTool is returned.
func (r *Registry) Register(t ITool) error {
	name := t.Name()
	if name == "" {
		return errors.New("tool has no name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tools[name]; ok {
		return errors.WithMessagef(ErrDuplicateTool, "%q", name)
	}
	r.names = append(r.names, name)
	r.tools[name] = t
	return nil
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (ITool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Tool returns the tool registered under name, or ErrUnknownTool.
func (r *Registry) Tool(name string) (ITool, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return nil, errors.WithMessagef(ErrUnknownTool, "%q", name)
	}
	return t, nil
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.names)
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string{}, r.names...)
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []ITool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]ITool, 0, len(r.names))
	for _, name := range r.names {
		res = append(res, r.tools[name])
	}
	return res
}

// LLMTools returns the tool definitions to advertise to the model,
// in registration order.
func (r *Registry) LLMTools() []llms.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]llms.Tool, 0, len(r.names))
	for _, name := range r.names {
		t := r.tools[name]
		res = append(res, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return res
}

// Invoke executes a tool call requested by the model and returns the
// response to append to the conversation. Failures to find the tool,
// invalid arguments and tool errors are reported back to the model as
// response content, they never abort the run.
func (r *Registry) Invoke(ctx context.Context, tc llms.ToolCall, cbs ...Callback) llms.ToolCallResponse {
	if tc.FunctionCall == nil {
		return llms.ToolCallResponse{
			ToolCallID: tc.ID,
			Content:    "Tool call failed: no function payload.",
		}
	}
	toolName := tc.FunctionCall.Name
	toolArgs := tc.FunctionCall.Arguments

	res := llms.ToolCallResponse{
		ToolCallID: tc.ID,
		Name:       toolName,
	}

	tool, ok := r.Lookup(toolName)
	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, toolName)
		availableTools := strings.Join(r.Names(), ", ")
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_not_found",
			"tool_name", toolName,
			"available_tools", availableTools,
		)
		res.Content = fmt.Sprintf("Tool `%s` not found. Please check the tool name and try again with exact match. Available tools: %s", toolName, availableTools)
		return res
	}

	for _, cb := range cbs {
		cb.OnToolStart(ctx, tool, toolArgs)
	}

	out, err := r.call(ctx, tool, toolArgs)
	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, toolName)
		for _, cb := range cbs {
			cb.OnToolError(ctx, tool, toolArgs, err)
		}
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_call_failed",
			"tool_name", toolName,
			"err", err.Error(),
		)
		res.Content = fmt.Sprintf("Tool call failed: %s", err.Error())
		return res
	}

	metricskey.StatsToolCallsSucceeded.IncrCounter(1, toolName)
	for _, cb := range cbs {
		cb.OnToolEnd(ctx, tool, toolArgs, out)
	}
	res.Content = out
	return res
}

func (r *Registry) call(ctx context.Context, tool ITool, toolArgs string) (string, error) {
	started := time.Now()
	defer metricskey.PerfToolCall.MeasureSince(started, tool.Name())

	// tools with a descriptor get their arguments checked before dispatch
	if dt, ok := tool.(IDescribedTool); ok {
		args, err := DecodeArgs(toolArgs)
		if err != nil {
			return "", errors.Mark(err, ErrToolArgument)
		}
		if err := dt.Descriptor().Validate(args); err != nil {
			return "", errors.Mark(err, ErrToolArgument)
		}
	}

	return tool.Call(ctx, toolArgs)
}

type toolDescription struct {
	Name        string `json:"Name" yaml:"Name"`
	Description string `json:"Description" yaml:"Description"`
}

type toolsDescription struct {
	Tools []toolDescription `json:"Tools" yaml:"Tools"`
}

// GetDescriptions renders a JSON summary of the tools, to be used in prompts.
func GetDescriptions(list ...ITool) string {
	var d toolsDescription
	for _, tool := range list {
		d.Tools = append(d.Tools, toolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
		})
	}
	return llmutils.BackticksJSON(llmutils.ToJSONIndent(d))
}
