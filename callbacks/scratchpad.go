package callbacks

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MichaelAnckaert/go-agents/agents"
	"github.com/MichaelAnckaert/go-agents/pkg/llms"
	"github.com/MichaelAnckaert/go-agents/pkg/llmutils"
	"github.com/MichaelAnckaert/go-agents/tools"
	"github.com/google/uuid"
)

var TimeNowFn = time.Now

type RunStats struct {
	RunID string

	Duration        time.Duration
	TotalMessages   uint32
	LLMBytesOut     uint64
	LLMBytesIn      uint64
	LLMInputTokens  uint64
	LLMOutputTokens uint64
	LLMTotalTokens  uint64
	AgentRuns       uint32
	AgentRunsDone   uint32
	AgentRunsFailed uint32
	LLMCalls        uint32
	ToolCalls       uint32
	ToolCallsDone   uint32
	ToolCallsFailed uint32
}

// Scratchpad is a callback handler that collects per-run stats and a
// timestamped transcript of the run's events. Start a run with StartRun and
// pass the returned context to Agent.Run, then collect the results with
// EndRun.
type Scratchpad struct {
	mode Mode
}

func NewScratchpad(mode Mode) *Scratchpad {
	return &Scratchpad{
		mode: mode,
	}
}

type runCtxKey struct{}

// StartRun returns a context that carries a new run transcript.
func (l *Scratchpad) StartRun(ctx context.Context) context.Context {
	r := &run{
		stats: RunStats{
			RunID: uuid.New().String(),
		},
		started: TimeNowFn(),
	}
	r.print("*** Run Started ***")
	return context.WithValue(ctx, runCtxKey{}, r)
}

// EndRun returns the stats and the transcript of the run carried by ctx.
func (l *Scratchpad) EndRun(ctx context.Context) (*RunStats, []byte) {
	run := l.getRun(ctx)
	if run == nil {
		return nil, nil
	}

	stats := run.stats
	stats.Duration = TimeNowFn().Sub(run.started)

	run.print(fmt.Sprintf("Agent runs: %d, Failed: %d",
		stats.AgentRuns,
		stats.AgentRunsFailed,
	))
	run.print(fmt.Sprintf("Tool calls: %d, Failed: %d",
		stats.ToolCalls,
		stats.ToolCallsFailed,
	))
	run.print(fmt.Sprintf("LLM calls: %d, Messages: %d, Bytes Out: %d, Bytes In: %d, Input Tokens: %d, Output Tokens: %d, Total Tokens: %d",
		stats.LLMCalls,
		stats.TotalMessages,
		stats.LLMBytesOut,
		stats.LLMBytesIn,
		stats.LLMInputTokens,
		stats.LLMOutputTokens,
		stats.LLMTotalTokens,
	))
	run.print(fmt.Sprintf("*** Run Ended. Duration: %s ***", stats.Duration))

	return &stats, run.bytes()
}

func (l *Scratchpad) getRun(ctx context.Context) *run {
	r, _ := ctx.Value(runCtxKey{}).(*run)
	return r
}

func (l *Scratchpad) OnAgentStart(ctx context.Context, agent *agents.Agent, input string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.AgentRuns, 1)
	run.print(agent.Name(), "*** Agent Start ***")
	run.print(agent.Name(), "Input:", input)
}

func (l *Scratchpad) OnAgentLLMCallStart(ctx context.Context, agent *agents.Agent, llm llms.Model, payload []llms.Message) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}

	atomic.AddUint64(&run.stats.LLMBytesOut, llmutils.CountMessagesContentSize(payload))
	atomic.AddUint32(&run.stats.LLMCalls, 1)
	count := uint32(len(payload))
	atomic.AddUint32(&run.stats.TotalMessages, count)

	run.print(agent.Name(), "*** LLM Call ***", fmt.Sprintf("%s model, %d messages", llm.GetName(), count))
	if l.mode == ModeVerbose {
		run.print(agent.Name(), printMessages(payload))
	}
}

func (l *Scratchpad) OnAgentLLMCallEnd(ctx context.Context, agent *agents.Agent, llm llms.Model, resp *llms.ContentResponse) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}

	tokensIn, tokensOut, tokensTotal := llmutils.CountTokens(resp)
	atomic.AddUint64(&run.stats.LLMInputTokens, uint64(tokensIn))
	atomic.AddUint64(&run.stats.LLMOutputTokens, uint64(tokensOut))
	atomic.AddUint64(&run.stats.LLMTotalTokens, uint64(tokensTotal))
	for _, choice := range resp.Choices {
		atomic.AddUint64(&run.stats.LLMBytesIn, uint64(len(choice.Content)))
	}

	run.print(agent.Name(), "*** LLM Call End ***", fmt.Sprintf("%s model, %d input tokens, %d output tokens, %d total tokens", llm.GetName(), tokensIn, tokensOut, tokensTotal))
}

func (l *Scratchpad) OnAgentEnd(ctx context.Context, agent *agents.Agent, input string, result *agents.Result) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.AgentRunsDone, 1)

	if l.mode == ModeVerbose {
		run.print(agent.Name(), "Answer:", result.Answer)
		run.print(agent.Name(), printMessages(result.Messages))
	}
	run.print(agent.Name(), fmt.Sprintf("*** Agent End. State: %s, iterations: %d ***", result.State, result.Iterations))
}

func (l *Scratchpad) OnAgentError(ctx context.Context, agent *agents.Agent, input string, err error) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.AgentRunsFailed, 1)
	run.print(agent.Name(), "*** Error ***", err.Error())
}

func (l *Scratchpad) OnToolStart(ctx context.Context, tool tools.ITool, input string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolCalls, 1)
	run.print(tool.Name(), "*** Tool Start ***")
	run.print(tool.Name(), "Input:", input)
}

func (l *Scratchpad) OnToolEnd(ctx context.Context, tool tools.ITool, input string, output string) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolCallsDone, 1)
	if l.mode == ModeVerbose {
		run.print(tool.Name(), "Output:", output)
	}
	run.print(tool.Name(), "*** Tool End ***")
}

func (l *Scratchpad) OnToolError(ctx context.Context, tool tools.ITool, input string, err error) {
	run := l.getRun(ctx)
	if run == nil {
		return
	}
	atomic.AddUint32(&run.stats.ToolCallsFailed, 1)
	run.print(tool.Name(), "*** Tool Error ***", err.Error())
}

func printMessages(messages []llms.Message) string {
	var buf strings.Builder
	buf.WriteString("Messages:\n")
	for idx, msg := range messages {
		fmt.Fprintf(&buf, "[%d] %s:\n", idx, msg.Role)
		textParts := 0
		toolParts := 0
		toolResponseParts := 0
		for _, part := range msg.Parts {
			switch typ := part.(type) {
			case llms.TextContent:
				textParts++
			case llms.ToolCall:
				toolParts++
				buf.WriteString("  - ")
				buf.WriteString(typ.String())
				buf.WriteString("\n")
			case llms.ToolCallResponse:
				toolResponseParts++
				buf.WriteString("  - ")
				buf.WriteString(typ.String())
				buf.WriteString("\n")
			}
		}

		fmt.Fprintf(&buf, "  - %d texts, %d tool calls, %d tool responses\n", textParts, toolParts, toolResponseParts)
	}
	return buf.String()
}

type run struct {
	w       bytes.Buffer
	started time.Time
	lock    sync.Mutex
	stats   RunStats
}

func (r *run) bytes() []byte {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.w.Bytes()
}

// print writes the entries to the run's output.
// The entries are written in the following format:
// timestamp runID entry entry\n
func (r *run) print(entries ...string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	now := TimeNowFn()
	ts := now.Format("2006-01-02 15:04:05")

	_, _ = r.w.WriteString(ts)
	_, _ = r.w.WriteString(" ")
	_, _ = r.w.WriteString(r.stats.RunID)
	_, _ = r.w.WriteString(" ")

	for i, entry := range entries {
		if i > 0 {
			_, _ = r.w.WriteString(" ")
		}
		_, _ = r.w.WriteString(entry)
	}
	_, _ = r.w.WriteString("\n")
}
