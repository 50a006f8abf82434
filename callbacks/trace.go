package callbacks

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/effective-security/reactagent/assistants"
	"github.com/effective-security/reactagent/chatmodel"
	"github.com/effective-security/reactagent/pkg/llms"
	"github.com/effective-security/reactagent/pkg/llmutils"
	"github.com/effective-security/reactagent/tools"
)

// ensure Trace implements assistants.Callback
var _ assistants.Callback = (*Trace)(nil)

// TimeNowFn is used for the trace timestamps
var TimeNowFn = time.Now

// RunStats are the counters of a run
type RunStats struct {
	ChatID string
	RunID  string

	Duration                time.Duration
	TotalMessages           uint32
	LLMBytesOut             uint64
	LLMInputTokens          uint64
	LLMOutputTokens         uint64
	AssistantCalls          uint32
	AssistantCallsSucceeded uint32
	AssistantCallsFailed    uint32
	AssistantLLMCalls       uint32
	ParseErrors             uint32
	ToolsCalls              uint32
	ToolsCallsSucceeded     uint32
	ToolsCallsFailed        uint32
	ToolNotFound            uint32
}

// Trace records the events of the runs, keyed by chat ID.
// Events for a chat without a started run are ignored.
type Trace struct {
	runs map[string]*run
	mode Mode
	lock sync.Mutex
}

func NewTrace(mode Mode) *Trace {
	return &Trace{
		runs: make(map[string]*run),
		mode: mode,
	}
}

// StartRun starts a run for the chat in the context
func (l *Trace) StartRun(ctx context.Context) {
	chatCtx := chatmodel.GetChatContext(ctx)
	if chatCtx == nil {
		return
	}

	r := &run{
		stats: RunStats{
			ChatID: chatCtx.GetChatID(),
			RunID:  chatCtx.RunID(),
		},
		chatCtx: chatCtx,
		started: TimeNowFn(),
	}

	l.lock.Lock()
	l.runs[chatCtx.GetChatID()] = r
	l.lock.Unlock()

	r.print("*** Run Started ***")
}

// EndRun ends the run for the chat in the context,
// and returns its stats and the trace text.
func (l *Trace) EndRun(ctx context.Context) (*RunStats, []byte) {
	r := l.getRun(ctx)
	if r == nil {
		return nil, nil
	}

	stats := r.stats
	stats.Duration = TimeNowFn().Sub(r.started)

	r.print(fmt.Sprintf("Assistant calls: %d, Failed: %d, Parse errors: %d",
		stats.AssistantCalls,
		stats.AssistantCallsFailed,
		stats.ParseErrors,
	))
	r.print(fmt.Sprintf("Tool calls: %d, Failed: %d, Not Found: %d",
		stats.ToolsCalls,
		stats.ToolsCallsFailed,
		stats.ToolNotFound,
	))
	r.print(fmt.Sprintf("LLM calls: %d, Messages: %d, Bytes Out: %d, Input Tokens: %d, Output Tokens: %d",
		stats.AssistantLLMCalls,
		stats.TotalMessages,
		stats.LLMBytesOut,
		stats.LLMInputTokens,
		stats.LLMOutputTokens,
	))
	r.print(fmt.Sprintf("*** Run Ended. Duration: %s ***", stats.Duration))

	l.lock.Lock()
	delete(l.runs, r.chatCtx.GetChatID())
	l.lock.Unlock()

	return &stats, r.w.Bytes()
}

func (l *Trace) getRun(ctx context.Context) *run {
	chatCtx := chatmodel.GetChatContext(ctx)
	if chatCtx == nil {
		return nil
	}

	l.lock.Lock()
	defer l.lock.Unlock()
	return l.runs[chatCtx.GetChatID()]
}

func (l *Trace) OnAssistantStart(ctx context.Context, assistant assistants.IAssistant, input string) {
	r := l.getRun(ctx)
	if r == nil {
		return
	}
	atomic.AddUint32(&r.stats.AssistantCalls, 1)
	r.print(assistant.Name(), "*** Assistant Start ***")
	r.print(assistant.Name(), "Input:", input)
}

func (l *Trace) OnAssistantEnd(ctx context.Context, assistant assistants.IAssistant, input string, output string) {
	r := l.getRun(ctx)
	if r == nil {
		return
	}
	atomic.AddUint32(&r.stats.AssistantCallsSucceeded, 1)
	if l.mode == ModeVerbose {
		r.print(assistant.Name(), "Output:", output)
	}
	r.print(assistant.Name(), "*** Assistant End ***")
}

func (l *Trace) OnAssistantError(ctx context.Context, assistant assistants.IAssistant, input string, err error) {
	r := l.getRun(ctx)
	if r == nil {
		return
	}
	atomic.AddUint32(&r.stats.AssistantCallsFailed, 1)
	r.print(assistant.Name(), "*** Error ***", err.Error())
}

func (l *Trace) OnAssistantLLMCallStart(ctx context.Context, agent assistants.IAssistant, llm llms.Model, payload []llms.Message) {
	r := l.getRun(ctx)
	if r == nil {
		return
	}

	atomic.AddUint64(&r.stats.LLMBytesOut, llmutils.CountMessagesContentSize(payload))
	atomic.AddUint32(&r.stats.AssistantLLMCalls, 1)
	count := uint32(len(payload))
	atomic.AddUint32(&r.stats.TotalMessages, count)

	r.print(agent.Name(), "*** LLM Call ***", fmt.Sprintf("%s model, %d messages", llm.GetName(), count))
}

func (l *Trace) OnAssistantLLMCallEnd(ctx context.Context, agent assistants.IAssistant, llm llms.Model, resp *llms.ContentResponse) {
	r := l.getRun(ctx)
	if r == nil {
		return
	}

	tokensIn, tokensOut, _ := llms.CountTokens(resp)
	atomic.AddUint64(&r.stats.LLMInputTokens, uint64(tokensIn))
	atomic.AddUint64(&r.stats.LLMOutputTokens, uint64(tokensOut))

	r.print(agent.Name(), "*** LLM Call End ***", fmt.Sprintf("%s model, %d input tokens, %d output tokens", llm.GetName(), tokensIn, tokensOut))
	if l.mode == ModeVerbose && len(resp.Choices) > 0 {
		r.print(agent.Name(), "Response:", resp.Choices[0].Content)
	}
}

func (l *Trace) OnAssistantLLMParseError(ctx context.Context, assistant assistants.IAssistant, input string, response string, err error) {
	r := l.getRun(ctx)
	if r == nil {
		return
	}
	atomic.AddUint32(&r.stats.ParseErrors, 1)
	r.print(assistant.Name(), "*** LLM Parse Error ***", err.Error())
}

func (l *Trace) OnToolStart(ctx context.Context, tool tools.ITool, assistantName, input string) {
	r := l.getRun(ctx)
	if r == nil {
		return
	}
	atomic.AddUint32(&r.stats.ToolsCalls, 1)
	r.print(assistantName, tool.Name(), "*** Tool Start ***")
	r.print(assistantName, tool.Name(), "Input:", input)
}

func (l *Trace) OnToolEnd(ctx context.Context, tool tools.ITool, assistantName, input string, output string) {
	r := l.getRun(ctx)
	if r == nil {
		return
	}
	atomic.AddUint32(&r.stats.ToolsCallsSucceeded, 1)
	if l.mode == ModeVerbose {
		r.print(assistantName, tool.Name(), "Output:", output)
	}
	r.print(assistantName, tool.Name(), "*** Tool End ***")
}

func (l *Trace) OnToolError(ctx context.Context, tool tools.ITool, assistantName, input string, err error) {
	r := l.getRun(ctx)
	if r == nil {
		return
	}
	atomic.AddUint32(&r.stats.ToolsCallsFailed, 1)
	r.print(assistantName, tool.Name(), "*** Tool Error ***", err.Error())
}

func (l *Trace) OnToolNotFound(ctx context.Context, agent assistants.IAssistant, tool string) {
	r := l.getRun(ctx)
	if r == nil {
		return
	}
	atomic.AddUint32(&r.stats.ToolNotFound, 1)
	r.print(agent.Name(), "*** Tool Not Found ***", tool)
}

type run struct {
	chatCtx chatmodel.ChatContext
	w       bytes.Buffer
	started time.Time
	lock    sync.Mutex
	stats   RunStats
}

// print writes the entries to the run's output in the format:
// [timestamp chatID.runID] entry entry\n
func (r *run) print(entries ...string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	ts := TimeNowFn().Format("2006-01-02 15:04:05")

	_, _ = r.w.WriteString(ts)
	_, _ = r.w.WriteString(" ")
	_, _ = r.w.WriteString(r.stats.ChatID)
	_, _ = r.w.WriteString(".")
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
