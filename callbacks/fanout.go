package callbacks

import (
	"context"

	"github.com/effective-security/reactagent/assistants"
	"github.com/effective-security/reactagent/pkg/llms"
	"github.com/effective-security/reactagent/tools"
)

// Fanout forwards every event to each of the callbacks, in order
type Fanout struct {
	callbacks []assistants.Callback
}

// NewFanout returns Fanout over the callbacks
func NewFanout(callbacks ...assistants.Callback) *Fanout {
	return &Fanout{callbacks: callbacks}
}

// Add appends a callback
func (f *Fanout) Add(callback assistants.Callback) {
	f.callbacks = append(f.callbacks, callback)
}

func (f *Fanout) each(fn func(assistants.Callback)) {
	for _, cb := range f.callbacks {
		fn(cb)
	}
}

func (f *Fanout) OnAssistantStart(ctx context.Context, a assistants.IAssistant, input string) {
	f.each(func(cb assistants.Callback) { cb.OnAssistantStart(ctx, a, input) })
}

func (f *Fanout) OnAssistantEnd(ctx context.Context, a assistants.IAssistant, input string, output string) {
	f.each(func(cb assistants.Callback) { cb.OnAssistantEnd(ctx, a, input, output) })
}

func (f *Fanout) OnAssistantError(ctx context.Context, a assistants.IAssistant, input string, err error) {
	f.each(func(cb assistants.Callback) { cb.OnAssistantError(ctx, a, input, err) })
}

func (f *Fanout) OnAssistantLLMParseError(ctx context.Context, a assistants.IAssistant, input string, response string, err error) {
	f.each(func(cb assistants.Callback) { cb.OnAssistantLLMParseError(ctx, a, input, response, err) })
}

func (f *Fanout) OnAssistantLLMCallStart(ctx context.Context, a assistants.IAssistant, llm llms.Model, payload []llms.Message) {
	f.each(func(cb assistants.Callback) { cb.OnAssistantLLMCallStart(ctx, a, llm, payload) })
}

func (f *Fanout) OnAssistantLLMCallEnd(ctx context.Context, a assistants.IAssistant, llm llms.Model, resp *llms.ContentResponse) {
	f.each(func(cb assistants.Callback) { cb.OnAssistantLLMCallEnd(ctx, a, llm, resp) })
}

func (f *Fanout) OnToolNotFound(ctx context.Context, a assistants.IAssistant, tool string) {
	f.each(func(cb assistants.Callback) { cb.OnToolNotFound(ctx, a, tool) })
}

func (f *Fanout) OnToolStart(ctx context.Context, tool tools.ITool, assistantName, input string) {
	f.each(func(cb assistants.Callback) { cb.OnToolStart(ctx, tool, assistantName, input) })
}

func (f *Fanout) OnToolEnd(ctx context.Context, tool tools.ITool, assistantName, input string, output string) {
	f.each(func(cb assistants.Callback) { cb.OnToolEnd(ctx, tool, assistantName, input, output) })
}

func (f *Fanout) OnToolError(ctx context.Context, tool tools.ITool, assistantName, input string, err error) {
	f.each(func(cb assistants.Callback) { cb.OnToolError(ctx, tool, assistantName, input, err) })
}

// Noop ignores all events
type Noop struct{}

// NewNoop returns Noop
func NewNoop() *Noop {
	return &Noop{}
}

func (*Noop) OnAssistantStart(context.Context, assistants.IAssistant, string) {}
func (*Noop) OnAssistantEnd(context.Context, assistants.IAssistant, string, string) {}
func (*Noop) OnAssistantError(context.Context, assistants.IAssistant, string, error) {}
func (*Noop) OnAssistantLLMParseError(context.Context, assistants.IAssistant, string, string, error) {
}
func (*Noop) OnAssistantLLMCallStart(context.Context, assistants.IAssistant, llms.Model, []llms.Message) {
}
func (*Noop) OnAssistantLLMCallEnd(context.Context, assistants.IAssistant, llms.Model, *llms.ContentResponse) {
}
func (*Noop) OnToolNotFound(context.Context, assistants.IAssistant, string) {}
func (*Noop) OnToolStart(context.Context, tools.ITool, string, string) {}
func (*Noop) OnToolEnd(context.Context, tools.ITool, string, string, string) {}
func (*Noop) OnToolError(context.Context, tools.ITool, string, string, error) {}
