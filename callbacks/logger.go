package callbacks

import (
	"context"

	"github.com/effective-security/reactagent/assistants"
	"github.com/effective-security/reactagent/pkg/llms"
	"github.com/effective-security/reactagent/tools"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/xlog"
)

// maxLogged limits the logged inputs and outputs
const maxLogged = 256

// PackageLogger writes the events as key-value records to the logger
type PackageLogger struct {
	logger *xlog.PackageLogger
}

// NewPackageLogger returns PackageLogger
func NewPackageLogger(logger *xlog.PackageLogger) *PackageLogger {
	return &PackageLogger{logger: logger}
}

func (l *PackageLogger) debug(ctx context.Context, event string, kv ...any) {
	l.logger.ContextKV(ctx, xlog.DEBUG, append([]any{"event", event}, kv...)...)
}

func (l *PackageLogger) logError(ctx context.Context, event string, kv ...any) {
	l.logger.ContextKV(ctx, xlog.ERROR, append([]any{"event", event}, kv...)...)
}

func (l *PackageLogger) OnAssistantStart(ctx context.Context, a assistants.IAssistant, input string) {
	l.debug(ctx, "assistant_start", "assistant", a.Name(), "input", slices.StringUpto(input, maxLogged))
}

func (l *PackageLogger) OnAssistantEnd(ctx context.Context, a assistants.IAssistant, _ string, output string) {
	l.debug(ctx, "assistant_end", "assistant", a.Name(), "result", slices.StringUpto(output, maxLogged))
}

func (l *PackageLogger) OnAssistantError(ctx context.Context, a assistants.IAssistant, _ string, err error) {
	l.logError(ctx, "assistant_error", "assistant", a.Name(), "err", err.Error())
}

func (l *PackageLogger) OnAssistantLLMParseError(ctx context.Context, a assistants.IAssistant, _ string, response string, err error) {
	l.debug(ctx, "llm_parse_error", "assistant", a.Name(), "err", err.Error(), "response", slices.StringUpto(response, maxLogged))
}

func (l *PackageLogger) OnAssistantLLMCallStart(ctx context.Context, a assistants.IAssistant, llm llms.Model, payload []llms.Message) {
	l.debug(ctx, "llm_call_start", "assistant", a.Name(), "model", llm.GetName(), "messages", len(payload))
}

func (l *PackageLogger) OnAssistantLLMCallEnd(ctx context.Context, a assistants.IAssistant, llm llms.Model, resp *llms.ContentResponse) {
	in, out, _ := llms.CountTokens(resp)
	l.debug(ctx, "llm_call_end",
		"assistant", a.Name(),
		"model", llm.GetName(),
		"choices", len(resp.Choices),
		"input_tokens", in,
		"output_tokens", out,
	)
}

func (l *PackageLogger) OnToolNotFound(ctx context.Context, a assistants.IAssistant, tool string) {
	l.debug(ctx, "tool_not_found", "assistant", a.Name(), "tool", tool)
}

func (l *PackageLogger) OnToolStart(ctx context.Context, tool tools.ITool, assistantName, input string) {
	l.debug(ctx, "tool_start", "assistant", assistantName, "tool", tool.Name(), "input", input)
}

func (l *PackageLogger) OnToolEnd(ctx context.Context, tool tools.ITool, assistantName, _ string, output string) {
	l.debug(ctx, "tool_end", "assistant", assistantName, "tool", tool.Name(), "output", slices.StringUpto(output, maxLogged))
}

func (l *PackageLogger) OnToolError(ctx context.Context, tool tools.ITool, assistantName, _ string, err error) {
	l.logError(ctx, "tool_error", "assistant", assistantName, "tool", tool.Name(), "err", err.Error())
}
