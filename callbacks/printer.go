package callbacks

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/effective-security/reactagent/assistants"
	"github.com/effective-security/reactagent/pkg/llms"
	"github.com/effective-security/reactagent/pkg/llmutils"
	"github.com/effective-security/reactagent/tools"
)

// Printer writes a line per event to Out
type Printer struct {
	Out  io.Writer
	Mode Mode

	lock sync.Mutex
}

// NewPrinter returns Printer
func NewPrinter(out io.Writer, mode Mode) *Printer {
	return &Printer{Out: out, Mode: mode}
}

// print writes the event line, and the details in verbose mode
func (p *Printer) print(event string, details ...string) {
	p.lock.Lock()
	defer p.lock.Unlock()

	_, _ = io.WriteString(p.Out, event+"\n")
	if p.Mode != ModeVerbose {
		return
	}
	for _, d := range details {
		if d != "" {
			_, _ = io.WriteString(p.Out, d+"\n")
		}
	}
}

func (p *Printer) OnAssistantStart(_ context.Context, a assistants.IAssistant, input string) {
	p.print(fmt.Sprintf("Assistant Start: %s\nInput: %s", a.Name(), input))
}

func (p *Printer) OnAssistantEnd(_ context.Context, a assistants.IAssistant, _ string, output string) {
	p.print("Assistant End: "+a.Name(), output)
}

func (p *Printer) OnAssistantError(_ context.Context, a assistants.IAssistant, _ string, err error) {
	p.print(fmt.Sprintf("Assistant Error: %s: %v", a.Name(), err))
}

func (p *Printer) OnAssistantLLMParseError(_ context.Context, a assistants.IAssistant, _ string, response string, err error) {
	p.print(fmt.Sprintf("Assistant LLM Parse Error: %s: %v\nResponse: %s", a.Name(), err, response))
}

func (p *Printer) OnAssistantLLMCallStart(_ context.Context, a assistants.IAssistant, llm llms.Model, payload []llms.Message) {
	var prompt strings.Builder
	llmutils.PrintMessages(&prompt, payload)
	p.print(fmt.Sprintf("Assistant LLM Call: %s: %s model, %d messages", a.Name(), llm.GetName(), len(payload)),
		strings.TrimSuffix(prompt.String(), "\n"))
}

func (p *Printer) OnAssistantLLMCallEnd(_ context.Context, a assistants.IAssistant, llm llms.Model, resp *llms.ContentResponse) {
	var contents []string
	for _, choice := range resp.Choices {
		contents = append(contents, choice.Content)
	}
	p.print(fmt.Sprintf("Assistant LLM Call End: %s: %s model, %d choices", a.Name(), llm.GetName(), len(resp.Choices)), contents...)
}

func (p *Printer) OnToolNotFound(_ context.Context, _ assistants.IAssistant, tool string) {
	p.print("Tool Not Found: " + tool)
}

func (p *Printer) OnToolStart(_ context.Context, tool tools.ITool, assistantName, input string) {
	p.print(fmt.Sprintf("Tool Start: %s (%s)\nInput: %s", tool.Name(), assistantName, input))
}

func (p *Printer) OnToolEnd(_ context.Context, tool tools.ITool, assistantName, _ string, output string) {
	p.print(fmt.Sprintf("Tool End: %s (%s)", tool.Name(), assistantName), "Output: "+output)
}

func (p *Printer) OnToolError(_ context.Context, tool tools.ITool, assistantName, _ string, err error) {
	p.print(fmt.Sprintf("Tool Error: %s (%s): %v", tool.Name(), assistantName, err))
}
