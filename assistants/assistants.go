package assistants

import (
	"context"

	"github.com/effective-security/reactagent/pkg/llms"
	"github.com/effective-security/reactagent/tools"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/reactagent", "assistants")

// IAssistant is an assistant that answers a question.
type IAssistant interface {
	// Name returns the name of the Assistant.
	Name() string
	// Description returns the description of the Assistant.
	Description() string
	// Run answers the input question.
	Run(ctx context.Context, input string) (string, error)
}

// Callback receives the events of an assistant run.
type Callback interface {
	tools.Callback
	OnAssistantStart(ctx context.Context, agent IAssistant, input string)
	OnAssistantEnd(ctx context.Context, agent IAssistant, input string, output string)
	OnAssistantError(ctx context.Context, agent IAssistant, input string, err error)
	OnAssistantLLMCallStart(ctx context.Context, agent IAssistant, llm llms.Model, payload []llms.Message)
	OnAssistantLLMCallEnd(ctx context.Context, agent IAssistant, llm llms.Model, resp *llms.ContentResponse)
	OnAssistantLLMParseError(ctx context.Context, agent IAssistant, input string, response string, err error)
	OnToolNotFound(ctx context.Context, agent IAssistant, tool string)
}

// HasCallback is implemented by assistants with a callback handler.
type HasCallback interface {
	GetCallback() Callback
}
