package assistants

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/reactagent/chatmodel"
	"github.com/effective-security/reactagent/pkg/llms"
	"github.com/effective-security/reactagent/pkg/llmutils"
	"github.com/effective-security/reactagent/pkg/metricskey"
	"github.com/effective-security/reactagent/pkg/prompts"
	"github.com/effective-security/reactagent/tools"
	"github.com/effective-security/x/slices"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
)

// StoppedMessage is the output of a run stopped by the iteration limit
const StoppedMessage = "Agent stopped due to iteration limit or time limit."

// Result is the outcome of a run
type Result struct {
	Output string
	Steps  []AgentStep
	// Iterations is the number of LLM calls
	Iterations int
	// Stopped is true when the run hit the iteration limit
	Stopped bool
}

// Assistant is the ReAct assistant
type Assistant struct {
	llm      llms.Model
	registry *tools.Registry
	prompt   *prompts.PromptTemplate
	cfg      *Config
}

var (
	_ IAssistant  = (*Assistant)(nil)
	_ HasCallback = (*Assistant)(nil)
)

// NewAssistant returns the ReAct assistant that can call the tools in registry.
func NewAssistant(llm llms.Model, registry *tools.Registry, options ...Option) (*Assistant, error) {
	if llm == nil {
		return nil, errors.New("assistant: LLM is required")
	}
	if registry == nil {
		registry = tools.MustNewRegistry()
	}

	cfg := NewConfig(options...)
	cfg.MaxIterations = values.NumbersCoalesce(max(cfg.MaxIterations, 0), DefaultMaxIterations)

	prompt := cfg.Prompt
	if prompt == nil {
		prompt = NewReActPrompt()
	}
	vars := prompt.GetInputVariables()
	for _, required := range []string{InputQuestion, InputScratchpad} {
		if !containsString(vars, required) {
			return nil, errors.Newf("assistant: prompt must have %q input variable", required)
		}
	}

	return &Assistant{
		llm:      llm,
		registry: registry,
		prompt:   prompt,
		cfg:      cfg,
	}, nil
}

func (a *Assistant) Name() string {
	return a.cfg.Name
}

func (a *Assistant) Description() string {
	return a.cfg.Description
}

// GetCallback returns the callback handler
func (a *Assistant) GetCallback() Callback {
	return a.cfg.CallbackHandler
}

// Tools returns the registry of the assistant
func (a *Assistant) Tools() *tools.Registry {
	return a.registry
}

// Run answers the input question
func (a *Assistant) Run(ctx context.Context, input string) (string, error) {
	res, err := a.Execute(ctx, input)
	if err != nil {
		return "", err
	}
	return res.Output, nil
}

// Execute answers the input question and returns the executed steps
func (a *Assistant) Execute(ctx context.Context, input string) (*Result, error) {
	started := time.Now()
	defer metricskey.PerfAssistantCall.MeasureSince(started, a.Name())

	callback := a.cfg.CallbackHandler
	if callback != nil {
		callback.OnAssistantStart(ctx, a, input)
	}

	res, err := a.run(ctx, input)
	if err != nil {
		metricskey.StatsAssistantCallsFailed.IncrCounter(1, a.Name())
		if callback != nil {
			callback.OnAssistantError(ctx, a, input, err)
		}
		return nil, err
	}
	metricskey.StatsAssistantCallsSucceeded.IncrCounter(1, a.Name())
	if callback != nil {
		callback.OnAssistantEnd(ctx, a, input, res.Output)
	}
	return res, nil
}

func (a *Assistant) run(ctx context.Context, input string) (*Result, error) {
	assistantName := a.Name()
	modelName := a.llm.GetName()
	callback := a.cfg.CallbackHandler
	callOpts := a.cfg.GetCallOptions(a.llm.GetProviderType())
	list := a.registry.Tools()
	// IDs are for the logs only, the run does not require a chat context
	chatID, runID, _ := chatmodel.GetChatAndRunID(ctx)

	promptInputs := map[string]any{
		InputTools:     tools.GetDescriptions(list...),
		InputToolNames: tools.GetNames(list...),
		InputQuestion:  input,
	}

	res := &Result{}
	for res.Iterations < a.cfg.MaxIterations {
		if err := ctx.Err(); err != nil {
			return nil, errors.WithStack(err)
		}
		res.Iterations++
		metricskey.StatsAssistantIterations.IncrCounter(1, assistantName)

		promptInputs[InputScratchpad] = FormatScratchpad(res.Steps)
		messages, err := a.prompt.FormatMessages(promptInputs)
		if err != nil {
			return nil, errors.WithMessage(err, "failed to format prompt")
		}

		if callback != nil {
			callback.OnAssistantLLMCallStart(ctx, a, a.llm, messages)
		}
		metricskey.StatsLLMMessagesSent.IncrCounter(float64(len(messages)), assistantName, modelName)
		metricskey.StatsLLMBytesSent.IncrCounter(float64(llmutils.CountMessagesContentSize(messages)), assistantName, modelName)

		llmStarted := time.Now()
		resp, err := a.llm.GenerateContent(ctx, messages, callOpts...)
		metricskey.PerfLLMCall.MeasureSince(llmStarted, assistantName, modelName)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to generate content from LLM")
		}
		if callback != nil {
			callback.OnAssistantLLMCallEnd(ctx, a, a.llm, resp)
		}

		tokensIn, tokensOut, _ := llms.CountTokens(resp)
		metricskey.StatsLLMInputTokens.IncrCounter(float64(tokensIn), assistantName, modelName)
		metricskey.StatsLLMOutputTokens.IncrCounter(float64(tokensOut), assistantName, modelName)

		if len(resp.Choices) == 0 {
			return nil, errors.Newf("assistant %s: LLM returned empty response", assistantName)
		}
		output := resp.Choices[0].Content

		action, finish, err := ParseOutput(output)
		if err != nil {
			var perr *ParseError
			if !errors.As(err, &perr) {
				return nil, err
			}
			metricskey.StatsAssistantLLMParseErrors.IncrCounter(1, assistantName)
			if callback != nil {
				callback.OnAssistantLLMParseError(ctx, a, input, output, err)
			}
			if !a.cfg.HandleParsingErrors {
				return nil, errors.WithStack(perr)
			}
			logger.ContextKV(ctx, xlog.DEBUG,
				"assistant", assistantName,
				"status", "parse_error",
				"iteration", res.Iterations,
				"output", slices.StringUpto(output, 64),
			)
			res.Steps = append(res.Steps, AgentStep{
				Action:      AgentAction{Tool: ExceptionTool, ToolInput: perr.ObservationText(), Log: output},
				Observation: perr.ObservationText(),
			})
			continue
		}

		if finish != nil {
			res.Output = finish.Output
			logger.ContextKV(ctx, xlog.DEBUG,
				"assistant", assistantName,
				"status", "final_answer",
				"chat_id", chatID,
				"run_id", runID,
				"iterations", res.Iterations,
				"steps", len(res.Steps),
			)
			return res, nil
		}

		observation := a.callTool(ctx, action)
		res.Steps = append(res.Steps, AgentStep{
			Action:      *action,
			Observation: observation,
		})
	}

	metricskey.StatsAssistantIterationLimit.IncrCounter(1, assistantName)
	logger.ContextKV(ctx, xlog.WARNING,
		"assistant", assistantName,
		"status", "iteration_limit",
		"chat_id", chatID,
		"run_id", runID,
		"input", slices.StringUpto(input, 64),
		"iterations", res.Iterations,
	)
	res.Output = StoppedMessage
	res.Stopped = true
	return res, nil
}

// callTool executes the action, the errors are returned as observation
func (a *Assistant) callTool(ctx context.Context, action *AgentAction) string {
	assistantName := a.Name()
	callback := a.cfg.CallbackHandler

	tool, ok := a.registry.Get(action.Tool)
	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, action.Tool)
		logger.ContextKV(ctx, xlog.DEBUG,
			"assistant", assistantName,
			"status", "tool_not_found",
			"tool", action.Tool,
		)
		if callback != nil {
			callback.OnToolNotFound(ctx, a, action.Tool)
		}
		return fmt.Sprintf("%s is not a valid tool, try one of [%s].", action.Tool, a.registry.Names())
	}

	started := time.Now()
	defer metricskey.PerfToolCall.MeasureSince(started, tool.Name())

	if callback != nil {
		callback.OnToolStart(ctx, tool, assistantName, action.ToolInput)
	}
	output, err := tool.Call(ctx, action.ToolInput)
	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, tool.Name())
		if callback != nil {
			callback.OnToolError(ctx, tool, assistantName, action.ToolInput, err)
		}
		return "Tool call failed: " + err.Error()
	}
	if callback != nil {
		callback.OnToolEnd(ctx, tool, assistantName, action.ToolInput, output)
	}
	return output
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
