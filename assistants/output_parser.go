package assistants

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/effective-security/x/slices"
)

const (
	// FinalAnswerAction is the marker of the final answer
	FinalAnswerAction = "Final Answer:"
	// ObservationStopWord stops the model before it makes up an observation
	ObservationStopWord = "\nObservation:"

	// ExceptionTool is the tool name of a step that reports a parsing error
	ExceptionTool = "_Exception"

	ObservationPrefix = "Observation: "
	ThoughtPrefix     = "Thought: "
)

// Parsing error messages, sent back to the model as observation
const (
	MissingActionAfterThought     = "Invalid Format: Missing 'Action:' after 'Thought:'"
	MissingActionInputAfterAction = "Invalid Format: Missing 'Action Input:' after 'Action:'"
	FinalAnswerAndParsableAction  = "Parsing LLM output produced both a final answer and a parse-able action"
	InvalidOrIncompleteResponse   = "Invalid or incomplete response"
)

var (
	actionRegex      = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
	actionOnlyRegex  = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)`)
	actionInputRegex = regexp.MustCompile(`(?s)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
	reasoningRegex   = regexp.MustCompile(`(?s)<think>.*?</think>\s*`)
)

// AgentAction is the tool call requested by the model
type AgentAction struct {
	Tool      string
	ToolInput string
	// Log is the full model output of the step
	Log string
}

// AgentFinish is the final answer of the model
type AgentFinish struct {
	Output string
	Log    string
}

// AgentStep is an executed action with its observation
type AgentStep struct {
	Action      AgentAction
	Observation string
}

// ParseError is returned when the model output is not a valid ReAct step.
type ParseError struct {
	// Output is the model output
	Output string
	// Observation is the message sent back to the model
	Observation string
	// SendToLLM is true when Observation describes the format problem
	SendToLLM bool

	msg string
}

func (e *ParseError) Error() string {
	return e.msg
}

// ObservationText returns the observation for the model.
func (e *ParseError) ObservationText() string {
	if e.SendToLLM && e.Observation != "" {
		return e.Observation
	}
	return InvalidOrIncompleteResponse
}

// ParseOutput parses the model output into an action or a final answer,
// exactly one of the returned values is not nil when error is nil.
func ParseOutput(text string) (*AgentAction, *AgentFinish, error) {
	text = StripReasoning(text)
	includesAnswer := strings.Contains(text, FinalAnswerAction)
	if m := actionRegex.FindStringSubmatch(text); m != nil {
		if includesAnswer {
			return nil, nil, &ParseError{
				Output: text,
				msg:    fmt.Sprintf("%s: %s", FinalAnswerAndParsableAction, slices.StringUpto(text, 256)),
			}
		}
		return &AgentAction{
			Tool:      strings.TrimSpace(m[1]),
			ToolInput: cleanToolInput(m[2]),
			Log:       text,
		}, nil, nil
	}

	if includesAnswer {
		parts := strings.Split(text, FinalAnswerAction)
		return nil, &AgentFinish{
			Output: strings.TrimSpace(parts[len(parts)-1]),
			Log:    text,
		}, nil
	}

	perr := &ParseError{
		Output:    text,
		SendToLLM: true,
		msg:       fmt.Sprintf("Could not parse LLM output: `%s`", slices.StringUpto(text, 256)),
	}
	switch {
	case !actionOnlyRegex.MatchString(text):
		perr.Observation = MissingActionAfterThought
	case !actionInputRegex.MatchString(text):
		perr.Observation = MissingActionInputAfterAction
	default:
		perr.SendToLLM = false
	}
	return nil, nil, perr
}

// StripReasoning removes the <think> blocks emitted by reasoning models,
// like deepseek-r1, so the markers inside them are not parsed.
func StripReasoning(text string) string {
	if !strings.Contains(text, "<think>") {
		return text
	}
	return reasoningRegex.ReplaceAllString(text, "")
}

// cleanToolInput trims whitespace and quotes,
// and drops an observation the model made up when the server ignored the stop words.
func cleanToolInput(input string) string {
	if idx := strings.Index(input, ObservationStopWord); idx >= 0 {
		input = input[:idx]
	}
	return strings.Trim(strings.TrimSpace(input), `"`)
}

// FormatScratchpad renders the executed steps for the prompt
func FormatScratchpad(steps []AgentStep) string {
	var b strings.Builder
	for _, step := range steps {
		b.WriteString(step.Action.Log)
		b.WriteString("\n")
		b.WriteString(ObservationPrefix)
		b.WriteString(step.Observation)
		b.WriteString("\n")
		b.WriteString(ThoughtPrefix)
	}
	return b.String()
}
