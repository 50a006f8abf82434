package tools

import (
	"context"
	"strings"
)

//go:generate mockgen -source=tools.go -destination=../mocks/mocktools/tools_mock.gen.go  -package mocktools

// ITool is a tool for the llm agent to interact with different applications.
type ITool interface {
	// Name returns the name of the Tool.
	Name() string
	// Description returns the description of the tool, to be used in the prompt.
	// Should not exceed LLM model limit.
	Description() string
	// Parameters returns the parameters definition of the function, to be used in the prompt.
	Parameters() any

	// Call executes the tool with the given input and returns the result.
	Call(context.Context, string) (string, error)
}

// Callback receives tool events of an assistant.
type Callback interface {
	OnToolStart(ctx context.Context, tool ITool, assistantName, input string)
	OnToolEnd(ctx context.Context, tool ITool, assistantName, input string, output string)
	OnToolError(ctx context.Context, tool ITool, assistantName, input string, err error)
}

// Tool is a tool with typed request and response.
type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// GetDescriptions returns tool descriptions as `name: description` lines.
func GetDescriptions(list ...ITool) string {
	lines := make([]string, 0, len(list))
	for _, tool := range list {
		lines = append(lines, tool.Name()+": "+tool.Description())
	}
	return strings.Join(lines, "\n")
}

// GetNames returns comma-separated tool names.
func GetNames(list ...ITool) string {
	names := make([]string, 0, len(list))
	for _, tool := range list {
		names = append(names, tool.Name())
	}
	return strings.Join(names, ", ")
}
