package assistants_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/effective-security/reactagent/assistants"
	"github.com/effective-security/reactagent/callbacks"
	"github.com/effective-security/reactagent/mocks/mockllms"
	"github.com/effective-security/reactagent/mocks/mocktools"
	"github.com/effective-security/reactagent/pkg/llms"
	"github.com/effective-security/reactagent/pkg/prompts"
	"github.com/effective-security/reactagent/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func textResponse(content string) *llms.ContentResponse {
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				Content: content,
				GenerationInfo: map[string]any{
					llms.InfoPromptTokens:     10,
					llms.InfoCompletionTokens: 5,
				},
			},
		},
	}
}

func newMockLLM(ctrl *gomock.Controller) *mockllms.MockModel {
	m := mockllms.NewMockModel(ctrl)
	m.EXPECT().GetName().Return("llama3.2").AnyTimes()
	m.EXPECT().GetProviderType().Return(llms.ProviderOllama).AnyTimes()
	return m
}

func newMockTool(ctrl *gomock.Controller, name string) *mocktools.MockITool {
	m := mocktools.NewMockITool(ctrl)
	m.EXPECT().Name().Return(name).AnyTimes()
	m.EXPECT().Description().Return("Search for universities in a specific country.").AnyTimes()
	m.EXPECT().Parameters().Return(map[string]any{}).AnyTimes()
	return m
}

// scriptedLLM returns the responses in order and records the prompts
type scriptedLLM struct {
	lock      sync.Mutex
	responses []string
	prompts   []string
	options   []*llms.CallOptions
}

func (s *scriptedLLM) generate(_ context.Context, msgs []llms.Message, opts ...llms.CallOption) (*llms.ContentResponse, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.prompts = append(s.prompts, msgs[0].GetContent())
	s.options = append(s.options, llms.NewCallOptions(opts...))
	idx := min(len(s.prompts)-1, len(s.responses)-1)
	return textResponse(s.responses[idx]), nil
}

func TestNewAssistant(t *testing.T) {
	ctrl := gomock.NewController(t)

	_, err := assistants.NewAssistant(nil, nil)
	assert.EqualError(t, err, "assistant: LLM is required")

	llm := newMockLLM(ctrl)
	a, err := assistants.NewAssistant(llm, nil,
		assistants.WithName("uni"),
		assistants.WithDescription("finds universities"),
	)
	require.NoError(t, err)
	assert.Equal(t, "uni", a.Name())
	assert.Equal(t, "finds universities", a.Description())
	assert.Nil(t, a.GetCallback())
	assert.Zero(t, a.Tools().Len())

	bad := prompts.MustNewPromptTemplate(`{{.input}}`, []string{"input"})
	_, err = assistants.NewAssistant(llm, nil, assistants.WithPrompt(bad))
	assert.EqualError(t, err, `assistant: prompt must have "agent_scratchpad" input variable`)
}

func TestRun_FinalAnswer(t *testing.T) {
	ctrl := gomock.NewController(t)
	llm := newMockLLM(ctrl)
	tool := newMockTool(ctrl, "search_universities")

	script := &scriptedLLM{responses: []string{" I know this.\nFinal Answer: Hello there!"}}
	llm.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(script.generate).Times(1)

	a, err := assistants.NewAssistant(llm, tools.MustNewRegistry(tool),
		assistants.WithTemperature(0.1),
		assistants.WithModel("llama3.2"),
		assistants.WithMaxTokens(256),
		assistants.WithSeed(7),
		assistants.WithStopWords([]string{"\nQuestion:"}),
	)
	require.NoError(t, err)

	out, err := a.Run(context.Background(), "Say hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello there!", out)

	require.Len(t, script.prompts, 1)
	prompt := script.prompts[0]
	assert.Contains(t, prompt, "search_universities: Search for universities in a specific country.")
	assert.Contains(t, prompt, "should be one of [search_universities]")
	assert.True(t, strings.HasSuffix(prompt, "Question: Say hello\nThought:"), prompt)

	opts := script.options[0]
	assert.Equal(t, []string{"\nObservation:", "\nQuestion:"}, opts.StopWords)
	assert.Equal(t, 0.1, opts.Temperature)
	assert.Equal(t, "llama3.2", opts.Model)
	assert.Equal(t, 256, opts.MaxTokens)
	assert.Equal(t, 7, opts.Seed)
}

func TestRun_ToolCall(t *testing.T) {
	ctrl := gomock.NewController(t)
	llm := newMockLLM(ctrl)
	tool := newMockTool(ctrl, "search_universities")
	tool.EXPECT().Call(gomock.Any(), "Canada").Return("Found 1 universities in Canada. Showing top 1:", nil).Times(1)

	first := " I should search.\nAction: search_universities\nAction Input: \"Canada\""
	script := &scriptedLLM{responses: []string{
		first,
		" I now know the final answer\nFinal Answer: McGill University",
	}}
	llm.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(script.generate).Times(2)

	a, err := assistants.NewAssistant(llm, tools.MustNewRegistry(tool))
	require.NoError(t, err)

	res, err := a.Execute(context.Background(), "Name a university in Canada")
	require.NoError(t, err)
	assert.Equal(t, "McGill University", res.Output)
	assert.Equal(t, 2, res.Iterations)
	assert.False(t, res.Stopped)
	require.Len(t, res.Steps, 1)
	assert.Equal(t, "search_universities", res.Steps[0].Action.Tool)
	assert.Equal(t, "Canada", res.Steps[0].Action.ToolInput)

	require.Len(t, script.prompts, 2)
	assert.True(t, strings.HasSuffix(script.prompts[1],
		"Thought:"+first+"\nObservation: Found 1 universities in Canada. Showing top 1:\nThought: "), script.prompts[1])
}

func TestRun_ProviderWithoutStopWords(t *testing.T) {
	ctrl := gomock.NewController(t)
	llm := mockllms.NewMockModel(ctrl)
	llm.EXPECT().GetName().Return("custom").AnyTimes()
	llm.EXPECT().GetProviderType().Return(llms.ProviderType("CUSTOM")).AnyTimes()

	tool := newMockTool(ctrl, "search_universities")
	tool.EXPECT().Call(gomock.Any(), "Canada").Return("Found 1 universities in Canada. Showing top 1:", nil).Times(1)

	script := &scriptedLLM{responses: []string{
		" I should search.\nAction: search_universities\nAction Input: Canada\nObservation: made up",
		"Final Answer: McGill University",
	}}
	llm.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(script.generate).Times(2)

	a, err := assistants.NewAssistant(llm, tools.MustNewRegistry(tool),
		assistants.WithStopWords([]string{"\nQuestion:"}),
		assistants.WithTemperature(0.1),
	)
	require.NoError(t, err)

	res, err := a.Execute(context.Background(), "Name a university in Canada")
	require.NoError(t, err)
	assert.Equal(t, "McGill University", res.Output)
	require.Len(t, res.Steps, 1)
	assert.Equal(t, "Canada", res.Steps[0].Action.ToolInput)

	require.Len(t, script.options, 2)
	assert.Empty(t, script.options[0].StopWords)
	assert.Equal(t, 0.1, script.options[0].Temperature)
}

// toolEvents forwards the tool events to the mock
type toolEvents struct {
	*callbacks.Noop
	mock *mocktools.MockCallback
}

func (c *toolEvents) OnToolStart(ctx context.Context, tool tools.ITool, assistantName, input string) {
	c.mock.OnToolStart(ctx, tool, assistantName, input)
}

func (c *toolEvents) OnToolEnd(ctx context.Context, tool tools.ITool, assistantName, input string, output string) {
	c.mock.OnToolEnd(ctx, tool, assistantName, input, output)
}

func (c *toolEvents) OnToolError(ctx context.Context, tool tools.ITool, assistantName, input string, err error) {
	c.mock.OnToolError(ctx, tool, assistantName, input, err)
}

func TestRun_ToolCallbacks(t *testing.T) {
	ctrl := gomock.NewController(t)
	llm := newMockLLM(ctrl)
	search := newMockTool(ctrl, "search_universities")
	search.EXPECT().Call(gomock.Any(), "Peru").Return("No universities found for country: Peru", nil).Times(1)
	greet := newMockTool(ctrl, "greeting")
	greet.EXPECT().Call(gomock.Any(), "Ada").Return("", assert.AnError).Times(1)

	events := mocktools.NewMockCallback(ctrl)
	gomock.InOrder(
		events.EXPECT().OnToolStart(gomock.Any(), search, "react", "Peru"),
		events.EXPECT().OnToolEnd(gomock.Any(), search, "react", "Peru", "No universities found for country: Peru"),
		events.EXPECT().OnToolStart(gomock.Any(), greet, "react", "Ada"),
		events.EXPECT().OnToolError(gomock.Any(), greet, "react", "Ada", assert.AnError),
	)

	script := &scriptedLLM{responses: []string{
		"Action: search_universities\nAction Input: Peru",
		"Action: greeting\nAction Input: Ada",
		"Final Answer: done",
	}}
	llm.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(script.generate).Times(3)

	a, err := assistants.NewAssistant(llm, tools.MustNewRegistry(search, greet),
		assistants.WithCallback(&toolEvents{Noop: callbacks.NewNoop(), mock: events}),
	)
	require.NoError(t, err)

	out, err := a.Run(context.Background(), "Universities in Peru?")
	require.NoError(t, err)
	assert.Equal(t, "done", out)
}

func TestRun_ToolNotFoundAndErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	llm := newMockLLM(ctrl)
	tool := newMockTool(ctrl, "search_universities")
	greet := newMockTool(ctrl, "greeting")
	greet.EXPECT().Call(gomock.Any(), "Ada").Return("", assert.AnError).Times(1)

	script := &scriptedLLM{responses: []string{
		"Action: weather\nAction Input: Paris",
		"Action: greeting\nAction Input: Ada",
		"Final Answer: done",
	}}
	llm.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(script.generate).Times(3)

	a, err := assistants.NewAssistant(llm, tools.MustNewRegistry(tool, greet))
	require.NoError(t, err)

	res, err := a.Execute(context.Background(), "weather?")
	require.NoError(t, err)
	assert.Equal(t, "done", res.Output)
	require.Len(t, res.Steps, 2)
	assert.Equal(t, "weather is not a valid tool, try one of [search_universities, greeting].", res.Steps[0].Observation)
	assert.Equal(t, "Tool call failed: "+assert.AnError.Error(), res.Steps[1].Observation)
}

func TestRun_ParsingErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	llm := newMockLLM(ctrl)

	script := &scriptedLLM{responses: []string{
		"I am not following the format",
		"Final Answer: ok",
	}}
	llm.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(script.generate).Times(2)

	a, err := assistants.NewAssistant(llm, nil)
	require.NoError(t, err)

	res, err := a.Execute(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Output)
	require.Len(t, res.Steps, 1)
	assert.Equal(t, assistants.ExceptionTool, res.Steps[0].Action.Tool)
	assert.Equal(t, assistants.MissingActionAfterThought, res.Steps[0].Observation)
	assert.Contains(t, script.prompts[1], "I am not following the format\nObservation: "+assistants.MissingActionAfterThought+"\nThought: ")

	t.Run("not_handled", func(t *testing.T) {
		llm := newMockLLM(ctrl)
		llm.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(textResponse("Action: greeting"), nil).Times(1)

		a, err := assistants.NewAssistant(llm, nil, assistants.WithHandleParsingErrors(false))
		require.NoError(t, err)

		_, err = a.Run(context.Background(), "question")
		var perr *assistants.ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, assistants.MissingActionInputAfterAction, perr.Observation)
	})
}

func TestRun_IterationLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	llm := newMockLLM(ctrl)
	tool := newMockTool(ctrl, "greeting")
	tool.EXPECT().Call(gomock.Any(), "Ada").Return("Hello, Ada! Nice to meet you.", nil).Times(3)

	llm.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(textResponse("Action: greeting\nAction Input: Ada"), nil).Times(3)

	a, err := assistants.NewAssistant(llm, tools.MustNewRegistry(tool), assistants.WithMaxIterations(3))
	require.NoError(t, err)

	res, err := a.Execute(context.Background(), "greet Ada forever")
	require.NoError(t, err)
	assert.Equal(t, assistants.StoppedMessage, res.Output)
	assert.Equal(t, "Agent stopped due to iteration limit or time limit.", res.Output)
	assert.True(t, res.Stopped)
	assert.Equal(t, 3, res.Iterations)
	assert.Len(t, res.Steps, 3)
}

func TestRun_DefaultIterationLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	llm := newMockLLM(ctrl)
	llm.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(textResponse("no format"), nil).Times(assistants.DefaultMaxIterations)

	a, err := assistants.NewAssistant(llm, nil, assistants.WithMaxIterations(-1))
	require.NoError(t, err)

	out, err := a.Run(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, assistants.StoppedMessage, out)
}

func TestRun_LLMErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	ctx := context.Background()

	llm := newMockLLM(ctrl)
	llm.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, assert.AnError).Times(1)
	a, err := assistants.NewAssistant(llm, nil)
	require.NoError(t, err)
	_, err = a.Run(ctx, "question")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failed to generate content from LLM")

	llm = newMockLLM(ctrl)
	llm.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).Return(&llms.ContentResponse{}, nil).Times(1)
	a, err = assistants.NewAssistant(llm, nil, assistants.WithName("empty"))
	require.NoError(t, err)
	_, err = a.Run(ctx, "question")
	assert.EqualError(t, err, "assistant empty: LLM returned empty response")

	llm = newMockLLM(ctrl)
	a, err = assistants.NewAssistant(llm, nil)
	require.NoError(t, err)
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = a.Run(cctx, "question")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_UniversityPrompt(t *testing.T) {
	ctrl := gomock.NewController(t)
	llm := newMockLLM(ctrl)
	tool := newMockTool(ctrl, "search_universities")

	script := &scriptedLLM{responses: []string{"<think>\nEasy one.\n</think>\nFinal Answer: - McGill University"}}
	llm.EXPECT().GenerateContent(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(script.generate).Times(1)

	a, err := assistants.NewAssistant(llm, tools.MustNewRegistry(tool), assistants.WithPrompt(assistants.NewUniversityPrompt()))
	require.NoError(t, err)

	out, err := a.Run(context.Background(), "Find the best universities in Canada.")
	require.NoError(t, err)
	assert.Equal(t, "- McGill University", out)

	require.Len(t, script.prompts, 1)
	prompt := script.prompts[0]
	assert.True(t, strings.HasPrefix(prompt, "You are an assistant that helps the user find the best universities"), prompt)
	assert.Contains(t, prompt, "search_universities: Search for universities in a specific country.")
	assert.Contains(t, prompt, "should be one of [search_universities]")
	assert.True(t, strings.HasSuffix(prompt, "Question: Find the best universities in Canada.\nThought:"), prompt)
}
