package assistants_test

import (
	"testing"

	"github.com/effective-security/reactagent/assistants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOutput_Action(t *testing.T) {
	tcases := []struct {
		text  string
		tool  string
		input string
	}{
		{
			text:  "Thought: I need to search\nAction: search_universities\nAction Input: Canada",
			tool:  "search_universities",
			input: "Canada",
		},
		{
			text:  "Action: search_universities\nAction Input: \"United States\"  ",
			tool:  "search_universities",
			input: "United States",
		},
		{
			text:  "Thought: greet\nAction 1:  greeting \nAction 1 Input 1: Ada\n",
			tool:  "greeting",
			input: "Ada",
		},
		{
			// server ignored the stop words
			text:  "Action: search_universities\nAction Input: Japan\nObservation: Found 3 universities",
			tool:  "search_universities",
			input: "Japan",
		},
		{
			text:  "Action: search_universities\nAction Input: {\"country\": \"Peru\"}",
			tool:  "search_universities",
			input: `{"country": "Peru"}`,
		},
	}
	for _, tc := range tcases {
		action, finish, err := assistants.ParseOutput(tc.text)
		require.NoError(t, err, tc.text)
		assert.Nil(t, finish)
		require.NotNil(t, action)
		assert.Equal(t, tc.tool, action.Tool)
		assert.Equal(t, tc.input, action.ToolInput)
		assert.Equal(t, tc.text, action.Log)
	}
}

func TestParseOutput_Finish(t *testing.T) {
	text := "Thought: I now know the final answer\nFinal Answer:  McGill University is in Canada.\n"
	action, finish, err := assistants.ParseOutput(text)
	require.NoError(t, err)
	assert.Nil(t, action)
	require.NotNil(t, finish)
	assert.Equal(t, "McGill University is in Canada.", finish.Output)
	assert.Equal(t, text, finish.Log)

	// the last answer wins
	_, finish, err = assistants.ParseOutput("Final Answer: one\nFinal Answer: two")
	require.NoError(t, err)
	assert.Equal(t, "two", finish.Output)
}

func TestParseOutput_Errors(t *testing.T) {
	tcases := []struct {
		text        string
		observation string
		sendToLLM   bool
		errPrefix   string
	}{
		{
			text:        "I think I should look it up",
			observation: assistants.MissingActionAfterThought,
			sendToLLM:   true,
			errPrefix:   "Could not parse LLM output: `I think",
		},
		{
			text:        "Thought: search it\nAction: search_universities",
			observation: assistants.MissingActionInputAfterAction,
			sendToLLM:   true,
			errPrefix:   "Could not parse LLM output:",
		},
		{
			text:        "Action: search_universities\nAction Input: Canada\nFinal Answer: Canada has many",
			observation: assistants.InvalidOrIncompleteResponse,
			sendToLLM:   false,
			errPrefix:   assistants.FinalAnswerAndParsableAction + ":",
		},
	}
	for _, tc := range tcases {
		_, _, err := assistants.ParseOutput(tc.text)
		require.Error(t, err, tc.text)

		var perr *assistants.ParseError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, tc.text, perr.Output)
		assert.Equal(t, tc.sendToLLM, perr.SendToLLM)
		assert.Equal(t, tc.observation, perr.ObservationText())
		assert.Contains(t, err.Error(), tc.errPrefix)
	}
}

func TestParseOutput_Reasoning(t *testing.T) {
	text := "<think>\nThe user wants Canada. Action: maybe greeting?\n</think>\n\nThought: search\nAction: search_universities\nAction Input: Canada"
	action, finish, err := assistants.ParseOutput(text)
	require.NoError(t, err)
	require.Nil(t, finish)
	require.NotNil(t, action)
	assert.Equal(t, "search_universities", action.Tool)
	assert.Equal(t, "Canada", action.ToolInput)
	assert.Equal(t, "Thought: search\nAction: search_universities\nAction Input: Canada", action.Log)

	action, finish, err = assistants.ParseOutput("<think>Action: search_universities\nAction Input: Peru</think>Final Answer: done")
	require.NoError(t, err)
	require.Nil(t, action)
	require.NotNil(t, finish)
	assert.Equal(t, "done", finish.Output)

	assert.Equal(t, "no reasoning", assistants.StripReasoning("no reasoning"))
	assert.Equal(t, "<think>unclosed", assistants.StripReasoning("<think>unclosed"))
}

func TestFormatScratchpad(t *testing.T) {
	assert.Empty(t, assistants.FormatScratchpad(nil))

	steps := []assistants.AgentStep{
		{
			Action:      assistants.AgentAction{Tool: "greeting", ToolInput: "Ada", Log: " I should greet\nAction: greeting\nAction Input: Ada"},
			Observation: "Hello, Ada! Nice to meet you.",
		},
		{
			Action:      assistants.AgentAction{Tool: "x", ToolInput: "y", Log: "Action: x\nAction Input: y"},
			Observation: "x is not a valid tool, try one of [greeting].",
		},
	}
	exp := " I should greet\nAction: greeting\nAction Input: Ada\nObservation: Hello, Ada! Nice to meet you.\nThought: " +
		"Action: x\nAction Input: y\nObservation: x is not a valid tool, try one of [greeting].\nThought: "
	assert.Equal(t, exp, assistants.FormatScratchpad(steps))
}
