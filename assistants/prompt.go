package assistants

import "github.com/effective-security/reactagent/pkg/prompts"

// Prompt input variables
const (
	InputTools      = "tools"
	InputToolNames  = "tool_names"
	InputQuestion   = "input"
	InputScratchpad = "agent_scratchpad"
)

const reActFormat = `You have access to the following tools:

{{.tools}}

Use the following format:

Question: the input question you must answer
Thought: you should always think about what to do
Action: the action to take, should be one of [{{.tool_names}}]
Action Input: the input to the action
Observation: the result of the action
... (this Thought/Action/Action Input/Observation can repeat N times)
Thought: I now know the final answer
Final Answer: the final answer to the original input question

Begin!

Question: {{.input}}
Thought:{{.agent_scratchpad}}`

// DefaultReActTemplate is the ReAct prompt
const DefaultReActTemplate = `Answer the following questions as best you can. ` + reActFormat

// UniversityReActTemplate is the ReAct prompt of the university search assistant
const UniversityReActTemplate = `You are an assistant that helps the user find the best universities in a given country.

Start by reasoning about the information you need, then use the tools to gather it.
Review each observation before deciding on the next step, and continue until you can give a recommendation.

The final answer must state the total number of universities found,
and list the universities as bullets in alphabetical order, with the university name, country and website.

` + reActFormat

// NewReActPrompt returns the default ReAct prompt template
func NewReActPrompt() *prompts.PromptTemplate {
	return newPrompt(DefaultReActTemplate)
}

// NewUniversityPrompt returns the ReAct prompt template of the university search assistant
func NewUniversityPrompt() *prompts.PromptTemplate {
	return newPrompt(UniversityReActTemplate)
}

func newPrompt(text string) *prompts.PromptTemplate {
	return prompts.MustNewPromptTemplate(text,
		[]string{InputTools, InputToolNames, InputQuestion, InputScratchpad})
}
