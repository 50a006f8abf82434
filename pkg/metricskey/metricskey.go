// Package metricskey describes the metrics of the ReAct loop,
// the tools and the university directory lookup.
package metricskey

import "github.com/effective-security/metrics"

// LLM traffic, tagged with the assistant name and the model
var (
	// StatsLLMMessagesSent counts prompt messages
	StatsLLMMessagesSent = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_messages_sent",
		Help:         "stats_llm_messages_sent provides the number of prompt messages sent to the model",
		RequiredTags: []string{"agent", "model"},
	}
	// StatsLLMBytesSent counts the prompt size, a ReAct prompt grows with each step
	StatsLLMBytesSent = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_bytes_sent",
		Help:         "stats_llm_bytes_sent provides the size of prompts sent to the model, including the scratchpad",
		RequiredTags: []string{"agent", "model"},
	}
	StatsLLMInputTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_input_tokens",
		Help:         "stats_llm_input_tokens provides the prompt tokens reported by the model server",
		RequiredTags: []string{"agent", "model"},
	}
	StatsLLMOutputTokens = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_llm_output_tokens",
		Help:         "stats_llm_output_tokens provides the completion tokens reported by the model server",
		RequiredTags: []string{"agent", "model"},
	}
	PerfLLMCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_llm_call",
		Help:         "perf_llm_call provides the duration of a single reasoning step generation",
		RequiredTags: []string{"agent", "model"},
	}
)

// Reasoning loop, tagged with the assistant name
var (
	StatsAssistantCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_assistant_calls_succeeded",
		Help:         "stats_assistant_calls_succeeded provides the number of questions answered, including the stopped runs",
		RequiredTags: []string{"agent"},
	}
	StatsAssistantCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_assistant_calls_failed",
		Help:         "stats_assistant_calls_failed provides the number of runs failed with model, prompt or context error",
		RequiredTags: []string{"agent"},
	}
	// StatsAssistantIterations counts Thought/Action steps
	StatsAssistantIterations = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_assistant_iterations",
		Help:         "stats_assistant_iterations provides the number of reasoning steps",
		RequiredTags: []string{"agent"},
	}
	StatsAssistantIterationLimit = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_assistant_iteration_limit",
		Help:         "stats_assistant_iteration_limit provides the number of runs stopped without a final answer",
		RequiredTags: []string{"agent"},
	}
	StatsAssistantLLMParseErrors = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_assistant_llm_parse_errors",
		Help:         "stats_assistant_llm_parse_errors provides the number of model outputs not in ReAct format",
		RequiredTags: []string{"agent"},
	}
	PerfAssistantCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_assistant_call",
		Help:         "perf_assistant_call provides the duration of answering a question",
		RequiredTags: []string{"agent"},
	}
)

// Tools, tagged with the tool name
var (
	StatsToolCallsSucceeded = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_succeeded",
		Help:         "stats_tool_calls_succeeded provides the number of tool calls with a result",
		RequiredTags: []string{"tool"},
	}
	// StatsToolCallsFailed counts the calls reported to the model as error text
	StatsToolCallsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_failed",
		Help:         "stats_tool_calls_failed provides the number of tool calls failed",
		RequiredTags: []string{"tool"},
	}
	StatsToolCallsNotFound = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_tool_calls_not_found",
		Help:         "stats_tool_calls_not_found provides the number of actions naming an unknown tool",
		RequiredTags: []string{"tool"},
	}
	PerfToolCall = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_tool_call",
		Help:         "perf_tool_call provides the duration of tool call",
		RequiredTags: []string{"tool"},
	}
)

// University directory
var (
	// StatsLookupRequestsFailed is tagged with transport, remote or decode
	StatsLookupRequestsFailed = metrics.Describe{
		Type:         metrics.TypeCounter,
		Name:         "stats_lookup_requests_failed",
		Help:         "stats_lookup_requests_failed provides the number of directory searches failed, by reason",
		RequiredTags: []string{"reason"},
	}
	PerfLookupRequest = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_lookup_request",
		Help:         "perf_lookup_request provides the duration of directory search",
		RequiredTags: []string{"endpoint"},
	}
)

// Metrics returns slice of metrics from this repo
// keep sorted by name
var Metrics = []*metrics.Describe{
	&PerfAssistantCall,
	&PerfLLMCall,
	&PerfLookupRequest,
	&PerfToolCall,
	&StatsAssistantCallsFailed,
	&StatsAssistantCallsSucceeded,
	&StatsAssistantIterationLimit,
	&StatsAssistantIterations,
	&StatsAssistantLLMParseErrors,
	&StatsLLMBytesSent,
	&StatsLLMInputTokens,
	&StatsLLMMessagesSent,
	&StatsLLMOutputTokens,
	&StatsLookupRequestsFailed,
	&StatsToolCallsFailed,
	&StatsToolCallsNotFound,
	&StatsToolCallsSucceeded,
}
