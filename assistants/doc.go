// Package assistants provides the ReAct assistant: a text reasoning loop of
// Thought, Action, Action Input and Observation steps over an LLM and a set of tools.
package assistants
