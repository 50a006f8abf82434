// Package tools defines the Tool interface for LLM agents, and the Registry
// of tools an assistant is allowed to call.
package tools
