// Package llms provides the model abstraction used by the assistants.
//
// Each subpackage implements Model for a locally hosted model server:
// `ollama` talks to the Ollama HTTP API, `openai` talks to any server
// exposing the OpenAI chat completions API (LM Studio, llama.cpp, vLLM).
//
// The `llms.go` file contains the Model interface and provider types.
//
// The `options.go` file provides the call options passed to GenerateContent.
package llms
