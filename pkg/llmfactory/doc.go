// Package llmfactory creates LLM clients from the providers configuration.
package llmfactory
