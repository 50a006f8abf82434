package llms

import (
	"context"
)

// ProviderType is the type of provider.
type ProviderType string

const (
	// ProviderOllama is a model served by Ollama.
	ProviderOllama ProviderType = "OLLAMA"
	// ProviderOpenAI is a model served over the OpenAI compatible API.
	ProviderOpenAI ProviderType = "OPENAI"
)

//go:generate mockgen -source=llms.go -destination=../../mocks/mockllms/llm_mock.gen.go -package mockllms

// Model is an interface text models implement.
type Model interface {
	// GetProviderType returns the type of provider.
	GetProviderType() ProviderType
	// GetName returns the model name.
	GetName() string
	// GenerateContent asks the model to generate content from a sequence of
	// messages.
	GenerateContent(ctx context.Context, messages []Message, options ...CallOption) (*ContentResponse, error)
}

// Capability is a bitmask indicating supported features of an LLM provider.
type Capability uint64

const (
	// CapabilityText is basic text or chat generation
	CapabilityText Capability = 1 << iota
	// CapabilityStopWords is support for stop sequences
	CapabilityStopWords
	// CapabilitySystemPrompt is support for a system role
	CapabilitySystemPrompt
	// CapabilitySelfHosted is open weight models / self-hosted
	CapabilitySelfHosted
)

var providerCapabilities = map[ProviderType]Capability{
	ProviderOllama: CapabilityText |
		CapabilityStopWords |
		CapabilitySystemPrompt |
		CapabilitySelfHosted,

	ProviderOpenAI: CapabilityText |
		CapabilityStopWords |
		CapabilitySystemPrompt,
}

// ProviderCapabilities returns the capabilities of the provider type.
func ProviderCapabilities(pt ProviderType) Capability {
	return providerCapabilities[pt]
}

// Supports returns true if the provider has the capability.
func (p ProviderType) Supports(cap Capability) bool {
	return ProviderCapabilities(p)&cap != 0
}
