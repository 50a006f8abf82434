package assistants

import (
	"github.com/effective-security/reactagent/pkg/llms"
	"github.com/effective-security/reactagent/pkg/prompts"
)

const (
	// DefaultMaxIterations is the default limit of reasoning steps
	DefaultMaxIterations = 15
	// DefaultName is the default name of the assistant
	DefaultName = "react"
)

// Option is a function that can be used to modify the behavior of the Assistant Config.
type Option func(*Config)

// Config of the Assistant
type Config struct {
	Name        string
	Description string

	// Model is the model to use in an LLM call.
	Model    string
	modelSet bool

	// MaxTokens is the maximum number of tokens to generate to use in an LLM call.
	MaxTokens    int
	maxTokensSet bool

	// Temperature is the temperature for sampling to use in an LLM call, between 0 and 1.
	Temperature    float64
	temperatureSet bool

	// StopWords are added to the ReAct stop words.
	StopWords []string

	// Seed is a seed for deterministic sampling in an LLM call.
	Seed    int
	seedSet bool

	// MaxIterations is the limit of reasoning steps in a run.
	MaxIterations int

	// HandleParsingErrors returns the parsing errors to the model as observation,
	// otherwise the run fails with *ParseError.
	HandleParsingErrors bool

	// Prompt is the ReAct prompt template.
	Prompt *prompts.PromptTemplate

	// CallbackHandler is the callback handler for the run
	CallbackHandler Callback
}

// NewConfig returns Config with the defaults
func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		Name:                DefaultName,
		Description:         "Answers questions by reasoning and calling tools.",
		MaxIterations:       DefaultMaxIterations,
		HandleParsingErrors: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithName is an option to set the assistant name.
func WithName(name string) Option {
	return func(o *Config) {
		o.Name = name
	}
}

// WithDescription is an option to set the assistant description.
func WithDescription(description string) Option {
	return func(o *Config) {
		o.Description = description
	}
}

// WithModel is an option for LLM.Call.
func WithModel(model string) Option {
	return func(o *Config) {
		o.Model = model
		o.modelSet = true
	}
}

// WithMaxTokens is an option for LLM.Call.
func WithMaxTokens(maxTokens int) Option {
	return func(o *Config) {
		o.MaxTokens = maxTokens
		o.maxTokensSet = true
	}
}

// WithTemperature is an option for LLM.Call.
func WithTemperature(temperature float64) Option {
	return func(o *Config) {
		o.Temperature = temperature
		o.temperatureSet = true
	}
}

// WithSeed is an option for LLM.Call.
func WithSeed(seed int) Option {
	return func(o *Config) {
		o.Seed = seed
		o.seedSet = true
	}
}

// WithStopWords is an option for setting additional stop words for LLM.Call.
func WithStopWords(stopWords []string) Option {
	return func(o *Config) {
		o.StopWords = stopWords
	}
}

// WithMaxIterations sets the limit of reasoning steps,
// zero or negative value sets DefaultMaxIterations.
func WithMaxIterations(n int) Option {
	return func(o *Config) {
		o.MaxIterations = n
	}
}

// WithHandleParsingErrors sets whether parsing errors are sent back to the model.
func WithHandleParsingErrors(handle bool) Option {
	return func(o *Config) {
		o.HandleParsingErrors = handle
	}
}

// WithPrompt sets the ReAct prompt template.
func WithPrompt(prompt *prompts.PromptTemplate) Option {
	return func(o *Config) {
		o.Prompt = prompt
	}
}

// WithCallback allows setting a custom Callback Handler.
func WithCallback(callbackHandler Callback) Option {
	return func(o *Config) {
		o.CallbackHandler = callbackHandler
	}
}

// GetCallOptions returns LLM call options for the provider,
// stop words are passed only to providers that support them,
// the output parser drops a model-written observation otherwise.
func (c *Config) GetCallOptions(provider llms.ProviderType) []llms.CallOption {
	var opts []llms.CallOption
	if provider.Supports(llms.CapabilityStopWords) {
		opts = append(opts,
			llms.WithStopWords([]string{ObservationStopWord}),
			llms.WithStopWords(c.StopWords),
		)
	}
	if c.modelSet {
		opts = append(opts, llms.WithModel(c.Model))
	}
	if c.maxTokensSet {
		opts = append(opts, llms.WithMaxTokens(c.MaxTokens))
	}
	if c.temperatureSet {
		opts = append(opts, llms.WithTemperature(c.Temperature))
	}
	if c.seedSet {
		opts = append(opts, llms.WithSeed(c.Seed))
	}
	return opts
}
