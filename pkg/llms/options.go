package llms

import "slices"

// CallOption configures a single GenerateContent call.
type CallOption func(*CallOptions)

// CallOptions are the generation parameters of a call,
// zero values leave the server defaults.
type CallOptions struct {
	// Model overrides the model of the client
	Model string
	// MaxTokens limits the generated tokens
	MaxTokens int
	// Temperature of sampling, between 0 and 1
	Temperature float64
	// StopWords end the generation, the ReAct loop relies on them
	// to stop the model before it writes the observation itself.
	StopWords []string
	// Seed for reproducible sampling
	Seed int
}

// NewCallOptions returns options with the provided values applied in order
func NewCallOptions(options ...CallOption) *CallOptions {
	opts := new(CallOptions)
	for _, apply := range options {
		apply(opts)
	}
	return opts
}

// ModelOr returns the model of the call, or def if not set
func (o *CallOptions) ModelOr(def string) string {
	if o.Model != "" {
		return o.Model
	}
	return def
}

// WithModel sets the model for the call
func WithModel(model string) CallOption {
	return func(o *CallOptions) {
		o.Model = model
	}
}

// WithMaxTokens sets the maximum number of tokens to generate
func WithMaxTokens(maxTokens int) CallOption {
	return func(o *CallOptions) {
		o.MaxTokens = maxTokens
	}
}

// WithTemperature sets the sampling temperature
func WithTemperature(temperature float64) CallOption {
	return func(o *CallOptions) {
		o.Temperature = temperature
	}
}

// WithStopWords adds the stop words, the duplicates and empty words are skipped
func WithStopWords(stopWords []string) CallOption {
	return func(o *CallOptions) {
		for _, w := range stopWords {
			if w != "" && !slices.Contains(o.StopWords, w) {
				o.StopWords = append(o.StopWords, w)
			}
		}
	}
}

// WithSeed sets the sampling seed
func WithSeed(seed int) CallOption {
	return func(o *CallOptions) {
		o.Seed = seed
	}
}
