package ollama

import (
	"net/http"
)

const (
	// HostEnvVarName is the environment variable used by the Ollama CLI
	HostEnvVarName = "OLLAMA_HOST"
	// DefaultHost is the address of a local Ollama server
	DefaultHost = "http://localhost:11434"
	// DefaultModel is used when no model is configured
	DefaultModel = "llama3.2"
)

// Options for the Ollama LLM.
type Options struct {
	Host       string
	Model      string
	HTTPClient *http.Client
	// KeepAlive controls how long the model stays loaded after a request,
	// e.g. "5m". Empty value uses the server default.
	KeepAlive string
}

// Option is a functional option for the Ollama LLM.
type Option func(*Options)

// WithHost passes the Ollama server address. If not set, the address
// is read from the OLLAMA_HOST environment variable.
func WithHost(host string) Option {
	return func(opts *Options) {
		opts.Host = host
	}
}

// WithModel passes the Ollama model to the client.
func WithModel(model string) Option {
	return func(opts *Options) {
		opts.Model = model
	}
}

// WithHTTPClient allows setting a custom HTTP client. If not set, the default value
// is http.DefaultClient.
func WithHTTPClient(client *http.Client) Option {
	return func(opts *Options) {
		opts.HTTPClient = client
	}
}

// WithKeepAlive sets keep_alive for the loaded model.
func WithKeepAlive(keepAlive string) Option {
	return func(opts *Options) {
		opts.KeepAlive = keepAlive
	}
}
