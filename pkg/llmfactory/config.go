package llmfactory

import (
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/reactagent/pkg/llms"
	"github.com/effective-security/x/configloader"
	"github.com/go-playground/validator/v10"
)

// Config of the LLM providers
type Config struct {
	// Providers specifies the list of providers to use
	Providers []*ProviderConfig `json:"providers" yaml:"providers" validate:"required,min=1,dive"`
	// DefaultProvider specifies the name of the default provider,
	// the first provider is used if not set
	DefaultProvider string `json:"default_provider,omitempty" yaml:"default_provider,omitempty"`
	// AssistantModels specifies the mapping of assistants to models.
	// key is the assistant name, value is the list of preferred models.
	// Use `default: [<model_name>]` as the default models for assistants.
	AssistantModels map[string][]string `json:"assistant_models,omitempty" yaml:"assistant_models,omitempty"`
}

// ProviderConfig for a model server
type ProviderConfig struct {
	Name string `json:"name" yaml:"name" validate:"required"`
	// Type specifies the API of the server: OLLAMA|OPENAI
	Type string `json:"type" yaml:"type" validate:"required,oneof=OLLAMA OPENAI ollama openai"`
	// BaseURL is the server address, for OLLAMA it's the host,
	// for OPENAI it's the API base including `/v1`
	BaseURL         string   `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Token           string   `json:"token,omitempty" yaml:"token,omitempty"`
	DefaultModel    string   `json:"default_model,omitempty" yaml:"default_model,omitempty"`
	AvailableModels []string `json:"available_models,omitempty" yaml:"available_models,omitempty"`
	// KeepAlive controls how long Ollama keeps the model loaded, e.g. `5m`
	KeepAlive string `json:"keep_alive,omitempty" yaml:"keep_alive,omitempty"`
}

// ProviderType returns the normalized provider type
func (c *ProviderConfig) ProviderType() llms.ProviderType {
	return llms.ProviderType(strings.ToUpper(c.Type))
}

// FindModel returns the first of the models available on the provider,
// or the default model.
func (c *ProviderConfig) FindModel(models ...string) string {
	for _, model := range models {
		if c.Serves(model) {
			return model
		}
	}
	return c.DefaultModel
}

// Serves returns true if the provider lists the model
func (c *ProviderConfig) Serves(model string) bool {
	return model != "" && (model == c.DefaultModel || slices.Contains(c.AvailableModels, model))
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate returns error if the configuration is invalid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid LLM configuration")
	}
	if c.DefaultProvider != "" && c.Provider(c.DefaultProvider) == nil {
		return errors.Newf("invalid LLM configuration: default provider %q not found", c.DefaultProvider)
	}
	names := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if names[p.Name] {
			return errors.Newf("invalid LLM configuration: duplicate provider %q", p.Name)
		}
		names[p.Name] = true
	}
	return nil
}

// Provider returns the provider by name
func (c *Config) Provider(name string) *ProviderConfig {
	for _, p := range c.Providers {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// LoadConfig from file, the environment variables in the values are expanded.
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if err := configloader.UnmarshalAndExpand(file, cfg); err != nil {
		return nil, errors.WithMessagef(err, "failed to load config %q", file)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
