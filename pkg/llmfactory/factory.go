package llmfactory

import (
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/reactagent/pkg/llms"
	"github.com/effective-security/reactagent/pkg/llms/ollama"
	"github.com/effective-security/reactagent/pkg/llms/openai"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/reactagent/pkg", "llmfactory")

// NewLLM is a wrapper for CreateLLM to allow for overriding the default implementation.
var NewLLM = CreateLLM

// Factory is the interface for creating and managing LLM models.
type Factory interface {
	// DefaultModel returns the default LLM model.
	DefaultModel() (llms.Model, error)
	// ModelByType returns an LLM model by its provider type: OLLAMA|OPENAI
	ModelByType(providerType llms.ProviderType) (llms.Model, error)
	// ModelByName returns an LLM model by its name,
	// if the model is not found, it will return the default model.
	ModelByName(preferredModels ...string) (llms.Model, error)
	// AssistantModel returns a model for the assistant.
	AssistantModel(assistantName string, preferredModels ...string) (llms.Model, error)
}

// Load returns the factory from config file
func Load(location string) (Factory, error) {
	cfg, err := LoadConfig(location)
	if err != nil {
		return nil, err
	}
	return New(cfg), nil
}

type factory struct {
	cfg *Config

	defaultProvider *ProviderConfig
	assistantModels map[string][]string
	byType          map[llms.ProviderType]llms.Model
	byName          map[string]llms.Model
	lock            sync.Mutex
}

// New creates a new LLM factory
func New(cfg *Config) Factory {
	f := &factory{
		cfg:             cfg,
		byType:          make(map[llms.ProviderType]llms.Model),
		byName:          make(map[string]llms.Model),
		assistantModels: make(map[string][]string),
	}

	for k, v := range cfg.AssistantModels {
		f.assistantModels[k] = slices.Clone(v)
	}

	if cfg.DefaultProvider != "" {
		f.defaultProvider = cfg.Provider(cfg.DefaultProvider)
	}
	if f.defaultProvider == nil && len(f.cfg.Providers) > 0 {
		f.defaultProvider = f.cfg.Providers[0]
	}

	return f
}

// CreateLLM returns a client for the provider,
// the model is the first of preferredModels the provider serves
func CreateLLM(cfg *ProviderConfig, preferredModels ...string) (llms.Model, error) {
	switch cfg.ProviderType() {
	case llms.ProviderOllama:
		return newOllama(cfg, preferredModels...)
	case llms.ProviderOpenAI:
		return newOpenAI(cfg, preferredModels...)
	}
	return nil, errors.Errorf("unsupported provider type: %s", cfg.Type)
}

func newOllama(cfg *ProviderConfig, preferredModels ...string) (llms.Model, error) {
	var opts []ollama.Option
	if model := cfg.FindModel(preferredModels...); model != "" {
		opts = append(opts, ollama.WithModel(model))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, ollama.WithHost(cfg.BaseURL))
	}
	if cfg.KeepAlive != "" {
		opts = append(opts, ollama.WithKeepAlive(cfg.KeepAlive))
	}
	return ollama.New(opts...)
}

func newOpenAI(cfg *ProviderConfig, preferredModels ...string) (llms.Model, error) {
	var opts []openai.Option
	if model := cfg.FindModel(preferredModels...); model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	if cfg.Token != "" {
		opts = append(opts, openai.WithToken(cfg.Token))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	return openai.New(opts...)
}

// DefaultModel returns the default model of the default provider
func (f *factory) DefaultModel() (llms.Model, error) {
	if f.defaultProvider == nil {
		return nil, errors.New("no providers configured")
	}

	f.lock.Lock()
	defer f.lock.Unlock()
	return f.create(f.defaultProvider, f.defaultProvider.DefaultModel)
}

func (f *factory) ModelByType(providerType llms.ProviderType) (llms.Model, error) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if model, ok := f.byType[providerType]; ok {
		return model, nil
	}

	idx := slices.IndexFunc(f.cfg.Providers, func(cfg *ProviderConfig) bool {
		return cfg.ProviderType() == providerType
	})
	if idx < 0 {
		return nil, errors.Errorf("provider not found for type: %s", providerType)
	}

	cfg := f.cfg.Providers[idx]
	model, err := f.create(cfg, cfg.DefaultModel)
	if err != nil {
		return nil, err
	}
	f.byType[providerType] = model
	return model, nil
}

// ModelByName returns the first of modelNames served by a provider,
// or the default model when none is
func (f *factory) ModelByName(modelNames ...string) (llms.Model, error) {
	if model := f.findByName(modelNames); model != nil {
		return model, nil
	}
	return f.DefaultModel()
}

func (f *factory) findByName(modelNames []string) llms.Model {
	f.lock.Lock()
	defer f.lock.Unlock()

	for _, name := range modelNames {
		if model, ok := f.byName[name]; ok {
			return model
		}
		for _, cfg := range f.cfg.Providers {
			if !cfg.Serves(name) {
				continue
			}
			model, err := f.create(cfg, name)
			if err != nil {
				logger.KV(xlog.ERROR,
					"reason", "create_llm",
					"provider", cfg.Name,
					"model", name,
					"err", err.Error(),
				)
				continue
			}
			f.byName[name] = model
			return model
		}
	}
	return nil
}

// AssistantModel returns the model mapped to the assistant in the configuration,
// then the one mapped to "default", then the first of preferredModels
func (f *factory) AssistantModel(assistantName string, preferredModels ...string) (llms.Model, error) {
	for _, key := range []string{assistantName, "default"} {
		if modelNames, ok := f.assistantModels[key]; ok {
			return f.ModelByName(modelNames...)
		}
	}
	return f.ModelByName(preferredModels...)
}

// create must be called under the lock
func (f *factory) create(cfg *ProviderConfig, model string) (llms.Model, error) {
	llm, err := NewLLM(cfg, model)
	if err != nil {
		return nil, err
	}
	logger.KV(xlog.DEBUG,
		"status", "created_llm",
		"provider", cfg.Name,
		"type", cfg.ProviderType(),
		"model", llm.GetName(),
	)
	return llm, nil
}
