package openai

import (
	"context"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/reactagent/pkg/llms"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	goopenai "github.com/sashabaranov/go-openai"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/reactagent/pkg/llms", "openai")

// LLM is a model served over the OpenAI chat completions API.
type LLM struct {
	client  *goopenai.Client
	model   string
	baseURL string
}

var _ llms.Model = (*LLM)(nil)

// New returns a new OpenAI compatible LLM.
func New(opts ...Option) (*LLM, error) {
	o := &options{
		token:   os.Getenv(tokenEnvVarName),
		model:   os.Getenv(modelEnvVarName),
		baseURL: os.Getenv(baseURLEnvVarName),
	}
	for _, opt := range opts {
		opt(o)
	}

	// local servers do not check the token, but the header must be present
	cfg := goopenai.DefaultConfig(values.StringsCoalesce(o.token, "local"))
	cfg.BaseURL = strings.TrimSuffix(values.StringsCoalesce(o.baseURL, DefaultBaseURL), "/")
	if o.httpClient != nil {
		cfg.HTTPClient = o.httpClient
	}

	return &LLM{
		client:  goopenai.NewClientWithConfig(cfg),
		model:   values.StringsCoalesce(o.model, DefaultModel),
		baseURL: cfg.BaseURL,
	}, nil
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderOpenAI
}

// GetName implements the Model interface.
func (o *LLM) GetName() string {
	return o.model
}

// BaseURL returns the server address.
func (o *LLM) BaseURL() string {
	return o.baseURL
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.NewCallOptions(options...)

	chatMsgs := make([]goopenai.ChatCompletionMessage, 0, len(messages))
	for _, mc := range messages {
		msg := goopenai.ChatCompletionMessage{Content: mc.GetContent()}
		switch mc.Role {
		case llms.RoleSystem:
			msg.Role = goopenai.ChatMessageRoleSystem
		case llms.RoleAI:
			msg.Role = goopenai.ChatMessageRoleAssistant
		case llms.RoleHuman:
			msg.Role = goopenai.ChatMessageRoleUser
		default:
			return nil, errors.Wrapf(llms.ErrUnexpectedRole, "openai: role %v", mc.Role)
		}
		chatMsgs = append(chatMsgs, msg)
	}

	req := goopenai.ChatCompletionRequest{
		Model:       opts.ModelOr(o.model),
		Messages:    chatMsgs,
		Temperature: float32(opts.Temperature),
		Stop:        opts.StopWords,
		MaxTokens:   opts.MaxTokens,
	}
	if opts.Seed != 0 {
		seed := opts.Seed
		req.Seed = &seed
	}

	result, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "openai: chat completion failed")
	}
	if len(result.Choices) == 0 {
		return nil, errors.WithStack(llms.ErrEmptyResponse)
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "chat_completed",
		"model", req.Model,
		"choices", len(result.Choices),
		"prompt_tokens", result.Usage.PromptTokens,
		"completion_tokens", result.Usage.CompletionTokens,
	)

	choices := make([]*llms.ContentChoice, len(result.Choices))
	for i, c := range result.Choices {
		choices[i] = &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: string(c.FinishReason),
			GenerationInfo: map[string]any{
				llms.InfoCompletionTokens: result.Usage.CompletionTokens,
				llms.InfoPromptTokens:     result.Usage.PromptTokens,
				llms.InfoTotalTokens:      result.Usage.TotalTokens,
			},
		}
	}
	return &llms.ContentResponse{Choices: choices}, nil
}
