package ollama

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/reactagent/pkg/llms"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/ollama/ollama/api"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/reactagent/pkg/llms", "ollama")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// LLM is a model served by Ollama.
type LLM struct {
	Client  *api.Client
	Options *Options
}

var _ llms.Model = (*LLM)(nil)

// New creates a new Ollama LLM client.
//
// The server address is taken from WithHost, then OLLAMA_HOST,
// then DefaultHost.
func New(opts ...Option) (*LLM, error) {
	options := &Options{
		Host:       os.Getenv(HostEnvVarName),
		HTTPClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(options)
	}

	options.Host = values.StringsCoalesce(options.Host, DefaultHost)
	options.Model = values.StringsCoalesce(options.Model, DefaultModel)

	host := options.Host
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, errors.Wrapf(err, "ollama: invalid host %q", options.Host)
	}

	return &LLM{
		Client:  api.NewClient(u, options.HTTPClient),
		Options: options,
	}, nil
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderOllama
}

// GetName implements the Model interface.
func (o *LLM) GetName() string {
	return o.Options.Model
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.NewCallOptions(options...)

	chatMsgs := make([]api.Message, 0, len(messages))
	for _, mc := range messages {
		msg := api.Message{Content: mc.GetContent()}
		switch mc.Role {
		case llms.RoleSystem:
			msg.Role = RoleSystem
		case llms.RoleAI:
			msg.Role = RoleAssistant
		case llms.RoleHuman:
			msg.Role = RoleUser
		default:
			return nil, errors.Wrapf(llms.ErrUnexpectedRole, "ollama: role %v", mc.Role)
		}
		chatMsgs = append(chatMsgs, msg)
	}

	reqOptions := map[string]any{
		"temperature": opts.Temperature,
	}
	if len(opts.StopWords) > 0 {
		reqOptions["stop"] = opts.StopWords
	}
	if opts.MaxTokens > 0 {
		reqOptions["num_predict"] = opts.MaxTokens
	}
	if opts.Seed != 0 {
		reqOptions["seed"] = opts.Seed
	}

	stream := false
	req := &api.ChatRequest{
		Model:    opts.ModelOr(o.Options.Model),
		Messages: chatMsgs,
		Stream:   &stream,
		Options:  reqOptions,
	}
	if o.Options.KeepAlive != "" {
		d, err := time.ParseDuration(o.Options.KeepAlive)
		if err != nil {
			return nil, errors.Wrapf(err, "ollama: invalid keep_alive %q", o.Options.KeepAlive)
		}
		req.KeepAlive = &api.Duration{Duration: d}
	}

	var (
		content strings.Builder
		last    api.ChatResponse
	)
	err := o.Client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		last = resp
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "ollama: chat request failed")
	}

	text := content.String()
	if text == "" {
		return nil, errors.WithStack(llms.ErrEmptyResponse)
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "chat_completed",
		"model", req.Model,
		"done_reason", last.DoneReason,
		"prompt_tokens", last.PromptEvalCount,
		"completion_tokens", last.EvalCount,
	)

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				Content:    text,
				StopReason: last.DoneReason,
				GenerationInfo: map[string]any{
					llms.InfoPromptTokens:     last.PromptEvalCount,
					llms.InfoCompletionTokens: last.EvalCount,
					llms.InfoTotalTokens:      last.PromptEvalCount + last.EvalCount,
				},
			},
		},
	}, nil
}
