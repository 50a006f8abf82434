// Package cli provides the reactagent commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/reactagent/assistants"
	"github.com/effective-security/reactagent/callbacks"
	"github.com/effective-security/reactagent/pkg/llmfactory"
	"github.com/effective-security/reactagent/pkg/llms"
	"github.com/effective-security/reactagent/pkg/universities"
	"github.com/effective-security/reactagent/tools"
	"github.com/effective-security/reactagent/tools/greeting"
	"github.com/effective-security/reactagent/tools/university"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/reactagent/cmd", "reactagent")

var (
	answerColor = lipgloss.Color("#10B981")
	mutedColor  = lipgloss.Color("#6B7280")
	errorColor  = lipgloss.Color("#EF4444")

	answerLabel = lipgloss.NewStyle().
			Bold(true).
			Foreground(answerColor)

	answerText = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E5E7EB"))

	hintStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)
)

// Cli provides the global flags and the commands
type Cli struct {
	Cfg           string        `help:"LLM providers configuration file, YAML or JSON" type:"existingfile"`
	Provider      string        `help:"Provider type when no configuration file is given: OLLAMA, OPENAI" default:"OLLAMA" enum:"OLLAMA,OPENAI,ollama,openai"`
	Host          string        `help:"Model server address, defaults to OLLAMA_HOST or OPENAI_BASE_URL"`
	Model         string        `help:"Model name"`
	Token         string        `help:"API token for OpenAI compatible servers" env:"OPENAI_API_KEY"`
	Temperature   float64       `help:"Sampling temperature" default:"0.1"`
	MaxIterations int           `help:"Maximum number of reasoning steps, 15 for ask and chat, 5 for search when not set"`
	Timeout       time.Duration `help:"Timeout for each question" default:"5m"`
	Verbose       bool          `short:"V" help:"Print the reasoning trace"`
	Debug         bool          `short:"D" help:"Enable debug logs"`
	Trace         bool          `help:"Print the run statistics after each answer"`

	Ask    AskCmd    `cmd:"" help:"Answer a single question"`
	Chat   ChatCmd   `cmd:"" help:"Answer questions interactively"`
	Search SearchCmd `cmd:"" help:"Find the best universities in a country"`
	Lookup LookupCmd `cmd:"" help:"Search universities by country without the model"`
	Tools  ToolsCmd  `cmd:"" help:"List the available tools"`

	Stdin  io.Reader `kong:"-"`
	Stdout io.Writer `kong:"-"`
	Stderr io.Writer `kong:"-"`

	// LLM overrides the model created from the flags
	LLM llms.Model `kong:"-"`
	// Searcher overrides the university directory client
	Searcher universities.Searcher `kong:"-"`

	trace *callbacks.Trace `kong:"-"`
}

// New returns Cli with the provided streams
func New(stdin io.Reader, stdout, stderr io.Writer) *Cli {
	return &Cli{
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}
}

// Configure sets up logging according to the flags
func (c *Cli) Configure() {
	xlog.SetFormatter(xlog.NewStringFormatter(c.Stderr))
	if c.Debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		xlog.SetGlobalLogLevel(xlog.WARNING)
	}
}

// Registry returns the tools available to the assistant
func (c *Cli) Registry() (*tools.Registry, error) {
	return tools.NewRegistry(
		university.New(c.Searcher),
		greeting.New(),
	)
}

// ProviderConfig returns the LLM configuration built from the flags
func (c *Cli) ProviderConfig() *llmfactory.Config {
	provider := &llmfactory.ProviderConfig{
		Name:         strings.ToLower(c.Provider),
		Type:         strings.ToUpper(c.Provider),
		BaseURL:      c.Host,
		Token:        c.Token,
		DefaultModel: c.Model,
	}
	return &llmfactory.Config{
		Providers:       []*llmfactory.ProviderConfig{provider},
		DefaultProvider: provider.Name,
	}
}

// ChatModel returns the model to answer the questions
func (c *Cli) ChatModel() (llms.Model, error) {
	if c.LLM != nil {
		return c.LLM, nil
	}

	var (
		f   llmfactory.Factory
		err error
	)
	if c.Cfg != "" {
		f, err = llmfactory.Load(c.Cfg)
		if err != nil {
			return nil, err
		}
	} else {
		cfg := c.ProviderConfig()
		if err = cfg.Validate(); err != nil {
			return nil, err
		}
		f = llmfactory.New(cfg)
	}

	var models []string
	if c.Model != "" {
		models = append(models, c.Model)
	}
	return f.AssistantModel(assistants.DefaultName, models...)
}

// Callback returns the callback handler for the assistant
func (c *Cli) Callback() assistants.Callback {
	fanout := callbacks.NewFanout(callbacks.NewPackageLogger(logger))
	if c.Verbose {
		fanout.Add(callbacks.NewPrinter(c.Stderr, callbacks.ModeVerbose))
	}
	if c.Trace {
		if c.trace == nil {
			c.trace = callbacks.NewTrace(callbacks.ModeDefault)
		}
		fanout.Add(c.trace)
	}
	return fanout
}

// Assistant returns the ReAct assistant configured by the flags,
// the flags override the options.
func (c *Cli) Assistant(options ...assistants.Option) (*assistants.Assistant, error) {
	llm, err := c.ChatModel()
	if err != nil {
		return nil, err
	}
	registry, err := c.Registry()
	if err != nil {
		return nil, err
	}

	opts := append(slices.Clone(options),
		assistants.WithTemperature(c.Temperature),
		assistants.WithCallback(c.Callback()),
	)
	if c.MaxIterations > 0 {
		opts = append(opts, assistants.WithMaxIterations(c.MaxIterations))
	}
	return assistants.NewAssistant(llm, registry, opts...)
}

// answer runs the assistant for one question and prints the answer
func (c *Cli) answer(ctx context.Context, a assistants.IAssistant, question string) error {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	if c.trace != nil {
		c.trace.StartRun(ctx)
	}

	output, err := a.Run(ctx, question)

	if c.trace != nil {
		if _, text := c.trace.EndRun(ctx); len(text) > 0 {
			_, _ = c.Stderr.Write(text)
		}
	}
	if err != nil {
		return errors.WithMessage(err, "failed to answer")
	}

	fmt.Fprintf(c.Stdout, "%s %s\n", answerLabel.Render("Answer:"), answerText.Render(output))
	return nil
}

func (c *Cli) printError(err error) {
	fmt.Fprintf(c.Stderr, "%s %s\n", errorStyle.Render("Error:"), err.Error())
}
