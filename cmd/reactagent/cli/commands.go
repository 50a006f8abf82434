package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/reactagent/assistants"
	"github.com/effective-security/reactagent/chatmodel"
	"github.com/effective-security/reactagent/pkg/encoding"
	"github.com/effective-security/reactagent/pkg/schema"
	"github.com/effective-security/reactagent/tools/university"
)

// AskCmd answers a single question
type AskCmd struct {
	Question []string `arg:"" help:"Question to answer"`
}

// Run the command
func (a *AskCmd) Run(c *Cli) error {
	question := strings.TrimSpace(strings.Join(a.Question, " "))
	if question == "" {
		return errors.New("question must not be empty")
	}

	assistant, err := c.Assistant()
	if err != nil {
		return err
	}

	ctx := chatmodel.NewFromContext(context.Background())
	return c.answer(ctx, assistant, question)
}

// ChatCmd answers the questions read from the input, until exit
type ChatCmd struct{}

// Run the command
func (a *ChatCmd) Run(c *Cli) error {
	assistant, err := c.Assistant()
	if err != nil {
		return err
	}

	chatCtx := chatmodel.NewChatContext("")
	ctx := chatmodel.WithChatContext(context.Background(), chatCtx)

	fmt.Fprintln(c.Stdout, hintStyle.Render("Ask a question, type 'exit' to quit."))

	asked := 0
	scanner := bufio.NewScanner(c.Stdin)
	for {
		fmt.Fprint(c.Stdout, "> ")
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		// each question is a new run of the same chat
		if asked > 0 {
			chatCtx.NextRun()
		}
		asked++

		if err := c.answer(ctx, assistant, question); err != nil {
			c.printError(err)
		}
	}
	fmt.Fprintln(c.Stdout)

	return errors.WithMessage(scanner.Err(), "failed to read input")
}

// SearchQuestion is the question asked by the search command
const SearchQuestion = "Find the best universities in %s. I want to know about the top universities with their details including names, websites, and locations."

// SearchMaxIterations limits the reasoning steps of the search command,
// unless --max-iterations is set
const SearchMaxIterations = 5

// SearchCmd asks the university assistant for the best universities in a country
type SearchCmd struct {
	Country []string `arg:"" optional:"" help:"Country name, asked interactively when not provided"`
}

// Run the command
func (a *SearchCmd) Run(c *Cli) error {
	country := strings.TrimSpace(strings.Join(a.Country, " "))
	if country == "" {
		fmt.Fprint(c.Stdout, "Enter country name to search for universities: ")
		line, err := bufio.NewReader(c.Stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return errors.WithMessage(err, "failed to read input")
		}
		country = strings.TrimSpace(line)
		fmt.Fprintln(c.Stdout)
	}
	if country == "" {
		return errors.New("no country name provided")
	}

	assistant, err := c.Assistant(
		assistants.WithName("university"),
		assistants.WithDescription("Finds the best universities in a country"),
		assistants.WithPrompt(assistants.NewUniversityPrompt()),
		assistants.WithMaxIterations(SearchMaxIterations),
	)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.Stdout, hintStyle.Render(fmt.Sprintf("Searching universities in %q...", country)))

	ctx := chatmodel.NewFromContext(context.Background())
	return c.answer(ctx, assistant, fmt.Sprintf(SearchQuestion, country))
}

// LookupCmd calls the university search tool directly
type LookupCmd struct {
	Country []string `arg:"" help:"Country name"`
	Output  string   `short:"o" help:"Output format: text, json, yaml, toml" enum:"text,json,yaml,toml" default:"text"`
}

// Run the command
func (a *LookupCmd) Run(c *Cli) error {
	tool := university.New(c.Searcher)

	ctx := context.Background()
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	query := strings.Join(a.Country, " ")
	if a.Output == "" || a.Output == encoding.FormatText {
		output, err := tool.Call(ctx, query)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.Stdout, output)
		return nil
	}

	enc, err := encoding.NewEncoder(a.Output)
	if err != nil {
		return err
	}
	res, err := tool.Run(ctx, &university.SearchRequest{Country: query})
	if err != nil {
		return err
	}
	b, err := enc.Marshal(res)
	if err != nil {
		return errors.WithMessagef(err, "failed to encode %s", a.Output)
	}
	fmt.Fprintln(c.Stdout, strings.TrimSpace(string(b)))
	return nil
}

// ToolsCmd lists the tools available to the assistant
type ToolsCmd struct{}

// Run the command
func (a *ToolsCmd) Run(c *Cli) error {
	registry, err := c.Registry()
	if err != nil {
		return err
	}
	for _, t := range registry.Tools() {
		label := t.Name()
		if fields := schema.PropertyNames(t.Parameters()); len(fields) > 0 {
			label += "(" + strings.Join(fields, ", ") + ")"
		}
		fmt.Fprintf(c.Stdout, "%s %s\n", answerLabel.Render(label+":"), t.Description())
	}
	return nil
}
