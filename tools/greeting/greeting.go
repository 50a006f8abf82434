package greeting

import (
	"context"
	"reflect"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/reactagent/pkg/encoding"
	"github.com/effective-security/reactagent/pkg/llmutils"
	"github.com/effective-security/reactagent/pkg/metricskey"
	"github.com/effective-security/reactagent/pkg/schema"
	"github.com/effective-security/reactagent/tools"
)

// ToolName is the name of the tool as presented to the model
const ToolName = "greeting"

// DefaultTemplate is the greeting template
const DefaultTemplate = `Hello, {{ .Name | title }}! Nice to meet you.`

// DefaultName is used when the input is empty
const DefaultName = "friend"

// Request represents the tool input.
type Request struct {
	Name string `json:"name" yaml:"name" jsonschema:"title=Name,description=The name of the person to greet."`
}

// Response represents the tool output.
type Response struct {
	Greeting string `json:"greeting" yaml:"greeting"`
}

// Tool greets a person by name
type Tool struct {
	tmpl   *template.Template
	params any
}

// ensure Tool implements the tools.Tool interface
var _ tools.Tool[Request, Response] = (*Tool)(nil)

// New returns the tool with DefaultTemplate
func New() *Tool {
	t, err := NewWithTemplate(DefaultTemplate)
	if err != nil {
		panic(err)
	}
	return t
}

// NewWithTemplate returns the tool with a custom template,
// the template receives Request as data.
func NewWithTemplate(text string) (*Tool, error) {
	tmpl, err := template.New(ToolName).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse greeting template")
	}
	return &Tool{
		tmpl:   tmpl,
		params: schema.MustNew(reflect.TypeOf(Request{})).Parameters,
	}, nil
}

func (t *Tool) Name() string {
	return ToolName
}

func (t *Tool) Description() string {
	return "Greet a person by name. Input should be the name of the person to greet."
}

func (t *Tool) Parameters() any {
	return t.params
}

// Run renders the greeting for req.Name
func (t *Tool) Run(_ context.Context, req *Request) (*Response, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = DefaultName
	}
	var b strings.Builder
	if err := t.tmpl.Execute(&b, &Request{Name: name}); err != nil {
		return nil, errors.Wrap(err, "failed to render greeting")
	}
	return &Response{Greeting: b.String()}, nil
}

// ParseRequest returns the request from the tool input,
// the input can be a JSON object with `name` field, or the plain name.
func ParseRequest(input string) *Request {
	input = strings.TrimSpace(input)
	if llmutils.IsJSONObject(input) {
		var req Request
		if err := encoding.JSON.Unmarshal([]byte(input), &req); err == nil {
			return &req
		}
	}
	return &Request{Name: llmutils.TrimQuotes(input)}
}

// Call renders the greeting, the errors are returned as text.
func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	res, err := t.Run(ctx, ParseRequest(input))
	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, ToolName)
		return "Error: " + err.Error(), nil
	}
	metricskey.StatsToolCallsSucceeded.IncrCounter(1, ToolName)
	return res.Greeting, nil
}
