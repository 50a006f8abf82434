package prompts

import (
	"slices"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/reactagent/pkg/llms"
)

// ErrMissingInputVariable is returned when a declared input variable has no value.
var ErrMissingInputVariable = errors.New("missing input variable")

// FormatPrompter formats prompt values into text.
type FormatPrompter interface {
	Format(values map[string]any) (string, error)
	GetInputVariables() []string
}

// PromptTemplate is a Go text/template with declared input variables.
// Sprig functions are available in the template.
type PromptTemplate struct {
	// Template is the template text, e.g. `Question: {{.input}}`
	Template string
	// InputVariables are the variables that must be provided on Format
	InputVariables []string

	tmpl *template.Template
}

var _ FormatPrompter = (*PromptTemplate)(nil)

// NewPromptTemplate parses the template.
func NewPromptTemplate(text string, inputVariables []string) (*PromptTemplate, error) {
	tmpl, err := template.New("prompt").
		Option("missingkey=error").
		Funcs(sprig.TxtFuncMap()).
		Parse(text)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse prompt template")
	}
	return &PromptTemplate{
		Template:       text,
		InputVariables: inputVariables,
		tmpl:           tmpl,
	}, nil
}

// MustNewPromptTemplate is like NewPromptTemplate, but panics on error.
func MustNewPromptTemplate(text string, inputVariables []string) *PromptTemplate {
	p, err := NewPromptTemplate(text, inputVariables)
	if err != nil {
		panic(err)
	}
	return p
}

// GetInputVariables returns the declared input variables.
func (p *PromptTemplate) GetInputVariables() []string {
	return slices.Clone(p.InputVariables)
}

// Format renders the template.
func (p *PromptTemplate) Format(values map[string]any) (string, error) {
	for _, name := range p.InputVariables {
		if _, ok := values[name]; !ok {
			return "", errors.Wrapf(ErrMissingInputVariable, "prompt: %s", name)
		}
	}

	var buf strings.Builder
	if err := p.tmpl.Execute(&buf, values); err != nil {
		return "", errors.Wrap(err, "failed to render prompt template")
	}
	return buf.String(), nil
}

// FormatMessages renders the template as a single human message.
func (p *PromptTemplate) FormatMessages(values map[string]any) ([]llms.Message, error) {
	text, err := p.Format(values)
	if err != nil {
		return nil, err
	}
	return []llms.Message{llms.MessageFromTextParts(llms.RoleHuman, text)}, nil
}
