package university

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/reactagent/pkg/encoding"
	"github.com/effective-security/reactagent/pkg/llmutils"
	"github.com/effective-security/reactagent/pkg/metricskey"
	"github.com/effective-security/reactagent/pkg/schema"
	"github.com/effective-security/reactagent/pkg/universities"
	"github.com/effective-security/reactagent/tools"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/reactagent/tools", "university")

// ToolName is the name of the tool as presented to the model
const ToolName = "search_universities"

// MaxDisplayed is the number of institutions rendered in the result
const MaxDisplayed = 10

const description = "Search for universities in a specific country. " +
	"Input should be the country name in English, for example: Canada, Japan, United States. " +
	"Returns the names, state or province, websites and domains of the universities."

// SearchRequest represents the tool input.
type SearchRequest struct {
	Country string `json:"country" yaml:"country" jsonschema:"title=Country,description=The country name to search universities in."`
}

// SearchResult represents the tool output.
type SearchResult struct {
	Query        string                      `json:"query" yaml:"query" toml:"query"`
	Institutions []*universities.Institution `json:"institutions" yaml:"institutions" toml:"institutions"`
}

// Tool searches universities by country
type Tool struct {
	searcher universities.Searcher
	params   any
}

// ensure Tool implements the tools.Tool interface
var _ tools.Tool[SearchRequest, SearchResult] = (*Tool)(nil)

// New returns the tool that uses the provided searcher,
// if nil, the default directory client is used.
func New(searcher universities.Searcher) *Tool {
	if searcher == nil {
		searcher = universities.New()
	}
	return &Tool{
		searcher: searcher,
		params:   schema.MustNew(reflect.TypeOf(SearchRequest{})).Parameters,
	}
}

func (t *Tool) Name() string {
	return ToolName
}

func (t *Tool) Description() string {
	return description
}

func (t *Tool) Parameters() any {
	return t.params
}

// Run searches universities in req.Country.
func (t *Tool) Run(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	query := strings.TrimSpace(req.Country)
	list, err := t.searcher.Search(ctx, query)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to search %q", query)
	}
	return &SearchResult{
		Query:        query,
		Institutions: list,
	}, nil
}

// Call executes the search, the errors are returned as text.
func (t *Tool) Call(ctx context.Context, input string) (string, error) {
	query := ParseQuery(input)
	res, err := t.Run(ctx, &SearchRequest{Country: query})
	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, ToolName)
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "search_failed",
			"country", query,
			"err", err.Error(),
		)
		return ErrorText(query, errors.UnwrapOnce(err)), nil
	}
	metricskey.StatsToolCallsSucceeded.IncrCounter(1, ToolName)
	return res.String(), nil
}

// ParseQuery returns the country from the tool input,
// the input can be a JSON object with `country` field, or the plain country name.
func ParseQuery(input string) string {
	input = strings.TrimSpace(input)
	if llmutils.IsJSONObject(input) {
		var req SearchRequest
		if err := encoding.JSON.Unmarshal([]byte(input), &req); err == nil && req.Country != "" {
			return strings.TrimSpace(req.Country)
		}
	}
	return llmutils.TrimQuotes(input)
}

// ErrorText returns the text reported to the model when the search failed
func ErrorText(query string, err error) string {
	return fmt.Sprintf("Error searching universities for %s: %s", query, describe(err))
}

func describe(err error) string {
	var rerr *universities.RemoteError
	if errors.As(err, &rerr) {
		return rerr.Error()
	}
	var terr *universities.TransportError
	if errors.As(err, &terr) {
		return terr.Error()
	}
	var derr *universities.DecodeError
	if errors.As(err, &derr) {
		return derr.Error()
	}
	if errors.Is(err, universities.ErrEmptyQuery) {
		return universities.ErrEmptyQuery.Error()
	}
	return err.Error()
}

// String returns the result formatted for the model
func (r *SearchResult) String() string {
	total := len(r.Institutions)
	if total == 0 {
		return "No universities found for country: " + r.Query
	}

	shown := min(total, MaxDisplayed)

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d universities in %s. Showing top %d:\n\n", total, r.Query, shown)
	for i, inst := range r.Institutions[:shown] {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. %s\n", i+1, inst.Name)
		fmt.Fprintf(&b, "   Country: %s\n", inst.Country)
		state, website := "N/A", "N/A"
		if inst.StateProvince != nil {
			state = inst.GetStateProvince()
		}
		if len(inst.WebPages) > 0 {
			website = inst.Website()
		}
		fmt.Fprintf(&b, "   State/Province: %s\n", state)
		fmt.Fprintf(&b, "   Website: %s\n", website)
		fmt.Fprintf(&b, "   Domains: %s", strings.Join(inst.Domains, ", "))
	}
	if total > MaxDisplayed {
		fmt.Fprintf(&b, "\n\n... and %d more universities.", total-MaxDisplayed)
	}
	return b.String()
}
