package university_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/reactagent/pkg/schema"
	"github.com/effective-security/reactagent/pkg/universities"
	"github.com/effective-security/reactagent/tools/university"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type searchFunc func(ctx context.Context, country string) ([]*universities.Institution, error)

func (f searchFunc) Search(ctx context.Context, country string) ([]*universities.Institution, error) {
	return f(ctx, country)
}

func institutions(country string, n int) []*universities.Institution {
	list := make([]*universities.Institution, 0, n)
	for i := range n {
		state := gofakeit.State()
		list = append(list, &universities.Institution{
			AlphaTwoCode:  "CA",
			Country:       country,
			Domains:       []string{fmt.Sprintf("u%d.ca", i+1), fmt.Sprintf("alt-u%d.ca", i+1)},
			Name:          fmt.Sprintf("University %d", i+1),
			StateProvince: &state,
			WebPages:      []string{fmt.Sprintf("https://u%d.ca/", i+1)},
		})
	}
	return list
}

func TestTool_Definition(t *testing.T) {
	tool := university.New(nil)
	assert.Equal(t, "search_universities", tool.Name())
	assert.Contains(t, tool.Description(), "universities")
	assert.Contains(t, tool.Description(), "country")

	params, err := json.Marshal(tool.Parameters())
	require.NoError(t, err)
	assert.Contains(t, string(params), `"country"`)
	assert.Contains(t, string(params), `"required"`)
	assert.Equal(t, []string{"country"}, schema.PropertyNames(tool.Parameters()))
}

func TestTool_Truncated(t *testing.T) {
	list := institutions("Canada", 15)
	tool := university.New(searchFunc(func(_ context.Context, country string) ([]*universities.Institution, error) {
		assert.Equal(t, "Canada", country)
		return list, nil
	}))

	out, err := tool.Call(context.Background(), "  Canada \n")
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	assert.Equal(t, "Found 15 universities in Canada. Showing top 10:", lines[0])
	assert.Equal(t, "... and 5 more universities.", lines[len(lines)-1])
	assert.Equal(t, 1, strings.Count(out, "more universities."))

	for i := 1; i <= 10; i++ {
		assert.Contains(t, out, fmt.Sprintf("\n%d. University %d\n", i, i))
	}
	assert.NotContains(t, out, "11. University 11")

	first := fmt.Sprintf("1. University 1\n"+
		"   Country: Canada\n"+
		"   State/Province: %s\n"+
		"   Website: https://u1.ca/\n"+
		"   Domains: u1.ca, alt-u1.ca\n\n2. University 2\n", list[0].GetStateProvince())
	assert.Contains(t, out, first)
}

func TestTool_Exact(t *testing.T) {
	quebec := "Quebec"
	list := []*universities.Institution{
		{
			Country:       "Canada",
			Domains:       []string{"mcgill.ca"},
			Name:          "McGill University",
			StateProvince: &quebec,
			WebPages:      []string{"https://www.mcgill.ca/", "https://mcgill.ca/"},
		},
		{
			Country: "Canada",
			Domains: []string{"a.ca", "b.ca"},
			Name:    "No State",
		},
	}

	res := &university.SearchResult{Query: "Canada", Institutions: list}
	exp := `Found 2 universities in Canada. Showing top 2:

1. McGill University
   Country: Canada
   State/Province: Quebec
   Website: https://www.mcgill.ca/
   Domains: mcgill.ca

2. No State
   Country: Canada
   State/Province: N/A
   Website: N/A
   Domains: a.ca, b.ca`
	assert.Equal(t, exp, res.String())
}

func TestTool_EmptyValues(t *testing.T) {
	empty := ""
	res := &university.SearchResult{Query: "Peru", Institutions: []*universities.Institution{
		{Country: "Peru", Name: "Blank", StateProvince: &empty, WebPages: []string{""}},
		{Country: "Peru", Name: "Missing"},
	}}
	exp := `Found 2 universities in Peru. Showing top 2:

1. Blank
   Country: Peru
   State/Province: 
   Website: 
   Domains: 

2. Missing
   Country: Peru
   State/Province: N/A
   Website: N/A
   Domains: `
	assert.Equal(t, exp, res.String())
}

func TestTool_Counts(t *testing.T) {
	for _, n := range []int{1, 9, 10, 11, 42} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			tool := university.New(searchFunc(func(context.Context, string) ([]*universities.Institution, error) {
				return institutions("Japan", n), nil
			}))
			out, err := tool.Call(context.Background(), "Japan")
			require.NoError(t, err)

			shown := min(n, 10)
			assert.True(t, strings.HasPrefix(out, fmt.Sprintf("Found %d universities in Japan. Showing top %d:", n, shown)))
			assert.Equal(t, shown, strings.Count(out, "   Country: Japan"))
			if n > 10 {
				assert.True(t, strings.HasSuffix(out, fmt.Sprintf("... and %d more universities.", n-10)))
			} else {
				assert.NotContains(t, out, "more universities.")
			}
		})
	}
}

func TestTool_NotFound(t *testing.T) {
	tool := university.New(searchFunc(func(context.Context, string) ([]*universities.Institution, error) {
		return nil, nil
	}))
	out, err := tool.Call(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Equal(t, "No universities found for country: Atlantis", out)
}

func TestTool_JSONInput(t *testing.T) {
	var got []string
	tool := university.New(searchFunc(func(_ context.Context, country string) ([]*universities.Institution, error) {
		got = append(got, country)
		return nil, nil
	}))

	ctx := context.Background()
	_, _ = tool.Call(ctx, `{"country": " France "}`)
	_, _ = tool.Call(ctx, `"Germany"`)
	// JSON without country is used as text
	_, _ = tool.Call(ctx, `{"name": "x"}`)
	assert.Equal(t, []string{"France", "Germany", `{"name": "x"}`}, got)

	res, err := tool.Run(ctx, &university.SearchRequest{Country: " Peru "})
	require.NoError(t, err)
	assert.Equal(t, "Peru", res.Query)
}

func TestTool_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("remote", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		tool := university.New(universities.New(universities.WithBaseURL(server.URL)))
		out, err := tool.Call(ctx, "Canada")
		require.NoError(t, err)
		assert.Equal(t, "Error searching universities for Canada: unexpected response status: 503 Service Unavailable", out)
	})

	t.Run("transport", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := server.URL
		server.Close()

		tool := university.New(universities.New(universities.WithBaseURL(url)))
		out, err := tool.Call(ctx, "Canada")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "Error searching universities for Canada: request failed:"), out)
	})

	t.Run("decode", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		tool := university.New(universities.New(universities.WithBaseURL(server.URL)))
		out, err := tool.Call(ctx, "Canada")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "Error searching universities for Canada: failed to decode response:"), out)
	})

	t.Run("empty", func(t *testing.T) {
		tool := university.New(universities.New())
		out, err := tool.Call(ctx, "   ")
		require.NoError(t, err)
		assert.Equal(t, "Error searching universities for : empty country query", out)
	})

	t.Run("other", func(t *testing.T) {
		tool := university.New(searchFunc(func(context.Context, string) ([]*universities.Institution, error) {
			return nil, errors.New("boom")
		}))
		out, err := tool.Call(ctx, "Canada")
		require.NoError(t, err)
		assert.Equal(t, "Error searching universities for Canada: boom", out)

		_, err = tool.Run(ctx, &university.SearchRequest{Country: "Canada"})
		assert.EqualError(t, err, `failed to search "Canada": boom`)
	})
}

func TestTool_OverHTTP(t *testing.T) {
	list := institutions("Canada", 12)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Canada", r.URL.Query().Get("country"))
		_ = json.NewEncoder(w).Encode(list)
	}))
	defer server.Close()

	tool := university.New(universities.New(
		universities.WithBaseURL(server.URL),
		universities.WithHTTPClient(server.Client()),
	))
	out, err := tool.Call(context.Background(), "Canada")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Found 12 universities in Canada. Showing top 10:"))
	assert.True(t, strings.HasSuffix(out, "... and 2 more universities."))
}
