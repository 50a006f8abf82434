package schema

import (
	"encoding/json"
	"reflect"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	cache   = make(map[reflect.Type]*Schema)
	cacheMu sync.Mutex
)

// Schema describes the input of a tool.
type Schema struct {
	// Parameters represents the tool parameters definition
	Parameters *jsonschema.Schema
}

// New creates a new schema from the given struct type
func New(t reflect.Type) (*Schema, error) {
	if t == nil {
		return nil, errors.New("schema: nil type")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, errors.Newf("schema: expected struct, got %s", t.Kind())
	}

	cacheMu.Lock()
	defer cacheMu.Unlock()

	if s, ok := cache[t]; ok {
		return s, nil
	}

	r := &jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
		Namer:          TypeName,
	}
	params := r.ReflectFromType(t)
	params.Version = ""
	params.ID = ""

	s := &Schema{Parameters: params}
	cache[t] = s
	return s, nil
}

// TypeName returns the struct name suffixed with the hash of its package path,
// tools in different packages may use the same request type name
func TypeName(t reflect.Type) string {
	if t.Kind() != reflect.Struct {
		return t.Name()
	}
	return t.Name() + "@" + strconv.FormatUint(xxhash.Sum64String(t.PkgPath()+"/"+t.Name()), 10)
}

// MustNew is like New, but panics on error.
func MustNew(t reflect.Type) *Schema {
	s, err := New(t)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) String() string {
	js, _ := json.MarshalIndent(s.Parameters, "", "\t")
	return string(js)
}

// Fields returns the names of the parameters in declaration order
func (s *Schema) Fields() []string {
	return propertyNames(s.Parameters.Properties)
}

// PropertyNames returns the property names of tool parameters,
// or nil if params is not a JSON schema.
func PropertyNames(params any) []string {
	switch p := params.(type) {
	case *Schema:
		return p.Fields()
	case *jsonschema.Schema:
		if p != nil {
			return propertyNames(p.Properties)
		}
	}
	return nil
}

func propertyNames(props *orderedmap.OrderedMap[string, *jsonschema.Schema]) []string {
	if props == nil {
		return nil
	}
	names := make([]string, 0, props.Len())
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}
