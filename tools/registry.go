package tools

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrDuplicateTool is returned when a tool with the same name is already registered.
var ErrDuplicateTool = errors.New("duplicate tool")

// Registry is an ordered set of tools, looked up by name.
// It is built at startup and is not safe for concurrent registration.
type Registry struct {
	list   []ITool
	byName map[string]ITool
}

// NewRegistry returns a Registry with the provided tools.
func NewRegistry(list ...ITool) (*Registry, error) {
	r := &Registry{
		byName: make(map[string]ITool, len(list)),
	}
	for _, tool := range list {
		if err := r.Register(tool); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustNewRegistry is like NewRegistry, but panics on error.
func MustNewRegistry(list ...ITool) *Registry {
	r, err := NewRegistry(list...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds the tool to the registry.
func (r *Registry) Register(tool ITool) error {
	if tool == nil {
		return errors.New("tool must not be nil")
	}
	name := strings.TrimSpace(tool.Name())
	if name == "" {
		return errors.New("tool name must not be empty")
	}
	key := strings.ToLower(name)
	if _, ok := r.byName[key]; ok {
		return errors.Wrapf(ErrDuplicateTool, "tool %q", name)
	}
	r.byName[key] = tool
	r.list = append(r.list, tool)
	return nil
}

// Get returns the tool by name, the lookup is case-insensitive.
func (r *Registry) Get(name string) (ITool, bool) {
	t, ok := r.byName[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []ITool {
	return append([]ITool(nil), r.list...)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.list)
}

// Descriptions returns GetDescriptions of the registered tools.
func (r *Registry) Descriptions() string {
	return GetDescriptions(r.list...)
}

// Names returns GetNames of the registered tools.
func (r *Registry) Names() string {
	return GetNames(r.list...)
}
