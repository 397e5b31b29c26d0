package tools

import (
	"errors"
	"fmt"
)

// ErrDuplicateTool indicates two tools were registered under the same name.
var ErrDuplicateTool = errors.New("duplicate tool name")

// Registry is a fixed, ordered table of tools. It is built once at startup
// and is safe for concurrent readers because it is never mutated afterwards.
type Registry struct {
	tools  []Tool
	byName map[string]Tool
}

// NewRegistry builds a registry that lists tools in the order given.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{
		tools:  make([]Tool, 0, len(tools)),
		byName: make(map[string]Tool, len(tools)),
	}
	for _, t := range tools {
		name := t.Descriptor().Name
		if name == "" {
			return nil, errors.New("tool name is required")
		}
		if _, exists := r.byName[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateTool, name)
		}
		r.tools = append(r.tools, t)
		r.byName[name] = t
	}
	return r, nil
}

// List returns the descriptors in registration order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, len(r.tools))
	for i, t := range r.tools {
		out[i] = t.Descriptor()
	}
	return out
}

// Resolve looks up a tool by name.
func (r *Registry) Resolve(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.tools) }
