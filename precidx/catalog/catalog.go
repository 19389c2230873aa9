// Package catalog builds and serves the tool catalog: the mapping from tool
// name to the input/output schema pair extracted from a hand-written tool
// specification text.
package catalog

import (
	radix "github.com/armon/go-radix"
)

// ToolSpec is one tool's entry in the catalog. Schemas may be nil when no
// parse strategy succeeded; downstream validation reports those as undefined
// rather than failing the build.
type ToolSpec struct {
	Ordinal      int
	Name         string
	Description  string
	InputSchema  map[string]any
	OutputSchema map[string]any
	Warnings     []string
}

// Catalog is a read-only name→ToolSpec mapping preserving source order.
type Catalog struct {
	tools map[string]*ToolSpec
	order []string
	names *radix.Tree
}

func newCatalog() *Catalog {
	return &Catalog{
		tools: make(map[string]*ToolSpec),
		names: radix.New(),
	}
}

func (c *Catalog) add(spec *ToolSpec) {
	if _, exists := c.tools[spec.Name]; !exists {
		c.order = append(c.order, spec.Name)
	}
	c.tools[spec.Name] = spec
	c.names.Insert(spec.Name, nil)
}

// Lookup returns the spec for a tool name.
func (c *Catalog) Lookup(name string) (*ToolSpec, bool) {
	spec, ok := c.tools[name]
	return spec, ok
}

// Has reports whether the catalog declares the given tool.
func (c *Catalog) Has(name string) bool {
	_, ok := c.tools[name]
	return ok
}

// Len returns the number of declared tools.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Names returns tool names in source order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Tools returns the specs in source order.
func (c *Catalog) Tools() []*ToolSpec {
	out := make([]*ToolSpec, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.tools[name])
	}
	return out
}

// Suggest returns the declared tool name sharing the longest prefix with the
// given unknown name, for use in not-in-catalog diagnostics. Empty when
// nothing shares a prefix.
func (c *Catalog) Suggest(name string) string {
	for l := len(name); l > 0; l-- {
		var found string
		c.names.WalkPrefix(name[:l], func(s string, _ any) bool {
			found = s
			return true
		})
		if found != "" && found != name {
			return found
		}
	}
	return ""
}
