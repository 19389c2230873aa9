package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RenderNormalized serializes the catalog back into specification text: the
// same block structure as the input, with Parameters and Output rendered as
// compact valid JSON. A tool whose schema could not be parsed gets "{}" so
// the output is always machine-readable.
func RenderNormalized(c *Catalog) string {
	var b strings.Builder
	for i, spec := range c.Tools() {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. Name: %s\n", spec.Ordinal, spec.Name)
		fmt.Fprintf(&b, "Description: %s\n", spec.Description)
		fmt.Fprintf(&b, "Parameters: %s\n", renderSchema(spec.InputSchema))
		fmt.Fprintf(&b, "Output: %s\n", renderSchema(spec.OutputSchema))
	}
	return b.String()
}

func renderSchema(s map[string]any) string {
	if s == nil {
		return "{}"
	}
	data, err := json.Marshal(s)
	if err != nil {
		return "{}"
	}
	return string(data)
}
