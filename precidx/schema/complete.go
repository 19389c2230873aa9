package schema

import "sort"

// CompleteOutputSchema promotes a bare property map into a full object
// schema. Output specs in the source catalog format routinely omit the object
// wrapper and list only {field: fieldSchema} pairs; wrapping makes them
// acceptable to a draft-7 validator. A schema that already carries a
// top-level "type" is returned unchanged, as is nil. Every listed field
// becomes required and extra fields are rejected.
//
// Only output schemas go through this; parameter schemas are used as written.
func CompleteOutputSchema(raw map[string]any) map[string]any {
	if raw == nil {
		return nil
	}
	if _, ok := raw["type"]; ok {
		return raw
	}

	required := make([]any, 0, len(raw))
	for k := range raw {
		required = append(required, k)
	}
	sort.Slice(required, func(i, j int) bool {
		return required[i].(string) < required[j].(string)
	})

	return map[string]any{
		"type":                 "object",
		"properties":           raw,
		"required":             required,
		"additionalProperties": false,
	}
}
