package schema

import (
	"fmt"
	"sort"
)

// SchemaKind names which of a tool's two schemas is being inspected.
type SchemaKind string

const (
	KindParameters SchemaKind = "Parameters"
	KindOutput     SchemaKind = "Output"
)

var placeholderDescriptions = map[string]bool{
	"":     true,
	"xxx":  true,
	"XXX":  true,
	"TODO": true,
}

// IsPlaceholderDescription reports whether a tool description carries no
// actual content.
func IsPlaceholderDescription(desc string) bool {
	return placeholderDescriptions[desc]
}

// CheckQuality inspects a parsed schema for completeness problems: missing
// properties, properties without a type, missing titles, malformed required
// lists. Warnings are advisory; they never block catalog construction.
func CheckQuality(s map[string]any, kind SchemaKind) []string {
	if len(s) == 0 {
		return []string{fmt.Sprintf("%s is empty", kind)}
	}

	var warnings []string

	props, hasProps := s["properties"].(map[string]any)
	_, hasType := s["type"]

	switch kind {
	case KindParameters:
		if !hasProps || len(props) == 0 {
			warnings = append(warnings, fmt.Sprintf("%s has no properties or properties is empty", kind))
		} else {
			warnings = append(warnings, checkProperties(props, kind, true)...)
		}
		if !hasType {
			warnings = append(warnings, fmt.Sprintf("%s has no top-level type", kind))
		}
		if req, ok := s["required"]; ok {
			list, isList := req.([]any)
			switch {
			case !isList:
				warnings = append(warnings, fmt.Sprintf("%s.required should be an array", kind))
			case len(list) == 0:
				warnings = append(warnings, fmt.Sprintf("%s.required is an empty array", kind))
			}
		}

	case KindOutput:
		if !hasProps && !hasType {
			warnings = append(warnings, fmt.Sprintf("%s has neither properties nor type", kind))
		}
		if hasProps {
			if len(props) == 0 {
				warnings = append(warnings, fmt.Sprintf("%s.properties is empty", kind))
			} else {
				warnings = append(warnings, checkProperties(props, kind, false)...)
			}
		}
	}

	return warnings
}

func checkProperties(props map[string]any, kind SchemaKind, wantTitle bool) []string {
	var warnings []string
	for _, name := range sortedKeys(props) {
		prop, ok := props[name].(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s.properties.%s is not an object", kind, name))
			continue
		}
		if !hasAnyKey(prop, "type", "anyOf", "oneOf") {
			warnings = append(warnings, fmt.Sprintf("%s.properties.%s has no type", kind, name))
		}
		if wantTitle {
			if _, ok := prop["title"]; !ok {
				warnings = append(warnings, fmt.Sprintf("%s.properties.%s has no title", kind, name))
			}
		}
	}
	return warnings
}

func hasAnyKey(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
