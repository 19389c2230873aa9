// Package validate checks observed tool calls against the catalog's schemas
// and turns violations into typed verdicts.
package validate

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/precidx/precidx/precidx/catalog"
	"github.com/precidx/precidx/precidx/transcript"
)

// ErrorKind classifies why a validation failed.
type ErrorKind string

const (
	KindSchemaUndefined         ErrorKind = "schema_undefined"
	KindToolNotFound            ErrorKind = "tool_not_found"
	KindRequiredPropertyMissing ErrorKind = "required_property_missing"
	KindAdditionalProperties    ErrorKind = "additional_properties"
	KindTypeMismatch            ErrorKind = "type_mismatch"
	KindEnumViolation           ErrorKind = "enum_violation"
	KindConstraintViolation     ErrorKind = "constraint_violation"
	KindPatternMismatch         ErrorKind = "pattern_mismatch"
	KindOther                   ErrorKind = "other"
)

// Issue is one typed validation failure.
type Issue struct {
	Message string    `json:"message"`
	Kind    ErrorKind `json:"kind"`
}

// Verdict is the structured outcome of validating one tool call. Overall
// validity requires both the action arguments and the observation to pass.
type Verdict struct {
	ToolName         string `json:"tool_name"`
	ActionValid      bool   `json:"action_valid"`
	ActionError      *Issue `json:"action_error,omitempty"`
	ObservationValid bool   `json:"observation_valid"`
	ObservationError *Issue `json:"observation_error,omitempty"`
	Suggestion       string `json:"suggestion,omitempty"`
}

// Valid reports overall call validity.
func (v Verdict) Valid() bool {
	return v.ActionValid && v.ObservationValid
}

// Validator checks call records against a catalog. The catalog is shared by
// reference and never mutated.
type Validator struct {
	catalog *catalog.Catalog
}

// New creates a validator over a built catalog.
func New(c *catalog.Catalog) *Validator {
	return &Validator{catalog: c}
}

// ValidateCall validates a call's arguments against the tool's input schema
// and its observation against the output schema, independently. A tool
// missing from the catalog fails both sides without attempting validation.
// An entry without an observation is validated as an empty object.
func (v *Validator) ValidateCall(rec transcript.CallRecord) Verdict {
	spec, ok := v.catalog.Lookup(rec.ToolName)
	if !ok {
		issue := &Issue{Message: "tool not in catalog", Kind: KindToolNotFound}
		return Verdict{
			ToolName:         rec.ToolName,
			ActionValid:      false,
			ActionError:      issue,
			ObservationValid: false,
			ObservationError: issue,
			Suggestion:       v.catalog.Suggest(rec.ToolName),
		}
	}

	verdict := Verdict{ToolName: rec.ToolName, ActionValid: true, ObservationValid: true}

	observation := rec.Observation
	if observation == nil {
		observation = map[string]any{}
	}

	if issue := Against(rec.Args, spec.InputSchema); issue != nil {
		verdict.ActionValid = false
		verdict.ActionError = issue
	}
	if issue := Against(observation, spec.OutputSchema); issue != nil {
		verdict.ObservationValid = false
		verdict.ObservationError = issue
	}
	return verdict
}

// Against validates an instance against a schema document with draft-7
// semantics. All violations are collected into one message; the verdict kind
// comes from the first violation's validating keyword. A nil schema is
// reported as undefined, never as a pass.
func Against(instance any, schemaDoc map[string]any) *Issue {
	if schemaDoc == nil {
		return &Issue{Message: "schema undefined", Kind: KindSchemaUndefined}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schemaDoc),
		gojsonschema.NewGoLoader(instance),
	)
	if err != nil {
		return &Issue{Message: fmt.Sprintf("schema validation error: %v", err), Kind: KindOther}
	}
	if result.Valid() {
		return nil
	}

	violations := result.Errors()
	messages := make([]string, 0, len(violations))
	for _, violation := range violations {
		if field := violation.Field(); field != "" && field != "(root)" {
			messages = append(messages, fmt.Sprintf("%s at %s", violation.Description(), field))
		} else {
			messages = append(messages, violation.Description())
		}
	}

	return &Issue{
		Message: strings.Join(messages, "; "),
		Kind:    classify(violations[0].Type()),
	}
}

// classify maps a gojsonschema violation keyword onto the error taxonomy.
func classify(keyword string) ErrorKind {
	switch keyword {
	case "required":
		return KindRequiredPropertyMissing
	case "additional_property_not_allowed":
		return KindAdditionalProperties
	case "invalid_type":
		return KindTypeMismatch
	case "enum":
		return KindEnumViolation
	case "string_gte", "string_lte",
		"number_gte", "number_gt", "number_lte", "number_lt",
		"array_min_items", "array_max_items", "multiple_of":
		return KindConstraintViolation
	case "pattern":
		return KindPatternMismatch
	}
	return KindOther
}
