package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepairPropertiesMissingClose(t *testing.T) {
	// The properties object never closes; "required" appears at its depth.
	in := `{"type": "object", "properties": {"name": {"type": "string"}, "required": ["name"]}`
	got := RepairProperties(in)

	var m map[string]any
	err := json.Unmarshal([]byte(got), &m)
	assert.NoError(t, err)

	props := m["properties"].(map[string]any)
	assert.Contains(t, props, "name")
	assert.NotContains(t, props, "required")
	assert.Equal(t, []any{"name"}, m["required"])
}

func TestRepairPropertiesValidInputUnchanged(t *testing.T) {
	in := `{"type": "object", "properties": {"name": {"type": "string"}}, "required": ["name"]}`
	assert.Equal(t, in, RepairProperties(in))
}

func TestRepairPropertiesNoPropertiesKey(t *testing.T) {
	in := `{"type": "string"}`
	assert.Equal(t, in, RepairProperties(in))
}

func TestRepairPropertiesSiblingInsideStringIgnored(t *testing.T) {
	in := `{"properties": {"a": {"type": "string", "description": "the required field"}}}`
	assert.Equal(t, in, RepairProperties(in))
}

func TestRepairStrayBoundaries(t *testing.T) {
	got := RepairStrayBoundaries(`[{"type": "string",{"type": "null"}]`)
	assert.Equal(t, `[{"type": "string"},{"type": "null"}]`, got)
}

func TestRepairCombinatorsMemberBoundary(t *testing.T) {
	in := `{"anyOf": [{"type": "string",{"type": "null"}]}`
	got := RepairCombinators(in, false)

	var m map[string]any
	err := json.Unmarshal([]byte(got), &m)
	assert.NoError(t, err)

	members := m["anyOf"].([]any)
	assert.Len(t, members, 2)
}

func TestRepairCombinatorsCasingNormalized(t *testing.T) {
	in := `{"anyof": [{"type": "string"},{"type": "null"}], "x": 1}`
	got := RepairCombinators(in, false)

	assert.Contains(t, got, `"anyOf"`)
	assert.NotContains(t, got, `"anyof"`)
}

func TestRepairCombinatorsCasingPreserved(t *testing.T) {
	in := `{"anyof": [{"type": "string"}]}`
	got := RepairCombinators(in, true)
	assert.Contains(t, got, `"anyof"`)
}

func TestRepairCombinatorsHoistsTrailingModifier(t *testing.T) {
	// A default trailing the last member belongs to the enclosing property.
	in := `{"anyOf": [{"type": "string"},{"type": "null"}, "default": null]}`
	got := RepairCombinators(in, false)

	var m map[string]any
	err := json.Unmarshal([]byte(got), &m)
	assert.NoError(t, err)

	members := m["anyOf"].([]any)
	assert.Len(t, members, 2)
	assert.Contains(t, m, "default")
}

func TestRepairCombinatorsKeepsMemberDefault(t *testing.T) {
	// A default inside a member object is schema content, not a stray
	// modifier.
	in := `{"oneOf": [{"type": "string", "default": "up"},{"type": "null"}]}`
	got := RepairCombinators(in, false)

	var m map[string]any
	err := json.Unmarshal([]byte(got), &m)
	assert.NoError(t, err)

	members := m["oneOf"].([]any)
	assert.Len(t, members, 2)
	first := members[0].(map[string]any)
	assert.Equal(t, "up", first["default"])
}

func TestRepairCombinatorsValidInputByteIdentical(t *testing.T) {
	in := `{"anyOf": [{"type": "string"},{"type": "null"}]}`
	assert.Equal(t, in, RepairCombinators(in, false))
}

func TestCanonicalCombinator(t *testing.T) {
	assert.Equal(t, "anyOf", CanonicalCombinator("ANYOF"))
	assert.Equal(t, "oneOf", CanonicalCombinator("oneof"))
	assert.Equal(t, "allOf", CanonicalCombinator("AllOf"))
	assert.Equal(t, "other", CanonicalCombinator("other"))
}

func TestRepairComposed(t *testing.T) {
	in := `{"type": "object", "properties": {"mode": {"anyof": [{"type": "string"},{"type": "null"}]}, "required": ["mode"]}`
	got := Repair(in, false)

	var m map[string]any
	err := json.Unmarshal([]byte(got), &m)
	assert.NoError(t, err)
	assert.Contains(t, got, `"anyOf"`)
}
