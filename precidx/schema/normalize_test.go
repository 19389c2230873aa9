package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixPunctuation(t *testing.T) {
	got := FixPunctuation(`{“type”：“string”，“desc”：“端口”}`)
	assert.Equal(t, `{"type":"string","desc":"端口"}`, got)
}

func TestQuoteBareKeys(t *testing.T) {
	got := QuoteBareKeys(`{type: "object", properties: {name: {type: "string"}}}`)
	assert.Equal(t, `{"type": "object", "properties": {"name": {"type": "string"}}}`, got)
}

func TestQuoteBareKeysLeavesQuotedAlone(t *testing.T) {
	in := `{"type": "object"}`
	assert.Equal(t, in, QuoteBareKeys(in))
}

func TestRequoteStrings(t *testing.T) {
	got := RequoteStrings(`{'name': 'device01'}`)
	assert.Equal(t, `{"name": "device01"}`, got)
}

func TestRequoteStringsApostropheInsideDoubleQuotes(t *testing.T) {
	in := `{"desc": "device's port"}`
	assert.Equal(t, in, RequoteStrings(in))
}

func TestRequoteStringsDoubleQuoteInsideSingleQuotes(t *testing.T) {
	got := RequoteStrings(`{'desc': 'say \" ok'}`)
	assert.Equal(t, `{"desc": "say \" ok"}`, got)
}

func TestReplacePythonLiterals(t *testing.T) {
	got := ReplacePythonLiterals(`{"default": None, "flag": True, "other": False}`)
	assert.Equal(t, `{"default": null, "flag": true, "other": false}`, got)
}

func TestReplacePythonLiteralsWordBoundary(t *testing.T) {
	// NoneType must not become nullType.
	got := ReplacePythonLiterals(`{"desc": "NoneType and Nones"}`)
	assert.Equal(t, `{"desc": "NoneType and Nones"}`, got)
}

func TestStripTrailingCommas(t *testing.T) {
	got := StripTrailingCommas(`{"a": 1, "b": [1, 2, ], }`)
	assert.Equal(t, `{"a": 1, "b": [1, 2]}`, got)
}

func TestQuoteEnumValues(t *testing.T) {
	got := QuoteEnumValues(`{"enum": [up, down, testing]}`)
	assert.Equal(t, `{"enum": ["up", "down", "testing"]}`, got)
}

func TestQuoteEnumValuesMixed(t *testing.T) {
	// Already-quoted members, literals and numbers stay as they are.
	in := `{"enum": ["up", null, 10]}`
	assert.Equal(t, in, QuoteEnumValues(in))
}

func TestNormalizeTextFullPipeline(t *testing.T) {
	in := `{type: 'object'，properties: {status: {type: 'string', enum: [up, down], default: None}},}`
	got := NormalizeText(in)

	var m map[string]any
	err := json.Unmarshal([]byte(got), &m)
	assert.NoError(t, err)
	assert.Equal(t, "object", m["type"])
}

func TestNormalizeTextIdempotent(t *testing.T) {
	inputs := []string{
		`{type: 'str'，default: None}`,
		`{"enum": [a, b]}`,
		`{"type": "object", "properties": {"x": {"type": "integer"}}}`,
	}
	for _, in := range inputs {
		once := NormalizeText(in)
		assert.Equal(t, once, NormalizeText(once))
	}
}

func TestNormalizeTextEmpty(t *testing.T) {
	assert.Equal(t, "", NormalizeText(""))
}
