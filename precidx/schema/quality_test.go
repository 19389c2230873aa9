package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPlaceholderDescription(t *testing.T) {
	assert.True(t, IsPlaceholderDescription(""))
	assert.True(t, IsPlaceholderDescription("xxx"))
	assert.True(t, IsPlaceholderDescription("TODO"))
	assert.False(t, IsPlaceholderDescription("Queries interface status"))
}

func TestCheckQualityEmptySchema(t *testing.T) {
	warnings := CheckQuality(map[string]any{}, KindParameters)
	assert.Equal(t, []string{"Parameters is empty"}, warnings)
}

func TestCheckQualityParametersComplete(t *testing.T) {
	s := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{"type": "string", "title": "Name"},
		},
		"required": []any{"name"},
	}
	assert.Empty(t, CheckQuality(s, KindParameters))
}

func TestCheckQualityParametersMissingTitleAndType(t *testing.T) {
	s := map[string]any{
		"properties": map[string]any{
			"name": map[string]any{"description": "no type here"},
		},
	}
	warnings := CheckQuality(s, KindParameters)

	assert.Contains(t, warnings, "Parameters.properties.name has no type")
	assert.Contains(t, warnings, "Parameters.properties.name has no title")
	assert.Contains(t, warnings, "Parameters has no top-level type")
}

func TestCheckQualityParametersCombinatorCountsAsType(t *testing.T) {
	s := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"mode": map[string]any{
				"anyOf": []any{map[string]any{"type": "string"}},
				"title": "Mode",
			},
		},
	}
	assert.Empty(t, CheckQuality(s, KindParameters))
}

func TestCheckQualityRequiredShape(t *testing.T) {
	s := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "string", "title": "A"},
		},
		"required": "a",
	}
	warnings := CheckQuality(s, KindParameters)
	assert.Contains(t, warnings, "Parameters.required should be an array")

	s["required"] = []any{}
	warnings = CheckQuality(s, KindParameters)
	assert.Contains(t, warnings, "Parameters.required is an empty array")
}

func TestCheckQualityOutputNoTitleRequired(t *testing.T) {
	// Output properties don't need titles.
	s := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"status": map[string]any{"type": "string"},
		},
	}
	assert.Empty(t, CheckQuality(s, KindOutput))
}

func TestCheckQualityOutputNeitherPropertiesNorType(t *testing.T) {
	warnings := CheckQuality(map[string]any{"description": "opaque"}, KindOutput)
	assert.Contains(t, warnings, "Output has neither properties nor type")
}
