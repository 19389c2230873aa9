package catalog

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/precidx/precidx/precidx/schema"
)

const sampleSpec = `1. Name: get_interface_status
Description: Queries the operational status of an interface.
Parameters: {"type": "object", "properties": {"interface_name": {"type": "string", "title": "Interface Name"}}, "required": ["interface_name"]}
Output: {"status": {"type": "string", "enum": ["up", "down"]}, "speed": {"type": "integer"}}

2. Name: ping_host
Description: Sends ICMP echo requests to a host.
Parameters: {'type': 'object', 'properties': {'ip_address': {'type': 'string', 'title': 'IP Address'}, 'count': {'type': 'integer', 'title': 'Count', 'default': None}}, 'required': ['ip_address']}
Output: {"loss_rate": {"type": "number"}}
`

func buildSample(t *testing.T) *Catalog {
	t.Helper()
	cat, err := Build(sampleSpec, BuildOptions{Logger: zerolog.Nop()})
	require.NoError(t, err)
	return cat
}

func TestBuildSplitsBlocks(t *testing.T) {
	cat := buildSample(t)

	assert.Equal(t, 2, cat.Len())
	assert.Equal(t, []string{"get_interface_status", "ping_host"}, cat.Names())
}

func TestBuildExtractsDescription(t *testing.T) {
	cat := buildSample(t)

	spec, ok := cat.Lookup("get_interface_status")
	require.True(t, ok)
	assert.Equal(t, 1, spec.Ordinal)
	assert.Equal(t, "Queries the operational status of an interface.", spec.Description)
}

func TestBuildParsesParameters(t *testing.T) {
	cat := buildSample(t)

	spec, ok := cat.Lookup("ping_host")
	require.True(t, ok)
	require.NotNil(t, spec.InputSchema)

	props := spec.InputSchema["properties"].(map[string]any)
	assert.Contains(t, props, "ip_address")
	count := props["count"].(map[string]any)
	assert.Nil(t, count["default"])
}

func TestBuildCompletesOutputSchema(t *testing.T) {
	// The bare property map becomes a closed object schema.
	cat := buildSample(t)

	spec, ok := cat.Lookup("get_interface_status")
	require.True(t, ok)
	require.NotNil(t, spec.OutputSchema)

	assert.Equal(t, "object", spec.OutputSchema["type"])
	assert.Equal(t, []any{"speed", "status"}, spec.OutputSchema["required"])
	assert.Equal(t, false, spec.OutputSchema["additionalProperties"])
}

func TestBuildRecordsQualityWarnings(t *testing.T) {
	text := `1. Name: get_status
Description: xxx
Parameters: {"type": "object", "properties": {"id": {"type": "string"}}}
Output: {"state": {"type": "string"}}
`
	cat, err := Build(text, BuildOptions{Logger: zerolog.Nop()})
	require.NoError(t, err)

	spec, ok := cat.Lookup("get_status")
	require.True(t, ok)
	assert.Contains(t, spec.Warnings, "Description is empty or a placeholder")
	assert.Contains(t, spec.Warnings, "Parameters.properties.id has no title")
}

func TestBuildEmptyInput(t *testing.T) {
	_, err := Build("", BuildOptions{Logger: zerolog.Nop()})
	assert.Error(t, err)
}

func TestBuildNoBlocks(t *testing.T) {
	_, err := Build("just prose, no tool headers", BuildOptions{Logger: zerolog.Nop()})
	assert.Error(t, err)
}

func TestBuildDropsNamelessBlock(t *testing.T) {
	text := sampleSpec + "\n3. Name: !!!\n"
	cat, err := Build(text, BuildOptions{Logger: zerolog.Nop()})
	require.NoError(t, err)
	assert.Equal(t, 2, cat.Len())
}

func TestBuildUnparseableSchemaKeepsTool(t *testing.T) {
	text := `1. Name: broken_tool
Description: Has a hopeless schema.
Parameters: {<<>>
Output: {"ok": {"type": "boolean"}}
`
	cat, err := Build(text, BuildOptions{Logger: zerolog.Nop()})
	require.NoError(t, err)

	spec, ok := cat.Lookup("broken_tool")
	require.True(t, ok)
	assert.Nil(t, spec.InputSchema)
	assert.True(t, hasWarningPrefix(spec.Warnings, "Parameters:"))
}

func hasWarningPrefix(warnings []string, prefix string) bool {
	for _, w := range warnings {
		if strings.HasPrefix(w, prefix) {
			return true
		}
	}
	return false
}

func TestBuildDataLiteralSchemas(t *testing.T) {
	text := `1. Name: get_status
Description: Gets device status.
Parameters: {status:'ok'}
Output: {code:{'type':'int'}}
`
	cat, err := Build(text, BuildOptions{Logger: zerolog.Nop()})
	require.NoError(t, err)

	spec, ok := cat.Lookup("get_status")
	require.True(t, ok)

	// The Parameters span parses, but as a data literal rather than a schema,
	// and the quality checks flag it.
	assert.Equal(t, map[string]any{"status": "ok"}, spec.InputSchema)
	assert.Contains(t, spec.Warnings, "Parameters has no properties or properties is empty")
	assert.Contains(t, spec.Warnings, "Parameters has no top-level type")

	out := spec.OutputSchema
	require.NotNil(t, out)
	assert.Equal(t, "object", out["type"])
	props := out["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "int"}, props["code"])
	assert.Equal(t, []any{"code"}, out["required"])
	assert.Equal(t, false, out["additionalProperties"])
}

func TestBuildPreserveCombinatorCase(t *testing.T) {
	text := `1. Name: mode_tool
Description: Carries a combinator.
Parameters: {"type": "object", "properties": {"mode": {"anyof": [{"type": "string"},{"type": "null"}], "title": "Mode"}}}
Output: {"done": {"type": "boolean"}}
`
	cat, err := Build(text, BuildOptions{
		Parser: schema.Options{PreserveCombinatorCase: true},
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)

	spec, ok := cat.Lookup("mode_tool")
	require.True(t, ok)
	props := spec.InputSchema["properties"].(map[string]any)
	mode := props["mode"].(map[string]any)
	assert.Contains(t, mode, "anyof")
}
