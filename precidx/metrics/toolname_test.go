package metrics

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/precidx/precidx/precidx/catalog"
)

const toolSpecText = `1. Name: ping_host
Description: Sends ICMP echo requests.
Parameters: {"type": "object", "properties": {"ip_address": {"type": "string", "title": "IP"}}}
Output: {"loss_rate": {"type": "number"}}

2. Name: get_interface_status
Description: Queries interface state.
Parameters: {"type": "object", "properties": {"interface_name": {"type": "string", "title": "Interface"}}}
Output: {"status": {"type": "string"}}
`

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Build(toolSpecText, catalog.BuildOptions{Logger: zerolog.Nop()})
	require.NoError(t, err)
	return cat
}

func TestToolNameAccuracy(t *testing.T) {
	dir := writeFolder(t, map[string]string{
		"run_001.json": `{"response": [
          {"step1": {"cot": "", "coa": [
            {"action": {"name": "ping_host", "args": {"ip_address": "10.0.0.1"}}, "observation": {}},
            {"action": {"name": "ping_hosts", "args": {}}, "observation": {}}
          ]}}
        ]}`,
		"run_002.json": `{"response": [
          {"step1": {"cot": "", "coa": [
            {"action": {"name": "get_interface_status", "args": {}}, "observation": {}}
          ]}}
        ]}`,
	})

	report := ToolNameAccuracy([]string{dir}, testCatalog(t), nop())

	require.Len(t, report.PerFileResults, 2)
	assert.Equal(t, 3, report.Overall.TotalCalls)
	assert.Equal(t, 2, report.Overall.ValidCalls)
	assert.Equal(t, 1, report.Overall.InvalidCalls)
	assert.InDelta(t, 2.0/3.0, report.Overall.AccTool, 1e-9)

	first := report.PerFileResults[0]
	require.Len(t, first.InvalidDetails, 1)
	assert.Equal(t, "ping_hosts", first.InvalidDetails[0].ToolName)
	assert.Equal(t, "ping_host", first.InvalidDetails[0].Suggestion)
}

func TestToolNameAccuracyEmptyBatch(t *testing.T) {
	dir := writeFolder(t, nil)
	report := ToolNameAccuracy([]string{dir}, testCatalog(t), nop())

	assert.Empty(t, report.PerFileResults)
	assert.Equal(t, 0.0, report.Overall.AccTool)
}

func TestToolNameAccuracyMissingFolderSkipped(t *testing.T) {
	dir := writeFolder(t, map[string]string{
		"run_001.json": `{"response": [
          {"step1": {"cot": "", "coa": [
            {"action": {"name": "ping_host", "args": {}}, "observation": {}}
          ]}}
        ]}`,
	})

	report := ToolNameAccuracy([]string{dir, dir + "-missing"}, testCatalog(t), nop())
	assert.Len(t, report.PerFileResults, 1)
}
