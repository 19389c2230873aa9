package transcript

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDoc = `{
  "query": "ping 192.168.100.2",
  "response": [
    {"step1": {"cot": "first", "coa": [
      {"action": {"name": "ping_host", "args": {"ip_address": "192.168.100.2"}},
       "observation": {"loss_rate": 0}},
      {"action": {"name": "", "args": {}}, "observation": null}
    ]}},
    {"step2": {"cot": "second", "coa": [
      {"action": {"name": "get_interface_status", "args": {"interface_name": "10GE1/0/24"}},
       "observation": {"status": "up"}}
    ]}},
    {"step3": {"cot": "summary", "coa": []}}
  ]
}`

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAndCalls(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "run_001.json", sampleDoc)

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ping 192.168.100.2", doc.Query)

	calls := doc.Calls(0)
	require.Len(t, calls, 2) // the empty-name entry is dropped

	assert.Equal(t, "ping_host", calls[0].ToolName)
	assert.Equal(t, "step1", calls[0].Step)
	assert.Equal(t, 0, calls[0].StepIndex)
	assert.Equal(t, 0, calls[0].CoaIndex)
	assert.Equal(t, 0, calls[0].CallIndex)

	assert.Equal(t, "get_interface_status", calls[1].ToolName)
	assert.Equal(t, 1, calls[1].StepIndex)
	assert.Equal(t, 1, calls[1].CallIndex)
}

func TestCallsExcludeLastSteps(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "run_001.json", sampleDoc)
	doc, err := Load(path)
	require.NoError(t, err)

	// Dropping the trailing summary step changes nothing; dropping two
	// removes the step2 call as well.
	assert.Len(t, doc.Calls(1), 2)
	assert.Len(t, doc.Calls(2), 1)
	assert.Empty(t, doc.Calls(10))
}

func TestCallsNonStepKeysSkipped(t *testing.T) {
	content := `{"response": [{"meta": {"cot": "", "coa": [
      {"action": {"name": "ping_host", "args": {}}, "observation": {}}
    ]}}]}`
	dir := t.TempDir()
	doc, err := Load(writeDoc(t, dir, "run_001.json", content))
	require.NoError(t, err)

	assert.Empty(t, doc.Calls(0))
}

func TestCallsNonMapArgs(t *testing.T) {
	content := `{"response": [{"step1": {"cot": "", "coa": [
      {"action": {"name": "ping_host", "args": "not a map"}, "observation": {}}
    ]}}]}`
	dir := t.TempDir()
	doc, err := Load(writeDoc(t, dir, "run_001.json", content))
	require.NoError(t, err)

	calls := doc.Calls(0)
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Args)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)
}

func TestLoadSalvagesResponseArray(t *testing.T) {
	// Trailing junk after the document body; the response array itself is
	// intact and recoverable.
	content := `{"query": "q", "response": [{"step1": {"cot": "", "coa": [
      {"action": {"name": "ping_host", "args": {"ip_address": "10.0.0.1"}}, "observation": {}}
    ]}}]}}trailing garbage`
	dir := t.TempDir()
	doc, err := Load(writeDoc(t, dir, "run_001.json", content))
	require.NoError(t, err)

	calls := doc.Calls(0)
	require.Len(t, calls, 1)
	assert.Equal(t, "ping_host", calls[0].ToolName)
}

func TestLoadSalvageFailsOnBrokenResponse(t *testing.T) {
	content := `{"query": "q", "response": [{"step1": {`
	dir := t.TempDir()
	_, err := Load(writeDoc(t, dir, "run_001.json", content))
	assert.Error(t, err)
}

func TestListRunFiles(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "b.json", "{}")
	writeDoc(t, dir, "a.json", "{}")
	writeDoc(t, dir, "question_info.json", "{}")
	writeDoc(t, dir, "batch_summary.json", "{}")
	writeDoc(t, dir, "notes.txt", "ignored")

	files, err := ListRunFiles(dir)
	require.NoError(t, err)

	require.Len(t, files, 2)
	assert.Equal(t, "a.json", filepath.Base(files[0]))
	assert.Equal(t, "b.json", filepath.Base(files[1]))
}

func TestListRunFilesMissingDir(t *testing.T) {
	_, err := ListRunFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
