// Package transcript models agent episode logs: one JSON document per run,
// holding a sequence of steps whose chain-of-action entries record each tool
// invocation and its observation.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/precidx/precidx/precidx/schema"
)

// Document is the top-level transcript shape. Each response element maps a
// step key ("step1", "step2", ...) to its step payload.
type Document struct {
	Query    string            `json:"query"`
	Response []map[string]Step `json:"response"`
}

// Step is one reasoning step: the chain-of-thought text plus the
// chain-of-action entries executed during the step.
type Step struct {
	Cot string    `json:"cot"`
	Coa []CoaItem `json:"coa"`
}

// CoaItem pairs a tool action with the observation it produced.
type CoaItem struct {
	Action      Action `json:"action"`
	Observation any    `json:"observation"`
}

// Action is the tool invocation request emitted by the agent.
type Action struct {
	Name string `json:"name"`
	Args any    `json:"args"`
}

// CallRecord is one observed tool invocation, flattened out of the step
// structure for analysis.
type CallRecord struct {
	ToolName    string
	Args        map[string]any
	Observation any
	Step        string
	StepIndex   int
	CoaIndex    int
	CallIndex   int
}

// Load reads and decodes one transcript file. When the document as a whole is
// malformed, the response array is salvaged on its own if it is intact.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("transcript: read %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		if salvaged, ok := salvageResponse(string(data)); ok {
			return salvaged, nil
		}
		return nil, fmt.Errorf("transcript: decode %s: %w", path, err)
	}
	return &doc, nil
}

// salvageResponse carves the balanced bracket span following the "response"
// key and decodes the step array alone. The query and any other top-level
// fields are lost.
func salvageResponse(text string) (*Document, bool) {
	at := strings.Index(text, `"response"`)
	if at == -1 {
		return nil, false
	}
	span, ok := schema.BalancedBracketSpan(text, at)
	if !ok {
		return nil, false
	}
	var steps []map[string]Step
	if err := json.Unmarshal([]byte(text[span.Start:span.End]), &steps); err != nil {
		return nil, false
	}
	return &Document{Response: steps}, true
}

// Calls flattens the document into call records in execution order. Step keys
// not prefixed with "step" and entries without a tool name are skipped.
// excludeLastSteps drops the trailing N response elements (used to ignore
// summary steps).
func (d *Document) Calls(excludeLastSteps int) []CallRecord {
	var records []CallRecord

	limit := len(d.Response) - excludeLastSteps
	if limit < 0 {
		limit = 0
	}

	callIndex := 0
	for stepIndex, stepItem := range d.Response[:limit] {
		for stepKey, step := range stepItem {
			if !strings.HasPrefix(stepKey, "step") {
				continue
			}
			for coaIndex, item := range step.Coa {
				if item.Action.Name == "" {
					continue
				}
				records = append(records, CallRecord{
					ToolName:    item.Action.Name,
					Args:        asArgsMap(item.Action.Args),
					Observation: item.Observation,
					Step:        stepKey,
					StepIndex:   stepIndex,
					CoaIndex:    coaIndex,
					CallIndex:   callIndex,
				})
				callIndex++
			}
		}
	}
	return records
}

func asArgsMap(args any) map[string]any {
	if m, ok := args.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}
