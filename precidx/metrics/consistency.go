package metrics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/precidx/precidx/precidx/transcript"
)

// ConsistencyConflict records a pair of observations disagreeing on a key.
type ConsistencyConflict struct {
	Key        string `json:"key"`
	FirstTool  string `json:"first_tool"`
	FirstStep  string `json:"first_step"`
	FirstValue string `json:"first_value"`
	LaterTool  string `json:"later_tool"`
	LaterStep  string `json:"later_step"`
	LaterValue string `json:"later_value"`
}

// ConsistencyStats holds the state-consistency metrics for one transcript.
type ConsistencyStats struct {
	SameToolPairs       int                   `json:"same_tool_pairs"`
	SameToolConflicts   int                   `json:"same_tool_conflicts"`
	CrossToolPairs      int                   `json:"cross_tool_pairs"`
	CrossToolConflicts  int                   `json:"cross_tool_conflicts"`
	SameToolConsistency float64               `json:"same_tool_consistency"`
	CrossToolConsistency float64              `json:"cross_tool_consistency"`
	Conflicts           []ConsistencyConflict `json:"conflicts"`
}

// ConsistencyFileResult is the per-transcript consistency accounting.
type ConsistencyFileResult struct {
	File string `json:"file"`
	ConsistencyStats
}

// ConsistencyReport is the full state-consistency result.
type ConsistencyReport struct {
	PerFileResults []ConsistencyFileResult `json:"per_file_results"`
	Overall        ConsistencyStats        `json:"overall"`
}

type observedFact struct {
	tool  string
	step  string
	value string
}

// StateConsistency measures whether repeated observations of the same
// flattened key agree, both between calls of the same tool and across
// different tools. Observations are flattened to dotted key paths with a
// depth cap so unbounded nesting cannot blow up the key space.
func StateConsistency(folders []string, excludeLastSteps int, log zerolog.Logger) *ConsistencyReport {
	report := &ConsistencyReport{}

	forEachTranscript(folders, log, func(file string, doc *transcript.Document) {
		calls := doc.Calls(excludeLastSteps)
		report.PerFileResults = append(report.PerFileResults, ConsistencyFileResult{
			File:             file,
			ConsistencyStats: consistencyStats(calls),
		})
	})

	for _, fr := range report.PerFileResults {
		report.Overall.SameToolPairs += fr.SameToolPairs
		report.Overall.SameToolConflicts += fr.SameToolConflicts
		report.Overall.CrossToolPairs += fr.CrossToolPairs
		report.Overall.CrossToolConflicts += fr.CrossToolConflicts
	}
	report.Overall.SameToolConsistency = consistencyRate(report.Overall.SameToolConflicts, report.Overall.SameToolPairs)
	report.Overall.CrossToolConsistency = consistencyRate(report.Overall.CrossToolConflicts, report.Overall.CrossToolPairs)
	report.Overall.Conflicts = []ConsistencyConflict{}
	return report
}

func consistencyStats(calls []transcript.CallRecord) ConsistencyStats {
	stats := ConsistencyStats{Conflicts: []ConsistencyConflict{}}

	// All flattened facts per key, in call order.
	facts := make(map[string][]observedFact)
	var keyOrder []string

	for _, call := range calls {
		obs, ok := call.Observation.(map[string]any)
		if !ok {
			continue
		}
		flat := make(map[string]string)
		flattenObservation("", obs, 0, flat)
		for key, value := range flat {
			if _, seen := facts[key]; !seen {
				keyOrder = append(keyOrder, key)
			}
			facts[key] = append(facts[key], observedFact{
				tool:  call.ToolName,
				step:  call.Step,
				value: value,
			})
		}
	}

	for _, key := range keyOrder {
		seq := facts[key]
		for i := 0; i < len(seq); i++ {
			for j := i + 1; j < len(seq); j++ {
				sameTool := seq[i].tool == seq[j].tool
				if sameTool {
					stats.SameToolPairs++
				} else {
					stats.CrossToolPairs++
				}
				if seq[i].value == seq[j].value {
					continue
				}
				if sameTool {
					stats.SameToolConflicts++
				} else {
					stats.CrossToolConflicts++
				}
				stats.Conflicts = append(stats.Conflicts, ConsistencyConflict{
					Key:        key,
					FirstTool:  seq[i].tool,
					FirstStep:  seq[i].step,
					FirstValue: seq[i].value,
					LaterTool:  seq[j].tool,
					LaterStep:  seq[j].step,
					LaterValue: seq[j].value,
				})
			}
		}
	}

	stats.SameToolConsistency = consistencyRate(stats.SameToolConflicts, stats.SameToolPairs)
	stats.CrossToolConsistency = consistencyRate(stats.CrossToolConflicts, stats.CrossToolPairs)
	return stats
}

// consistencyRate reports the conflict-free fraction; no pairs means
// vacuously consistent.
func consistencyRate(conflicts, pairs int) float64 {
	if pairs == 0 {
		return 1.0
	}
	return float64(pairs-conflicts) / float64(pairs)
}

const maxFlattenDepth = 3

// flattenObservation walks a nested observation into dotted leaf paths,
// stopping at maxFlattenDepth. Subtrees below the cap are serialized whole.
func flattenObservation(prefix string, v any, depth int, out map[string]string) {
	m, ok := v.(map[string]any)
	if !ok || depth >= maxFlattenDepth {
		out[prefix] = normalizeValue(v)
		return
	}
	if len(m) == 0 {
		out[prefix] = "{}"
		return
	}
	for k, inner := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		flattenObservation(key, inner, depth+1, out)
	}
}

// normalizeValue renders any value as a canonical comparison string, so
// 1 and 1.0 from different JSON decodes compare equal. List elements are
// sorted first; element order carries no state information.
func normalizeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	case string:
		return val
	case []any:
		parts := make([]string, len(val))
		for i, inner := range val {
			parts[i] = normalizeValue(inner)
		}
		sort.Strings(parts)
		return "[" + strings.Join(parts, ",") + "]"
	default:
		return fmt.Sprintf("%v", canonicalValue(val))
	}
}
